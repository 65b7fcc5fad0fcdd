package todosdk

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/aussiebroadwan/todo/pkg/jwtx"
	"golang.org/x/sync/singleflight"
)

// State is the snapshot handed to subscribers whenever the session changes.
type State struct {
	User          *User
	Authenticated bool
}

// Session holds the signed-in tokens and user and performs authenticated
// requests. A 401 on a protected request triggers at most one shared
// refresh, after which the request is retried once. Safe for concurrent use.
type Session struct {
	client *Client

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	user         *User

	refresh singleflight.Group

	subMu   sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

var errNoRefreshToken = errors.New("todosdk: no refresh token")

func newSession(c *Client) *Session {
	return &Session{client: c, subs: make(map[int]func(State))}
}

// AccessToken returns the held access token or "".
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the held refresh token or "".
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// User returns a copy of the signed-in user, or nil.
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsAuthenticated reports whether an access token is held.
func (s *Session) IsAuthenticated() bool {
	return s.AccessToken() != ""
}

// Subscribe registers fn to be called after every session change. The
// returned function removes the subscription.
func (s *Session) Subscribe(fn func(State)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// Clear drops all tokens and the user.
func (s *Session) Clear() {
	s.mu.Lock()
	s.accessToken = ""
	s.refreshToken = ""
	s.user = nil
	s.mu.Unlock()
	s.notify()
}

// Logout revokes the refresh token on the server and clears the session
// whatever the outcome.
func (s *Session) Logout(ctx context.Context) error {
	refreshToken := s.RefreshToken()
	defer s.Clear()

	if refreshToken == "" {
		return nil
	}
	return s.client.RevokeToken(ctx, refreshToken)
}

// Do performs an authenticated request. in is JSON encoded when non-nil and
// a 2xx body is decoded into out when non-nil. Errors are *APIError.
func (s *Session) Do(ctx context.Context, method, path string, in, out any) error {
	sent := s.AccessToken()
	resp, err := s.client.send(ctx, method, path, in, sent)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusUnauthorized || isAuthPath(path) {
		return readResponse(resp, out)
	}
	unauthorized := readResponse(resp, nil)

	token := s.AccessToken()
	if token == "" || token == sent {
		token, err = s.refreshShared(ctx, sent)
		if err != nil {
			return unauthorized
		}
	}

	resp, err = s.client.send(ctx, method, path, in, token)
	if err != nil {
		return err
	}
	return readResponse(resp, out)
}

// refreshShared joins the in-flight refresh or starts one. A flight started
// after another one already replaced sent returns the new token without
// calling the server. The refresh is detached from the caller's
// cancellation; the HTTP client timeout bounds it.
func (s *Session) refreshShared(ctx context.Context, sent string) (string, error) {
	v, err, _ := s.refresh.Do("refresh", func() (any, error) {
		s.mu.RLock()
		access, refreshToken := s.accessToken, s.refreshToken
		s.mu.RUnlock()
		if access != "" && access != sent {
			return access, nil
		}

		if refreshToken == "" {
			s.Clear()
			return "", errNoRefreshToken
		}

		res, err := s.client.RefreshToken(context.WithoutCancel(ctx), refreshToken)
		if err != nil {
			s.Clear()
			return "", err
		}

		s.apply(*res)
		return res.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// apply stores a fresh token pair and the user it belongs to.
func (s *Session) apply(res AuthResponse) {
	s.mu.Lock()
	s.accessToken = res.AccessToken
	s.refreshToken = res.RefreshToken
	s.user = userFromToken(res.AccessToken, res.Email, res.Role)
	s.mu.Unlock()
	s.notify()
}

func (s *Session) notify() {
	state := State{User: s.User(), Authenticated: s.IsAuthenticated()}

	s.subMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}

// userFromToken decodes the user projection from an access token payload.
// email and role fill in when the payload lacks them.
func userFromToken(accessToken, email, role string) *User {
	if accessToken == "" {
		return nil
	}

	u := &User{Email: email, Role: role}
	if claims, err := jwtx.DecodeUnverified(accessToken); err == nil {
		u.ID = claims.Subject
		if claims.Email != "" {
			u.Email = claims.Email
		}
		if claims.Role != "" {
			u.Role = claims.Role
		}
	}
	return u
}
