package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/todo/internal/todo/domain"
	"github.com/aussiebroadwan/todo/internal/todo/service"
	"github.com/aussiebroadwan/todo/pkg/httpx"
	"github.com/aussiebroadwan/todo/pkg/todosdk"
)

type AuthHandler struct {
	AuthService *service.AuthService
}

// HandleRegister creates an account and signs it in.
//
//	@Summary		Register
//	@Description	Creates an account with the User role and returns a new session.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		todosdk.Credentials		true	"Email and password"
//	@Success		200		{object}	todosdk.AuthResponse
//	@Failure		400		{object}	todosdk.ErrorResponse	"Missing fields or email already exists"
//	@Failure		429		{object}	todosdk.ErrorResponse	"Rate limited"
//	@Failure		500		{object}	todosdk.ErrorResponse	"Internal server error"
//	@Router			/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req todosdk.Credentials
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w, r, err)
		return
	}

	res, err := h.AuthService.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toAuthResponse(res))
}

// HandleLogin signs in with email and password.
//
//	@Summary		Login
//	@Description	Verifies the credentials and returns an access token and a refresh token.
//	@Description	Unknown email and wrong password give the same answer.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		todosdk.Credentials		true	"Email and password"
//	@Success		200		{object}	todosdk.AuthResponse
//	@Failure		400		{object}	todosdk.ErrorResponse	"Malformed body"
//	@Failure		401		{object}	todosdk.ErrorResponse	"Invalid credentials"
//	@Failure		429		{object}	todosdk.ErrorResponse	"Rate limited"
//	@Router			/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req todosdk.Credentials
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w, r, err)
		return
	}

	res, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toAuthResponse(res))
}

// HandleRefresh rotates a refresh token.
//
//	@Summary		Refresh token
//	@Description	Exchanges a refresh token for a new access/refresh pair. The presented token is revoked;
//	@Description	of several concurrent calls with the same token at most one succeeds.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		todosdk.RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	todosdk.AuthResponse
//	@Failure		400		{object}	todosdk.ErrorResponse	"Missing refresh token"
//	@Failure		401		{object}	todosdk.ErrorResponse	"Invalid or expired refresh token"
//	@Failure		404		{object}	todosdk.ErrorResponse	"Refresh token not found"
//	@Router			/auth/refresh-token [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	token, ok := decodeRefreshRequest(w, r)
	if !ok {
		return
	}

	res, err := h.AuthService.Refresh(r.Context(), token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toAuthResponse(res))
}

// HandleLogout revokes a refresh token.
//
//	@Summary		Logout
//	@Description	Revokes the refresh token. Logging out twice is not an error.
//	@Description	Access tokens already issued stay valid until they expire.
//	@Tags			Auth
//	@Accept			json
//	@Param			body	body	todosdk.RefreshRequest	true	"Refresh token"
//	@Success		204
//	@Failure		400	{object}	todosdk.ErrorResponse	"Missing refresh token"
//	@Failure		404	{object}	todosdk.ErrorResponse	"Refresh token not found"
//	@Router			/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	token, ok := decodeRefreshRequest(w, r)
	if !ok {
		return
	}

	if err := h.AuthService.Logout(r.Context(), token); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the signed-in account.
//
//	@Summary		Current user
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	todosdk.User
//	@Failure		401	{object}	todosdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		404	{object}	todosdk.ErrorResponse	"User not found"
//	@Router			/auth/me [get].
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	a, err := h.AuthService.Me(r.Context(), httpx.AccountIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, todosdk.User{ID: a.ID, Email: a.Email, Role: a.Role})
}

func decodeRefreshRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req todosdk.RefreshRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w, r, err)
		return "", false
	}

	token := strings.TrimSpace(req.RefreshToken)
	if token == "" {
		writeServiceError(w, r, domain.ValidationError("Refresh token is required"))
		return "", false
	}
	return token, true
}

func toAuthResponse(res domain.AuthResult) todosdk.AuthResponse {
	return todosdk.AuthResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		Email:        res.Email,
		Role:         res.Role,
	}
}
