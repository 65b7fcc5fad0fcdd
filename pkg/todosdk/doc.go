/*
Package todosdk is the Go client for the to-do API.

# Client vs Session

Client performs unauthenticated calls (register, login, health) and creates
Sessions. A Session holds the access token, the refresh token and the user
projection decoded from the access token, and performs authenticated calls:

	client := todosdk.NewClient("http://localhost:8080")

	session, err := client.Login(ctx, "ada@example.com", "password")
	if err != nil {
		return err
	}

	tasks, err := session.ListTasks(ctx)

Persisted tokens can be turned back into a session with RestoreSession.

# Refresh and retry

When a protected request answers 401 the session refreshes once and retries
the request once:

 1. If the held access token already differs from the one the request
    carried, another request has refreshed; the request is retried with the
    current token.
 2. Otherwise the request joins the refresh already in flight, or starts
    it. Concurrent 401s cause exactly one call to /auth/refresh-token.
 3. A failed refresh clears the session, notifies subscribers and every
    waiting request returns its original 401.
 4. A 401 on the retried request is final.

Requests to the auth endpoints themselves never refresh.

# Errors

Every failure is an *APIError. Server errors carry the HTTP status and the
server's message; transport and decode failures carry the message
"Unknown error" and wrap the cause.
*/
package todosdk
