package http

import (
	"net/http"

	"github.com/aussiebroadwan/todo/internal/todo/domain"
	"github.com/aussiebroadwan/todo/pkg/httpx"
	"github.com/aussiebroadwan/todo/pkg/slogx"
)

// writeServiceError maps a service error onto the response. Only classified
// errors reach the client with their message; everything else is logged and
// answered with a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var status int

	switch domain.KindOf(err) {
	case domain.KindValidation:
		status = http.StatusBadRequest
	case domain.KindAuthentication:
		status = http.StatusUnauthorized
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindConfiguration:
		slogx.FromContext(r.Context()).Error("configuration error", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	default:
		slogx.FromContext(r.Context()).Error("unhandled error", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.WriteError(w, status, err.Error())
}

// writeBadBody answers a request whose JSON body could not be decoded.
func writeBadBody(w http.ResponseWriter, r *http.Request, err error) {
	slogx.FromContext(r.Context()).Info("bad request body", "err", err)
	httpx.WriteError(w, http.StatusBadRequest, "Invalid request body")
}
