package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-push-relay/internal/application/broadcast"
	"github.com/go-push-relay/internal/domain"
	"github.com/go-push-relay/internal/transport/http/middleware"
)

// BroadcastHandler handles the admin broadcast endpoints.
type BroadcastHandler struct {
	svc broadcast.Service
}

func NewBroadcastHandler(svc broadcast.Service) *BroadcastHandler {
	return &BroadcastHandler{svc: svc}
}

// Send fans the payload out to every targeted subscriber and answers with
// the aggregate {sent, failed} counts. Per-recipient failures never surface
// here; only precondition and store failures do.
func (h *BroadcastHandler) Send(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.BroadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	actor := domain.Actor{UserID: claims.UserID, Role: claims.Role}
	report, err := h.svc.Broadcast(r.Context(), actor, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// List returns recent broadcast audit records, newest first.
func (h *BroadcastHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := int64(50)
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil && n > 0 {
			limit = n
		}
	}
	records, err := h.svc.ListRecent(r.Context(), int32(limit))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}
