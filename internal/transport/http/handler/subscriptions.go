package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-push-relay/internal/application/subscription"
	"github.com/go-push-relay/internal/domain"
	"github.com/go-push-relay/internal/transport/http/middleware"
)

// SubscriptionHandler handles subscription lifecycle endpoints.
type SubscriptionHandler struct {
	svc subscription.Registry
}

func NewSubscriptionHandler(svc subscription.Registry) *SubscriptionHandler {
	return &SubscriptionHandler{svc: svc}
}

// PublicKey is public: clients need the VAPID public key before they can
// create a platform subscription.
func (h *SubscriptionHandler) PublicKey(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, PublicKeyEnvelope{PublicKey: h.svc.PublicKey()})
}

// Save persists the browser-created descriptor for the current user.
func (h *SubscriptionHandler) Save(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.SaveSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sub, err := h.svc.Save(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

// State reports whether the current user has a stored subscription.
func (h *SubscriptionHandler) State(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, SubscriptionStateEnvelope{
		Subscribed: h.svc.IsSubscribed(r.Context(), claims.UserID),
	})
}

// Delete removes the current user's subscription. Missing subscriptions are
// a no-op, not an error.
func (h *SubscriptionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Remove(r.Context(), claims.UserID); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "subscription removed"})
}

// AdminDelete removes another user's subscription (administrator cleanup).
func (h *SubscriptionHandler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Remove(r.Context(), chi.URLParam(r, "userID")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "subscription removed"})
}
