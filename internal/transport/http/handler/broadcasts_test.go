package handler

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-push-relay/internal/config"
	"github.com/go-push-relay/internal/domain"
	jwtinfra "github.com/go-push-relay/internal/infrastructure/jwt"
	"github.com/go-push-relay/internal/transport/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockBroadcastSvc struct{ mock.Mock }

func (m *mockBroadcastSvc) Broadcast(ctx context.Context, actor domain.Actor, req domain.BroadcastRequest) (domain.DeliveryReport, error) {
	args := m.Called(ctx, actor, req)
	return args.Get(0).(domain.DeliveryReport), args.Error(1)
}

func (m *mockBroadcastSvc) ListRecent(ctx context.Context, limit int32) ([]domain.BroadcastRecord, error) {
	args := m.Called(ctx, limit)
	records, _ := args.Get(0).([]domain.BroadcastRecord)
	return records, args.Error(1)
}

// --- helpers ---

// newTestJWTProvider generates a fresh RSA key pair and returns a *jwtinfra.Provider.
func newTestJWTProvider(t *testing.T) *jwtinfra.Provider {
	t.Helper()
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(privKey)})
	require.NoError(t, os.WriteFile(privPath, privPEM, 0600))

	pubBytes, err := x509.MarshalPKIXPublicKey(&privKey.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0600))

	p, err := jwtinfra.NewProvider(&config.Config{
		JWTPrivateKeyPath: privPath,
		JWTPublicKeyPath:  pubPath,
		JWTExpiry:         24 * time.Hour,
	})
	require.NoError(t, err)
	return p
}

// bearerReq builds a request with a signed Bearer token for the given userID and role.
func bearerReq(t *testing.T, p *jwtinfra.Provider, method, target, userID, role string, body []byte) *http.Request {
	t.Helper()
	token, err := p.Sign(userID, role)
	require.NoError(t, err)
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

// serveAuthed wraps the handler with middleware.Auth before serving.
func serveAuthed(p *jwtinfra.Provider, h http.Handler, w http.ResponseWriter, r *http.Request) {
	middleware.Auth(p)(h).ServeHTTP(w, r)
}

func broadcastBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(domain.BroadcastRequest{
		Payload: domain.Payload{Title: "Title", Body: "Body", URL: "/news"},
	})
	require.NoError(t, err)
	return body
}

// --- Send tests ---

func TestSend_MissingClaims(t *testing.T) {
	svc := &mockBroadcastSvc{}
	h := NewBroadcastHandler(svc)
	r := httptest.NewRequest(http.MethodPost, "/v1/broadcasts", bytes.NewReader(broadcastBody(t)))
	rr := httptest.NewRecorder()
	h.Send(rr, r) // called directly, no claims in context
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSend_InvalidBody(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockBroadcastSvc{}
	h := NewBroadcastHandler(svc)

	r := bearerReq(t, p, http.MethodPost, "/v1/broadcasts", "admin1", domain.RoleAdmin, []byte("not-json"))
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Send), rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSend_ForbiddenForNonAdmin(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockBroadcastSvc{}
	svc.On("Broadcast", mock.Anything, domain.Actor{UserID: "u1", Role: domain.RoleUser}, mock.Anything).
		Return(domain.DeliveryReport{}, fmt.Errorf("broadcast requires the admin role: %w", domain.ErrForbidden))
	h := NewBroadcastHandler(svc)

	r := bearerReq(t, p, http.MethodPost, "/v1/broadcasts", "u1", domain.RoleUser, broadcastBody(t))
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Send), rr, r)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	svc.AssertExpectations(t)
}

func TestSend_InvalidPayload(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockBroadcastSvc{}
	svc.On("Broadcast", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.DeliveryReport{}, fmt.Errorf("invalid payload: %w", domain.ErrBadRequest))
	h := NewBroadcastHandler(svc)

	body, _ := json.Marshal(domain.BroadcastRequest{Payload: domain.Payload{Body: "no title"}})
	r := bearerReq(t, p, http.MethodPost, "/v1/broadcasts", "admin1", domain.RoleAdmin, body)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Send), rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSend_HappyPath(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockBroadcastSvc{}
	svc.On("Broadcast", mock.Anything, domain.Actor{UserID: "admin1", Role: domain.RoleAdmin}, mock.Anything).
		Return(domain.DeliveryReport{Sent: 7, Failed: 2}, nil)
	h := NewBroadcastHandler(svc)

	r := bearerReq(t, p, http.MethodPost, "/v1/broadcasts", "admin1", domain.RoleAdmin, broadcastBody(t))
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Send), rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp domain.DeliveryReport
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, 7, resp.Sent)
	assert.Equal(t, 2, resp.Failed)
	svc.AssertExpectations(t)
}

func TestSend_StoreFailure(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockBroadcastSvc{}
	svc.On("Broadcast", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.DeliveryReport{}, fmt.Errorf("load subscriptions: dynamo unavailable"))
	h := NewBroadcastHandler(svc)

	r := bearerReq(t, p, http.MethodPost, "/v1/broadcasts", "admin1", domain.RoleAdmin, broadcastBody(t))
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Send), rr, r)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

// --- List tests ---

func TestList_DefaultLimit(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockBroadcastSvc{}
	svc.On("ListRecent", mock.Anything, int32(50)).Return([]domain.BroadcastRecord{
		{BroadcastID: "b1", Title: "Title", Sent: 3},
	}, nil)
	h := NewBroadcastHandler(svc)

	r := bearerReq(t, p, http.MethodGet, "/v1/broadcasts", "admin1", domain.RoleAdmin, nil)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.List), rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var records []domain.BroadcastRecord
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&records))
	require.Len(t, records, 1)
	assert.Equal(t, "b1", records[0].BroadcastID)
	svc.AssertExpectations(t)
}

func TestList_CustomLimit(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockBroadcastSvc{}
	svc.On("ListRecent", mock.Anything, int32(10)).Return([]domain.BroadcastRecord{}, nil)
	h := NewBroadcastHandler(svc)

	r := bearerReq(t, p, http.MethodGet, "/v1/broadcasts?limit=10", "admin1", domain.RoleAdmin, nil)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.List), rr, r)
	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}
