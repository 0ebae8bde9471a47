package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"signalscanner/src/model"
)

type mockAlertStore struct {
	alerts      []model.Alert
	listErr     error
	limit       int
	marked      *model.Alert
	markErr     error
	markedID    string
	markedAt    time.Time
	calledCount int
}

func (m *mockAlertStore) ListPending(_ context.Context, limit int) ([]model.Alert, error) {
	m.calledCount++
	m.limit = limit
	return m.alerts, m.listErr
}

func (m *mockAlertStore) MarkSent(_ context.Context, id string, now time.Time) (*model.Alert, error) {
	m.calledCount++
	m.markedID = id
	m.markedAt = now
	return m.marked, m.markErr
}

func markSentRouter(store *mockAlertStore, now func() time.Time) chi.Router {
	r := chi.NewRouter()
	r.Post("/alerts/{alertID}/mark-sent", MarkAlertSentHandler(store, now))
	return r
}

func TestPendingAlertsHandler_InvalidLimit(t *testing.T) {
	for _, limit := range []string{"0", "501", "-5", "abc"} {
		t.Run(limit, func(t *testing.T) {
			store := &mockAlertStore{}
			h := PendingAlertsHandler(store)

			req := httptest.NewRequest(http.MethodGet, "/alerts/pending?limit="+limit, nil)
			rr := httptest.NewRecorder()

			h.ServeHTTP(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", rr.Code)
			}
			if store.calledCount != 0 {
				t.Fatal("store must not be queried with an invalid limit")
			}
		})
	}
}

func TestPendingAlertsHandler_DefaultLimit(t *testing.T) {
	asOf := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	store := &mockAlertStore{alerts: []model.Alert{
		{ID: "a-1", AlertType: model.AlertTypeEntry, Symbol: "AAPL", AsOf: asOf, Message: "m"},
	}}
	h := PendingAlertsHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/alerts/pending", nil)
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	assert.Equal(t, defaultPendingLimit, store.limit)

	var response []alertResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(response))
	}
	assert.Equal(t, "a-1", response[0].ID)
	assert.Equal(t, "2025-03-10", response[0].AsOf)
}

func TestPendingAlertsHandler_EmptyListIsJSONArray(t *testing.T) {
	h := PendingAlertsHandler(&mockAlertStore{})

	req := httptest.NewRequest(http.MethodGet, "/alerts/pending?limit=5", nil)
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	assert.JSONEq(t, "[]", rr.Body.String())
}

func TestPendingAlertsHandler_StoreError(t *testing.T) {
	h := PendingAlertsHandler(&mockAlertStore{listErr: assert.AnError})

	req := httptest.NewRequest(http.MethodGet, "/alerts/pending", nil)
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
}

func TestMarkAlertSentHandler_NotFound(t *testing.T) {
	store := &mockAlertStore{}
	router := markSentRouter(store, time.Now)

	req := httptest.NewRequest(http.MethodPost, "/alerts/no-such-id/mark-sent", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
	assert.Equal(t, "no-such-id", store.markedID)
}

func TestMarkAlertSentHandler_Success(t *testing.T) {
	sentAt := time.Date(2025, time.March, 11, 9, 0, 0, 0, time.UTC)
	store := &mockAlertStore{marked: &model.Alert{ID: "a-1", SentAt: &sentAt}}
	router := markSentRouter(store, func() time.Time { return sentAt })

	req := httptest.NewRequest(http.MethodPost, "/alerts/a-1/mark-sent", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var response markSentResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	assert.True(t, response.Success)
	assert.Equal(t, "a-1", response.ID)
	assert.True(t, response.SentAt.Equal(sentAt))
}

func TestMarkAlertSentHandler_RepeatReturnsOriginalTimestamp(t *testing.T) {
	// The store already holds a sent_at; the handler must echo it rather
	// than the current time.
	originalSentAt := time.Date(2025, time.March, 11, 9, 0, 0, 0, time.UTC)
	store := &mockAlertStore{marked: &model.Alert{ID: "a-1", SentAt: &originalSentAt}}
	router := markSentRouter(store, func() time.Time { return originalSentAt.Add(3 * time.Hour) })

	req := httptest.NewRequest(http.MethodPost, "/alerts/a-1/mark-sent", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var response markSentResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	assert.True(t, response.SentAt.Equal(originalSentAt))
}
