package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagehub/internship-hub/internal/application/command"
	"github.com/stagehub/internship-hub/internal/application/query"
	"github.com/stagehub/internship-hub/internal/domain/identity"
	"github.com/stagehub/internship-hub/internal/domain/notification"
	"github.com/stagehub/internship-hub/internal/domain/shared"
)

// ──────────────────────────────────────────────────────────────────────────────
// Test doubles
// ──────────────────────────────────────────────────────────────────────────────

type stubNotificationRepo struct {
	mu    sync.Mutex
	items []*notification.Notification
}

func (s *stubNotificationRepo) Create(_ context.Context, n *notification.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *n
	s.items = append(s.items, &cp)
	return nil
}

func (s *stubNotificationRepo) GetByID(_ context.Context, id string) (*notification.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.items {
		if n.ID == id {
			cp := *n
			return &cp, nil
		}
	}
	return nil, shared.ErrNotificationNotFound
}

func (s *stubNotificationRepo) ListForRecipient(_ context.Context, recipientID shared.UserID, _ notification.ListOptions) ([]*notification.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*notification.Notification
	for _, n := range s.items {
		if n.RecipientID == recipientID {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *stubNotificationRepo) CountUnread(_ context.Context, recipientID shared.UserID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.items {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *stubNotificationRepo) MarkRead(_ context.Context, id string, recipientID shared.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.items {
		if n.ID == id && n.RecipientID == recipientID {
			n.MarkRead(time.Now())
			return nil
		}
	}
	return shared.ErrNotificationNotFound
}

func (s *stubNotificationRepo) ListUndelivered(context.Context, int) ([]*notification.Notification, error) {
	return nil, nil
}

func (s *stubNotificationRepo) UpdateDelivery(context.Context, *notification.Notification) error {
	return nil
}

func (s *stubNotificationRepo) PurgeRead(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

const testRecipientID = "4dd4328a-6c03-4e9f-8f7f-2f07a3c5e001"

func newTestServer(t *testing.T, notifications *stubNotificationRepo) *Server {
	t.Helper()

	actors := identity.NewContextProvider()
	return NewServer(DefaultConfig(), Dependencies{
		MarkNotificationRead: command.NewMarkNotificationReadHandler(actors, notifications),
		ListNotifications:    query.NewListNotificationsHandler(actors, notifications),
		DB:                   stubPinger{},
	})
}

func withStudentHeaders(req *http.Request) *http.Request {
	req.Header.Set("X-Actor-Id", testRecipientID)
	req.Header.Set("X-Actor-Role", "STUDENT")
	req.Header.Set("X-Actor-Name", "Aliya Bekova")
	return req
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubNotificationRepo{})

	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyReportsDatabaseOutage(t *testing.T) {
	srv := newTestServer(t, &stubNotificationRepo{})
	srv.deps.DB = stubPinger{err: context.DeadlineExceeded}

	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAPIRequiresIdentityHeaders(t *testing.T) {
	srv := newTestServer(t, &stubNotificationRepo{})

	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unauthenticated", body.Error)
}

func TestAPIRejectsUnknownRole(t *testing.T) {
	srv := newTestServer(t, &stubNotificationRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
	req.Header.Set("X-Actor-Id", testRecipientID)
	req.Header.Set("X-Actor-Role", "INTERN")

	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListNotifications(t *testing.T) {
	repo := &stubNotificationRepo{}
	require.NoError(t, repo.Create(context.Background(),
		notification.New("n-1", shared.UserID(testRecipientID), notification.TypeAgreementCreated, "agreement ready", "/agreements/agr-1", time.Now())))

	srv := newTestServer(t, repo)

	req := withStudentHeaders(httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result query.ListNotificationsResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Notifications, 1)
	assert.Equal(t, "n-1", result.Notifications[0].ID)
	assert.Equal(t, 1, result.UnreadCount)
}

func TestMarkNotificationRead(t *testing.T) {
	repo := &stubNotificationRepo{}
	require.NoError(t, repo.Create(context.Background(),
		notification.New("n-1", shared.UserID(testRecipientID), notification.TypeAgreementSigned, "signed", "", time.Now())))

	srv := newTestServer(t, repo)

	req := withStudentHeaders(httptest.NewRequest(http.MethodPost, "/api/v1/notifications/n-1/read", nil))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	count, err := repo.CountUnread(context.Background(), shared.UserID(testRecipientID))
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMarkNotificationReadNotFound(t *testing.T) {
	srv := newTestServer(t, &stubNotificationRepo{})

	req := withStudentHeaders(httptest.NewRequest(http.MethodPost, "/api/v1/notifications/missing/read", nil))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvalidJSONBodyIsBadRequest(t *testing.T) {
	srv := newTestServer(t, &stubNotificationRepo{})

	req := withStudentHeaders(httptest.NewRequest(http.MethodPost,
		"/api/v1/applications/4dd4328a-6c03-4e9f-8f7f-2f07a3c5e002/decision",
		strings.NewReader("{not json")))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStreamUnavailableWithoutFeed(t *testing.T) {
	srv := newTestServer(t, &stubNotificationRepo{})

	req := withStudentHeaders(httptest.NewRequest(http.MethodGet, "/api/v1/notifications/stream", nil))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
