package command

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/stagehub/internship-hub/internal/domain/agreement"
	"github.com/stagehub/internship-hub/internal/domain/application"
	"github.com/stagehub/internship-hub/internal/domain/notification"
	"github.com/stagehub/internship-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY TEST DOUBLES
// ══════════════════════════════════════════════════════════════════════════════

type memApplications struct {
	mu   sync.Mutex
	apps map[shared.ApplicationID]*application.Application
}

func newMemApplications() *memApplications {
	return &memApplications{apps: make(map[shared.ApplicationID]*application.Application)}
}

func (m *memApplications) put(app *application.Application) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *app
	m.apps[app.ID] = &cp
}

func (m *memApplications) Create(_ context.Context, app *application.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.apps[app.ID]; ok {
		return shared.ErrAlreadyExists
	}
	cp := *app
	m.apps[app.ID] = &cp
	return nil
}

func (m *memApplications) GetByID(_ context.Context, id shared.ApplicationID) (*application.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.apps[id]
	if !ok {
		return nil, shared.ErrApplicationNotFound
	}
	cp := *app
	return &cp, nil
}

func (m *memApplications) GetByIDForUpdate(ctx context.Context, id shared.ApplicationID) (*application.Application, error) {
	return m.GetByID(ctx, id)
}

func (m *memApplications) Update(_ context.Context, app *application.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.apps[app.ID]; !ok {
		return shared.ErrApplicationNotFound
	}
	cp := *app
	m.apps[app.ID] = &cp
	return nil
}

func (m *memApplications) GetByIDs(_ context.Context, ids []shared.ApplicationID) ([]*application.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*application.Application, 0, len(ids))
	for _, id := range ids {
		if app, ok := m.apps[id]; ok {
			cp := *app
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memApplications) ListByStudent(_ context.Context, studentID shared.UserID, _ application.ListOptions) ([]*application.Application, error) {
	return m.filter(func(a *application.Application) bool { return a.StudentID == studentID }), nil
}

func (m *memApplications) ListByCompanyOwner(_ context.Context, ownerID shared.UserID, _ application.ListOptions) ([]*application.Application, error) {
	return m.filter(func(a *application.Application) bool { return a.CompanyOwnerID == ownerID }), nil
}

func (m *memApplications) ListByStatus(_ context.Context, status application.Status, _ application.ListOptions) ([]*application.Application, error) {
	return m.filter(func(a *application.Application) bool { return a.Status == status }), nil
}

func (m *memApplications) filter(keep func(*application.Application) bool) []*application.Application {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*application.Application
	for _, app := range m.apps {
		if keep(app) {
			cp := *app
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type memAgreements struct {
	mu  sync.Mutex
	ags map[shared.AgreementID]*agreement.Agreement
}

func newMemAgreements() *memAgreements {
	return &memAgreements{ags: make(map[shared.AgreementID]*agreement.Agreement)}
}

func (m *memAgreements) Create(_ context.Context, ag *agreement.Agreement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.ags {
		if existing.ApplicationID == ag.ApplicationID && existing.ApprovalStatus != agreement.ApprovalRejected {
			return shared.ErrAgreementExists
		}
	}
	cp := *ag
	m.ags[ag.ID] = &cp
	return nil
}

func (m *memAgreements) GetByID(_ context.Context, id shared.AgreementID) (*agreement.Agreement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ag, ok := m.ags[id]
	if !ok {
		return nil, shared.ErrAgreementNotFound
	}
	cp := *ag
	return &cp, nil
}

func (m *memAgreements) GetByIDForUpdate(ctx context.Context, id shared.AgreementID) (*agreement.Agreement, error) {
	return m.GetByID(ctx, id)
}

func (m *memAgreements) GetActiveByApplicationID(_ context.Context, applicationID shared.ApplicationID) (*agreement.Agreement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ag := range m.ags {
		if ag.ApplicationID == applicationID && ag.ApprovalStatus != agreement.ApprovalRejected {
			cp := *ag
			return &cp, nil
		}
	}
	return nil, shared.ErrAgreementNotFound
}

func (m *memAgreements) Update(_ context.Context, ag *agreement.Agreement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ags[ag.ID]; !ok {
		return shared.ErrAgreementNotFound
	}
	cp := *ag
	m.ags[ag.ID] = &cp
	return nil
}

func (m *memAgreements) ListAll(_ context.Context, _ agreement.ListOptions) ([]*agreement.Agreement, error) {
	return m.filter(func(*agreement.Agreement) bool { return true }), nil
}

func (m *memAgreements) ListByApprovalStatus(_ context.Context, status agreement.ApprovalStatus, _ agreement.ListOptions) ([]*agreement.Agreement, error) {
	return m.filter(func(a *agreement.Agreement) bool { return a.ApprovalStatus == status }), nil
}

func (m *memAgreements) ListPendingValidationForFaculty(_ context.Context, _ shared.FacultyID, validatorID shared.UserID, _ agreement.ListOptions) ([]*agreement.Agreement, error) {
	return m.filter(func(a *agreement.Agreement) bool {
		if a.ApprovalStatus != agreement.ApprovalPendingFacultyValidation {
			return false
		}
		return a.FacultyValidatorID == nil || *a.FacultyValidatorID == validatorID
	}), nil
}

func (m *memAgreements) ListByStudent(_ context.Context, _ shared.UserID, _ agreement.ListOptions) ([]*agreement.Agreement, error) {
	return m.filter(func(*agreement.Agreement) bool { return false }), nil
}

func (m *memAgreements) ListByCompanyOwner(_ context.Context, _ shared.UserID, _ agreement.ListOptions) ([]*agreement.Agreement, error) {
	return m.filter(func(*agreement.Agreement) bool { return false }), nil
}

func (m *memAgreements) filter(keep func(*agreement.Agreement) bool) []*agreement.Agreement {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*agreement.Agreement
	for _, ag := range m.ags {
		if keep(ag) {
			cp := *ag
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type memNotifications struct {
	mu    sync.Mutex
	items []*notification.Notification
}

func newMemNotifications() *memNotifications {
	return &memNotifications{}
}

func (m *memNotifications) Create(_ context.Context, n *notification.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *n
	m.items = append(m.items, &cp)
	return nil
}

func (m *memNotifications) GetByID(_ context.Context, id string) (*notification.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.items {
		if n.ID == id {
			cp := *n
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memNotifications) ListForRecipient(_ context.Context, recipientID shared.UserID, opts notification.ListOptions) ([]*notification.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*notification.Notification
	for _, n := range m.items {
		if n.RecipientID != recipientID {
			continue
		}
		if opts.UnreadOnly && n.IsRead {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memNotifications) CountUnread(_ context.Context, recipientID shared.UserID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.items {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *memNotifications) MarkRead(_ context.Context, id string, recipientID shared.UserID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.items {
		if n.ID == id && n.RecipientID == recipientID {
			n.IsRead = true
			return nil
		}
	}
	return shared.ErrNotFound
}

func (m *memNotifications) ListUndelivered(_ context.Context, limit int) ([]*notification.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*notification.Notification
	for _, n := range m.items {
		if n.DeliveryStatus == notification.DeliveryPending {
			cp := *n
			out = append(out, &cp)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (m *memNotifications) UpdateDelivery(_ context.Context, upd *notification.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.items {
		if n.ID == upd.ID {
			n.DeliveryStatus = upd.DeliveryStatus
			n.Attempts = upd.Attempts
			n.LastError = upd.LastError
			return nil
		}
	}
	return shared.ErrNotFound
}

func (m *memNotifications) PurgeRead(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*notification.Notification
	var purged int64
	for _, n := range m.items {
		if n.IsRead && n.CreatedAt.Before(before) {
			purged++
			continue
		}
		kept = append(kept, n)
	}
	m.items = kept
	return purged, nil
}

func (m *memNotifications) forRecipient(recipientID shared.UserID) []*notification.Notification {
	out, _ := m.ListForRecipient(context.Background(), recipientID, notification.ListOptions{})
	return out
}

// memUnitOfWork hands the shared in-memory repositories to handlers; commit
// and rollback are bookkeeping only.
type memUnitOfWork struct {
	apps      *memApplications
	ags       *memAgreements
	notifs    *memNotifications
	committed bool
}

func (u *memUnitOfWork) Agreements() agreement.Repository          { return u.ags }
func (u *memUnitOfWork) Applications() application.Repository     { return u.apps }
func (u *memUnitOfWork) Notifications() notification.Repository   { return u.notifs }
func (u *memUnitOfWork) Commit(context.Context) error             { u.committed = true; return nil }
func (u *memUnitOfWork) Rollback(context.Context) error           { return nil }

type memUowFactory struct {
	apps   *memApplications
	ags    *memAgreements
	notifs *memNotifications
}

func (f *memUowFactory) Begin(context.Context) (agreement.UnitOfWork, error) {
	return &memUnitOfWork{apps: f.apps, ags: f.ags, notifs: f.notifs}, nil
}

// stubDocGen returns a canned document reference, or an error when broken.
type stubDocGen struct {
	ref   string
	err   error
	calls int
}

func (s *stubDocGen) Generate(_ context.Context, app *application.Application) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if s.ref != "" {
		return s.ref, nil
	}
	return fmt.Sprintf("agreements/convention_%s.pdf", app.ID), nil
}

// seqIDs issues deterministic UUID-shaped identifiers.
type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (s *seqIDs) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", s.n)
}

// capturePublisher records published events.
type capturePublisher struct {
	mu     sync.Mutex
	events []shared.Event
}

func (p *capturePublisher) Publish(event shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) types() []shared.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]shared.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}
