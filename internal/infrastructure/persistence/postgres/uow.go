package postgres

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/stagehub/internship-hub/internal/domain/agreement"
	"github.com/stagehub/internship-hub/internal/domain/application"
	"github.com/stagehub/internship-hub/internal/domain/notification"
)

// ══════════════════════════════════════════════════════════════════════════════
// UNIT OF WORK
// Binds the agreement, application and notification repositories to a single
// pgx transaction so a workflow transition, its application side effects and
// its notification intents commit or roll back together.
// ══════════════════════════════════════════════════════════════════════════════

// UnitOfWork implements agreement.UnitOfWork on top of a pgx transaction.
type UnitOfWork struct {
	tx            pgx.Tx
	agreements    *AgreementRepository
	applications  *ApplicationRepository
	notifications *NotificationRepository

	mu   sync.Mutex
	done bool
}

// Agreements returns the agreement repository bound to the transaction.
func (u *UnitOfWork) Agreements() agreement.Repository {
	return u.agreements
}

// Applications returns the application repository bound to the transaction.
func (u *UnitOfWork) Applications() application.Repository {
	return u.applications
}

// Notifications returns the notification repository bound to the transaction.
func (u *UnitOfWork) Notifications() notification.Repository {
	return u.notifications
}

// Commit commits the transaction.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.done {
		return ErrTransactionFailed
	}
	u.done = true

	if err := u.tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrTransactionFailed, err)
	}
	return nil
}

// Rollback rolls back the transaction. Safe to call after Commit; the
// deferred rollback in handlers then becomes a no-op.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.done {
		return nil
	}
	u.done = true

	return u.tx.Rollback(ctx)
}

// UnitOfWorkFactory implements agreement.UnitOfWorkFactory.
type UnitOfWorkFactory struct {
	conn *Connection
}

// NewUnitOfWorkFactory creates a new UnitOfWorkFactory.
func NewUnitOfWorkFactory(conn *Connection) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{conn: conn}
}

// Begin starts a new transaction.
func (f *UnitOfWorkFactory) Begin(ctx context.Context) (agreement.UnitOfWork, error) {
	tx, err := f.conn.BeginTx(ctx, DefaultTxOptions())
	if err != nil {
		return nil, err
	}

	return &UnitOfWork{
		tx:            tx,
		agreements:    newAgreementRepositoryWithQuerier(tx),
		applications:  newApplicationRepositoryWithQuerier(tx),
		notifications: newNotificationRepositoryWithQuerier(tx),
	}, nil
}
