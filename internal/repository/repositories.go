package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Repository errors shared by every storage driver
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Repositories holds all repository instances
type Repositories struct {
	Loan        LoanRepository
	Payment     PaymentRepository
	Installment InstallmentRepository
	Transition  TransitionRepository
	Audit       AuditRepository

	transactor Transactor
}

// Transactor runs fn against repositories bound to a single transaction
type Transactor interface {
	Transaction(ctx context.Context, fn func(tx *Repositories) error) error
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	repos := newGormRepositories(db)
	repos.transactor = &gormTransactor{db: db}
	return repos
}

func newGormRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Loan:        NewLoanRepository(db),
		Payment:     NewPaymentRepository(db),
		Installment: NewInstallmentRepository(db),
		Transition:  NewTransitionRepository(db),
		Audit:       NewAuditRepository(db),
	}
}

// SetTransactor installs the transaction runner used by Transaction
func (r *Repositories) SetTransactor(t Transactor) {
	r.transactor = t
}

// Transaction runs fn atomically. Repositories without a transactor, and
// repositories already bound to a transaction, run fn inline.
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	if r.transactor == nil {
		return fn(r)
	}
	return r.transactor.Transaction(ctx, fn)
}

// maxTxAttempts bounds retries of transactions aborted by serialization
// failures or deadlocks
const maxTxAttempts = 3

type gormTransactor struct {
	db *gorm.DB
}

// Transaction runs fn under READ COMMITTED. Callers serialize on a row lock
// (FindByIDForUpdate) taken first; every later statement then sees rows
// committed by the previous lock holder. A transaction aborted with
// 40001/40P01 re-runs fn from the start, so fn must only communicate through
// its return value and variables it fully reassigns.
func (t *gormTransactor) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(newGormRepositories(tx))
		}, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
		if !isSerializationFailure(err) || ctx.Err() != nil {
			return err
		}
	}
	return err
}

func translateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if isDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func isDuplicateKeyError(err error) bool {
	return pgErrorCode(err) == "23505"
}

// isSerializationFailure covers serialization_failure and deadlock_detected
func isSerializationFailure(err error) bool {
	code := pgErrorCode(err)
	return code == "40001" || code == "40P01"
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
