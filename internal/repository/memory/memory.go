// Package memory implements the repository interfaces on process memory.
// It backs the service tests and STORAGE_DRIVER=memory local runs.
package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sjperalta/lendera-api/internal/models"
	"github.com/sjperalta/lendera-api/internal/repository"
)

type store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	now  func() time.Time

	nextID       map[string]uint
	loans        map[uint]models.Loan
	payments     []models.Payment
	installments map[uint][]models.Installment
	transitions  []models.LoanTransition
	audits       []models.AuditLog
}

type snapshot struct {
	nextID       map[string]uint
	loans        map[uint]models.Loan
	payments     []models.Payment
	installments map[uint][]models.Installment
	transitions  []models.LoanTransition
	audits       []models.AuditLog
}

// NewRepositories creates repositories sharing one in-memory store
func NewRepositories() *repository.Repositories {
	s := &store{
		now:          func() time.Time { return time.Now().UTC() },
		nextID:       make(map[string]uint),
		loans:        make(map[uint]models.Loan),
		installments: make(map[uint][]models.Installment),
	}
	repos := s.repositories()
	repos.SetTransactor(&transactor{store: s})
	return repos
}

func (s *store) repositories() *repository.Repositories {
	return &repository.Repositories{
		Loan:        &loanRepository{s},
		Payment:     &paymentRepository{s},
		Installment: &installmentRepository{s},
		Transition:  &transitionRepository{s},
		Audit:       &auditRepository{s},
	}
}

func (s *store) id(table string) uint {
	s.nextID[table]++
	return s.nextID[table]
}

func (s *store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := snapshot{
		nextID:       make(map[string]uint, len(s.nextID)),
		loans:        make(map[uint]models.Loan, len(s.loans)),
		payments:     append([]models.Payment(nil), s.payments...),
		installments: make(map[uint][]models.Installment, len(s.installments)),
		transitions:  append([]models.LoanTransition(nil), s.transitions...),
		audits:       append([]models.AuditLog(nil), s.audits...),
	}
	for k, v := range s.nextID {
		snap.nextID[k] = v
	}
	for k, v := range s.loans {
		snap.loans[k] = v
	}
	for k, v := range s.installments {
		snap.installments[k] = append([]models.Installment(nil), v...)
	}
	return snap
}

func (s *store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID = snap.nextID
	s.loans = snap.loans
	s.payments = snap.payments
	s.installments = snap.installments
	s.transitions = snap.transitions
	s.audits = snap.audits
}

// transactor serializes transactions and rolls the store back when fn fails
type transactor struct {
	store *store
}

func (t *transactor) Transaction(ctx context.Context, fn func(tx *repository.Repositories) error) error {
	t.store.txMu.Lock()
	defer t.store.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snap := t.store.snapshot()
	if err := fn(t.store.repositories()); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}

func paginate[T any](rows []T, query *repository.ListQuery) []T {
	start := query.Offset()
	if start >= len(rows) {
		return []T{}
	}
	end := start + query.PerPage
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

func matchesUint(filter string, value uint) bool {
	if filter == "" {
		return true
	}
	n, err := strconv.ParseUint(filter, 10, 64)
	return err == nil && uint(n) == value
}

// Loans

type loanRepository struct {
	s *store
}

func (r *loanRepository) FindByID(ctx context.Context, id uint) (*models.Loan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	loan, ok := r.s.loans[id]
	if !ok || loan.DiscardedAt != nil {
		return nil, repository.ErrNotFound
	}
	return &loan, nil
}

func (r *loanRepository) FindByIDForUpdate(ctx context.Context, id uint) (*models.Loan, error) {
	return r.FindByID(ctx, id)
}

func (r *loanRepository) Create(ctx context.Context, loan *models.Loan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	loan.ID = r.s.id("loans")
	loan.CreatedAt = r.s.now()
	loan.UpdatedAt = loan.CreatedAt
	if loan.Status == "" {
		loan.Status = models.LoanStatusPending
	}
	if loan.Currency == "" {
		loan.Currency = "USD"
	}
	stored := *loan
	stored.Payments = nil
	r.s.loans[loan.ID] = stored
	return nil
}

func (r *loanRepository) Update(ctx context.Context, loan *models.Loan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.loans[loan.ID]; !ok {
		return repository.ErrNotFound
	}
	loan.UpdatedAt = r.s.now()
	stored := *loan
	stored.Payments = nil
	r.s.loans[loan.ID] = stored
	return nil
}

func (r *loanRepository) List(ctx context.Context, query *repository.ListQuery) ([]models.Loan, int64, error) {
	query.Normalize()
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var loans []models.Loan
	for _, loan := range r.s.loans {
		if loan.DiscardedAt != nil {
			continue
		}
		if status := query.Filters["status"]; status != "" && loan.Status != status {
			continue
		}
		if !matchesUint(query.Filters["borrower_id"], loan.BorrowerID) {
			continue
		}
		if query.Search != "" {
			note := ""
			if loan.Note != nil {
				note = *loan.Note
			}
			if !strings.Contains(strings.ToLower(note), strings.ToLower(query.Search)) &&
				strconv.FormatUint(uint64(loan.ID), 10) != query.Search {
				continue
			}
		}
		loans = append(loans, loan)
	}

	sort.SliceStable(loans, func(i, j int) bool {
		a, b := loans[i], loans[j]
		var less bool
		switch query.SortBy {
		case "id":
			less = a.ID < b.ID
		case "principal":
			less = a.Principal.LessThan(b.Principal)
		case "start_date":
			less = a.StartDate.Before(b.StartDate)
		case "status":
			less = a.Status < b.Status
		case "tenure_months":
			less = a.TenureMonths < b.TenureMonths
		default:
			// created_at DESC, newest id first on ties
			if a.CreatedAt.Equal(b.CreatedAt) {
				return a.ID > b.ID
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
		if query.Descending() {
			return !less
		}
		return less
	})

	return paginate(loans, query), int64(len(loans)), nil
}

func (r *loanRepository) FindByStatus(ctx context.Context, status string) ([]models.Loan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var loans []models.Loan
	for _, loan := range r.s.loans {
		if loan.Status == status && loan.DiscardedAt == nil {
			loans = append(loans, loan)
		}
	}
	sort.Slice(loans, func(i, j int) bool { return loans[i].ID < loans[j].ID })
	return loans, nil
}

// Payments

type paymentRepository struct {
	s *store
}

func (r *paymentRepository) FindByReference(ctx context.Context, reference string) (*models.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.payments {
		if p.Reference == reference {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *paymentRepository) byLoan(loanID uint) []models.Payment {
	var payments []models.Payment
	for _, p := range r.s.payments {
		if p.LoanID == loanID {
			payments = append(payments, p)
		}
	}
	sort.SliceStable(payments, func(i, j int) bool {
		if payments[i].PaidAt.Equal(payments[j].PaidAt) {
			return payments[i].ID < payments[j].ID
		}
		return payments[i].PaidAt.Before(payments[j].PaidAt)
	})
	return payments
}

func (r *paymentRepository) FindByLoan(ctx context.Context, loanID uint) ([]models.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.byLoan(loanID), nil
}

func (r *paymentRepository) ListByLoan(ctx context.Context, loanID uint, query *repository.ListQuery) ([]models.Payment, int64, error) {
	query.Normalize()
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var payments []models.Payment
	for _, p := range r.byLoan(loanID) {
		if method := query.Filters["method"]; method != "" && p.Method != method {
			continue
		}
		payments = append(payments, p)
	}

	switch query.SortBy {
	case "amount":
		sort.SliceStable(payments, func(i, j int) bool {
			if query.Descending() {
				return payments[i].Amount.GreaterThan(payments[j].Amount)
			}
			return payments[i].Amount.LessThan(payments[j].Amount)
		})
	case "paid_at", "created_at":
		if query.Descending() {
			for i, j := 0, len(payments)-1; i < j; i, j = i+1, j-1 {
				payments[i], payments[j] = payments[j], payments[i]
			}
		}
	}

	return paginate(payments, query), int64(len(payments)), nil
}

func (r *paymentRepository) CountByLoan(ctx context.Context, loanID uint) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var count int64
	for _, p := range r.s.payments {
		if p.LoanID == loanID {
			count++
		}
	}
	return count, nil
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := payment.BeforeCreate(nil); err != nil {
		return err
	}
	for _, p := range r.s.payments {
		if p.Reference == payment.Reference {
			return repository.ErrDuplicate
		}
	}
	payment.ID = r.s.id("payments")
	payment.CreatedAt = r.s.now()
	r.s.payments = append(r.s.payments, *payment)
	return nil
}

// Installments

type installmentRepository struct {
	s *store
}

func (r *installmentRepository) FindByLoan(ctx context.Context, loanID uint) ([]models.Installment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]models.Installment(nil), r.s.installments[loanID]...), nil
}

func (r *installmentRepository) ReplaceForLoan(ctx context.Context, loanID uint, rows []models.Installment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored := make([]models.Installment, len(rows))
	for i := range rows {
		rows[i].ID = r.s.id("installments")
		rows[i].LoanID = loanID
		rows[i].CreatedAt = r.s.now()
		stored[i] = rows[i]
	}
	sort.Slice(stored, func(i, j int) bool { return stored[i].Sequence < stored[j].Sequence })
	r.s.installments[loanID] = stored
	return nil
}

// Transitions

type transitionRepository struct {
	s *store
}

func (r *transitionRepository) Create(ctx context.Context, transition *models.LoanTransition) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	transition.ID = r.s.id("loan_transitions")
	transition.CreatedAt = r.s.now()
	r.s.transitions = append(r.s.transitions, *transition)
	return nil
}

func (r *transitionRepository) FindByLoan(ctx context.Context, loanID uint) ([]models.LoanTransition, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var transitions []models.LoanTransition
	for _, t := range r.s.transitions {
		if t.LoanID == loanID {
			transitions = append(transitions, t)
		}
	}
	return transitions, nil
}

// Audit logs

type auditRepository struct {
	s *store
}

func (r *auditRepository) Create(ctx context.Context, log *models.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	log.ID = r.s.id("audit_logs")
	log.CreatedAt = r.s.now()
	r.s.audits = append(r.s.audits, *log)
	return nil
}

func (r *auditRepository) List(ctx context.Context, query *repository.ListQuery) ([]models.AuditLog, int64, error) {
	query.Normalize()
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var logs []models.AuditLog
	// Newest first
	for i := len(r.s.audits) - 1; i >= 0; i-- {
		log := r.s.audits[i]
		if query.Search != "" && !strings.Contains(strings.ToLower(log.Details), strings.ToLower(query.Search)) {
			continue
		}
		if v := query.Filters["entity"]; v != "" && log.Entity != v {
			continue
		}
		if v := query.Filters["action"]; v != "" && log.Action != v {
			continue
		}
		if !matchesUint(query.Filters["entity_id"], log.EntityID) || !matchesUint(query.Filters["actor_id"], log.ActorID) {
			continue
		}
		logs = append(logs, log)
	}

	return paginate(logs, query), int64(len(logs)), nil
}
