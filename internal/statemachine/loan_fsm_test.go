package statemachine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjperalta/lendera-api/internal/models"
)

var fixedNow = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

func newFSM(status string) (*LoanFSM, *models.Loan) {
	loan := &models.Loan{ID: 7, Status: status}
	lfsm := NewLoanFSM(loan)
	lfsm.now = func() time.Time { return fixedNow }
	return lfsm, loan
}

func TestLoanFSM_Approve(t *testing.T) {
	lfsm, loan := newFSM(models.LoanStatusPending)

	tr, err := lfsm.Approve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Transition{From: "pending", To: "active", Event: EventApprove, Reason: "loan approved"}, tr)
	assert.Equal(t, models.LoanStatusActive, loan.Status)
	require.NotNil(t, loan.ApprovedAt)
	assert.Equal(t, fixedNow, *loan.ApprovedAt)
}

func TestLoanFSM_Finish(t *testing.T) {
	t.Run("fully paid", func(t *testing.T) {
		lfsm, loan := newFSM(models.LoanStatusActive)

		tr, err := lfsm.Finish(context.Background(), true)
		require.NoError(t, err)
		assert.Equal(t, models.LoanStatusActive, tr.From)
		assert.Equal(t, models.LoanStatusFinished, tr.To)
		assert.Equal(t, models.LoanStatusFinished, loan.Status)
		require.NotNil(t, loan.FinishedAt)
	})

	t.Run("not fully paid", func(t *testing.T) {
		lfsm, loan := newFSM(models.LoanStatusActive)

		tr, err := lfsm.Finish(context.Background(), false)
		assert.Nil(t, tr)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidTransition))
		assert.Equal(t, models.LoanStatusActive, loan.Status)
		assert.Nil(t, loan.FinishedAt)
	})
}

func TestLoanFSM_Delete(t *testing.T) {
	t.Run("no payments", func(t *testing.T) {
		lfsm, loan := newFSM(models.LoanStatusPending)

		tr, err := lfsm.Delete(context.Background(), 0)
		require.NoError(t, err)
		assert.Equal(t, models.LoanStatusDeleted, tr.To)
		assert.Equal(t, models.LoanStatusDeleted, loan.Status)
		assert.True(t, loan.IsDiscarded())
	})

	t.Run("payments recorded", func(t *testing.T) {
		lfsm, loan := newFSM(models.LoanStatusPending)

		_, err := lfsm.Delete(context.Background(), 2)
		var transErr *InvalidTransitionError
		require.True(t, errors.As(err, &transErr))
		assert.Equal(t, models.LoanStatusPending, transErr.From)
		assert.Equal(t, EventDelete, transErr.Event)
		assert.Contains(t, transErr.Reason, "2 recorded payments")
		assert.Equal(t, models.LoanStatusPending, loan.Status)
	})
}

func TestLoanFSM_RejectsInvalidTransitions(t *testing.T) {
	tests := []struct {
		name   string
		status string
		fire   func(*LoanFSM) (*Transition, error)
	}{
		{"approve active", models.LoanStatusActive, func(l *LoanFSM) (*Transition, error) { return l.Approve(context.Background()) }},
		{"approve finished", models.LoanStatusFinished, func(l *LoanFSM) (*Transition, error) { return l.Approve(context.Background()) }},
		{"approve deleted", models.LoanStatusDeleted, func(l *LoanFSM) (*Transition, error) { return l.Approve(context.Background()) }},
		{"finish pending", models.LoanStatusPending, func(l *LoanFSM) (*Transition, error) { return l.Finish(context.Background(), true) }},
		{"finish finished", models.LoanStatusFinished, func(l *LoanFSM) (*Transition, error) { return l.Finish(context.Background(), true) }},
		{"delete active", models.LoanStatusActive, func(l *LoanFSM) (*Transition, error) { return l.Delete(context.Background(), 0) }},
		{"delete finished", models.LoanStatusFinished, func(l *LoanFSM) (*Transition, error) { return l.Delete(context.Background(), 0) }},
		{"delete deleted", models.LoanStatusDeleted, func(l *LoanFSM) (*Transition, error) { return l.Delete(context.Background(), 0) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lfsm, loan := newFSM(tt.status)
			before := *loan

			tr, err := tt.fire(lfsm)
			assert.Nil(t, tr)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTransition))

			var transErr *InvalidTransitionError
			require.True(t, errors.As(err, &transErr))
			assert.Equal(t, tt.status, transErr.From)

			assert.Equal(t, before, *loan)
			assert.Equal(t, tt.status, lfsm.Current())
		})
	}
}

func TestLoanFSM_AvailableEvents(t *testing.T) {
	tests := []struct {
		status string
		want   []string
	}{
		{models.LoanStatusPending, []string{EventApprove, EventDelete}},
		{models.LoanStatusActive, []string{EventFinish}},
		{models.LoanStatusFinished, []string{}},
		{models.LoanStatusDeleted, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			lfsm, _ := newFSM(tt.status)
			got := lfsm.AvailableEvents()
			assert.ElementsMatch(t, tt.want, got)
			for _, ev := range tt.want {
				assert.True(t, lfsm.Can(ev))
			}
		})
	}
}

func TestRecommendedEvent(t *testing.T) {
	ev, ok := RecommendedEvent(models.LoanStatusActive, true)
	assert.True(t, ok)
	assert.Equal(t, EventFinish, ev)

	_, ok = RecommendedEvent(models.LoanStatusActive, false)
	assert.False(t, ok)
	_, ok = RecommendedEvent(models.LoanStatusPending, true)
	assert.False(t, ok)
	_, ok = RecommendedEvent(models.LoanStatusFinished, true)
	assert.False(t, ok)
}
