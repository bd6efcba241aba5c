package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 5, 14, 30, 0, 0, time.FixedZone("EAT", 3*60*60))

func newLedger(totalDue int64, amounts ...int64) Ledger {
	l := Ledger{TotalDue: d(totalDue)}
	for i, a := range amounts {
		l.Installments = append(l.Installments, Installment{
			Amount:     d(a),
			OccurredAt: now.Add(time.Duration(i) * time.Hour),
		})
	}
	return l
}

func TestAddInstallment(t *testing.T) {
	t.Run("partial payment", func(t *testing.T) {
		l, tr, err := newLedger(10000).AddInstallment(d(4000), now)
		require.NoError(t, err)
		assert.Equal(t, TransitionInstallment, tr)
		assert.Equal(t, PaymentPartiallyPaid, l.Phase())
		assert.True(t, l.PaidToDate().Equal(d(4000)))
		assert.True(t, l.Remaining().Equal(d(6000)))
	})

	t.Run("completion fires on the settling installment", func(t *testing.T) {
		l, tr, err := newLedger(10000, 4000).AddInstallment(d(6000), now)
		require.NoError(t, err)
		assert.Equal(t, TransitionPaymentCompleted, tr)
		assert.Equal(t, PaymentFullyPaid, l.Phase())
	})

	t.Run("completion does not re-fire once fully paid", func(t *testing.T) {
		l, tr, err := newLedger(10000, 4000, 6000).AddInstallment(d(1), now)
		require.NoError(t, err)
		assert.Equal(t, TransitionInstallment, tr)
		assert.Equal(t, PaymentFullyPaid, l.Phase())
	})

	t.Run("rejects zero and negative amounts", func(t *testing.T) {
		orig := newLedger(10000, 4000)
		for _, amount := range []int64{0, -5} {
			l, _, err := orig.AddInstallment(d(amount), now)
			assert.ErrorIs(t, err, ErrInvalidAmount)
			assert.Equal(t, orig, l, "failed add must leave the ledger unchanged")
		}
	})

	t.Run("non-numeric input never parses into an amount", func(t *testing.T) {
		_, err := decimal.NewFromString("NaN")
		assert.Error(t, err)
	})

	t.Run("does not mutate the receiver", func(t *testing.T) {
		orig := newLedger(10000, 4000)
		_, _, err := orig.AddInstallment(d(6000), now)
		require.NoError(t, err)
		assert.Len(t, orig.Installments, 1)
		assert.True(t, orig.PaidToDate().Equal(d(4000)))
	})
}

func TestEditInstallment(t *testing.T) {
	t.Run("correction preserves timestamp and order", func(t *testing.T) {
		orig := newLedger(10000, 4000, 2000)
		l, tr, err := orig.EditInstallment(1, d(6000))
		require.NoError(t, err)
		assert.Equal(t, TransitionPaymentCompleted, tr)
		assert.Equal(t, orig.Installments[1].OccurredAt, l.Installments[1].OccurredAt)
		assert.True(t, l.Installments[0].Amount.Equal(d(4000)))
		assert.True(t, l.PaidToDate().Equal(d(10000)))
	})

	t.Run("regression to partially paid", func(t *testing.T) {
		l, tr, err := newLedger(10000, 4000, 6000).EditInstallment(1, d(1000))
		require.NoError(t, err)
		assert.Equal(t, TransitionInstallment, tr)
		assert.Equal(t, PaymentPartiallyPaid, l.Phase())
	})

	t.Run("over-edit reports negative remaining", func(t *testing.T) {
		l, _, err := newLedger(5000, 5000).EditInstallment(0, d(7000))
		require.NoError(t, err)
		assert.Equal(t, PaymentFullyPaid, l.Phase())
		assert.True(t, l.Remaining().Equal(d(-2000)), "overpayment must not be clamped")
	})

	t.Run("index out of range", func(t *testing.T) {
		orig := newLedger(10000, 4000)
		for _, idx := range []int{-1, 1, 5} {
			l, _, err := orig.EditInstallment(idx, d(100))
			assert.ErrorIs(t, err, ErrIndexOutOfRange)
			assert.Equal(t, orig, l)
		}
	})

	t.Run("invalid amount", func(t *testing.T) {
		orig := newLedger(10000, 4000)
		_, _, err := orig.EditInstallment(0, d(0))
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func TestDeleteInstallment(t *testing.T) {
	t.Run("deleting the only installment clears the ledger", func(t *testing.T) {
		l, cleared, err := newLedger(5000, 5000).DeleteInstallment(0)
		require.NoError(t, err)
		assert.True(t, cleared)
		assert.True(t, l.PaidToDate().IsZero())
		assert.Equal(t, PaymentUnpaid, l.Phase())
	})

	t.Run("fully paid regresses to partially paid", func(t *testing.T) {
		l, cleared, err := newLedger(10000, 4000, 6000).DeleteInstallment(1)
		require.NoError(t, err)
		assert.False(t, cleared)
		assert.Equal(t, PaymentPartiallyPaid, l.Phase())
		assert.True(t, l.PaidToDate().Equal(d(4000)))
	})

	t.Run("removes exactly the targeted amount", func(t *testing.T) {
		orig := newLedger(10000, 1000, 2000, 3000)
		l, _, err := orig.DeleteInstallment(1)
		require.NoError(t, err)
		assert.True(t, orig.PaidToDate().Sub(l.PaidToDate()).Equal(d(2000)))
		assert.Len(t, orig.Installments, 3, "receiver must stay intact")
	})

	t.Run("index out of range", func(t *testing.T) {
		orig := newLedger(10000, 4000)
		_, _, err := orig.DeleteInstallment(3)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	})
}

func TestProcessFullPayment(t *testing.T) {
	t.Run("settles the exact remainder", func(t *testing.T) {
		l, tr, err := newLedger(8000, 3000).ProcessFullPayment(now)
		require.NoError(t, err)
		assert.Equal(t, TransitionPaymentCompleted, tr)
		assert.Equal(t, PaymentFullyPaid, l.Phase())
		require.Len(t, l.Installments, 2)
		assert.True(t, l.Installments[1].Amount.Equal(d(5000)))
		assert.True(t, l.Remaining().IsZero())
	})

	t.Run("fails once nothing is owed", func(t *testing.T) {
		settled, _, err := newLedger(8000, 3000).ProcessFullPayment(now)
		require.NoError(t, err)
		_, _, err = settled.ProcessFullPayment(now)
		assert.ErrorIs(t, err, ErrNothingOwed)
	})

	t.Run("fails on a no-charge ledger", func(t *testing.T) {
		_, _, err := newLedger(0).ProcessFullPayment(now)
		assert.ErrorIs(t, err, ErrNothingOwed)
	})
}

// Re-deriving the phase from the installment sum must always agree with the
// phase reported after a chain of mutations.
func TestRederivationConsistency(t *testing.T) {
	l := newLedger(10000)
	var err error
	l, _, err = l.AddInstallment(d(2500), now)
	require.NoError(t, err)
	l, _, err = l.AddInstallment(d(2500), now)
	require.NoError(t, err)
	l, _, err = l.EditInstallment(0, d(7500))
	require.NoError(t, err)
	l, _, err = l.DeleteInstallment(1)
	require.NoError(t, err)

	assert.Equal(t, ComputePaymentPhase(l.TotalDue, l.PaidToDate()), l.Phase())
	assert.True(t, l.PaidToDate().Equal(d(7500)))
	assert.Equal(t, PaymentPartiallyPaid, l.Phase())
}
