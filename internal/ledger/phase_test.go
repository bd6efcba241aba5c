package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestComputePaymentPhase(t *testing.T) {
	tests := []struct {
		name     string
		totalDue int64
		paid     int64
		want     PaymentPhase
	}{
		{"zero due zero paid is no charge, not unpaid", 0, 0, PaymentNoCharge},
		{"zero due with payments still no charge", 0, 500, PaymentNoCharge},
		{"nothing paid", 10000, 0, PaymentUnpaid},
		{"partial", 10000, 4000, PaymentPartiallyPaid},
		{"exactly settled", 10000, 10000, PaymentFullyPaid},
		{"overpaid still fully paid", 10000, 12000, PaymentFullyPaid},
		{"one shilling short", 10000, 9999, PaymentPartiallyPaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputePaymentPhase(d(tt.totalDue), d(tt.paid)))
		})
	}
}

func TestCombineStatus(t *testing.T) {
	tests := []struct {
		name       string
		attendance AttendancePhase
		payment    PaymentPhase
		want       string
	}{
		{"attended partial", Attended, PaymentPartiallyPaid, "Attended - Partially Paid"},
		{"not attended unpaid", NotAttended, PaymentUnpaid, "Not Attended - Unpaid"},
		{"attended fully paid", Attended, PaymentFullyPaid, "Attended - Fully Paid"},
		{"no charge drops the payment suffix", NotAttended, PaymentNoCharge, "Not Attended"},
		{"no charge attended", Attended, PaymentNoCharge, "Attended"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CombineStatus(tt.attendance, tt.payment))
		})
	}
}

func TestAttendanceFromFlag(t *testing.T) {
	assert.Equal(t, Attended, AttendanceFromFlag(true))
	assert.Equal(t, NotAttended, AttendanceFromFlag(false))
}
