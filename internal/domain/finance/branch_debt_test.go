package finance

import (
	"testing"

	"github.com/assetflow/backend/internal/domain/maintenance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDebt(t *testing.T, amount int64) *BranchDebt {
	t.Helper()
	parts := maintenance.QuotedParts{{
		PartCode:  "PRT-SCREEN",
		PartName:  "Touch screen",
		Quantity:  decimal.NewFromInt(1),
		UnitPrice: decimal.NewFromInt(amount),
		Total:     decimal.NewFromInt(amount),
		Billable:  true,
	}}
	d, err := NewBranchDebt("DBT-20260830-0001", uuid.New(), uuid.New(), uuid.New(), "SN-001", decimal.NewFromInt(amount), parts)
	require.NoError(t, err)
	d.ClearDomainEvents()
	return d
}

func TestNewBranchDebt(t *testing.T) {
	t.Run("starts pending with full balance outstanding", func(t *testing.T) {
		d := newTestDebt(t, 100)
		assert.Equal(t, DebtPending, d.Status)
		assert.Equal(t, "100", d.OutstandingAmount.String())
		assert.True(t, d.PaidAmount.IsZero())
	})

	t.Run("rejects zero amount", func(t *testing.T) {
		_, err := NewBranchDebt("DBT-20260830-0002", uuid.New(), uuid.New(), uuid.New(), "SN-001", decimal.Zero, nil)
		assert.Error(t, err)
	})

	t.Run("rejects identical branches", func(t *testing.T) {
		b := uuid.New()
		_, err := NewBranchDebt("DBT-20260830-0003", b, b, uuid.New(), "SN-001", decimal.NewFromInt(10), nil)
		assert.Error(t, err)
	})
}

func TestBranchDebtRecordPayment(t *testing.T) {
	payer := uuid.New()

	t.Run("partial then full settlement", func(t *testing.T) {
		d := newTestDebt(t, 100)

		require.NoError(t, d.RecordPayment(decimal.NewFromInt(40), "RCPT-001", payer, ""))
		assert.Equal(t, DebtPartiallyPaid, d.Status)
		assert.Equal(t, "60", d.OutstandingAmount.String())

		require.NoError(t, d.RecordPayment(decimal.NewFromInt(60), "RCPT-002", payer, "final"))
		assert.Equal(t, DebtPaid, d.Status)
		assert.True(t, d.OutstandingAmount.IsZero())
		assert.NotNil(t, d.SettledAt)
		assert.Len(t, d.Payments, 2)
	})

	t.Run("overpayment rejected", func(t *testing.T) {
		d := newTestDebt(t, 50)
		err := d.RecordPayment(decimal.NewFromInt(51), "RCPT-003", payer, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds outstanding")
		assert.Equal(t, DebtPending, d.Status)
	})

	t.Run("payment after settlement rejected", func(t *testing.T) {
		d := newTestDebt(t, 10)
		require.NoError(t, d.RecordPayment(decimal.NewFromInt(10), "RCPT-004", payer, ""))
		assert.Error(t, d.RecordPayment(decimal.NewFromInt(1), "RCPT-005", payer, ""))
	})

	t.Run("receipt reference required", func(t *testing.T) {
		d := newTestDebt(t, 10)
		assert.Error(t, d.RecordPayment(decimal.NewFromInt(5), "", payer, ""))
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		d := newTestDebt(t, 10)
		assert.Error(t, d.RecordPayment(decimal.Zero, "RCPT-006", payer, ""))
		assert.Error(t, d.RecordPayment(decimal.NewFromInt(-5), "RCPT-007", payer, ""))
	})
}

func TestPaymentRecordsRoundTrip(t *testing.T) {
	d := newTestDebt(t, 30)
	require.NoError(t, d.RecordPayment(decimal.NewFromInt(30), "RCPT-010", uuid.New(), "wire"))

	value, err := d.Payments.Value()
	require.NoError(t, err)

	var restored PaymentRecords
	require.NoError(t, restored.Scan(value))
	require.Len(t, restored, 1)
	assert.Equal(t, "RCPT-010", restored[0].ReceiptReference)
	assert.True(t, restored[0].Amount.Equal(decimal.NewFromInt(30)))
}
