package finance

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/assetflow/backend/internal/domain/maintenance"
	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DebtStatus is the settlement state of an inter-branch debt
type DebtStatus string

const (
	DebtPending       DebtStatus = "PENDING"
	DebtPartiallyPaid DebtStatus = "PARTIALLY_PAID"
	DebtPaid          DebtStatus = "PAID"
)

// IsValid checks if the debt status is valid
func (s DebtStatus) IsValid() bool {
	switch s {
	case DebtPending, DebtPartiallyPaid, DebtPaid:
		return true
	}
	return false
}

// PaymentRecord is one payment applied against a debt
type PaymentRecord struct {
	ID               uuid.UUID       `json:"id"`
	Amount           decimal.Decimal `json:"amount"`
	ReceiptReference string          `json:"receipt_reference"`
	PaidBy           uuid.UUID       `json:"paid_by"`
	PaidAt           time.Time       `json:"paid_at"`
	Notes            string          `json:"notes,omitempty"`
}

// PaymentRecords is the payment history, stored as JSONB
type PaymentRecords []PaymentRecord

// Value implements the driver.Valuer interface for database storage
func (p PaymentRecords) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the sql.Scanner interface for database retrieval
func (p *PaymentRecords) Scan(value interface{}) error {
	if value == nil {
		*p = PaymentRecords{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into PaymentRecords", value)
	}
	return json.Unmarshal(data, p)
}

// BranchDebt is what an asset's owning branch owes the repairing center for
// billable parts. Exactly one debt is created per settled repair job; the
// quoted lines are frozen into the parts snapshot at creation time.
type BranchDebt struct {
	shared.AuditedAggregateRoot
	DebtNumber        string
	DebtorBranchID    uuid.UUID
	CreditorBranchID  uuid.UUID
	AssignmentID      uuid.UUID
	SerialNumber      string
	Amount            decimal.Decimal
	PaidAmount        decimal.Decimal
	OutstandingAmount decimal.Decimal
	Status            DebtStatus
	PartsSnapshot     maintenance.QuotedParts
	Payments          PaymentRecords
	SettledAt         *time.Time
}

// NewBranchDebt creates a debt from a settled repair job
func NewBranchDebt(debtNumber string, debtorBranchID, creditorBranchID, assignmentID uuid.UUID, serialNumber string, amount decimal.Decimal, parts maintenance.QuotedParts) (*BranchDebt, error) {
	if debtNumber == "" {
		return nil, shared.NewDomainError("INVALID_DEBT_NUMBER", "Debt number cannot be empty")
	}
	if debtorBranchID == creditorBranchID {
		return nil, shared.NewDomainError("INVALID_BRANCHES", "Debtor and creditor branches must differ")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Debt amount must be positive")
	}

	d := &BranchDebt{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(),
		DebtNumber:           debtNumber,
		DebtorBranchID:       debtorBranchID,
		CreditorBranchID:     creditorBranchID,
		AssignmentID:         assignmentID,
		SerialNumber:         serialNumber,
		Amount:               amount,
		PaidAmount:           decimal.Zero,
		OutstandingAmount:    amount,
		Status:               DebtPending,
		PartsSnapshot:        parts,
		Payments:             PaymentRecords{},
	}
	d.AddDomainEvent(NewDebtCreatedEvent(d))
	return d, nil
}

// RecordPayment applies a payment against the outstanding balance.
// Overpayment is rejected; the status is recomputed from the balance.
func (d *BranchDebt) RecordPayment(amount decimal.Decimal, receiptReference string, paidBy uuid.UUID, notes string) error {
	if d.Status == DebtPaid {
		return shared.NewDomainError("DEBT_ALREADY_PAID", "Debt is already fully settled")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.GreaterThan(d.OutstandingAmount) {
		return shared.NewDomainError("PAYMENT_EXCEEDS_OUTSTANDING",
			fmt.Sprintf("Payment %s exceeds outstanding balance %s", amount, d.OutstandingAmount))
	}
	if receiptReference == "" {
		return shared.NewDomainError("RECEIPT_REQUIRED", "A payment must carry a receipt reference")
	}

	now := time.Now()
	d.Payments = append(d.Payments, PaymentRecord{
		ID:               uuid.New(),
		Amount:           amount,
		ReceiptReference: receiptReference,
		PaidBy:           paidBy,
		PaidAt:           now,
		Notes:            notes,
	})
	d.PaidAmount = d.PaidAmount.Add(amount)
	d.OutstandingAmount = d.Amount.Sub(d.PaidAmount)

	if d.OutstandingAmount.IsZero() {
		d.Status = DebtPaid
		d.SettledAt = &now
		d.AddDomainEvent(NewDebtSettledEvent(d))
	} else {
		d.Status = DebtPartiallyPaid
	}
	d.UpdatedAt = now
	return nil
}

// IsSettled reports whether the debt is fully paid
func (d *BranchDebt) IsSettled() bool {
	return d.Status == DebtPaid
}
