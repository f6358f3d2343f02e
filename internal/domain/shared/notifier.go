package shared

import (
	"context"

	"github.com/google/uuid"
)

// NotificationType classifies branch notifications emitted by the engine.
type NotificationType string

const (
	NotificationTransferIncoming  NotificationType = "TRANSFER_INCOMING"
	NotificationTransferRejected  NotificationType = "TRANSFER_REJECTED"
	NotificationTransferCancelled NotificationType = "TRANSFER_CANCELLED"
	NotificationApprovalRequested NotificationType = "APPROVAL_REQUESTED"
	NotificationApprovalAnswered  NotificationType = "APPROVAL_ANSWERED"
	NotificationLowStock          NotificationType = "LOW_STOCK"
	NotificationDebtCreated       NotificationType = "DEBT_CREATED"
)

// Notification is the payload delivered to a branch.
type Notification struct {
	BranchID uuid.UUID
	Type     NotificationType
	Title    string
	Message  string
	Payload  map[string]interface{}
}

// Notifier delivers notifications to branches. Delivery is best-effort:
// implementations must never return an error that would roll back the
// business transaction; failures are logged and dropped.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}
