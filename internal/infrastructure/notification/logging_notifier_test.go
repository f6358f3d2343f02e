package notification

import (
	"context"
	"testing"

	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggingNotifier_Notify(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	notifier := NewLoggingNotifier(zap.New(core))

	branchID := uuid.New()
	notifier.Notify(context.Background(), shared.Notification{
		BranchID: branchID,
		Type:     shared.NotificationTransferIncoming,
		Title:    "Incoming transfer",
		Message:  "3 assets dispatched from Almaty Central",
	})

	entries := logs.All()
	assert.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, branchID.String(), fields["branch_id"])
	assert.Equal(t, string(shared.NotificationTransferIncoming), fields["type"])
}

type recordingNotifier struct {
	received []shared.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n shared.Notification) {
	r.received = append(r.received, n)
}

func TestCompositeNotifier_FansOut(t *testing.T) {
	first := &recordingNotifier{}
	second := &recordingNotifier{}
	composite := NewCompositeNotifier(first, second)

	composite.Notify(context.Background(), shared.Notification{
		Type:  shared.NotificationLowStock,
		Title: "Stock below threshold",
	})

	assert.Len(t, first.received, 1)
	assert.Len(t, second.received, 1)
}
