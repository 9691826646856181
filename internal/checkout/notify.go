package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// NotificationKind classifies a submission outcome for display.
type NotificationKind string

const (
	NotifySuccess  NotificationKind = "success"
	NotifyConflict NotificationKind = "conflict"
	NotifyFailure  NotificationKind = "failure"
)

// Messages shown for outcomes that do not carry server text.
const (
	successTitle   = "Compra finalizada"
	successMessage = "A compra foi realizada com sucesso."
	failureTitle   = "Erro ao finalizar compra"
	failureMessage = "Não foi possível finalizar a compra. Tente novamente."
)

// Notification is the user-facing summary of a resolved submission.
type Notification struct {
	Kind         NotificationKind `json:"kind"`
	Title        string           `json:"title"`
	Message      string           `json:"message"`
	OrderID      string           `json:"order_id,omitempty"`
	Total        decimal.Decimal  `json:"total"`
	SubmissionID string           `json:"submission_id"`
	At           time.Time        `json:"at"`
}

// Notifier receives one notification per resolved submission.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) {
	f(ctx, n)
}

// LatestNotifier keeps the most recent notification for polling clients.
type LatestNotifier struct {
	mu     sync.RWMutex
	latest *Notification
}

func (l *LatestNotifier) Notify(_ context.Context, n Notification) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.latest = &n
}

// Latest returns a copy of the last notification, if any.
func (l *LatestNotifier) Latest() (Notification, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.latest == nil {
		return Notification{}, false
	}
	return *l.latest, true
}
