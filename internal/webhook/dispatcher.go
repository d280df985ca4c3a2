package webhook

import (
	"github.com/rs/zerolog"

	"github.com/noah-isme/checkout-api/internal/obs"
)

// State tracks where batch processing stands.
type State int

const (
	// Processing means the batch walk has not finished.
	Processing State = iota
	// AllAccepted means every item in the batch carried a valid signature.
	AllAccepted
	// Rejected means verification failed; no later items were examined.
	Rejected
)

func (s State) String() string {
	switch s {
	case Processing:
		return "processing"
	case AllAccepted:
		return "all_accepted"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Verdict is the dispatcher's decision for one batch. FailedIndex is the
// position of the first invalid item, or -1 when the batch was accepted.
type Verdict struct {
	State       State
	FailedIndex int
	Failed      *Notification
}

// Accepted reports whether the whole batch passed verification.
func (v Verdict) Accepted() bool {
	return v.State == AllAccepted
}

// NotificationVerifier authenticates a single notification.
type NotificationVerifier interface {
	Verify(n Notification) bool
}

// Dispatcher walks a notification batch in order, verifying each item. The
// walk stops at the first invalid item; an empty batch is trivially accepted.
type Dispatcher struct {
	Verifier NotificationVerifier
	Logger   zerolog.Logger
}

// Process returns the verdict for the batch. Accepted items are logged with
// their merchant reference and event code; that is the only side effect.
func (d *Dispatcher) Process(batch Batch) Verdict {
	for i, item := range batch.NotificationItems {
		n := item.NotificationRequestItem
		if !d.Verifier.Verify(n) {
			d.Logger.Warn().
				Int("index", i).
				Str("merchant_reference", n.MerchantReference).
				Str("event_code", n.EventCode).
				Str("psp_reference", n.PSPReference).
				Msg("notification failed verification")
			countItem("rejected")
			countBatch(Rejected)
			return Verdict{State: Rejected, FailedIndex: i, Failed: &n}
		}
		d.Logger.Info().
			Str("merchant_reference", n.MerchantReference).
			Str("event_code", n.EventCode).
			Msg("notification accepted")
		countItem("accepted")
	}
	countBatch(AllAccepted)
	return Verdict{State: AllAccepted, FailedIndex: -1}
}

func countItem(result string) {
	if obs.WebhookNotificationsTotal != nil {
		obs.WebhookNotificationsTotal.WithLabelValues(result).Inc()
	}
}

func countBatch(s State) {
	if obs.WebhookBatchesTotal != nil {
		obs.WebhookBatchesTotal.WithLabelValues(s.String()).Inc()
	}
}
