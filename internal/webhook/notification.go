// Package webhook ingests the gateway's asynchronous payment notifications.
// Every inbound batch is authenticated item by item with a keyed HMAC check
// before anything is accepted; nothing in this package persists state.
package webhook

import "github.com/noah-isme/checkout-api/internal/gateway"

// Notification is a single event reported by the gateway.
type Notification struct {
	MerchantAccountCode string            `json:"merchantAccountCode"`
	MerchantReference   string            `json:"merchantReference"`
	PSPReference        string            `json:"pspReference"`
	OriginalReference   string            `json:"originalReference"`
	EventCode           string            `json:"eventCode"`
	Success             string            `json:"success"`
	Amount              gateway.Amount    `json:"amount"`
	EventDate           string            `json:"eventDate,omitempty"`
	Reason              string            `json:"reason,omitempty"`
	AdditionalData      map[string]string `json:"additionalData"`
}

// Signature returns the HMAC signature embedded in the notification, or ""
// when absent.
func (n Notification) Signature() string {
	if n.AdditionalData == nil {
		return ""
	}
	return n.AdditionalData["hmacSignature"]
}

// Item wraps a notification inside a batch, mirroring the gateway's envelope.
type Item struct {
	NotificationRequestItem Notification `json:"NotificationRequestItem"`
}

// Batch is the body of a webhook POST: an ordered sequence of notifications.
type Batch struct {
	Live              string `json:"live"`
	NotificationItems []Item `json:"notificationItems"`
}
