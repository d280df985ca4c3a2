package checkout

import (
	"github.com/google/uuid"

	"github.com/noah-isme/checkout-api/internal/gateway"
)

// Service builds gateway payloads and translates gateway responses into the
// redirect descriptors the frontend acts on.
type Service struct {
	Gateway         *gateway.Client
	MerchantAccount string
	// ReturnURLBase is the public base URL shoppers are sent back to after an
	// external redirect flow.
	ReturnURLBase string
}

// NewReference generates the unique, immutable reference for a payment
// attempt. It doubles as the paymentId handed to the frontend.
func (s *Service) NewReference() string {
	return uuid.NewString()
}

// ReturnURL is the absolute URL of the shopper-redirect endpoint.
func (s *Service) ReturnURL() string {
	return s.ReturnURLBase + "/api/handleShopperRedirect"
}

// SessionRequest assembles a session creation payload with a fresh reference.
func (s *Service) SessionRequest(currency string, value int64, countryCode string) gateway.SessionRequest {
	return gateway.SessionRequest{
		Amount:          gateway.Amount{Currency: currency, Value: value},
		CountryCode:     countryCode,
		MerchantAccount: s.MerchantAccount,
		Reference:       s.NewReference(),
		ReturnURL:       s.ReturnURL(),
	}
}

// Describe derives the redirect descriptor for a gateway payment result.
// A result carrying an action becomes an external redirect the frontend must
// follow; anything else becomes an internal route keyed by the payment id.
func Describe(paymentID string, result gateway.PaymentResult) map[string]any {
	if len(result.Action) == 0 {
		return map[string]any{
			"paymentId":      paymentID,
			"redirectMethod": "GET",
			"redirectLink": map[string]any{
				"type":   "internal",
				"name":   "checkout_payment_result",
				"params": map[string]any{"paymentId": paymentID},
			},
		}
	}

	method, _ := result.Action["method"].(string)
	if method == "" {
		method = "GET"
	}
	url, _ := result.Action["url"].(string)
	data, ok := result.Action["data"].(map[string]any)
	if !ok {
		data = map[string]any{}
	}
	return map[string]any{
		"paymentId":      paymentID,
		"redirectAction": result.Action,
		"redirectMethod": method,
		"redirectLink": map[string]any{
			"type": "external",
			"href": url,
		},
		"redirectData": data,
	}
}
