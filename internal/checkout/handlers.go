package checkout

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/checkout-api/internal/common"
	"github.com/noah-isme/checkout-api/internal/gateway"
)

// Handler exposes the checkout HTTP endpoints backed by the gateway client.
type Handler struct {
	Svc       *Service
	ClientKey string
	Validate  *validator.Validate
	Logger    zerolog.Logger
}

type paymentMethodsReq struct {
	ShopperLocale string `json:"shopperLocale"`
	CountryCode   string `json:"countryCode"`
}

// PaymentMethods proxies the gateway's payment-methods listing.
func (h *Handler) PaymentMethods(w http.ResponseWriter, r *http.Request) {
	var req paymentMethodsReq
	if err := common.DecodeJSON(r, &req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid body", nil)
		return
	}
	raw, err := h.Svc.Gateway.PaymentMethods(r.Context(), req.ShopperLocale, req.CountryCode)
	if err != nil {
		h.gatewayError(w, r, err)
		return
	}
	common.JSONRaw(w, http.StatusOK, raw)
}

type sessionQuery struct {
	Currency    string `validate:"required,len=3,alpha"`
	Value       int64  `validate:"required,gt=0"`
	CountryCode string `validate:"required,len=2,alpha"`
}

type sessionResp struct {
	Response  json.RawMessage `json:"response"`
	ClientKey string          `json:"clientKey"`
}

// Sessions creates a hosted payment session from query parameters.
func (h *Handler) Sessions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	value, err := strconv.ParseInt(strings.TrimSpace(q.Get("value")), 10, 64)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "value must be an integer amount in minor units", nil)
		return
	}
	params := sessionQuery{
		Currency:    strings.TrimSpace(q.Get("currency")),
		Value:       value,
		CountryCode: strings.TrimSpace(q.Get("countryCode")),
	}
	if err := h.Validate.Struct(params); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}

	req := h.Svc.SessionRequest(params.Currency, params.Value, params.CountryCode)
	raw, err := h.Svc.Gateway.CreateSession(r.Context(), req)
	if err != nil {
		h.gatewayError(w, r, err)
		return
	}
	h.Logger.Info().Str("reference", req.Reference).Str("country", req.CountryCode).Msg("session created")
	common.JSON(w, http.StatusOK, sessionResp{Response: raw, ClientKey: h.ClientKey})
}

// Payments submits a payment and answers with a redirect descriptor.
func (h *Handler) Payments(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{}
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid body", nil)
		return
	}

	paymentID := h.Svc.NewReference()
	payload["merchantAccount"] = h.Svc.MerchantAccount
	payload["reference"] = paymentID
	payload["returnUrl"] = h.Svc.ReturnURL() + "?paymentId=" + paymentID

	result, err := h.Svc.Gateway.Payments(r.Context(), payload)
	if err != nil {
		h.gatewayError(w, r, err)
		return
	}
	h.Logger.Info().Str("payment_id", paymentID).Str("result_code", result.ResultCode).Msg("payment submitted")
	common.JSON(w, http.StatusOK, Describe(paymentID, result))
}

// PaymentDetails forwards additional payment details for a known payment id.
func (h *Handler) PaymentDetails(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{}
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid body", nil)
		return
	}
	paymentID, _ := payload["paymentId"].(string)
	if strings.TrimSpace(paymentID) == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "paymentId is required", nil)
		return
	}
	delete(payload, "paymentId")

	result, err := h.Svc.Gateway.PaymentDetails(r.Context(), payload)
	if err != nil {
		h.gatewayError(w, r, err)
		return
	}
	h.Logger.Info().Str("payment_id", paymentID).Str("result_code", result.ResultCode).Msg("payment details submitted")
	common.JSON(w, http.StatusOK, Describe(paymentID, result))
}

// ShopperRedirect handles the return leg of an external redirect flow and
// forwards the shopper to the matching result page. Gateway failures land on
// the error page; the shopper is never left without a response.
func (h *Handler) ShopperRedirect(w http.ResponseWriter, r *http.Request) {
	details := map[string]any{}
	if value := h.redirectParam(r, "redirectResult"); value != "" {
		details["redirectResult"] = value
	} else if value := h.redirectParam(r, "payload"); value != "" {
		details["payload"] = value
	}

	if len(details) == 0 {
		h.Logger.Warn().Str("path", r.URL.Path).Msg("shopper redirect without redirectResult or payload")
		http.Redirect(w, r, OutcomeError.Path(), http.StatusFound)
		return
	}

	result, err := h.Svc.Gateway.PaymentDetails(r.Context(), map[string]any{"details": details})
	if err != nil {
		h.Logger.Error().Err(err).Msg("shopper redirect details call failed")
		http.Redirect(w, r, OutcomeError.Path(), http.StatusFound)
		return
	}

	outcome := Resolve(result.ResultCode)
	h.Logger.Info().Str("result_code", result.ResultCode).Str("outcome", string(outcome)).Msg("shopper redirect resolved")
	http.Redirect(w, r, outcome.Path(), http.StatusFound)
}

func (h *Handler) redirectParam(r *http.Request, name string) string {
	if value := strings.TrimSpace(r.URL.Query().Get(name)); value != "" {
		return value
	}
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err == nil {
			return strings.TrimSpace(r.PostFormValue(name))
		}
	}
	return ""
}

func (h *Handler) gatewayError(w http.ResponseWriter, r *http.Request, err error) {
	var gerr *gateway.Error
	if errors.As(err, &gerr) {
		h.Logger.Warn().Int("status", gerr.Status).Str("message", gerr.Message).Msg("gateway rejected request")
		common.JSONError(w, gerr.Status, "GATEWAY_ERROR", gerr.Message, nil)
		return
	}
	h.Logger.Error().Err(err).Msg("gateway call failed")
	common.JSONError(w, http.StatusBadGateway, "GATEWAY_UNREACHABLE", "payment gateway unreachable", nil)
}
