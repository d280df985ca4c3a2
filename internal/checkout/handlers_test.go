package checkout_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/checkout-api/internal/checkout"
	"github.com/noah-isme/checkout-api/internal/gateway"
)

func newHandler(t *testing.T, stub http.HandlerFunc) *checkout.Handler {
	t.Helper()
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)
	client := gateway.New(gateway.Config{
		APIKey:          "stub_api_key",
		MerchantAccount: "TestMerchant",
		BaseURL:         srv.URL,
	})
	return &checkout.Handler{
		Svc: &checkout.Service{
			Gateway:         client,
			MerchantAccount: "TestMerchant",
			ReturnURLBase:   "http://localhost:8080",
		},
		ClientKey: "test_client_key",
		Validate:  validator.New(),
		Logger:    zerolog.Nop(),
	}
}

func TestSessions(t *testing.T) {
	var got gateway.SessionRequest
	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sessions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"CS1","sessionData":"opaque"}`))
	})

	req := httptest.NewRequest(http.MethodPost, "/api/sessions?currency=EUR&value=1000&countryCode=NL", nil)
	rec := httptest.NewRecorder()
	h.Sessions(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "EUR", got.Amount.Currency)
	require.Equal(t, int64(1000), got.Amount.Value)
	require.Equal(t, "NL", got.CountryCode)
	require.Equal(t, "TestMerchant", got.MerchantAccount)
	require.NotEmpty(t, got.Reference)
	require.Equal(t, "http://localhost:8080/api/handleShopperRedirect", got.ReturnURL)

	var resp struct {
		Response  json.RawMessage `json:"response"`
		ClientKey string          `json:"clientKey"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "test_client_key", resp.ClientKey)
	require.JSONEq(t, `{"id":"CS1","sessionData":"opaque"}`, string(resp.Response))
}

func TestSessionsRejectsBadQuery(t *testing.T) {
	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("gateway must not be called for invalid input")
	})

	for _, query := range []string{
		"currency=EUR&value=abc&countryCode=NL",
		"currency=EURO&value=1000&countryCode=NL",
		"currency=EUR&value=1000&countryCode=NLD",
		"currency=EUR&value=-5&countryCode=NL",
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/sessions?"+query, nil)
		rec := httptest.NewRecorder()
		h.Sessions(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, "query %q", query)
	}
}

func TestPaymentsInternalRedirect(t *testing.T) {
	var sent map[string]any
	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payments", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"resultCode":"Authorised","pspReference":"881"}`))
	})

	body := strings.NewReader(`{"paymentMethod":{"type":"scheme"}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/payments", body)
	rec := httptest.NewRecorder()
	h.Payments(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "TestMerchant", sent["merchantAccount"])
	require.NotEmpty(t, sent["reference"])

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	paymentID, _ := resp["paymentId"].(string)
	require.NotEmpty(t, paymentID)
	require.Equal(t, sent["reference"], paymentID)
	require.Equal(t, "GET", resp["redirectMethod"])
	require.NotContains(t, resp, "redirectAction")

	link, _ := resp["redirectLink"].(map[string]any)
	require.Equal(t, "internal", link["type"])
	require.Equal(t, "checkout_payment_result", link["name"])
	params, _ := link["params"].(map[string]any)
	require.Equal(t, paymentID, params["paymentId"])
}

func TestPaymentsExternalRedirect(t *testing.T) {
	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"resultCode":"RedirectShopper","action":{"method":"GET","url":"https://x","data":{}}}`))
	})

	req := httptest.NewRequest(http.MethodPost, "/api/payments", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.Payments(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "GET", resp["redirectMethod"])
	require.Contains(t, resp, "redirectAction")
	require.Contains(t, resp, "redirectData")

	link, _ := resp["redirectLink"].(map[string]any)
	require.Equal(t, "external", link["type"])
	require.Equal(t, "https://x", link["href"])
}

func TestPaymentsPropagatesGatewayError(t *testing.T) {
	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"status":422,"errorCode":"100","message":"Amount missing"}`))
	})

	req := httptest.NewRequest(http.MethodPost, "/api/payments", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.Payments(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "Amount missing")
}

func TestPaymentDetailsKeepsPaymentID(t *testing.T) {
	var sent map[string]any
	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payments/details", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"resultCode":"Authorised"}`))
	})

	body := strings.NewReader(`{"paymentId":"pay-7","details":{"redirectResult":"abc"}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/payments-details", body)
	rec := httptest.NewRecorder()
	h.PaymentDetails(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, sent, "paymentId")
	require.Contains(t, sent, "details")

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "pay-7", resp["paymentId"])
}

func TestPaymentDetailsRequiresPaymentID(t *testing.T) {
	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("gateway must not be called without a paymentId")
	})
	req := httptest.NewRequest(http.MethodPost, "/api/payments-details", strings.NewReader(`{"details":{}}`))
	rec := httptest.NewRecorder()
	h.PaymentDetails(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShopperRedirect(t *testing.T) {
	cases := []struct {
		name       string
		resultCode string
		want       string
	}{
		{"authorised", "Authorised", "/result/success"},
		{"pending", "Pending", "/result/pending"},
		{"received", "Received", "/result/pending"},
		{"refused", "Refused", "/result/failed"},
		{"unknown", "SomethingOdd", "/result/error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var sent map[string]any
			h := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/payments/details", r.URL.Path)
				require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(map[string]any{"resultCode": tc.resultCode})
			})

			req := httptest.NewRequest(http.MethodGet, "/api/handleShopperRedirect?redirectResult=res-1", nil)
			rec := httptest.NewRecorder()
			h.ShopperRedirect(rec, req)

			require.Equal(t, http.StatusFound, rec.Code)
			require.Equal(t, tc.want, rec.Header().Get("Location"))
			details, _ := sent["details"].(map[string]any)
			require.Equal(t, "res-1", details["redirectResult"])
		})
	}
}

func TestShopperRedirectPostForm(t *testing.T) {
	var sent map[string]any
	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"resultCode":"Authorised"}`))
	})

	form := url.Values{"payload": {"pl-9"}}
	req := httptest.NewRequest(http.MethodPost, "/api/handleShopperRedirect", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ShopperRedirect(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/result/success", rec.Header().Get("Location"))
	details, _ := sent["details"].(map[string]any)
	require.Equal(t, "pl-9", details["payload"])
}

func TestShopperRedirectGatewayFailure(t *testing.T) {
	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	req := httptest.NewRequest(http.MethodGet, "/api/handleShopperRedirect?redirectResult=res-1", nil)
	rec := httptest.NewRecorder()
	h.ShopperRedirect(rec, req)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/result/error", rec.Header().Get("Location"))
}

func TestShopperRedirectMissingParams(t *testing.T) {
	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("gateway must not be called without redirect parameters")
	})
	req := httptest.NewRequest(http.MethodGet, "/api/handleShopperRedirect", nil)
	rec := httptest.NewRecorder()
	h.ShopperRedirect(rec, req)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/result/error", rec.Header().Get("Location"))
}

func TestResultPage(t *testing.T) {
	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) {})

	get := func(outcome string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/result/"+outcome, nil)
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("outcome", outcome)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
		rec := httptest.NewRecorder()
		h.ResultPage(rec, req)
		return rec
	}

	rec := get("success")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Payment successful")

	rec = get("bogus")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "Something went wrong")
}
