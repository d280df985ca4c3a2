package checkout

import (
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
)

var resultTemplate = template.Must(template.New("result").Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Checkout — {{.Title}}</title></head>
<body>
<main>
<h1>{{.Title}}</h1>
<p>{{.Message}}</p>
<a href="/">Return to shop</a>
</main>
</body>
</html>
`))

type resultPage struct {
	Title   string
	Message string
}

var resultPages = map[Outcome]resultPage{
	OutcomeSuccess: {Title: "Payment successful", Message: "Your payment was authorised."},
	OutcomePending: {Title: "Payment pending", Message: "Your payment is being processed. You will be notified once it completes."},
	OutcomeFailed:  {Title: "Payment refused", Message: "Your payment was refused. Please try a different payment method."},
	OutcomeError:   {Title: "Something went wrong", Message: "We could not complete your payment. Please try again."},
}

// ResultPage renders the server-side page a shopper lands on after a payment
// attempt. Unknown outcomes render the error page with a 404.
func (h *Handler) ResultPage(w http.ResponseWriter, r *http.Request) {
	outcome := Outcome(chi.URLParam(r, "outcome"))
	page, ok := resultPages[outcome]
	status := http.StatusOK
	if !ok {
		page = resultPages[OutcomeError]
		status = http.StatusNotFound
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := resultTemplate.Execute(w, page); err != nil {
		h.Logger.Error().Err(err).Msg("render result page")
	}
}
