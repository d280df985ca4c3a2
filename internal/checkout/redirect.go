package checkout

// Outcome is the user-facing page a payment result maps to.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomePending Outcome = "pending"
	OutcomeFailed  Outcome = "failed"
	OutcomeError   Outcome = "error"
)

// Path returns the frontend route for the outcome.
func (o Outcome) Path() string {
	return "/result/" + string(o)
}

// Resolve maps a gateway result code to a user-facing outcome. The mapping is
// case-sensitive and total: any code it does not recognise, including the
// empty string, resolves to OutcomeError.
func Resolve(resultCode string) Outcome {
	switch resultCode {
	case "Authorised":
		return OutcomeSuccess
	case "Pending", "Received":
		return OutcomePending
	case "Refused":
		return OutcomeFailed
	default:
		return OutcomeError
	}
}
