package domain

// DecisionKind classifies the outcome of a resend authorization check.
type DecisionKind int

const (
	DecisionAuthorized DecisionKind = iota
	DecisionUnauthorized
	DecisionAlreadyVerified
	DecisionAccountNotFound
	DecisionStateMissing
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionAuthorized:
		return "authorized"
	case DecisionUnauthorized:
		return "unauthorized"
	case DecisionAlreadyVerified:
		return "already_verified"
	case DecisionAccountNotFound:
		return "account_not_found"
	case DecisionStateMissing:
		return "state_missing"
	}
	return "unknown"
}

// Reasons carried by Unauthorized and StateMissing decisions.
const (
	ReasonNotSignedIn      = "not signed in"
	ReasonIdentityMismatch = "identity mismatch"
	ReasonMissingContext   = "missing caller context"
	ReasonStateMissing     = "verification state missing"
	ReasonStateUnreadable  = "verification state unreadable"
)

// Decision is computed per resend request and never persisted.
type Decision struct {
	Kind   DecisionKind
	Reason string
}

func Authorized() Decision { return Decision{Kind: DecisionAuthorized} }
func Unauthorized(reason string) Decision { return Decision{Kind: DecisionUnauthorized, Reason: reason} }
func AlreadyVerified() Decision { return Decision{Kind: DecisionAlreadyVerified} }
func AccountNotFound() Decision { return Decision{Kind: DecisionAccountNotFound} }
func StateMissing(reason string) Decision { return Decision{Kind: DecisionStateMissing, Reason: reason} }

// Allowed reports whether the request may proceed to dispatch.
func (d Decision) Allowed() bool { return d.Kind == DecisionAuthorized }
