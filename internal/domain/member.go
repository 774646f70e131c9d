package domain

// Member is the subset of an account record this service reads.
// Verification holds the encoded blob exactly as stored; decode it with DecodeVerification.
type Member struct {
	UserID       int64   `json:"user_id" dynamodbav:"user_id"`
	Username     string  `json:"username" dynamodbav:"username"`
	Email        string  `json:"email" dynamodbav:"email"`
	Verification *string `json:"verification" dynamodbav:"verification"`
}

// Caller is the identity attached to a request by the session middleware.
// SignedIn is false for anonymous requests; UserID and Username are then zero.
type Caller struct {
	UserID   int64
	Username string
	SignedIn bool
}
