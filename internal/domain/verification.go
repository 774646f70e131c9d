package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// VerificationComplete is the blob written once the confirmation path retires the code.
const VerificationComplete = `"complete"`

// VerificationState is the decoded form of a member's verification blob.
// Code is issued once at account creation and never changed by this service.
type VerificationState struct {
	Verified bool    `json:"verified"`
	Code     *string `json:"code"`
	Complete bool    `json:"-"`
}

// Done reports whether verification has finished. A done state is terminal.
func (s VerificationState) Done() bool {
	return s.Verified || s.Complete
}

// HasCode reports whether a non-empty code is present.
func (s VerificationState) HasCode() bool {
	return s.Code != nil && *s.Code != ""
}

// DecodeVerification parses a stored verification blob.
// A nil blob returns (nil, nil): the state is missing, which callers treat as an invariant violation.
func DecodeVerification(raw *string) (*VerificationState, error) {
	if raw == nil {
		return nil, nil
	}
	b := bytes.TrimSpace([]byte(*raw))
	if string(b) == VerificationComplete {
		return &VerificationState{Complete: true}, nil
	}
	if len(b) == 0 || b[0] != '{' {
		return nil, fmt.Errorf("decode verification %q: %w", *raw, ErrInvalidVerification)
	}
	var s VerificationState
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode verification: %v: %w", err, ErrInvalidVerification)
	}
	return &s, nil
}

// Encode returns the blob form of s, suitable for storage.
func (s VerificationState) Encode() (string, error) {
	if s.Complete {
		return VerificationComplete, nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
