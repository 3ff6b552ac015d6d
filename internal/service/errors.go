package service

import "errors"

// DenialCode classifies why an administrative operation was refused.
type DenialCode string

const (
	DenialLookupFailed            DenialCode = "lookup_failed"
	DenialInsufficientPermissions DenialCode = "insufficient_permissions"
	DenialPrivilegeEscalation     DenialCode = "privilege_escalation_blocked"
	DenialPeerProtection          DenialCode = "peer_protection_blocked"
	DenialStoreFailed             DenialCode = "store_operation_failed"
)

// PolicyError is an expected, user-facing denial. The Reason string is
// surfaced verbatim so the UI can explain why, not just "forbidden".
type PolicyError struct {
	Code   DenialCode
	Reason string
}

func (e *PolicyError) Error() string {
	return e.Reason
}

func denial(code DenialCode, reason string) *PolicyError {
	return &PolicyError{Code: code, Reason: reason}
}

// AsPolicyError unwraps err into a PolicyError if it is one.
func AsPolicyError(err error) (*PolicyError, bool) {
	var policyErr *PolicyError
	if errors.As(err, &policyErr) {
		return policyErr, true
	}
	return nil, false
}
