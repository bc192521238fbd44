package enums

import "fmt"

// VerificationStatus maps to the verification_status enum in Postgres. It is
// the admin-controlled trust label on an offer; any price-changing upsert
// resets it to pending.
type VerificationStatus string

const (
	VerificationStatusPending  VerificationStatus = "pending"
	VerificationStatusVerified VerificationStatus = "verified"
	VerificationStatusRejected VerificationStatus = "rejected"
)

var validVerificationStatuses = []VerificationStatus{
	VerificationStatusPending,
	VerificationStatusVerified,
	VerificationStatusRejected,
}

// String implements fmt.Stringer.
func (v VerificationStatus) String() string {
	return string(v)
}

// IsValid reports whether the value matches the canonical verification_status enum.
func (v VerificationStatus) IsValid() bool {
	for _, candidate := range validVerificationStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the status machine permits moving to next
// via an admin decision. Pending may become verified or rejected; nothing
// else moves by decision.
func (v VerificationStatus) CanTransitionTo(next VerificationStatus) bool {
	return v == VerificationStatusPending &&
		(next == VerificationStatusVerified || next == VerificationStatusRejected)
}

// ParseVerificationStatus converts raw input into VerificationStatus.
func ParseVerificationStatus(value string) (VerificationStatus, error) {
	for _, candidate := range validVerificationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid verification status %q", value)
}
