package enums

import "fmt"

// PrincipalKind distinguishes customer tokens from staff tokens.
type PrincipalKind string

const (
	PrincipalKindCustomer PrincipalKind = "customer"
	PrincipalKindStaff    PrincipalKind = "staff"
)

var validPrincipalKinds = []PrincipalKind{
	PrincipalKindCustomer,
	PrincipalKindStaff,
}

// String implements fmt.Stringer.
func (p PrincipalKind) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PrincipalKind.
func (p PrincipalKind) IsValid() bool {
	for _, candidate := range validPrincipalKinds {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePrincipalKind converts raw input into a PrincipalKind.
func ParsePrincipalKind(value string) (PrincipalKind, error) {
	for _, candidate := range validPrincipalKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid principal kind %q", value)
}
