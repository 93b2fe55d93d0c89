package enums

import "fmt"

// AmigoStatus maps to the amigo_status enum in Postgres.
type AmigoStatus string

const (
	AmigoStatusPending AmigoStatus = "pending"
	AmigoStatusActive  AmigoStatus = "active"
)

var validAmigoStatuses = []AmigoStatus{
	AmigoStatusPending,
	AmigoStatusActive,
}

// IsValid reports whether the value is a known AmigoStatus.
func (a AmigoStatus) IsValid() bool {
	for _, candidate := range validAmigoStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAmigoStatus converts raw input into an AmigoStatus.
func ParseAmigoStatus(value string) (AmigoStatus, error) {
	for _, candidate := range validAmigoStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid amigo status %q", value)
}
