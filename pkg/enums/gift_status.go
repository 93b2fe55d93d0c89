package enums

import "fmt"

// GiftStatus maps to the gift_status enum in Postgres.
type GiftStatus string

const (
	GiftStatusScheduled GiftStatus = "scheduled"
	GiftStatusApplied   GiftStatus = "applied"
	GiftStatusCanceled  GiftStatus = "canceled"
)

var validGiftStatuses = []GiftStatus{
	GiftStatusScheduled,
	GiftStatusApplied,
	GiftStatusCanceled,
}

// IsValid reports whether the value is a known GiftStatus.
func (g GiftStatus) IsValid() bool {
	for _, candidate := range validGiftStatuses {
		if candidate == g {
			return true
		}
	}
	return false
}

// ParseGiftStatus converts raw input into a GiftStatus.
func ParseGiftStatus(value string) (GiftStatus, error) {
	for _, candidate := range validGiftStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid gift status %q", value)
}
