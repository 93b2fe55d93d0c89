package enums

import "fmt"

// CheckInStatus maps to the check_in_status enum in Postgres. A check-in is
// completed when a newer check-in supersedes it and ended when staff close it.
type CheckInStatus string

const (
	CheckInStatusActive    CheckInStatus = "active"
	CheckInStatusCompleted CheckInStatus = "completed"
	CheckInStatusEnded     CheckInStatus = "ended"
)

var validCheckInStatuses = []CheckInStatus{
	CheckInStatusActive,
	CheckInStatusCompleted,
	CheckInStatusEnded,
}

// IsValid reports whether the value is a known CheckInStatus.
func (c CheckInStatus) IsValid() bool {
	for _, candidate := range validCheckInStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the status may move to next. Only active
// rows move; both terminal states are final.
func (c CheckInStatus) CanTransitionTo(next CheckInStatus) bool {
	if c != CheckInStatusActive {
		return false
	}
	return next == CheckInStatusCompleted || next == CheckInStatusEnded
}

// ParseCheckInStatus converts raw input into a CheckInStatus.
func ParseCheckInStatus(value string) (CheckInStatus, error) {
	for _, candidate := range validCheckInStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid check-in status %q", value)
}
