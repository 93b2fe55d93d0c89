package enums

import "fmt"

// BottleChangeType categorizes a bottle history entry.
type BottleChangeType string

const (
	BottleChangeTypeUpdate BottleChangeType = "update"
	BottleChangeTypeRefill BottleChangeType = "refill"
	BottleChangeTypeGift   BottleChangeType = "gift"
)

var validBottleChangeTypes = []BottleChangeType{
	BottleChangeTypeUpdate,
	BottleChangeTypeRefill,
	BottleChangeTypeGift,
}

// IsValid reports whether the value is a known BottleChangeType.
func (b BottleChangeType) IsValid() bool {
	for _, candidate := range validBottleChangeTypes {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBottleChangeType converts raw input into a BottleChangeType.
func ParseBottleChangeType(value string) (BottleChangeType, error) {
	for _, candidate := range validBottleChangeTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid bottle change type %q", value)
}
