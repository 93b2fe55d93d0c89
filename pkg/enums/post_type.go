package enums

import "fmt"

// PostType maps to the post_type enum in Postgres.
type PostType string

const (
	PostTypeEvent   PostType = "event"
	PostTypeMemo    PostType = "memo"
	PostTypeIntro   PostType = "intro"
	PostTypeMessage PostType = "message"
	PostTypeStaff   PostType = "staff"
)

var validPostTypes = []PostType{
	PostTypeEvent,
	PostTypeMemo,
	PostTypeIntro,
	PostTypeMessage,
	PostTypeStaff,
}

// IsValid reports whether the value is a known PostType.
func (p PostType) IsValid() bool {
	for _, candidate := range validPostTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePostType converts raw input into a PostType.
func ParsePostType(value string) (PostType, error) {
	for _, candidate := range validPostTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid post type %q", value)
}
