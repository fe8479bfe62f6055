package sqlite

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Timestamps are stored as fixed-width UTC text so that lexical order in
// SQL matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000Z"

func FormatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func FormatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}

	return FormatTime(*t)
}

func ParseTime(value string) (time.Time, error) {
	return time.Parse(timeLayout, value)
}

func ParseTimePtr(value sql.NullString) (*time.Time, error) {
	if !value.Valid {
		return nil, nil
	}

	t, err := ParseTime(value.String)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func EncodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}

	b, err := json.Marshal(tags)

	return string(b), err
}

func DecodeTags(value string) ([]string, error) {
	tags := []string{}

	if value == "" {
		return tags, nil
	}

	if err := json.Unmarshal([]byte(value), &tags); err != nil {
		return nil, err
	}

	return tags, nil
}

func StringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}

	s := value.String

	return &s
}

func NullableString(value *string) any {
	if value == nil {
		return nil
	}

	return *value
}
