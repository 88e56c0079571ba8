package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// OffsetDays carries a delivery offset as stored upstream: either a plain
// number of days or descriptive text ("Same Day", "1 day", "2 days", ...).
// The raw shape is preserved at the boundary; business logic only ever sees
// the result of Normalize.
type OffsetDays struct {
	number *int
	text   string
	set    bool
}

// OffsetFromInt builds a numeric offset value.
func OffsetFromInt(days int) OffsetDays {
	d := days
	return OffsetDays{number: &d, set: true}
}

// OffsetFromText builds a textual offset value.
func OffsetFromText(raw string) OffsetDays {
	return OffsetDays{text: raw, set: true}
}

// IsSet reports whether any raw value is present.
func (o OffsetDays) IsSet() bool {
	return o.set
}

// Raw returns the stored value for display/serialization.
func (o OffsetDays) Raw() string {
	if !o.set {
		return ""
	}
	if o.number != nil {
		return strconv.Itoa(*o.number)
	}
	return o.text
}

// Normalize converts the raw value to a non-negative day count. The second
// return is false only when a non-empty textual value carried no usable day
// information; the caller still receives 0 and may log the anomaly.
func (o OffsetDays) Normalize() (int, bool) {
	if !o.set {
		return 0, true
	}
	if o.number != nil {
		if *o.number < 0 {
			return 0, true
		}
		return *o.number, true
	}

	raw := strings.ToLower(strings.TrimSpace(o.text))
	if raw == "" {
		return 0, true
	}
	if raw == "0" || strings.Contains(raw, "same") {
		return 0, true
	}
	if strings.HasPrefix(raw, "1") || strings.Contains(raw, "1 day") {
		return 1, true
	}
	if strings.HasPrefix(raw, "2") || strings.Contains(raw, "2 day") {
		return 2, true
	}
	if days, ok := firstInteger(raw); ok {
		return days, true
	}
	return 0, false
}

func firstInteger(s string) (int, bool) {
	start := -1
	for i, r := range s {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			n, err := strconv.Atoi(s[start:i])
			if err != nil {
				return 0, false
			}
			return n, true
		}
	}
	if start >= 0 {
		n, err := strconv.Atoi(s[start:])
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// Scan implements sql.Scanner; rule tables store the offset as free text,
// legacy rows may surface it as a number.
func (o *OffsetDays) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*o = OffsetDays{}
		return nil
	case int64:
		*o = OffsetFromInt(int(v))
		return nil
	case float64:
		*o = OffsetFromInt(int(v))
		return nil
	case []byte:
		*o = OffsetFromText(string(v))
		return nil
	case string:
		*o = OffsetFromText(v)
		return nil
	default:
		return fmt.Errorf("unsupported offset value %T", value)
	}
}

// Value implements driver.Valuer.
func (o OffsetDays) Value() (driver.Value, error) {
	if !o.set {
		return nil, nil
	}
	return o.Raw(), nil
}

// GormDataType maps the union onto a text column.
func (OffsetDays) GormDataType() string {
	return "text"
}

// UnmarshalJSON accepts a JSON number, string, or null.
func (o *OffsetDays) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*o = OffsetDays{}
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*o = OffsetFromText(s)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*o = OffsetFromInt(int(n))
	return nil
}

// MarshalJSON writes the raw value back in its original shape.
func (o OffsetDays) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	if o.number != nil {
		return json.Marshal(*o.number)
	}
	return json.Marshal(o.text)
}
