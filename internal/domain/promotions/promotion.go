package promotions

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Promotion is a promotion as the remote service represents it on the wire.
type Promotion struct {
	ID            ID       `json:"id"`
	Title         string   `json:"title"`
	PromotionType string   `json:"promotion_type"`
	StartDate     WireDate `json:"start_date"`
	EndDate       WireDate `json:"end_date"`
	Active        bool     `json:"active"`
}

// ID is the service-assigned identifier. The service may encode it as a JSON
// number or a string; either way it is carried as text.
type ID string

func (id ID) String() string {
	return string(id)
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*id = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("promotion id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// WireDate keeps a date exactly as the service sent it (a JSON string or
// number) so it can be normalized for display later.
type WireDate struct {
	raw json.RawMessage
}

// NewWireDate wraps a date string.
func NewWireDate(value string) WireDate {
	raw, _ := json.Marshal(value)
	return WireDate{raw: raw}
}

// NewWireDateMillis wraps a Unix epoch millisecond timestamp.
func NewWireDateMillis(ms int64) WireDate {
	return WireDate{raw: json.RawMessage(fmt.Sprintf("%d", ms))}
}

func (d *WireDate) UnmarshalJSON(data []byte) error {
	d.raw = append(d.raw[:0], data...)
	return nil
}

func (d WireDate) MarshalJSON() ([]byte, error) {
	if len(d.raw) == 0 {
		return []byte("null"), nil
	}
	return d.raw, nil
}

// IsZero reports whether the service sent no value (absent or null).
func (d WireDate) IsZero() bool {
	return len(d.raw) == 0 || string(bytes.TrimSpace(d.raw)) == "null"
}

// Value decodes the raw value into a string, a json.Number, or nil.
func (d WireDate) Value() any {
	if d.IsZero() {
		return nil
	}

	var s string
	if err := json.Unmarshal(d.raw, &s); err == nil {
		return s
	}

	var n json.Number
	if err := json.Unmarshal(d.raw, &n); err == nil {
		return n
	}
	return string(d.raw)
}

// String returns the raw value as text, unquoted.
func (d WireDate) String() string {
	switch v := d.Value().(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
