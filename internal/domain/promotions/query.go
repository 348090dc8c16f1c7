package promotions

import (
	"net/url"
	"strings"
)

// Filters are the optional search inputs. Empty fields are not sent.
type Filters struct {
	Title         string
	PromotionType string
	Active        string
}

// Query encodes the non-empty filters as title, type, active (in that order).
// The promotion type is sent as "type", not "promotion_type".
func (f Filters) Query() string {
	params := []struct {
		key   string
		value string
	}{
		{"title", f.Title},
		{"type", f.PromotionType},
		{"active", f.Active},
	}

	parts := make([]string, 0, len(params))
	for _, p := range params {
		if p.value == "" {
			continue
		}
		parts = append(parts, p.key+"="+url.QueryEscape(p.value))
	}
	return strings.Join(parts, "&")
}
