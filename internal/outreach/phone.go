package outreach

import "strings"

// NormalizeNumber strips everything except digits and a leading +. Numbers
// without a country prefix get the configured default prepended.
func (c *Client) NormalizeNumber(number string) string {
	number = strings.TrimSpace(number)
	hasPlus := strings.HasPrefix(number, "+")

	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}
	if hasPlus {
		return "+" + digits
	}
	return c.defaultCountryCode + digits
}
