package model

import "strconv"

// CreatorKey keeps creator IDs as decimal strings. SCMM uses 64-bit Steam
// IDs that overflow JSON-safe integers in some clients, so the rest of the
// system treats them as opaque strings.
func CreatorKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// FormatPriceUSD renders a cent amount as a dollar string for bot replies.
func FormatPriceUSD(cents int) string {
	return "$" + strconv.FormatFloat(float64(cents)/100, 'f', 2, 64)
}
