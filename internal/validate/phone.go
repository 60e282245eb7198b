package validate

import "strings"

// NormalizePhone reduces free-form input to an Indian E.164 number.
// Anything with fewer than 10 digits is rejected; longer inputs keep
// their last 10 digits so "+91", "91" and "0" prefixes all collapse to
// the same number.
func NormalizePhone(input string) (string, bool) {
	var digits strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) < 10 {
		return "", false
	}
	return "+91" + d[len(d)-10:], true
}
