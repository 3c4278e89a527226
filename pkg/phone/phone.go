// Package phone canonicalizes Kenyan mobile numbers into the international
// form the M-Pesa gateway requires.
package phone

import (
	"fmt"
	"regexp"
)

const countryCode = "254"

var (
	nonDigits  = regexp.MustCompile(`[\s\-+()]`)
	bareLocal  = regexp.MustCompile(`^[17]\d{8}$`)
	validKenya = regexp.MustCompile(`^254[17]\d{8}$`)
)

// Normalize strips spaces, hyphens, plus signs and parentheses, then rewrites
// the number into 254XXXXXXXXX form. It never fails; validation is a separate
// step via IsValidKenyan.
func Normalize(number string) string {
	cleaned := nonDigits.ReplaceAllString(number, "")

	if len(cleaned) > 0 && cleaned[0] == '0' {
		cleaned = countryCode + cleaned[1:]
	}

	if bareLocal.MatchString(cleaned) {
		cleaned = countryCode + cleaned
	}

	return cleaned
}

// IsValidKenyan reports whether the number normalizes to a valid Safaricom or
// Airtel mobile number: 254, then 1 or 7, then eight more digits.
func IsValidKenyan(number string) bool {
	return validKenya.MatchString(Normalize(number))
}

// FormatDisplay renders a normalized number as "+254 712 345 678". Numbers
// that do not normalize to twelve digits are returned unchanged.
func FormatDisplay(number string) string {
	normalized := Normalize(number)
	if len(normalized) != 12 {
		return number
	}

	return fmt.Sprintf("+%s %s %s %s",
		normalized[0:3], normalized[3:6], normalized[6:9], normalized[9:])
}
