package validation

import "regexp"

// Currency codes are ISO 4217 style: exactly three uppercase letters.
var currencyRe = regexp.MustCompile(`^[A-Z]{3}$`)

func IsValidCurrency(code string) bool {
	return currencyRe.MatchString(code)
}

// Periods accepted by performance and history queries.
var validPeriods = map[string]bool{
	"1d": true, "7d": true, "1m": true, "3m": true, "1y": true, "all": true,
}

func IsValidPeriod(period string) bool {
	return validPeriods[period]
}
