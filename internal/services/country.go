package services

import "strings"

const defaultSettlementCurrency = "USD"

// countryCurrencies maps ISO 3166 alpha-2 codes (plus "EU") to the
// currency expenses in that country are settled in.
var countryCurrencies = map[string]string{
	"BD": "BDT",
	"US": "USD",
	"GB": "GBP",
	"EU": "EUR",
	"IN": "INR",
	"AE": "AED",
	"TR": "TRY",
	"TH": "THB",
	"MY": "MYR",
	"SG": "SGD",
	"JP": "JPY",
	"CA": "CAD",
	"AU": "AUD",
	"DE": "EUR",
	"FR": "EUR",
	"IT": "EUR",
	"ES": "EUR",
	"NL": "EUR",
	"CZ": "CZK",
	"CH": "CHF",
	"CN": "CNY",
	"ID": "IDR",
	"NP": "NPR",
	"LK": "LKR",
	"SA": "SAR",
}

// ResolveCurrency returns the settlement currency for a country code.
// Unknown or empty codes resolve to USD.
func ResolveCurrency(country string) string {
	if code, ok := countryCurrencies[strings.ToUpper(strings.TrimSpace(country))]; ok {
		return code
	}
	return defaultSettlementCurrency
}
