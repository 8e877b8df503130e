package payment

import (
	"strings"

	humanize "github.com/dustin/go-humanize"
)

var (
	ones  = []string{"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine"}
	teens = []string{"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen", "Seventeen", "Eighteen", "Nineteen"}
	tens  = []string{"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety"}
)

// AmountInWords spells a whole amount in English, e.g. 85000 is
// "Eighty Five Thousand".
func AmountInWords(n int64) string {
	if n == 0 {
		return "Zero"
	}
	if n < 0 {
		return "Minus " + AmountInWords(-n)
	}
	var words []string
	if n >= 1000000 {
		words = append(words, AmountInWords(n/1000000), "Million")
		n %= 1000000
	}
	if n >= 1000 {
		words = append(words, AmountInWords(n/1000), "Thousand")
		n %= 1000
	}
	if n >= 100 {
		words = append(words, ones[n/100], "Hundred")
		n %= 100
	}
	if n >= 20 {
		words = append(words, tens[n/10])
		n %= 10
	} else if n >= 10 {
		words = append(words, teens[n-10])
		n = 0
	}
	if n > 0 {
		words = append(words, ones[n])
	}
	return strings.Join(words, " ")
}

// InWords is the receipt line, "Five Thousand PKR only".
func InWords(n int64, currency string) string {
	return AmountInWords(n) + " " + currency + " only"
}

// FormatAmount renders an amount with thousands separators and its currency.
func FormatAmount(n int64, currency string) string {
	return currency + " " + humanize.Comma(n)
}
