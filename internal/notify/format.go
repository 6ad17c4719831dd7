package notify

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var frPrinter = message.NewPrinter(language.French)

// FormatAmount renders a dinar amount the way French-locale documents
// print it, with a comma decimal separator and three decimals.
func FormatAmount(v float64) string {
	return frPrinter.Sprintf("%.3f", v)
}
