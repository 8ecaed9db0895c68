package docs

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// symbols maps ISO-ish currency codes to their display symbol. The Sierra
// Leonean leone appears under every code in circulation since the 2022
// redenomination.
var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"CAD": "C$",
	"AUD": "A$",
	"SLL": "NLe ",
	"SLE": "NLe ",
	"NLE": "NLe ",
}

// Symbol resolves the display symbol for a currency code. Unknown codes pass
// through unchanged.
func Symbol(code string) string {
	if sym, ok := symbols[strings.ToUpper(code)]; ok {
		return sym
	}
	return code
}

// FormatAmount renders a monetary amount with its currency symbol using the
// locale's number conventions. Currency and locale are explicit parameters;
// nothing is read from ambient state.
func FormatAmount(code, locale string, amount float64) string {
	printer := message.NewPrinter(language.Make(locale))
	return printer.Sprintf("%s%.2f", Symbol(code), amount)
}
