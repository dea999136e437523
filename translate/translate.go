// Package translate formats user-facing messages for the process locale.
package translate

import (
	"log"
	"sync"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/message"
)

// fallback is used when the host reports no locales.
const fallback = "en-US"

var printer = sync.OnceValue(func() *message.Printer {
	locales, err := locale.GetLocales()
	if err != nil {
		// Package level error values are built during init, before any
		// structured logger can be installed.
		log.Printf("regvm: locale: %v", err)
	}

	if len(locales) == 0 {
		locales = []string{fallback}
	}

	return message.NewPrinter(message.MatchLanguage(locales...))
})

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer().Sprintf(key, args...)
}
