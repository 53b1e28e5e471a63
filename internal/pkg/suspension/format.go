package suspension

import (
	"time"

	"golang.org/x/text/language"
)

var (
	dateLocales = []language.Tag{
		language.English,
		language.AmericanEnglish,
		language.BritishEnglish,
		language.German,
		language.French,
		language.Spanish,
		language.Italian,
	}
	dateLayouts = []string{
		"Jan 2, 2006",
		"01/02/2006",
		"02/01/2006",
		"02.01.2006",
		"02/01/2006",
		"02/01/2006",
		"02/01/2006",
	}
	dateMatcher = language.NewMatcher(dateLocales)
)

// FormatSuspendedUntil renders a suspension end date for the locale negotiated
// from an Accept-Language header. Unknown locales get an ISO date.
func FormatSuspendedUntil(t time.Time, acceptLanguage string) string {
	t = t.UTC()
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return t.Format("2006-01-02")
	}

	_, idx, conf := dateMatcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(dateLayouts) {
		return t.Format("2006-01-02")
	}
	return t.Format(dateLayouts[idx])
}
