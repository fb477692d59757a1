package lang

import (
	"log/slog"

	"golang.org/x/text/language"
)

// CanonicalLocale parses tag as a BCP 47 language tag and returns its
// canonical form.
func CanonicalLocale(tag string) (string, error) {
	t, err := language.Parse(tag)
	if err != nil {
		return "", ErrInvalidLocale.With(slog.String("locale", tag)).Wrap(err)
	}

	return t.String(), nil
}

// MatchLocale picks the entry of available that best serves the requested
// locale, so that a request for "de-AT" is served by "de". It reports false
// if requested is not a valid tag or nothing available is close enough.
func MatchLocale(requested string, available []string) (string, bool) {
	for _, a := range available {
		if a == requested {
			return a, true
		}
	}

	req, err := language.Parse(requested)
	if err != nil {
		return "", false
	}

	tags := make([]language.Tag, 0, len(available))
	names := make([]string, 0, len(available))

	for _, a := range available {
		t, err := language.Parse(a)
		if err != nil {
			continue
		}

		tags = append(tags, t)
		names = append(names, a)
	}

	if len(tags) == 0 {
		return "", false
	}

	_, index, conf := language.NewMatcher(tags).Match(req)
	if conf == language.No {
		return "", false
	}

	return names[index], true
}
