package dashboard

import "strings"

// ResolveLocalizedValue selects the best translation for the provided locale and falls back to the supplied value.
// Keys are matched case-insensitively, and language-region pairs (`es-mx`) fall back to their
// base language (`es`) when present.
func ResolveLocalizedValue(values map[string]string, locale, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	for _, candidate := range localeCandidates(locale) {
		for key, value := range values {
			if strings.EqualFold(key, candidate) && value != "" {
				return value
			}
		}
	}
	return fallback
}

// TitleForLocale returns the page title for locale.
func (d PageDefinition) TitleForLocale(locale string) string {
	return ResolveLocalizedValue(d.TitleLocalized, locale, d.Title)
}

// TitleForLocale returns the mount title for locale.
func (m Mount) TitleForLocale(locale string) string {
	return ResolveLocalizedValue(m.TitleLocalized, locale, m.Title)
}

func (d *PageDefinition) normalizeLocalizedFields() {
	d.TitleLocalized = normalizeLocaleMap(d.TitleLocalized)
	for i := range d.Mounts {
		d.Mounts[i].TitleLocalized = normalizeLocaleMap(d.Mounts[i].TitleLocalized)
	}
}

func normalizeLocaleMap(values map[string]string) map[string]string {
	if len(values) == 0 {
		return nil
	}
	normalized := make(map[string]string, len(values))
	for key, value := range values {
		key = normalizeLocale(key)
		if key == "" || value == "" {
			continue
		}
		normalized[key] = value
	}
	return normalized
}

// localeCandidates lists the exact locale, its base language, then "default".
func localeCandidates(locale string) []string {
	locale = normalizeLocale(strings.ReplaceAll(locale, "_", "-"))
	if locale == "" {
		return []string{"default"}
	}
	candidates := []string{locale}
	if idx := strings.Index(locale, "-"); idx > 0 {
		candidates = append(candidates, locale[:idx])
	}
	return append(candidates, "default")
}

func normalizeLocale(locale string) string {
	return strings.TrimSpace(strings.ToLower(locale))
}
