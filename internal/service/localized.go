package service

import (
	"encoding/json"

	"BlogCMS/internal/i18n"
)

// localizedJSON encodes a locale->string map as the JSONB document stored
// in localized columns. Missing locales are stored as explicit nulls.
func localizedJSON(values map[string]string) string {
	doc := make(map[string]*string, len(i18n.Locales))
	for _, locale := range i18n.Locales {
		if v, ok := values[locale]; ok {
			value := v
			doc[locale] = &value
		} else {
			doc[locale] = nil
		}
	}
	enc, _ := json.Marshal(doc)
	return string(enc)
}

// requireLocalized adds a validation error for every supported locale
// missing from the map.
func requireLocalized(errs ValidationErrors, field string, values map[string]string) {
	for _, locale := range i18n.Locales {
		if values[locale] == "" {
			errs.Add(field+"."+locale, "required")
		}
	}
}
