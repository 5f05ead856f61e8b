// Package i18n serves user-facing message strings per locale.
package i18n

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Locales supported by the application; the first is the fallback.
var Locales = []string{"en", "it"}

const DefaultLocale = "en"

type node struct {
	value    string
	children map[string]*node
}

var (
	mu    sync.RWMutex
	dicts = map[string]map[string]*node{}
)

// Load reads <dir>/<locale>.yml for each supported locale. A missing file
// disables that locale's dictionary, not the application.
func Load(dir string) error {
	loaded := map[string]map[string]*node{}
	for _, locale := range Locales {
		path := filepath.Join(dir, locale+".yml")
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read locale file %s: %w", path, err)
		}
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("parse locale file %s: %w", path, err)
		}
		loaded[locale] = parseNodeMap(raw)
	}

	mu.Lock()
	dicts = loaded
	mu.Unlock()
	return nil
}

func parseNodeMap(raw map[string]any) map[string]*node {
	result := make(map[string]*node, len(raw))
	for key, val := range raw {
		switch v := val.(type) {
		case string:
			result[key] = &node{value: v}
		case map[string]any:
			result[key] = &node{children: parseNodeMap(v)}
		default:
			result[key] = &node{value: fmt.Sprintf("%v", v)}
		}
	}
	return result
}

// IsSupported reports whether the locale has a dictionary.
func IsSupported(locale string) bool {
	for _, l := range Locales {
		if l == locale {
			return true
		}
	}
	return false
}

// T resolves a dotted key ("post.created") in the locale's dictionary.
// Missing translations return the last key segment, never an error.
func T(locale, key string) string {
	mu.RLock()
	dict := dicts[locale]
	if dict == nil {
		dict = dicts[DefaultLocale]
	}
	mu.RUnlock()

	segments := strings.Split(key, ".")
	cur := dict
	var found *node
	for _, seg := range segments {
		if cur == nil {
			found = nil
			break
		}
		next, ok := cur[seg]
		if !ok {
			found = nil
			break
		}
		found = next
		cur = next.children
	}

	if found != nil && found.value != "" {
		return found.value
	}
	return segments[len(segments)-1]
}
