// Package i18n provides the label catalogs used for option and series labels.
// Catalogs are embedded TOML files, one per language, flattened into dotted
// keys such as "stat.confirmed" or "chart.type.daily".
package i18n

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

//go:embed catalogs/*.toml
var catalogFS embed.FS

// DefaultLanguage is used when no language is requested.
const DefaultLanguage = "ko"

// Translator looks up a label by key. Unknown keys are returned unchanged.
type Translator interface {
	T(key string) string
	Language() string
}

// Catalog is a flattened label table for one language.
type Catalog struct {
	lang   string
	labels map[string]string
}

// T returns the label for key, or key itself when the catalog has no entry.
func (c *Catalog) T(key string) string {
	if v, ok := c.labels[key]; ok {
		return v
	}
	return key
}

// Language returns the catalog's language tag.
func (c *Catalog) Language() string {
	return c.lang
}

// Keys returns every key in the catalog, sorted.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.labels))
	for k := range c.labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var (
	cacheMu  sync.Mutex
	catalogs = map[string]*Catalog{}
)

// Load returns the catalog for lang, parsing it on first use.
func Load(lang string) (*Catalog, error) {
	if lang == "" {
		lang = DefaultLanguage
	}

	cacheMu.Lock()
	defer cacheMu.Unlock()
	if c, ok := catalogs[lang]; ok {
		return c, nil
	}

	data, err := catalogFS.ReadFile("catalogs/" + lang + ".toml")
	if err != nil {
		return nil, fmt.Errorf("unknown language %q", lang)
	}
	c, err := Parse(lang, string(data))
	if err != nil {
		return nil, err
	}
	catalogs[lang] = c
	return c, nil
}

// Parse decodes a TOML label document into a catalog.
func Parse(lang, doc string) (*Catalog, error) {
	var raw map[string]any
	if _, err := toml.Decode(doc, &raw); err != nil {
		return nil, fmt.Errorf("decode %s catalog: %w", lang, err)
	}
	labels := make(map[string]string)
	if err := flatten("", raw, labels); err != nil {
		return nil, fmt.Errorf("%s catalog: %w", lang, err)
	}
	return &Catalog{lang: lang, labels: labels}, nil
}

func flatten(prefix string, in map[string]any, out map[string]string) error {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case string:
			out[key] = val
		case map[string]any:
			if err := flatten(key, val, out); err != nil {
				return err
			}
		default:
			return fmt.Errorf("key %s: expected string or table, got %T", key, v)
		}
	}
	return nil
}

// Languages lists the embedded catalog languages.
func Languages() []string {
	entries, err := catalogFS.ReadDir("catalogs")
	if err != nil {
		return nil
	}
	var langs []string
	for _, e := range entries {
		langs = append(langs, strings.TrimSuffix(e.Name(), ".toml"))
	}
	sort.Strings(langs)
	return langs
}

// Static is a Translator backed by a plain map, for tests and fixed tables.
type Static map[string]string

// T returns the label for key, or key itself.
func (s Static) T(key string) string {
	if v, ok := s[key]; ok {
		return v
	}
	return key
}

// Language returns an empty tag.
func (s Static) Language() string { return "" }
