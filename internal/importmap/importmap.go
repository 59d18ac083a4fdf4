// Package importmap implements import map matching: bare and URL-like
// specifiers are mapped through "imports" and per-referrer "scopes". Maps
// are validated once at construction; resolution itself never fails, it
// just reports whether a mapping applied.
package importmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

type ImportMap struct {
	Imports map[string]string
	Scopes  map[string]map[string]string

	// Scope keys ordered longest first so the most specific scope wins
	scopeKeys []string
}

// New validates the maps and prepares scope ordering. Keys must be non-empty
// and map to non-empty values, and a scope entry must differ from the
// top-level entry it shadows.
func New(imports map[string]string, scopes map[string]map[string]string) (*ImportMap, error) {
	if imports == nil {
		imports = map[string]string{}
	}
	if err := validateEntries(imports, ""); err != nil {
		return nil, err
	}
	scopeKeys := make([]string, 0, len(scopes))
	for scopeKey, entries := range scopes {
		if scopeKey == "" {
			return nil, fmt.Errorf("import map: scope key must not be empty")
		}
		if err := validateEntries(entries, scopeKey); err != nil {
			return nil, err
		}
		for key, value := range entries {
			if top, ok := imports[key]; ok && top == value {
				return nil, fmt.Errorf("import map: scope %q entry %q repeats the top-level mapping", scopeKey, key)
			}
		}
		scopeKeys = append(scopeKeys, scopeKey)
	}
	slices.SortFunc(scopeKeys, func(a, b string) bool {
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})
	return &ImportMap{Imports: imports, Scopes: scopes, scopeKeys: scopeKeys}, nil
}

func validateEntries(entries map[string]string, scope string) error {
	where := "imports"
	if scope != "" {
		where = fmt.Sprintf("scope %q", scope)
	}
	for key, value := range entries {
		if key == "" {
			return fmt.Errorf("import map: empty key in %s", where)
		}
		if value == "" {
			return fmt.Errorf("import map: key %q in %s maps to an empty value", key, where)
		}
		// A bare key covers the same subpaths as its trailing-slash form, so
		// carrying both makes prefix matches ambiguous
		if !strings.HasSuffix(key, "/") {
			if _, ok := entries[key+"/"]; ok {
				return fmt.Errorf("import map: keys %q and %q in %s are ambiguous for subpaths", key, key+"/", where)
			}
		}
	}
	return nil
}

type rawImportMap struct {
	Imports map[string]string            `json:"imports"`
	Scopes  map[string]map[string]string `json:"scopes"`
}

// Parse decodes and validates an import map document. Duplicate keys are an
// error even though JSON decoding would silently keep the last one.
func Parse(data []byte) (*ImportMap, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return New(nil, nil)
	}
	if err := checkDuplicateKeys(data); err != nil {
		return nil, err
	}
	var raw rawImportMap
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("import map: %w", err)
	}
	return New(raw.Imports, raw.Scopes)
}

func checkDuplicateKeys(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	return scanDuplicateKeys(dec)
}

func scanDuplicateKeys(dec *json.Decoder) error {
	token, err := dec.Token()
	if err != nil {
		return fmt.Errorf("import map: %w", err)
	}
	delim, isDelim := token.(json.Delim)
	if !isDelim {
		return nil
	}
	switch delim {
	case '{':
		seen := map[string]bool{}
		for dec.More() {
			keyToken, err := dec.Token()
			if err != nil {
				return fmt.Errorf("import map: %w", err)
			}
			key, _ := keyToken.(string)
			if seen[key] {
				return fmt.Errorf("import map: duplicate key %q", key)
			}
			seen[key] = true
			if err := scanDuplicateKeys(dec); err != nil {
				return err
			}
		}
		_, err = dec.Token() // consume "}"
	case '[':
		for dec.More() {
			if err := scanDuplicateKeys(dec); err != nil {
				return err
			}
		}
		_, err = dec.Token() // consume "]"
	}
	if err != nil {
		return fmt.Errorf("import map: %w", err)
	}
	return nil
}

// Resolve maps a specifier for a module at referrer. The most specific scope
// whose key prefixes the referrer is consulted first, then the next, then the
// top-level imports. The boolean reports whether any mapping applied.
func (im *ImportMap) Resolve(specifier string, referrer string) (string, bool) {
	for _, scopeKey := range im.scopeKeys {
		if strings.HasPrefix(referrer, scopeKey) {
			if result, ok := resolveWith(im.Scopes[scopeKey], specifier); ok {
				return result, true
			}
		}
	}
	return resolveWith(im.Imports, specifier)
}

// resolveWith applies one imports object: exact matches win, then the longest
// matching prefix. A trailing-slash key matches any specifier it prefixes; a
// bare key additionally covers subpaths, so "react" also maps "react/x".
func resolveWith(entries map[string]string, specifier string) (string, bool) {
	if value, ok := entries[specifier]; ok {
		return value, true
	}
	bestKey := ""
	bestValue := ""
	for key, value := range entries {
		switch {
		case strings.HasSuffix(key, "/"):
			if strings.HasPrefix(specifier, key) && len(key) > len(bestKey) {
				bestKey, bestValue = key, value
			}
		default:
			if strings.HasPrefix(specifier, key+"/") && len(key)+1 > len(bestKey) {
				bestKey, bestValue = key+"/", strings.TrimSuffix(value, "/")+"/"
			}
		}
	}
	if bestKey == "" {
		return "", false
	}
	return bestValue + specifier[len(bestKey):], true
}
