package segment

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Table extends the default separator set for one language.
//
// Example (tables/fr.yaml):
//
//	code: fr
//	separators: "«»‹›"
//	word_chars: ""
//
// Characters listed in word_chars are removed from the separator set, so a
// language can keep apostrophes or hyphens inside its words.
type Table struct {
	Code       string `yaml:"code"`
	Separators string `yaml:"separators"`
	WordChars  string `yaml:"word_chars"`
	// Split enables the dictionary-based word splitter for scripts written
	// without spaces. Only "kagome" is recognised; "none" turns off the
	// kagome default for ja.
	Split string `yaml:"split"`
}

// Classifier builds the classifier for this table.
func (t Table) Classifier() *Classifier {
	return newClassifier(t.Separators, t.WordChars)
}

// LoadTable reads a single YAML table file.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, err
	}
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Table{}, fmt.Errorf("parse table %s: %w", path, err)
	}
	if t.Code == "" {
		t.Code = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	t.Code = strings.ToLower(strings.TrimSpace(t.Code))
	return t, nil
}

// LoadTables reads every *.yaml / *.yml file in dir, keyed by language code.
// A missing directory yields no tables.
func LoadTables(dir string) (map[string]Table, error) {
	tables := make(map[string]Table)
	if dir == "" {
		return tables, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return tables, nil
		}
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		t, err := LoadTable(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		tables[t.Code] = t
	}
	return tables, nil
}
