// Package prompts loads the prompt templates used by the LLM stages.
// Templates live in embedded JSON files, one file per stage, keyed by
// prompt name.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed *.json
var promptFS embed.FS

var (
	mu    sync.Mutex
	cache = map[string]map[string]string{}
)

// Get returns the named prompt template from the given file (without
// the .json suffix). The file is parsed once and cached.
func Get(file, name string) (string, error) {
	mu.Lock()
	defer mu.Unlock()

	set, ok := cache[file]
	if !ok {
		data, err := promptFS.ReadFile(file + ".json")
		if err != nil {
			return "", fmt.Errorf("reading prompt file %q: %w", file, err)
		}
		set = map[string]string{}
		if err := json.Unmarshal(data, &set); err != nil {
			return "", fmt.Errorf("parsing prompt file %q: %w", file, err)
		}
		cache[file] = set
	}

	tmpl, ok := set[name]
	if !ok {
		return "", fmt.Errorf("prompt %q not found in %q", name, file)
	}
	return tmpl, nil
}

// MustGet is Get for prompts that are compiled into the binary and
// cannot be missing.
func MustGet(file, name string) string {
	tmpl, err := Get(file, name)
	if err != nil {
		panic(err)
	}
	return tmpl
}

// Format substitutes {{key}} placeholders in a template.
func Format(tmpl string, vars map[string]string) string {
	for k, v := range vars {
		tmpl = strings.ReplaceAll(tmpl, "{{"+k+"}}", v)
	}
	return tmpl
}
