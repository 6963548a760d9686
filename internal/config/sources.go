package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/brogergvhs/mangatoc/internal/providers"
	"gopkg.in/yaml.v3"
)

var ErrSourceNotFound = errors.New("source not found")

type sourcesFile struct {
	Sources []providers.Source `yaml:"sources"`
}

// LoadSources reads and validates the source definitions at path. The
// result is sorted by name.
func LoadSources(path string) ([]providers.Source, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f sourcesFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	seen := make(map[string]struct{}, len(f.Sources))
	for i, s := range f.Sources {
		if err := validateSource(s); err != nil {
			return nil, fmt.Errorf("%s: source #%d: %w", path, i+1, err)
		}

		key := strings.ToLower(s.Name)
		if _, ok := seen[key]; ok {
			return nil, fmt.Errorf("%s: duplicate source %q", path, s.Name)
		}
		seen[key] = struct{}{}
	}

	sort.Slice(f.Sources, func(i, j int) bool { return f.Sources[i].Name < f.Sources[j].Name })

	return f.Sources, nil
}

func validateSource(s providers.Source) error {
	switch {
	case strings.TrimSpace(s.Name) == "":
		return errors.New("name is required")
	case strings.TrimSpace(s.URL) == "":
		return fmt.Errorf("%s: url is required", s.Name)
	case strings.TrimSpace(s.Toc.ChapterList) == "":
		return fmt.Errorf("%s: toc.chapter_list is required", s.Name)
	case strings.TrimSpace(s.Toc.ChapterName) == "":
		return fmt.Errorf("%s: toc.chapter_name is required", s.Name)
	}

	return nil
}

// FindSource looks a source up by name, ignoring case.
func FindSource(sources []providers.Source, name string) (providers.Source, error) {
	for _, s := range sources {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}

	return providers.Source{}, fmt.Errorf("%w: %q", ErrSourceNotFound, name)
}

const sampleSources = `# Sources known to mangatoc. Rules are CSS selectors with an optional
# "@attr" extractor, XPath ("@xpath:" or a leading "/"), "##regex##replacement"
# post-processing and "@js:" scripts. Alternatives are separated by "||".
#
# A chapter_list starting with "-" marks a list that is already in reading
# order on the page.
sources:
  - name: example
    url: https://books.example.org
    headers:
      Referer: https://books.example.org/
    toc:
      chapter_list: "ul.chapters li"
      chapter_name: "a@text"
      chapter_url: "a@href"
      update_time: "span.time@text"
      is_vip: "@css:@data-vip"
      next_toc_url: "div.pager a.next@href"
`

// WriteSampleSources creates a commented sources file unless one exists.
func WriteSampleSources(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, err
	}

	return true, os.WriteFile(path, []byte(sampleSources), 0644)
}
