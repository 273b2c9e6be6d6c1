package homepage

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var templateVar = regexp.MustCompile(`\{\{[^}]+\}\}`)

// Loader reads a Homepage bookmarks.yaml or services.yaml file.
type Loader struct {
	filePath string
}

// NewLoader creates a new Homepage loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Path is the file the loader reads.
func (l *Loader) Path() string { return l.filePath }

// Load reads the file and returns its categories in file order. Both
// Homepage layouts are accepted: bookmarks (a list per entry) and services
// (a map per entry).
func (l *Loader) Load() ([]Category, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read homepage file: %w", err)
	}
	return Parse(data)
}

// Parse decodes Homepage YAML. Template variables ({{HOMEPAGE_VAR_...}})
// are replaced by empty strings first.
func Parse(data []byte) ([]Category, error) {
	data = templateVar.ReplaceAll(data, []byte(`""`))

	var bookmarks BookmarksConfig
	bmErr := yaml.Unmarshal(data, &bookmarks)
	if bmErr == nil {
		return fromBookmarks(bookmarks), nil
	}

	var services ServicesConfig
	svcErr := yaml.Unmarshal(data, &services)
	if svcErr == nil {
		return fromServices(services), nil
	}

	return nil, fmt.Errorf("failed to parse homepage yaml: %w", errors.Join(bmErr, svcErr))
}

func fromBookmarks(cfg BookmarksConfig) []Category {
	var out []Category
	for _, group := range cfg {
		for name, items := range group {
			cat := Category{Name: strings.TrimSpace(name)}
			for _, item := range items {
				for entryName, list := range item {
					// Each bookmark has a list with a single entry
					if len(list) == 0 {
						continue
					}
					cat.Entries = append(cat.Entries, Entry{
						Name: strings.TrimSpace(entryName),
						Href: strings.TrimSpace(list[0].Href),
						Abbr: list[0].Abbr,
					})
				}
			}
			out = append(out, cat)
		}
	}
	return out
}

func fromServices(cfg ServicesConfig) []Category {
	var out []Category
	for _, group := range cfg {
		for name, items := range group {
			cat := Category{Name: strings.TrimSpace(name)}
			for _, item := range items {
				for entryName, props := range item {
					cat.Entries = append(cat.Entries, Entry{
						Name:        strings.TrimSpace(entryName),
						Href:        strings.TrimSpace(props.Href),
						Description: props.Description,
					})
				}
			}
			out = append(out, cat)
		}
	}
	return out
}
