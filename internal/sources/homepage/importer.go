package homepage

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/launchbar/internal/domain"
	"github.com/MrSnakeDoc/launchbar/internal/edit"
	"github.com/MrSnakeDoc/launchbar/internal/hierarchy"
	"github.com/MrSnakeDoc/launchbar/internal/logger"
)

// Result counts what one import changed.
type Result struct {
	SectionsAdded    int `json:"sectionsAdded"`
	ShortcutsAdded   int `json:"shortcutsAdded"`
	ShortcutsUpdated int `json:"shortcutsUpdated"`
	Unchanged        int `json:"unchanged"`
	Skipped          int `json:"skipped"`
}

// Changed reports whether the import wrote anything.
func (r Result) Changed() bool {
	return r.SectionsAdded+r.ShortcutsAdded+r.ShortcutsUpdated > 0
}

// Importer turns Homepage categories into sections and their entries into
// URL shortcuts. Matching is by name, so importing the same file again
// changes nothing; an entry whose href moved updates the existing shortcut
// wherever it now lives.
type Importer struct {
	loader *Loader
	logger logger.Logger
}

func NewImporter(filePath string, log logger.Logger) *Importer {
	return &Importer{loader: NewLoader(filePath), logger: log}
}

// Path is the imported file.
func (im *Importer) Path() string { return im.loader.Path() }

// Import reads the file and applies it to m.
func (im *Importer) Import(ctx context.Context, m *hierarchy.Manager) (Result, error) {
	cats, err := im.loader.Load()
	if err != nil {
		return Result{}, err
	}
	res, err := Apply(ctx, m, cats)
	if err != nil {
		return res, err
	}

	im.logger.Info("homepage import finished",
		logger.String("file", im.loader.Path()),
		logger.Int("sections_added", res.SectionsAdded),
		logger.Int("shortcuts_added", res.ShortcutsAdded),
		logger.Int("shortcuts_updated", res.ShortcutsUpdated),
		logger.Int("skipped", res.Skipped))
	return res, nil
}

// Apply upserts categories into m by name.
func Apply(ctx context.Context, m *hierarchy.Manager, cats []Category) (Result, error) {
	var res Result
	for _, cat := range cats {
		if domain.Blank(cat.Name) {
			res.Skipped += len(cat.Entries)
			continue
		}
		sec, ok := m.SectionNamed(cat.Name)
		if !ok {
			sec = &domain.Section{Name: cat.Name, Sequence: m.NextSectionSequence()}
			if err := m.AddSection(ctx, sec); err != nil {
				return res, fmt.Errorf("failed to add section %q: %w", cat.Name, err)
			}
			res.SectionsAdded++
		}

		for _, e := range cat.Entries {
			if domain.Blank(e.Name) || e.Href == "" {
				res.Skipped++
				continue
			}
			if err := upsert(ctx, m, sec, e, &res); err != nil {
				return res, err
			}
		}
	}
	return res, nil
}

// upsert adds or updates the shortcut for e. Entries that would not pass
// the editor's validation, such as file URLs without a bookmark, are
// counted as skipped.
func upsert(ctx context.Context, m *hierarchy.Manager, sec *domain.Section, e Entry, res *Result) error {
	cur, ok := m.ShortcutNamed(e.Name)
	if ok && cur.Action == domain.ActionURLLink && cur.URL == e.Href {
		res.Unchanged++
		return nil
	}

	var draft *domain.Shortcut
	if ok {
		draft = cur.Clone()
		draft.URLSecurityBookmark = nil
	} else {
		draft = &domain.Shortcut{
			Name:      e.Name,
			SectionID: sec.ID,
			Sequence:  m.NextShortcutSequence(sec.ID),
		}
	}
	draft.Action = domain.ActionURLLink
	draft.URL = e.Href

	edit.NormalizeShortcut(draft)
	if errs := edit.ValidateShortcut(draft, m); errs != nil {
		res.Skipped++
		return nil
	}

	if !ok {
		if err := m.AddShortcut(ctx, draft); err != nil {
			return fmt.Errorf("failed to add shortcut %q: %w", e.Name, err)
		}
		res.ShortcutsAdded++
		return nil
	}
	if err := m.UpdateShortcut(ctx, draft); err != nil {
		return fmt.Errorf("failed to update shortcut %q: %w", e.Name, err)
	}
	res.ShortcutsUpdated++
	return nil
}
