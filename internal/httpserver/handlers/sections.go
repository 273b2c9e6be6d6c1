package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/launchbar/internal/domain"
	"github.com/MrSnakeDoc/launchbar/internal/hierarchy"
	"github.com/MrSnakeDoc/launchbar/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchbar/internal/logger"
)

type sectionView struct {
	*domain.Section
	Title           string `json:"title"`
	EffectiveShared bool   `json:"effectiveShared"`
	Location        string `json:"location"`
	ParentID        string `json:"parentId,omitempty"`
	Shortcuts       int    `json:"shortcuts"`
}

type shortcutView struct {
	*domain.Shortcut
	EffectiveShared bool   `json:"effectiveShared"`
	Location        string `json:"location"`
}

func viewSection(m *hierarchy.Manager, s *domain.Section) sectionView {
	v := sectionView{
		Section:         s.Clone(),
		Title:           s.Title(),
		EffectiveShared: m.IsSectionShared(s.ID),
		Location:        s.StoredIn().String(),
		Shortcuts:       len(m.ShortcutsOf(s.ID)),
	}
	if p, ok := m.NestedParentOf(s.ID); ok {
		v.ParentID = p.ID
	}
	return v
}

func viewShortcut(m *hierarchy.Manager, sc *domain.Shortcut) shortcutView {
	return shortcutView{
		Shortcut:        sc.Clone(),
		EffectiveShared: m.IsShortcutShared(sc.ID),
		Location:        sc.StoredIn().String(),
	}
}

// Sections lists every section in order. ?top=1 limits the list to
// sections that are not nested anywhere.
func Sections(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		top := r.URL.Query().Get("top") == "1"

		var out []sectionView
		err := d.Core.Do(r.Context(), func(m *hierarchy.Manager) error {
			list := m.Sections()
			if top {
				list = m.TopLevelSections()
			}
			out = make([]sectionView, 0, len(list))
			for _, s := range list {
				out = append(out, viewSection(m, s))
			}
			return nil
		})
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(d, w, http.StatusOK, out)
	}
}

// SectionShortcuts lists the shortcuts of one section in order.
func SectionShortcuts(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var out []shortcutView
		err := d.Core.Do(r.Context(), func(m *hierarchy.Manager) error {
			if _, ok := m.Section(id); !ok {
				return fmt.Errorf("section %s: %w", id, domain.ErrNotFound)
			}
			list := m.ShortcutsOf(id)
			out = make([]shortcutView, 0, len(list))
			for _, sc := range list {
				out = append(out, viewShortcut(m, sc))
			}
			return nil
		})
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(d, w, http.StatusOK, out)
	}
}

type sharedRequest struct {
	Shared *bool `json:"shared"`
}

// SetSectionShared sets the stored shared flag of a section. Turning it
// off cascades through its shortcuts and nested sections.
func SetSectionShared(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req sharedRequest
		if err := decode(w, r, &req); err != nil {
			badRequest(d, w, err)
			return
		}
		if req.Shared == nil {
			badRequest(d, w, fmt.Errorf("shared is required"))
			return
		}

		var out sectionView
		err := d.Core.Do(r.Context(), func(m *hierarchy.Manager) error {
			// A cascade is not abandoned halfway when the client goes away.
			if err := m.SetShared(context.WithoutCancel(r.Context()), id, *req.Shared); err != nil {
				return err
			}
			s, _ := m.Section(id)
			out = viewSection(m, s)
			return nil
		})
		if err != nil {
			writeError(d, w, r, err)
			return
		}

		d.Logger.Info("section sharing set via endpoint",
			logger.String("id", id),
			logger.Bool("shared", *req.Shared))
		writeJSON(d, w, http.StatusOK, out)
	}
}
