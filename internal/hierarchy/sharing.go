package hierarchy

import (
	"context"

	"github.com/MrSnakeDoc/launchbar/internal/domain"
	"github.com/MrSnakeDoc/launchbar/internal/logger"
)

// SetShared sets a section's stored shared flag. Turning sharing off
// cascades: every shortcut in the section stops being shared and every
// section nested in it is unshared the same way, at any depth. Each
// change is persisted, which moves the entity between stores.
func (m *Manager) SetShared(ctx context.Context, sectionID string, value bool) error {
	sec, ok := m.Section(sectionID)
	if !ok {
		return domain.ErrNotFound
	}
	return m.setShared(ctx, sec, value, map[string]bool{})
}

func (m *Manager) setShared(ctx context.Context, sec *domain.Section, value bool, visited map[string]bool) error {
	if visited[sec.ID] {
		return nil
	}
	visited[sec.ID] = true

	if sec.Shared != value {
		sec.Shared = value
		if err := m.saveSection(ctx, sec); err != nil {
			return err
		}
		m.logger.Debug("section sharing changed",
			logger.String("id", sec.ID),
			logger.Bool("shared", value))
	}
	if value {
		return nil
	}

	for _, sc := range m.ShortcutsOf(sec.ID) {
		if sc.Shared {
			sc.Shared = false
			if err := m.saveShortcut(ctx, sc); err != nil {
				return err
			}
		}
		if !sc.IsNestedLink() {
			continue
		}
		if child, ok := m.Section(sc.NestedSectionID); ok {
			if err := m.setShared(ctx, child, false, visited); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetShortcutShared sets a shortcut's stored shared flag. Sharing needs an
// eligible shortcut in an effectively shared section.
func (m *Manager) SetShortcutShared(ctx context.Context, id string, value bool) error {
	sc, ok := m.Shortcut(id)
	if !ok {
		return domain.ErrNotFound
	}
	if sc.Shared == value {
		return nil
	}
	if value {
		if !sc.ShareEligible() {
			return domain.Violation(domain.RuleShareEligibility, "shortcut %q cannot be shared", sc.Name)
		}
		if !m.IsSectionShared(sc.SectionID) {
			return domain.Violation(domain.RuleShareEligibility, "the section of %q is not shared", sc.Name)
		}
	}
	sc.Shared = value
	return m.saveShortcut(ctx, sc)
}

// IsSectionShared reports the effective sharing of a section: its own
// flag and that of every section it is nested in.
func (m *Manager) IsSectionShared(sectionID string) bool {
	visited := map[string]bool{}
	for cur := sectionID; !visited[cur]; {
		visited[cur] = true
		sec, ok := m.Section(cur)
		if !ok || !sec.Shared {
			return false
		}
		parent, ok := m.NestedParentOf(cur)
		if !ok {
			return true
		}
		cur = parent.ID
	}
	return false
}

// IsShortcutShared reports the effective sharing of a shortcut.
func (m *Manager) IsShortcutShared(id string) bool {
	sc, ok := m.Shortcut(id)
	if !ok {
		return false
	}
	return sc.Shared && sc.ShareEligible() && m.IsSectionShared(sc.SectionID)
}
