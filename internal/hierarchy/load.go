package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/MrSnakeDoc/launchbar/internal/domain"
	"github.com/MrSnakeDoc/launchbar/internal/logger"
)

var errStillChanging = errors.New("remote changes kept arriving during load")

// Load rebuilds the hierarchy from both stores. When the change feed moves
// while a merge is in progress the merge is discarded and rerun, until a
// pass completes with no remote change observed. The loop is bounded by
// ctx and by WithMaxLoadAttempts; running out of either yields a
// *domain.LivenessRisk. It returns the reload count after success.
func (m *Manager) Load(ctx context.Context) (uint64, error) {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			if attempt == 1 {
				return m.reloads, err
			}
			return m.reloads, &domain.LivenessRisk{Attempts: attempt - 1, Err: err}
		}
		if m.maxAttempts > 0 && attempt > m.maxAttempts {
			return m.reloads, &domain.LivenessRisk{Attempts: m.maxAttempts, Err: errStillChanging}
		}

		before := m.feed.Counter()
		snap, err := m.merge(ctx)
		if err != nil {
			return m.reloads, err
		}
		after := m.feed.Counter()
		if after != before {
			m.logger.Debug("remote change during load, retrying",
				logger.Int("attempt", attempt),
				logger.Uint64("counter", after))
			continue
		}

		m.sections = snap.sections
		m.shortcuts = snap.shortcuts
		m.replacements = snap.replacements
		m.sortAll()
		m.seen = after
		m.reloads++

		m.logger.Info("hierarchy loaded",
			logger.Int("sections", len(m.sections)),
			logger.Int("shortcuts", len(m.shortcuts)),
			logger.Int("replacements", len(m.replacements)),
			logger.Int("attempts", attempt),
			logger.Uint64("reloads", m.reloads))
		return m.reloads, nil
	}
}

type snapshot struct {
	sections     []*domain.Section
	shortcuts    []*domain.Shortcut
	replacements []*domain.Replacement
}

// merge reads both stores and resolves them into one consistent graph.
//
//   - exactly one default section survives; a shared default wins over a
//     local one, then the lowest id. Losers are deleted and their
//     shortcuts move to the survivor.
//   - a missing default is synthesized and persisted.
//   - shortcuts whose section is absent are held back, since the section
//     may still be on its way from another device.
//   - nested links that point nowhere, point at the default, nest a
//     section twice or close a cycle are held back too.
func (m *Manager) merge(ctx context.Context) (*snapshot, error) {
	sections, err := m.store.LoadSections(ctx)
	if err != nil {
		return nil, err
	}
	shortcuts, err := m.store.LoadShortcuts(ctx)
	if err != nil {
		return nil, err
	}
	replacements, err := m.store.LoadReplacements(ctx)
	if err != nil {
		return nil, err
	}

	var (
		def        *domain.Section
		suppressed []*domain.Section
		kept       = make([]*domain.Section, 0, len(sections))
	)
	for _, s := range sections {
		if !s.IsDefault {
			kept = append(kept, s)
			continue
		}
		switch {
		case def == nil:
			def = s
		case betterDefault(s, def):
			suppressed = append(suppressed, def)
			def = s
		default:
			suppressed = append(suppressed, s)
		}
	}

	if def == nil {
		def = &domain.Section{ID: domain.NewID(), IsDefault: true, Sequence: 1}
		if err := m.saveSection(ctx, def); err != nil {
			return nil, fmt.Errorf("failed to create default section: %w", err)
		}
		m.logger.Info("default section created", logger.String("id", def.ID))
	}
	kept = append(kept, def)

	for _, s := range suppressed {
		if err := m.store.DeleteSection(ctx, s); err != nil {
			return nil, fmt.Errorf("failed to drop duplicate default section: %w", err)
		}
		m.logger.Warn("duplicate default section dropped",
			logger.String("id", s.ID),
			logger.String("kept", def.ID))
	}
	if len(suppressed) > 0 && def.Shared {
		// Rewrite the survivor so its local mirror exists again.
		if err := m.saveSection(ctx, def); err != nil {
			return nil, err
		}
	}

	known := make(map[string]*domain.Section, len(kept))
	for _, s := range kept {
		known[s.ID] = s
	}
	dropped := make(map[string]bool, len(suppressed))
	for _, s := range suppressed {
		dropped[s.ID] = true
	}

	sort.SliceStable(shortcuts, func(i, j int) bool {
		return shortcuts[i].Sequence < shortcuts[j].Sequence
	})

	var (
		live    = make([]*domain.Shortcut, 0, len(shortcuts))
		adopted []*domain.Shortcut
		parent  = map[string]string{} // nested section -> owning section
	)
	for _, sc := range shortcuts {
		owner := sc.SectionID
		if dropped[owner] {
			owner = def.ID
		}
		if _, ok := known[owner]; !ok {
			m.logger.Debug("shortcut held back, section unknown",
				logger.String("id", sc.ID),
				logger.String("section", sc.SectionID))
			continue
		}
		if sc.IsNestedLink() {
			if reason := linkProblem(sc.NestedSectionID, owner, known, parent); reason != "" {
				m.logger.Warn("nested link ignored",
					logger.String("id", sc.ID),
					logger.String("reason", reason))
				continue
			}
			parent[sc.NestedSectionID] = owner
		}
		if owner != sc.SectionID {
			adopted = append(adopted, sc)
			continue
		}
		live = append(live, sc)
	}

	if len(adopted) > 0 {
		next := 1
		for _, sc := range live {
			if sc.SectionID == def.ID {
				next++
			}
		}
		for _, sc := range adopted {
			sc.SectionID = def.ID
			sc.Sequence = next
			next++
			if sc.Shared && !def.Shared {
				sc.Shared = false
			}
			if err := m.saveShortcut(ctx, sc); err != nil {
				return nil, fmt.Errorf("failed to adopt shortcut into default section: %w", err)
			}
			live = append(live, sc)
		}
		m.logger.Info("shortcuts adopted by default section", logger.Int("count", len(adopted)))
	}

	return &snapshot{sections: kept, shortcuts: live, replacements: replacements}, nil
}

// betterDefault reports whether candidate should replace current as the
// surviving default section.
func betterDefault(candidate, current *domain.Section) bool {
	if candidate.Shared != current.Shared {
		return candidate.Shared
	}
	return candidate.ID < current.ID
}

// linkProblem explains why a link nesting child into owner cannot join
// the graph, or returns "".
func linkProblem(child, owner string, known map[string]*domain.Section, parent map[string]string) string {
	target, ok := known[child]
	switch {
	case !ok:
		return "nested section unknown"
	case target.IsDefault:
		return "default section cannot be nested"
	case child == owner:
		return "section nests itself"
	}
	if _, taken := parent[child]; taken {
		return "section already nested elsewhere"
	}
	seen := map[string]bool{}
	for cur := owner; !seen[cur]; {
		seen[cur] = true
		if cur == child {
			return "nesting would form a cycle"
		}
		up, ok := parent[cur]
		if !ok {
			break
		}
		cur = up
	}
	return ""
}

// ─────────────────────────────────────────────────────────────────
// Remote update gating
// ─────────────────────────────────────────────────────────────────

// SuspendRemoteUpdates defers ApplyRemoteChanges until the matching
// ResumeRemoteUpdates. Calls nest.
func (m *Manager) SuspendRemoteUpdates() {
	m.suspended++
}

// ResumeRemoteUpdates lifts one suspension. When the last one is lifted
// and a remote change was deferred, the hierarchy reloads and true is
// returned.
func (m *Manager) ResumeRemoteUpdates(ctx context.Context) (bool, error) {
	if m.suspended == 0 {
		return false, nil
	}
	m.suspended--
	if m.suspended > 0 || !m.pending {
		return false, nil
	}
	m.pending = false
	if _, err := m.Load(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Suspended reports whether remote updates are currently deferred.
func (m *Manager) Suspended() bool {
	return m.suspended > 0
}

// ApplyRemoteChanges reloads after a remote change, or records it for
// later while suspended. It reports whether a reload happened.
func (m *Manager) ApplyRemoteChanges(ctx context.Context) (bool, error) {
	if m.suspended > 0 {
		if !m.pending {
			m.logger.Debug("remote change deferred while editing")
		}
		m.pending = true
		return false, nil
	}
	if _, err := m.Load(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Stale reports whether the change feed moved since the last load.
func (m *Manager) Stale() bool {
	return m.feed.Counter() != m.seen
}
