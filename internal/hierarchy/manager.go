// Package hierarchy owns the merged in-memory tree of sections and
// shortcuts and keeps its structural rules intact under mutation.
//
// A Manager is not safe for concurrent use. All calls are expected to come
// from a single logical thread of control (see app.Core).
package hierarchy

import (
	"context"
	"sort"
	"time"

	"github.com/MrSnakeDoc/launchbar/internal/domain"
	"github.com/MrSnakeDoc/launchbar/internal/logger"
	"github.com/MrSnakeDoc/launchbar/internal/store"
	"github.com/MrSnakeDoc/launchbar/internal/token"
)

// Store is the persistence the Manager needs. *store.EntityStore satisfies it.
type Store interface {
	LoadSections(ctx context.Context) ([]*domain.Section, error)
	LoadShortcuts(ctx context.Context) ([]*domain.Shortcut, error)
	LoadReplacements(ctx context.Context) ([]*domain.Replacement, error)

	SaveSection(ctx context.Context, s *domain.Section) error
	SaveShortcut(ctx context.Context, s *domain.Shortcut) error
	SaveReplacement(ctx context.Context, r *domain.Replacement) error

	DeleteSection(ctx context.Context, s *domain.Section) error
	DeleteShortcut(ctx context.Context, s *domain.Shortcut) error
	DeleteReplacement(ctx context.Context, r *domain.Replacement) error
}

// Manager is the canonical hierarchy merged from both stores.
type Manager struct {
	store       Store
	feed        store.ChangeFeed
	logger      logger.Logger
	now         func() time.Time
	maxAttempts int
	tokenDepth  int

	sections     []*domain.Section     // ordered by Sequence
	shortcuts    []*domain.Shortcut    // ordered by (section Sequence, Sequence)
	replacements []*domain.Replacement // ordered by Token

	reloads   uint64 // completed loads
	seen      uint64 // feed counter at the last completed load
	suspended int
	pending   bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithMaxLoadAttempts caps how many merge passes one Load may run while
// remote changes keep arriving. 0 keeps the loop unbounded apart from the
// context deadline.
func WithMaxLoadAttempts(n int) Option {
	return func(m *Manager) {
		if n >= 0 {
			m.maxAttempts = n
		}
	}
}

// WithTokenDepth sets the expansion depth of resolvers built by Resolver.
func WithTokenDepth(depth int) Option {
	return func(m *Manager) { m.tokenDepth = depth }
}

type quietFeed struct{}

func (quietFeed) Counter() uint64 { return 0 }

// New creates a Manager. Call Load before using it.
func New(st Store, feed store.ChangeFeed, log logger.Logger, opts ...Option) *Manager {
	if feed == nil {
		feed = quietFeed{}
	}
	m := &Manager{
		store:      st,
		feed:       feed,
		logger:     log,
		now:        time.Now,
		tokenDepth: token.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ─────────────────────────────────────────────────────────────────
// Queries. Returned entities are the live ones; callers must not
// modify them outside of Manager methods.
// ─────────────────────────────────────────────────────────────────

// Sections returns all sections in sequence order.
func (m *Manager) Sections() []*domain.Section {
	return append([]*domain.Section(nil), m.sections...)
}

// TopLevelSections returns the sections that are not nested anywhere.
func (m *Manager) TopLevelSections() []*domain.Section {
	out := make([]*domain.Section, 0, len(m.sections))
	for _, s := range m.sections {
		if !m.IsNested(s.ID) {
			out = append(out, s)
		}
	}
	return out
}

// Section looks a section up by id.
func (m *Manager) Section(id string) (*domain.Section, bool) {
	for _, s := range m.sections {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// SectionNamed looks a non-default section up by name, case-insensitively.
func (m *Manager) SectionNamed(name string) (*domain.Section, bool) {
	for _, s := range m.sections {
		if !s.IsDefault && domain.SameName(s.Name, name) {
			return s, true
		}
	}
	return nil, false
}

// DefaultSection returns the fallback section. It is nil only before Load.
func (m *Manager) DefaultSection() *domain.Section {
	for _, s := range m.sections {
		if s.IsDefault {
			return s
		}
	}
	return nil
}

// Shortcuts returns every shortcut ordered by section, then sequence.
func (m *Manager) Shortcuts() []*domain.Shortcut {
	return append([]*domain.Shortcut(nil), m.shortcuts...)
}

// ShortcutsOf returns the shortcuts owned by a section, in order.
func (m *Manager) ShortcutsOf(sectionID string) []*domain.Shortcut {
	var out []*domain.Shortcut
	for _, sc := range m.shortcuts {
		if sc.SectionID == sectionID {
			out = append(out, sc)
		}
	}
	return out
}

// Shortcut looks a shortcut up by id.
func (m *Manager) Shortcut(id string) (*domain.Shortcut, bool) {
	for _, sc := range m.shortcuts {
		if sc.ID == id {
			return sc, true
		}
	}
	return nil, false
}

// ShortcutNamed looks a launchable shortcut up by name. Nested links are
// named after their section and are not matched.
func (m *Manager) ShortcutNamed(name string) (*domain.Shortcut, bool) {
	for _, sc := range m.shortcuts {
		if !sc.IsNestedLink() && domain.SameName(sc.Name, name) {
			return sc, true
		}
	}
	return nil, false
}

// NestingShortcut returns the link that nests a section, if any.
func (m *Manager) NestingShortcut(sectionID string) (*domain.Shortcut, bool) {
	for _, sc := range m.shortcuts {
		if sc.IsNestedLink() && sc.NestedSectionID == sectionID {
			return sc, true
		}
	}
	return nil, false
}

// IsNested reports whether some shortcut nests the section.
func (m *Manager) IsNested(sectionID string) bool {
	_, ok := m.NestingShortcut(sectionID)
	return ok
}

// NestedParentOf returns the section a nested section appears in.
func (m *Manager) NestedParentOf(sectionID string) (*domain.Section, bool) {
	link, ok := m.NestingShortcut(sectionID)
	if !ok {
		return nil, false
	}
	return m.Section(link.SectionID)
}

// IsDescendant reports whether sectionID sits, at any depth, inside ancestorID.
func (m *Manager) IsDescendant(sectionID, ancestorID string) bool {
	visited := map[string]bool{}
	for cur := sectionID; !visited[cur]; {
		visited[cur] = true
		parent, ok := m.NestedParentOf(cur)
		if !ok {
			return false
		}
		if parent.ID == ancestorID {
			return true
		}
		cur = parent.ID
	}
	return false
}

// ReloadCount is the number of completed loads.
func (m *Manager) ReloadCount() uint64 {
	return m.reloads
}

// Now returns the manager's clock reading.
func (m *Manager) Now() time.Time { return m.now() }

// NextSectionSequence is the sequence a new section gets when appended.
func (m *Manager) NextSectionSequence() int {
	return len(m.sections) + 1
}

// NextShortcutSequence is the sequence a new shortcut gets when appended.
func (m *Manager) NextShortcutSequence(sectionID string) int {
	return len(m.ShortcutsOf(sectionID)) + 1
}

// ─────────────────────────────────────────────────────────────────
// Ordering helpers
// ─────────────────────────────────────────────────────────────────

// sortSections orders by sequence; equal values keep list order.
func (m *Manager) sortSections() {
	sort.SliceStable(m.sections, func(i, j int) bool {
		return m.sections[i].Sequence < m.sections[j].Sequence
	})
}

// sortShortcuts orders by (owning section sequence, sequence).
func (m *Manager) sortShortcuts() {
	pos := make(map[string]int, len(m.sections))
	for i, s := range m.sections {
		pos[s.ID] = i
	}
	sort.SliceStable(m.shortcuts, func(i, j int) bool {
		a, b := m.shortcuts[i], m.shortcuts[j]
		if pos[a.SectionID] != pos[b.SectionID] {
			return pos[a.SectionID] < pos[b.SectionID]
		}
		return a.Sequence < b.Sequence
	})
}

func (m *Manager) sortAll() {
	m.sortSections()
	m.sortShortcuts()
	sort.SliceStable(m.replacements, func(i, j int) bool {
		return m.replacements[i].Token < m.replacements[j].Token
	})
}

func (m *Manager) saveSection(ctx context.Context, s *domain.Section) error {
	s.LastUpdate = m.now()
	return m.store.SaveSection(ctx, s)
}

func (m *Manager) saveShortcut(ctx context.Context, sc *domain.Shortcut) error {
	sc.LastUpdate = m.now()
	return m.store.SaveShortcut(ctx, sc)
}
