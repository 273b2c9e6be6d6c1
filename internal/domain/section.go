package domain

import (
	"time"

	"github.com/google/uuid"
)

// Section is a named, ordered group of shortcuts.
//
// Exactly one Section has IsDefault set. It is the unnamed fallback
// destination and can never be removed.
type Section struct {
	// ─────────────────────────────
	// Identity
	// ─────────────────────────────

	// ID is stable across both stores and across moves between them.
	ID string `json:"id"`

	// IsDefault marks the single fallback section.
	IsDefault bool `json:"isDefault"`

	// Name is unique among non-default sections (case-insensitive).
	// Blank only for the default section.
	Name string `json:"name"`

	// ─────────────────────────────
	// Ordering & presentation
	// ─────────────────────────────

	// Sequence orders sections; 1..N once a mutation settles.
	Sequence int `json:"sequence"`

	// MenuTitle, when non-blank, gives the section its own menu.
	MenuTitle string `json:"menuTitle,omitempty"`

	// KeyEquivalent only matters when MenuTitle is set.
	KeyEquivalent string `json:"keyEquivalent,omitempty"`

	// Inline renders a nested section without its own heading.
	Inline bool `json:"inline,omitempty"`

	// ─────────────────────────────
	// Sync
	// ─────────────────────────────

	// Shared is the stored flag. The effective state also depends on
	// the nesting parent, see hierarchy.Manager.IsSectionShared.
	Shared bool `json:"shared"`

	LastUpdate time.Time `json:"lastUpdate"`

	stored StoreLocation
}

// NewSection returns a section with a fresh id.
func NewSection(name string) *Section {
	return &Section{ID: NewID(), Name: name}
}

// EntityKind implements Entity.
func (s *Section) EntityKind() Kind { return KindSection }

// EntityID implements Entity.
func (s *Section) EntityID() string { return s.ID }

// Placement implements Entity.
func (s *Section) Placement() StoreLocation { return LocationFor(s.Shared) }

// StoredIn implements Entity.
func (s *Section) StoredIn() StoreLocation { return s.stored }

// MarkStored implements Entity.
func (s *Section) MarkStored(loc StoreLocation) { s.stored = loc }

// MirrorsLocally reports whether a local copy is kept while shared.
// The default section is mirrored so the app works before sync completes.
func (s *Section) MirrorsLocally() bool { return s.IsDefault }

// Updated returns LastUpdate.
func (s *Section) Updated() time.Time { return s.LastUpdate }

// Clone returns a detached copy, including the store tag.
func (s *Section) Clone() *Section {
	c := *s
	return &c
}

// Title is what a menu shows for the section.
func (s *Section) Title() string {
	if s.MenuTitle != "" {
		return s.MenuTitle
	}
	return s.Name
}

// NewID returns a time-ordered unique identifier.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
