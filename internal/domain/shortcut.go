package domain

import (
	"fmt"
	"time"
)

// Action is what a shortcut does when chosen.
type Action int

const (
	ActionURLLink Action = iota
	ActionClipboardText
	ActionNestedSection
	ActionSetReplacement
)

var actionNames = map[Action]string{
	ActionURLLink:        "urlLink",
	ActionClipboardText:  "clipboardText",
	ActionNestedSection:  "nestedSection",
	ActionSetReplacement: "setReplacement",
}

func (a Action) String() string {
	if n, ok := actionNames[a]; ok {
		return n
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// MarshalText encodes the action by name so stored records stay readable.
func (a Action) MarshalText() ([]byte, error) {
	n, ok := actionNames[a]
	if !ok {
		return nil, fmt.Errorf("unknown shortcut action %d", int(a))
	}
	return []byte(n), nil
}

// UnmarshalText is the inverse of MarshalText.
func (a *Action) UnmarshalText(b []byte) error {
	for k, n := range actionNames {
		if n == string(b) {
			*a = k
			return nil
		}
	}
	return fmt.Errorf("unknown shortcut action %q", string(b))
}

// Shortcut is a launchable entry, or a link nesting one section in another.
type Shortcut struct {
	// ─────────────────────────────
	// Identity
	// ─────────────────────────────

	ID   string `json:"id"`
	Name string `json:"name"`

	// ─────────────────────────────
	// Behaviour
	// ─────────────────────────────

	Action Action `json:"action"`

	// URL may embed {token} markers.
	URL string `json:"url,omitempty"`

	// URLSecurityBookmark is an opaque capability blob for local-file links.
	// It is never interpreted here.
	URLSecurityBookmark []byte `json:"urlSecurityBookmark,omitempty"`

	CopyText    string `json:"copyText,omitempty"`
	CopyMessage string `json:"copyMessage,omitempty"`

	// CopyPrivate hides CopyText behind the authenticator.
	CopyPrivate bool `json:"copyPrivate,omitempty"`

	// ReplacementToken is used only by ActionSetReplacement.
	ReplacementToken string `json:"replacementToken,omitempty"`

	// ─────────────────────────────
	// Placement in the hierarchy
	// ─────────────────────────────

	// SectionID is the owning section. Required.
	SectionID string `json:"sectionId"`

	// NestedSectionID is set iff Action is ActionNestedSection.
	NestedSectionID string `json:"nestedSectionId,omitempty"`

	// Sequence orders shortcuts inside SectionID.
	Sequence int `json:"sequence"`

	KeyEquivalent string `json:"keyEquivalent,omitempty"`

	// ─────────────────────────────
	// Sync
	// ─────────────────────────────

	Shared     bool      `json:"shared"`
	LastUpdate time.Time `json:"lastUpdate"`

	stored StoreLocation
}

// EntityKind implements Entity.
func (s *Shortcut) EntityKind() Kind { return KindShortcut }

// EntityID implements Entity.
func (s *Shortcut) EntityID() string { return s.ID }

// Placement implements Entity.
func (s *Shortcut) Placement() StoreLocation { return LocationFor(s.Shared) }

// StoredIn implements Entity.
func (s *Shortcut) StoredIn() StoreLocation { return s.stored }

// MarkStored implements Entity.
func (s *Shortcut) MarkStored(loc StoreLocation) { s.stored = loc }

// Updated returns LastUpdate.
func (s *Shortcut) Updated() time.Time { return s.LastUpdate }

// Clone returns a detached copy, including the store tag.
func (s *Shortcut) Clone() *Shortcut {
	c := *s
	if s.URLSecurityBookmark != nil {
		c.URLSecurityBookmark = append([]byte(nil), s.URLSecurityBookmark...)
	}
	return &c
}

// IsNestedLink reports whether the shortcut links a nested section.
func (s *Shortcut) IsNestedLink() bool {
	return s.Action == ActionNestedSection
}

// HasFileBookmark reports whether the shortcut carries a local-file capability.
func (s *Shortcut) HasFileBookmark() bool {
	return s.URLSecurityBookmark != nil
}

// ShareEligible reports whether the shortcut may ever be shared.
// Private text and file bookmarks are device-bound.
func (s *Shortcut) ShareEligible() bool {
	return !s.CopyPrivate && !s.HasFileBookmark()
}
