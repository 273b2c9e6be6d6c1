package domain

import (
	"regexp"
	"strings"
	"time"
)

var tokenPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// ValidToken reports whether s can be used as a replacement token.
func ValidToken(s string) bool {
	return tokenPattern.MatchString(s)
}

// Replacement is a keyed substitution value referenced as {token}.
type Replacement struct {
	ID string `json:"id"`

	// Token is globally unique and matches [A-Za-z0-9-]+.
	Token string `json:"token"`

	// Name is globally unique (case-insensitive).
	Name string `json:"name"`

	// Replacement may itself embed {token} markers.
	Replacement string `json:"replacement"`

	// AllowedValues is an optional comma-separated choice list.
	AllowedValues string `json:"allowedValues,omitempty"`

	// Expiry is in hours. 0 never expires.
	Expiry int `json:"expiry"`

	// Entered is when the value was last assigned. Zero means never.
	Entered time.Time `json:"entered"`

	stored StoreLocation
}

// EntityKind implements Entity.
func (r *Replacement) EntityKind() Kind { return KindReplacement }

// EntityID implements Entity.
func (r *Replacement) EntityID() string { return r.ID }

// Placement implements Entity. Replacements never leave the local store.
func (r *Replacement) Placement() StoreLocation { return LocationLocal }

// StoredIn implements Entity.
func (r *Replacement) StoredIn() StoreLocation { return r.stored }

// MarkStored implements Entity.
func (r *Replacement) MarkStored(loc StoreLocation) { r.stored = loc }

// Clone returns a detached copy, including the store tag.
func (r *Replacement) Clone() *Replacement {
	c := *r
	return &c
}

// Choices splits AllowedValues into trimmed, non-empty entries.
func (r *Replacement) Choices() []string {
	if strings.TrimSpace(r.AllowedValues) == "" {
		return nil
	}
	raw := strings.Split(r.AllowedValues, ",")
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Allows reports whether value is acceptable for this replacement.
func (r *Replacement) Allows(value string) bool {
	choices := r.Choices()
	if len(choices) == 0 {
		return true
	}
	for _, c := range choices {
		if c == value {
			return true
		}
	}
	return false
}

// ExpiresAt returns the expiry instant and false when the value never expires.
// A never-entered value counts from the epoch, so it is already expired.
func (r *Replacement) ExpiresAt() (time.Time, bool) {
	if r.Expiry <= 0 {
		return time.Time{}, false
	}
	entered := r.Entered
	if entered.IsZero() {
		entered = time.Unix(0, 0).UTC()
	}
	return entered.Add(time.Duration(r.Expiry) * time.Hour), true
}

// Expired reports whether the value needs to be entered again.
func (r *Replacement) Expired(now time.Time) bool {
	at, ok := r.ExpiresAt()
	return ok && now.After(at)
}
