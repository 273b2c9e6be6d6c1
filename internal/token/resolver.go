// Package token expands {token} markers against replacement values.
package token

import (
	"sort"
	"strings"
	"time"

	"github.com/MrSnakeDoc/launchbar/internal/domain"
)

// DefaultMaxDepth bounds nested expansion. A replacement whose value refers
// back to its own token fails with a TokenResolutionError instead of
// recursing forever.
const DefaultMaxDepth = 32

// Touched is the set of replacements used by one resolution, keyed by token.
type Touched map[string]*domain.Replacement

// Tokens returns the touched tokens in sorted order.
func (t Touched) Tokens() []string {
	out := make([]string, 0, len(t))
	for k := range t {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Replacements returns the touched replacements ordered by token.
func (t Touched) Replacements() []*domain.Replacement {
	out := make([]*domain.Replacement, 0, len(t))
	for _, k := range t.Tokens() {
		out = append(out, t[k])
	}
	return out
}

// Resolver substitutes tokens using a fixed replacement table.
// It holds no other state and is safe for concurrent use.
type Resolver struct {
	table    map[string]*domain.Replacement
	maxDepth int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMaxDepth overrides DefaultMaxDepth. Values below 1 are ignored.
func WithMaxDepth(depth int) Option {
	return func(r *Resolver) {
		if depth > 0 {
			r.maxDepth = depth
		}
	}
}

// NewResolver indexes replacements by token. Later duplicates lose.
func NewResolver(replacements []*domain.Replacement, opts ...Option) *Resolver {
	r := &Resolver{
		table:    make(map[string]*domain.Replacement, len(replacements)),
		maxDepth: DefaultMaxDepth,
	}
	for _, rep := range replacements {
		if _, dup := r.table[rep.Token]; !dup {
			r.table[rep.Token] = rep
		}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Lookup returns the replacement registered for token.
func (r *Resolver) Lookup(token string) (*domain.Replacement, bool) {
	rep, ok := r.table[token]
	return rep, ok
}

// Resolve expands every {token} in text.
//
// The innermost token is always expanded before the one enclosing it.
// Unknown tokens are removed. An enclosing span whose name was produced by
// an inner expansion is kept as literal text when nothing matches it.
func (r *Resolver) Resolve(text string) (string, Touched, error) {
	touched := Touched{}
	out, err := r.resolve(text, 0, touched)
	if err != nil {
		return "", touched, err
	}
	return out, touched, nil
}

func (r *Resolver) resolve(text string, depth int, touched Touched) (string, error) {
	if depth > r.maxDepth {
		return "", &domain.TokenResolutionError{Depth: r.maxDepth}
	}

	var out strings.Builder
	rest := text
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			out.WriteString(rest)
			return out.String(), nil
		}
		out.WriteString(rest[:open])

		value, next, ok, err := r.span(rest, open, depth, touched)
		if err != nil {
			return "", err
		}
		if !ok {
			// Unterminated marker: the brace stays as typed.
			out.WriteByte('{')
			rest = rest[open+1:]
			continue
		}
		out.WriteString(value)
		rest = rest[next:]
	}
}

// span resolves the marker opening at s[open]. It returns the marker's
// value and the index just past its closing brace; ok is false when the
// marker is never closed. Embedded markers are resolved first and their
// values become part of the enclosing name without being scanned again.
func (r *Resolver) span(s string, open, depth int, touched Touched) (string, int, bool, error) {
	if depth > r.maxDepth {
		return "", 0, false, &domain.TokenResolutionError{Depth: r.maxDepth}
	}

	var name strings.Builder
	embedded := false
	for i := open + 1; i < len(s); {
		switch s[i] {
		case '}':
			n := name.String()
			if _, known := r.table[n]; embedded && !known {
				return "{" + n + "}", i + 1, true, nil
			}
			value, err := r.expand(n, depth, touched)
			return value, i + 1, true, err
		case '{':
			value, next, ok, err := r.span(s, i, depth+1, touched)
			if err != nil || !ok {
				return "", 0, false, err
			}
			embedded = true
			name.WriteString(value)
			i = next
		default:
			name.WriteByte(s[i])
			i++
		}
	}
	return "", 0, false, nil
}

// expand returns the fully resolved value of one token, or "" when unknown.
func (r *Resolver) expand(name string, depth int, touched Touched) (string, error) {
	rep, ok := r.table[name]
	if !ok {
		return "", nil
	}
	touched[rep.Token] = rep
	if depth+1 > r.maxDepth {
		return "", &domain.TokenResolutionError{Token: name, Depth: r.maxDepth}
	}
	return r.resolve(rep.Replacement, depth+1, touched)
}

// Expired returns the replacements whose value has lapsed at now.
func Expired(replacements []*domain.Replacement, now time.Time) []*domain.Replacement {
	var out []*domain.Replacement
	for _, rep := range replacements {
		if rep.Expired(now) {
			out = append(out, rep)
		}
	}
	return out
}

// References lists the distinct token names that appear in text, in order
// of first appearance. Embedded markers are reported by their innermost name.
func References(text string) []string {
	var out []string
	seen := map[string]bool{}
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		j := strings.IndexAny(text[i+1:], "{}")
		if j < 0 {
			break
		}
		if text[i+1+j] == '}' {
			name := text[i+1 : i+1+j]
			if name != "" && !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}
