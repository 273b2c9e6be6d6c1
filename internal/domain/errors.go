package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when an id or name does not resolve.
	ErrNotFound = errors.New("entity not found")

	// ErrNotAuthenticated is returned when the authenticator refuses access
	// to private content.
	ErrNotAuthenticated = errors.New("authentication required")
)

// ValidationError reports one draft field that fails its rule.
// It is advisory: the draft stays editable.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates field errors keyed by field name.
type ValidationErrors map[string]string

func (e ValidationErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// PersistenceError wraps a failure of the backing store.
// It is never retried here.
type PersistenceError struct {
	Op       string
	Location StoreLocation
	Kind     Kind
	ID       string
	Err      error
}

func (e *PersistenceError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("failed to %s %s in %s store: %v", e.Op, e.Kind, e.Location, e.Err)
	}
	return fmt.Sprintf("failed to %s %s %s in %s store: %v", e.Op, e.Kind, e.ID, e.Location, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Invariant rule names carried by InvariantViolation.
const (
	RuleDefaultSection     = "default-section"
	RuleUniqueName         = "unique-name"
	RuleNamedSection       = "named-section"
	RuleUniqueToken        = "unique-token"
	RuleTokenPattern       = "token-pattern"
	RuleAcyclicNesting     = "acyclic-nesting"
	RuleSingleNestParent   = "single-nest-parent"
	RuleShareEligibility   = "share-eligibility"
	RuleOwningSection      = "owning-section"
	RuleAllowedValue       = "allowed-value"
	RuleNestedLinkCreation = "nested-link-creation"
	RuleSelfReference      = "self-reference"
)

// InvariantViolation rejects an operation before any mutation happens.
type InvariantViolation struct {
	Rule    string
	Message string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant %s violated: %s", e.Rule, e.Message)
}

// Violation builds an InvariantViolation with a formatted message.
func Violation(rule, format string, args ...any) error {
	return &InvariantViolation{Rule: rule, Message: fmt.Sprintf(format, args...)}
}

// IsViolation reports whether err carries an InvariantViolation for rule.
// An empty rule matches any violation.
func IsViolation(err error, rule string) bool {
	var iv *InvariantViolation
	if !errors.As(err, &iv) {
		return false
	}
	return rule == "" || iv.Rule == rule
}

// LivenessRisk is returned when a reload could not reach a quiescent
// state before the caller's bound ran out.
type LivenessRisk struct {
	Attempts int
	Err      error
}

func (e *LivenessRisk) Error() string {
	return fmt.Sprintf("load did not settle after %d attempts: %v", e.Attempts, e.Err)
}

func (e *LivenessRisk) Unwrap() error { return e.Err }

// TokenResolutionError is returned when token expansion nests deeper than
// the resolver allows, which is what a self-referential replacement does.
type TokenResolutionError struct {
	Token string
	Depth int
}

func (e *TokenResolutionError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("token expansion exceeded depth %d", e.Depth)
	}
	return fmt.Sprintf("token {%s} exceeded expansion depth %d", e.Token, e.Depth)
}
