package hierarchy

import (
	"context"

	"github.com/MrSnakeDoc/launchbar/internal/domain"
	"github.com/MrSnakeDoc/launchbar/internal/logger"
	"github.com/MrSnakeDoc/launchbar/internal/token"
)

// Replacements returns all replacements ordered by token.
func (m *Manager) Replacements() []*domain.Replacement {
	return append([]*domain.Replacement(nil), m.replacements...)
}

// Replacement looks a replacement up by token.
func (m *Manager) Replacement(tok string) (*domain.Replacement, bool) {
	for _, r := range m.replacements {
		if r.Token == tok {
			return r, true
		}
	}
	return nil, false
}

func (m *Manager) replacementByID(id string) (*domain.Replacement, bool) {
	for _, r := range m.replacements {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

func (m *Manager) checkReplacement(r *domain.Replacement) error {
	if !domain.ValidToken(r.Token) {
		return domain.Violation(domain.RuleTokenPattern, "token %q must be letters, digits and dashes", r.Token)
	}
	if domain.Blank(r.Name) {
		return domain.Violation(domain.RuleUniqueName, "replacement %q needs a name", r.Token)
	}
	for _, other := range m.replacements {
		if other.ID == r.ID {
			continue
		}
		if other.Token == r.Token {
			return domain.Violation(domain.RuleUniqueToken, "token %q is already defined", r.Token)
		}
		if domain.SameName(other.Name, r.Name) {
			return domain.Violation(domain.RuleUniqueName, "a replacement named %q already exists", r.Name)
		}
	}
	if r.Replacement != "" && !r.Allows(r.Replacement) {
		return domain.Violation(domain.RuleAllowedValue, "%q is not an allowed value for {%s}", r.Replacement, r.Token)
	}
	return checkSelfReference(r.Token, r.Replacement)
}

// checkSelfReference rejects a value that names its own token; resolving
// it could only end at the depth limit.
func checkSelfReference(tok, value string) error {
	for _, ref := range token.References(value) {
		if ref == tok {
			return domain.Violation(domain.RuleSelfReference, "value for {%s} refers to itself", tok)
		}
	}
	return nil
}

// AddReplacement stores a new replacement.
func (m *Manager) AddReplacement(ctx context.Context, r *domain.Replacement) error {
	if r.ID == "" {
		r.ID = domain.NewID()
	}
	if err := m.checkReplacement(r); err != nil {
		return err
	}
	if err := m.store.SaveReplacement(ctx, r); err != nil {
		return err
	}
	m.replacements = append(m.replacements, r)
	m.sortAll()
	return nil
}

// UpdateReplacement applies draft to the replacement with the same id.
func (m *Manager) UpdateReplacement(ctx context.Context, draft *domain.Replacement) error {
	cur, ok := m.replacementByID(draft.ID)
	if !ok {
		return domain.ErrNotFound
	}
	if err := m.checkReplacement(draft); err != nil {
		return err
	}
	if draft.Replacement != cur.Replacement {
		cur.Entered = m.now()
	}
	cur.Token = draft.Token
	cur.Name = draft.Name
	cur.Replacement = draft.Replacement
	cur.AllowedValues = draft.AllowedValues
	cur.Expiry = draft.Expiry
	if err := m.store.SaveReplacement(ctx, cur); err != nil {
		return err
	}
	m.sortAll()
	return nil
}

// RemoveReplacement deletes the replacement for a token.
func (m *Manager) RemoveReplacement(ctx context.Context, tok string) error {
	r, ok := m.Replacement(tok)
	if !ok {
		return domain.ErrNotFound
	}
	if err := m.store.DeleteReplacement(ctx, r); err != nil {
		return err
	}
	for i, x := range m.replacements {
		if x == r {
			m.replacements = append(m.replacements[:i], m.replacements[i+1:]...)
			break
		}
	}
	return nil
}

// AssignReplacement records a value for a token and restarts its expiry.
func (m *Manager) AssignReplacement(ctx context.Context, tok, value string) error {
	r, ok := m.Replacement(tok)
	if !ok {
		return domain.ErrNotFound
	}
	if !r.Allows(value) {
		return domain.Violation(domain.RuleAllowedValue, "%q is not an allowed value for {%s}", value, tok)
	}
	if err := checkSelfReference(tok, value); err != nil {
		return err
	}
	r.Replacement = value
	r.Entered = m.now()
	if err := m.store.SaveReplacement(ctx, r); err != nil {
		return err
	}
	m.logger.Debug("replacement assigned", logger.String("token", tok))
	return nil
}

// ClearExpired blanks the value of every expired replacement and returns
// the tokens it cleared.
func (m *Manager) ClearExpired(ctx context.Context) ([]string, error) {
	var cleared []string
	for _, r := range m.Expired() {
		if r.Replacement == "" {
			continue
		}
		r.Replacement = ""
		if err := m.store.SaveReplacement(ctx, r); err != nil {
			return cleared, err
		}
		cleared = append(cleared, r.Token)
	}
	return cleared, nil
}

// Expired lists replacements whose entered value has outlived its expiry.
func (m *Manager) Expired() []*domain.Replacement {
	return token.Expired(m.replacements, m.now())
}

// Resolver builds a token resolver over the current replacements.
func (m *Manager) Resolver() *token.Resolver {
	return token.NewResolver(m.replacements, token.WithMaxDepth(m.tokenDepth))
}
