package hierarchy

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/launchbar/internal/domain"
	"github.com/MrSnakeDoc/launchbar/internal/logger"
)

// Nest makes child appear inside parent through a nested-section link
// inserted at index (0-based, clamped). The link takes the child's name
// and the parent's shared flag, and the child's shared flag follows.
func (m *Manager) Nest(ctx context.Context, childID, parentID string, index int) (*domain.Shortcut, error) {
	child, ok := m.Section(childID)
	if !ok {
		return nil, fmt.Errorf("section %s: %w", childID, domain.ErrNotFound)
	}
	parent, ok := m.Section(parentID)
	if !ok {
		return nil, fmt.Errorf("section %s: %w", parentID, domain.ErrNotFound)
	}
	if child.IsDefault {
		return nil, domain.Violation(domain.RuleDefaultSection, "the default section cannot be nested")
	}
	if err := m.checkRenest(child.ID, parent.ID); err != nil {
		return nil, err
	}
	if m.IsNested(child.ID) {
		return nil, domain.Violation(domain.RuleSingleNestParent, "section %q is already nested", child.Title())
	}

	link := &domain.Shortcut{
		ID:              domain.NewID(),
		Name:            child.Name,
		Action:          domain.ActionNestedSection,
		SectionID:       parent.ID,
		NestedSectionID: child.ID,
		Sequence:        index + 1,
		Shared:          parent.Shared,
	}
	if err := m.insertShortcut(ctx, link); err != nil {
		return nil, err
	}
	if err := m.SetShared(ctx, child.ID, parent.Shared); err != nil {
		return link, err
	}

	m.logger.Info("section nested",
		logger.String("section", child.ID),
		logger.String("parent", parent.ID))
	return link, nil
}

// Unnest removes the link nesting a section; the section becomes top level.
func (m *Manager) Unnest(ctx context.Context, childID string) error {
	link, ok := m.NestingShortcut(childID)
	if !ok {
		return fmt.Errorf("nested link for section %s: %w", childID, domain.ErrNotFound)
	}
	return m.RemoveShortcut(ctx, link.ID)
}

// RemoveShortcut deletes a shortcut and closes the gap it leaves.
// Removing a nested link un-nests its section.
func (m *Manager) RemoveShortcut(ctx context.Context, id string) error {
	sc, ok := m.Shortcut(id)
	if !ok {
		return domain.ErrNotFound
	}
	if err := m.store.DeleteShortcut(ctx, sc); err != nil {
		return err
	}
	for i, s := range m.shortcuts {
		if s.ID == id {
			m.shortcuts = append(m.shortcuts[:i], m.shortcuts[i+1:]...)
			break
		}
	}
	return m.RenumberShortcuts(ctx, sc.SectionID)
}

// RemoveSection deletes a section together with its shortcuts. Sections
// it nests become top level. The default section cannot be removed.
func (m *Manager) RemoveSection(ctx context.Context, id string) error {
	sec, ok := m.Section(id)
	if !ok {
		return domain.ErrNotFound
	}
	if sec.IsDefault {
		return domain.Violation(domain.RuleDefaultSection, "the default section cannot be removed")
	}

	if link, ok := m.NestingShortcut(id); ok {
		if err := m.RemoveShortcut(ctx, link.ID); err != nil {
			return err
		}
	}
	for _, sc := range m.ShortcutsOf(id) {
		if err := m.RemoveShortcut(ctx, sc.ID); err != nil {
			return err
		}
	}
	if err := m.store.DeleteSection(ctx, sec); err != nil {
		return err
	}
	for i, s := range m.sections {
		if s.ID == id {
			m.sections = append(m.sections[:i], m.sections[i+1:]...)
			break
		}
	}

	m.logger.Info("section removed", logger.String("id", id))
	return m.RenumberSections(ctx)
}
