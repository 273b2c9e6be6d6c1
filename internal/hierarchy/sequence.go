package hierarchy

import (
	"context"

	"github.com/MrSnakeDoc/launchbar/internal/domain"
)

// renumber rewrites the sequences of list to 1..N in list order. With
// leaveGap set it skips one number directly after the entry whose id is
// after, or before the first entry when after is empty, and returns that
// number. An unknown after leaves the gap at the end. Only entries whose
// sequence changes are passed to save.
func renumber[T domain.Entity](
	ctx context.Context,
	list []T,
	seq func(T) *int,
	after string,
	leaveGap bool,
	save func(context.Context, T) error,
) (int, error) {
	next, gap := 1, 0
	if leaveGap && after == "" {
		gap, next = 1, 2
	}
	for _, e := range list {
		if p := seq(e); *p != next {
			*p = next
			if err := save(ctx, e); err != nil {
				return 0, err
			}
		}
		next++
		if leaveGap && gap == 0 && e.EntityID() == after {
			gap = next
			next++
		}
	}
	if leaveGap && gap == 0 {
		gap = next
	}
	return gap, nil
}

func sectionSeq(s *domain.Section) *int   { return &s.Sequence }
func shortcutSeq(s *domain.Shortcut) *int { return &s.Sequence }

// RenumberSections closes any holes or duplicates in section sequences.
func (m *Manager) RenumberSections(ctx context.Context) error {
	_, err := renumber(ctx, m.sections, sectionSeq, "", false, m.saveSection)
	m.sortShortcuts()
	return err
}

// RenumberSectionsLeavingGap renumbers sections and reserves the number
// right after the section afterID (or the first number when afterID is
// empty). It returns the reserved sequence.
func (m *Manager) RenumberSectionsLeavingGap(ctx context.Context, afterID string) (int, error) {
	gap, err := renumber(ctx, m.sections, sectionSeq, afterID, true, m.saveSection)
	m.sortShortcuts()
	return gap, err
}

// RenumberShortcuts closes holes or duplicates among a section's shortcuts.
func (m *Manager) RenumberShortcuts(ctx context.Context, sectionID string) error {
	_, err := renumber(ctx, m.ShortcutsOf(sectionID), shortcutSeq, "", false, m.saveShortcut)
	return err
}

// RenumberShortcutsLeavingGap is RenumberSectionsLeavingGap for the
// shortcuts of one section.
func (m *Manager) RenumberShortcutsLeavingGap(ctx context.Context, sectionID, afterID string) (int, error) {
	return renumber(ctx, m.ShortcutsOf(sectionID), shortcutSeq, afterID, true, m.saveShortcut)
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

// ─────────────────────────────────────────────────────────────────
// Sections
// ─────────────────────────────────────────────────────────────────

func (m *Manager) checkSection(sec *domain.Section) error {
	if sec.IsDefault {
		return nil
	}
	if domain.Blank(sec.Name) {
		return domain.Violation(domain.RuleNamedSection, "only the default section may be unnamed")
	}
	if other, ok := m.SectionNamed(sec.Name); ok && other.ID != sec.ID {
		return domain.Violation(domain.RuleUniqueName, "a section named %q already exists", sec.Name)
	}
	return nil
}

// AddSection inserts a new section at position sec.Sequence (1-based,
// clamped), shifting later sections down.
func (m *Manager) AddSection(ctx context.Context, sec *domain.Section) error {
	if sec.ID == "" {
		sec.ID = domain.NewID()
	}
	if _, exists := m.Section(sec.ID); exists {
		return domain.Violation(domain.RuleUniqueName, "section %s already exists", sec.ID)
	}
	if sec.IsDefault {
		return domain.Violation(domain.RuleDefaultSection, "there is already a default section")
	}
	if err := m.checkSection(sec); err != nil {
		return err
	}

	pos := clampIndex(sec.Sequence-1, len(m.sections))
	after := ""
	if pos > 0 {
		after = m.sections[pos-1].ID
	}
	gap, err := m.RenumberSectionsLeavingGap(ctx, after)
	if err != nil {
		return err
	}
	sec.Sequence = gap
	if err := m.saveSection(ctx, sec); err != nil {
		return err
	}
	m.sections = append(m.sections, sec)
	m.sortSections()
	m.sortShortcuts()
	return nil
}

// UpdateSection applies the fields of draft to the section with the same
// id. A changed Shared flag runs the sharing cascade; a changed Sequence
// moves the section.
func (m *Manager) UpdateSection(ctx context.Context, draft *domain.Section) error {
	cur, ok := m.Section(draft.ID)
	if !ok {
		return domain.ErrNotFound
	}
	if cur.IsDefault != draft.IsDefault {
		return domain.Violation(domain.RuleDefaultSection, "the default flag cannot change")
	}
	if err := m.checkSection(draft); err != nil {
		return err
	}

	cur.Name = draft.Name
	cur.MenuTitle = draft.MenuTitle
	cur.KeyEquivalent = draft.KeyEquivalent
	cur.Inline = draft.Inline
	if link, ok := m.NestingShortcut(cur.ID); ok && link.Name != cur.Name {
		link.Name = cur.Name
		if err := m.saveShortcut(ctx, link); err != nil {
			return err
		}
	}

	if cur.Shared != draft.Shared {
		if err := m.SetShared(ctx, cur.ID, draft.Shared); err != nil {
			return err
		}
	} else if err := m.saveSection(ctx, cur); err != nil {
		return err
	}

	if draft.Sequence != cur.Sequence {
		return m.MoveSection(ctx, cur.ID, draft.Sequence-1)
	}
	return nil
}

// MoveSection places a section at index (0-based, clamped) and renumbers.
func (m *Manager) MoveSection(ctx context.Context, id string, index int) error {
	from := -1
	for i, s := range m.sections {
		if s.ID == id {
			from = i
			break
		}
	}
	if from < 0 {
		return domain.ErrNotFound
	}
	sec := m.sections[from]
	rest := append(append([]*domain.Section(nil), m.sections[:from]...), m.sections[from+1:]...)
	index = clampIndex(index, len(rest))
	ordered := append(append(append([]*domain.Section(nil), rest[:index]...), sec), rest[index:]...)
	m.sections = ordered
	return m.RenumberSections(ctx)
}

// ─────────────────────────────────────────────────────────────────
// Shortcuts
// ─────────────────────────────────────────────────────────────────

func (m *Manager) checkShortcut(sc *domain.Shortcut) error {
	owner, ok := m.Section(sc.SectionID)
	if !ok {
		return domain.Violation(domain.RuleOwningSection, "section %s does not exist", sc.SectionID)
	}
	if !sc.IsNestedLink() {
		if other, ok := m.ShortcutNamed(sc.Name); ok && other.ID != sc.ID && !domain.Blank(sc.Name) {
			return domain.Violation(domain.RuleUniqueName, "a shortcut named %q already exists", sc.Name)
		}
	}
	if sc.Shared {
		if !sc.ShareEligible() {
			return domain.Violation(domain.RuleShareEligibility, "shortcuts holding file bookmarks or private text cannot be shared")
		}
		if !m.IsSectionShared(owner.ID) {
			return domain.Violation(domain.RuleShareEligibility, "section %q is not shared", owner.Title())
		}
	}
	return nil
}

// AddShortcut inserts a shortcut into its section at position
// sc.Sequence (1-based, clamped). Nested links are created with Nest.
func (m *Manager) AddShortcut(ctx context.Context, sc *domain.Shortcut) error {
	if sc.IsNestedLink() {
		return domain.Violation(domain.RuleNestedLinkCreation, "nested links are created by nesting a section")
	}
	if sc.ID == "" {
		sc.ID = domain.NewID()
	}
	if _, exists := m.Shortcut(sc.ID); exists {
		return domain.Violation(domain.RuleUniqueName, "shortcut %s already exists", sc.ID)
	}
	if err := m.checkShortcut(sc); err != nil {
		return err
	}
	return m.insertShortcut(ctx, sc)
}

func (m *Manager) insertShortcut(ctx context.Context, sc *domain.Shortcut) error {
	siblings := m.ShortcutsOf(sc.SectionID)
	pos := clampIndex(sc.Sequence-1, len(siblings))
	after := ""
	if pos > 0 {
		after = siblings[pos-1].ID
	}
	gap, err := m.RenumberShortcutsLeavingGap(ctx, sc.SectionID, after)
	if err != nil {
		return err
	}
	sc.Sequence = gap
	if err := m.saveShortcut(ctx, sc); err != nil {
		return err
	}
	m.shortcuts = append(m.shortcuts, sc)
	m.sortShortcuts()
	return nil
}

// UpdateShortcut applies the fields of draft to the shortcut with the same
// id, moving it when its section or sequence changed.
func (m *Manager) UpdateShortcut(ctx context.Context, draft *domain.Shortcut) error {
	cur, ok := m.Shortcut(draft.ID)
	if !ok {
		return domain.ErrNotFound
	}
	if cur.IsNestedLink() != draft.IsNestedLink() {
		return domain.Violation(domain.RuleNestedLinkCreation, "a shortcut cannot become or stop being a nested link")
	}
	if cur.IsNestedLink() && cur.NestedSectionID != draft.NestedSectionID {
		return domain.Violation(domain.RuleNestedLinkCreation, "a nested link cannot change its target")
	}
	if err := m.checkShortcut(draft); err != nil {
		return err
	}
	moved := draft.SectionID != cur.SectionID
	if moved && cur.IsNestedLink() {
		if err := m.checkRenest(cur.NestedSectionID, draft.SectionID); err != nil {
			return err
		}
	}

	cur.Name = draft.Name
	cur.Action = draft.Action
	cur.URL = draft.URL
	cur.URLSecurityBookmark = append([]byte(nil), draft.URLSecurityBookmark...)
	cur.CopyText = draft.CopyText
	cur.CopyMessage = draft.CopyMessage
	cur.CopyPrivate = draft.CopyPrivate
	cur.ReplacementToken = draft.ReplacementToken
	cur.KeyEquivalent = draft.KeyEquivalent
	cur.Shared = draft.Shared

	if moved || draft.Sequence != cur.Sequence {
		return m.moveShortcut(ctx, cur, draft.SectionID, draft.Sequence-1)
	}
	return m.saveShortcut(ctx, cur)
}

// MoveShortcut places a shortcut at index (0-based, clamped) within
// sectionID, which may differ from its current section. A shared shortcut
// dropped into a section that is not shared stops being shared.
func (m *Manager) MoveShortcut(ctx context.Context, id, sectionID string, index int) error {
	sc, ok := m.Shortcut(id)
	if !ok {
		return domain.ErrNotFound
	}
	if _, ok := m.Section(sectionID); !ok {
		return domain.Violation(domain.RuleOwningSection, "section %s does not exist", sectionID)
	}
	if sc.IsNestedLink() && sectionID != sc.SectionID {
		if err := m.checkRenest(sc.NestedSectionID, sectionID); err != nil {
			return err
		}
	}
	if sc.Shared && !m.IsSectionShared(sectionID) {
		sc.Shared = false
	}
	return m.moveShortcut(ctx, sc, sectionID, index)
}

func (m *Manager) moveShortcut(ctx context.Context, sc *domain.Shortcut, sectionID string, index int) error {
	from := sc.SectionID
	var rest []*domain.Shortcut
	for _, s := range m.ShortcutsOf(sectionID) {
		if s.ID != sc.ID {
			rest = append(rest, s)
		}
	}
	index = clampIndex(index, len(rest))
	ordered := append(append(append([]*domain.Shortcut(nil), rest[:index]...), sc), rest[index:]...)

	sc.SectionID = sectionID
	sc.Sequence = 0 // forces a save below
	if _, err := renumber(ctx, ordered, shortcutSeq, "", false, m.saveShortcut); err != nil {
		return err
	}
	m.sortShortcuts()
	if from != sectionID {
		return m.RenumberShortcuts(ctx, from)
	}
	return nil
}

// checkRenest validates moving the link of child into section owner.
func (m *Manager) checkRenest(child, owner string) error {
	if child == owner || m.IsDescendant(owner, child) {
		return domain.Violation(domain.RuleAcyclicNesting, "section cannot be nested inside itself")
	}
	return nil
}
