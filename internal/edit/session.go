// Package edit implements the draft, validate and commit workflow used to
// create or amend one section or shortcut at a time.
package edit

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/launchbar/internal/domain"
	"github.com/MrSnakeDoc/launchbar/internal/hierarchy"
	"github.com/MrSnakeDoc/launchbar/internal/logger"
)

// Action is what the session is doing with its draft.
type Action int

const (
	ActionNone Action = iota
	ActionCreate
	ActionAmend
)

func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionAmend:
		return "amend"
	default:
		return "none"
	}
}

// Object is the kind of entity selected or being edited.
type Object int

const (
	ObjectNone Object = iota
	ObjectSection
	ObjectShortcut
)

func (o Object) String() string {
	switch o {
	case ObjectSection:
		return "section"
	case ObjectShortcut:
		return "shortcut"
	default:
		return "none"
	}
}

// ParseObject maps "section" and "shortcut" to their Object.
func ParseObject(s string) (Object, error) {
	switch s {
	case "section":
		return ObjectSection, nil
	case "shortcut":
		return ObjectShortcut, nil
	case "", "none":
		return ObjectNone, nil
	}
	return ObjectNone, fmt.Errorf("unknown object %q", s)
}

var (
	ErrNotEditing      = errors.New("no edit in progress")
	ErrNothingSelected = errors.New("nothing is selected")
	ErrWrongObject     = errors.New("draft is of a different kind")
)

// Session holds the selection and at most one uncommitted draft.
//
// Remote updates are suspended on the Manager for as long as a draft is
// open, so a reload never replaces the entity being amended.
type Session struct {
	m      *hierarchy.Manager
	logger logger.Logger

	action Action
	object Object

	// Selection is kept by id so it survives reloads.
	selected   Object
	selectedID string

	section  *domain.Section
	shortcut *domain.Shortcut
	parentID string // nest a created section here on commit

	errs domain.ValidationErrors
}

// NewSession returns an idle session over m.
func NewSession(m *hierarchy.Manager, log logger.Logger) *Session {
	return &Session{m: m, logger: log}
}

// Action reports the current edit action.
func (s *Session) Action() Action { return s.action }

// Object reports the kind of the current draft, or of the selection when idle.
func (s *Session) Object() Object {
	if s.action != ActionNone {
		return s.object
	}
	return s.selected
}

// CanSave reports whether the current draft passes validation.
func (s *Session) CanSave() bool {
	return s.action != ActionNone && len(s.errs) == 0
}

// Errors returns the per-field validation messages of the draft.
func (s *Session) Errors() domain.ValidationErrors {
	out := make(domain.ValidationErrors, len(s.errs))
	for k, v := range s.errs {
		out[k] = v
	}
	return out
}

// Selected returns the kind and id of the selected entity.
func (s *Session) Selected() (Object, string) {
	return s.selected, s.selectedID
}

// SelectedSection returns the live selected section.
func (s *Session) SelectedSection() (*domain.Section, bool) {
	if s.selected != ObjectSection {
		return nil, false
	}
	return s.m.Section(s.selectedID)
}

// SelectedShortcut returns the live selected shortcut.
func (s *Session) SelectedShortcut() (*domain.Shortcut, bool) {
	if s.selected != ObjectShortcut {
		return nil, false
	}
	return s.m.Shortcut(s.selectedID)
}

// DraftSection returns a copy of the section draft.
func (s *Session) DraftSection() (*domain.Section, bool) {
	if s.action == ActionNone || s.object != ObjectSection {
		return nil, false
	}
	return s.section.Clone(), true
}

// DraftShortcut returns a copy of the shortcut draft.
func (s *Session) DraftShortcut() (*domain.Shortcut, bool) {
	if s.action == ActionNone || s.object != ObjectShortcut {
		return nil, false
	}
	return s.shortcut.Clone(), true
}

// Select changes the selection. Selecting something else while a draft is
// open discards the draft first; selecting the same entity is a no-op.
// ObjectNone clears the selection.
func (s *Session) Select(ctx context.Context, obj Object, id string) error {
	if obj == ObjectNone {
		id = ""
	}
	if s.action != ActionNone {
		if s.action == ActionAmend && obj == s.selected && id == s.selectedID {
			return nil
		}
		if err := s.discard(ctx); err != nil {
			return err
		}
	}

	switch obj {
	case ObjectSection:
		if _, ok := s.m.Section(id); !ok {
			return fmt.Errorf("section %s: %w", id, domain.ErrNotFound)
		}
	case ObjectShortcut:
		if _, ok := s.m.Shortcut(id); !ok {
			return fmt.Errorf("shortcut %s: %w", id, domain.ErrNotFound)
		}
	}
	s.selected, s.selectedID = obj, id
	return nil
}

// BeginCreate opens a fresh draft. For a shortcut, parentID is the owning
// section (the default section when empty). For a section, a non-empty
// parentID nests the new section there on commit.
func (s *Session) BeginCreate(ctx context.Context, obj Object, parentID string) error {
	if s.action != ActionNone {
		if err := s.discard(ctx); err != nil {
			return err
		}
	}

	switch obj {
	case ObjectSection:
		if parentID != "" {
			if _, ok := s.m.Section(parentID); !ok {
				return fmt.Errorf("section %s: %w", parentID, domain.ErrNotFound)
			}
		}
		s.section = &domain.Section{
			ID:       domain.NewID(),
			Sequence: s.m.NextSectionSequence(),
		}
	case ObjectShortcut:
		if parentID == "" {
			def := s.m.DefaultSection()
			if def == nil {
				return fmt.Errorf("default section: %w", domain.ErrNotFound)
			}
			parentID = def.ID
		}
		if _, ok := s.m.Section(parentID); !ok {
			return fmt.Errorf("section %s: %w", parentID, domain.ErrNotFound)
		}
		s.shortcut = &domain.Shortcut{
			ID:        domain.NewID(),
			Action:    domain.ActionURLLink,
			SectionID: parentID,
			Sequence:  s.m.NextShortcutSequence(parentID),
		}
	default:
		return ErrWrongObject
	}

	s.selected, s.selectedID = ObjectNone, ""
	s.parentID = ""
	if obj == ObjectSection {
		s.parentID = parentID
	}
	s.open(ActionCreate, obj)
	return nil
}

// BeginAmend copies the selected entity into a draft.
func (s *Session) BeginAmend(ctx context.Context) error {
	if s.action == ActionAmend {
		return nil
	}
	if s.action == ActionCreate {
		if err := s.discard(ctx); err != nil {
			return err
		}
	}

	switch s.selected {
	case ObjectSection:
		sec, ok := s.m.Section(s.selectedID)
		if !ok {
			return ErrNothingSelected
		}
		s.section = sec.Clone()
	case ObjectShortcut:
		sc, ok := s.m.Shortcut(s.selectedID)
		if !ok {
			return ErrNothingSelected
		}
		s.shortcut = sc.Clone()
	default:
		return ErrNothingSelected
	}
	s.open(ActionAmend, s.selected)
	return nil
}

// EditSection changes the section draft and revalidates it.
func (s *Session) EditSection(fn func(d *domain.Section)) error {
	if s.action == ActionNone {
		return ErrNotEditing
	}
	if s.object != ObjectSection {
		return ErrWrongObject
	}
	id, def := s.section.ID, s.section.IsDefault
	fn(s.section)
	s.section.ID, s.section.IsDefault = id, def
	s.validate()
	return nil
}

// EditShortcut changes the shortcut draft, normalises and revalidates it.
func (s *Session) EditShortcut(fn func(d *domain.Shortcut)) error {
	if s.action == ActionNone {
		return ErrNotEditing
	}
	if s.object != ObjectShortcut {
		return ErrWrongObject
	}
	id := s.shortcut.ID
	fn(s.shortcut)
	s.shortcut.ID = id
	s.validate()
	return nil
}

// Commit writes the draft through the Manager, selects the result and
// closes the draft. An invalid draft returns its domain.ValidationErrors
// and stays open; so does a draft the Manager rejects.
func (s *Session) Commit(ctx context.Context) error {
	if s.action == ActionNone {
		return ErrNotEditing
	}
	s.validate()
	if len(s.errs) > 0 {
		return s.Errors()
	}

	var (
		err error
		id  string
	)
	switch s.object {
	case ObjectSection:
		id = s.section.ID
		err = s.commitSection(ctx)
	case ObjectShortcut:
		id = s.shortcut.ID
		if s.action == ActionCreate {
			err = s.m.AddShortcut(ctx, s.shortcut.Clone())
		} else {
			err = s.m.UpdateShortcut(ctx, s.shortcut.Clone())
		}
	}
	if err != nil {
		return err
	}

	s.logger.Info("edit committed",
		logger.String("action", s.action.String()),
		logger.String("object", s.object.String()),
		logger.String("id", id))

	obj := s.object
	if err := s.close(ctx); err != nil {
		return err
	}
	s.selected, s.selectedID = obj, id
	return nil
}

func (s *Session) commitSection(ctx context.Context) error {
	if s.action == ActionAmend {
		return s.m.UpdateSection(ctx, s.section.Clone())
	}
	if err := s.m.AddSection(ctx, s.section.Clone()); err != nil {
		return err
	}
	if s.parentID == "" {
		return nil
	}
	index := s.m.NextShortcutSequence(s.parentID) - 1
	if _, err := s.m.Nest(ctx, s.section.ID, s.parentID, index); err != nil {
		// The section is already stored, so the draft is done with; leave
		// it selected as a top-level section.
		id := s.section.ID
		if cerr := s.close(ctx); cerr != nil {
			return errors.Join(err, cerr)
		}
		s.selected, s.selectedID = ObjectSection, id
		return fmt.Errorf("section created but not nested: %w", err)
	}
	return nil
}

// Cancel drops the draft. A created entity is never persisted; an amended
// one stays selected with its committed values.
func (s *Session) Cancel(ctx context.Context) error {
	if s.action == ActionNone {
		return nil
	}
	if s.action == ActionCreate {
		s.selected, s.selectedID = ObjectNone, ""
	}
	return s.discard(ctx)
}

// Preview shows the draft shortcut with its tokens expanded.
func (s *Session) Preview() (Preview, error) {
	if s.action == ActionNone {
		return Preview{}, ErrNotEditing
	}
	if s.object != ObjectShortcut {
		return Preview{}, ErrWrongObject
	}
	return BuildPreview(s.shortcut, s.m.Resolver())
}

func (s *Session) open(action Action, obj Object) {
	s.m.SuspendRemoteUpdates()
	s.action, s.object = action, obj
	s.validate()
}

func (s *Session) discard(ctx context.Context) error {
	s.logger.Debug("edit discarded",
		logger.String("action", s.action.String()),
		logger.String("object", s.object.String()))
	return s.close(ctx)
}

// close returns to idle and lifts the suspension taken by open, which may
// apply a deferred reload.
func (s *Session) close(ctx context.Context) error {
	s.action, s.object = ActionNone, ObjectNone
	s.section, s.shortcut, s.parentID = nil, nil, ""
	s.errs = nil
	_, err := s.m.ResumeRemoteUpdates(ctx)
	return err
}

func (s *Session) validate() {
	switch s.object {
	case ObjectSection:
		s.errs = ValidateSection(s.section, s.m)
	case ObjectShortcut:
		NormalizeShortcut(s.shortcut)
		s.errs = ValidateShortcut(s.shortcut, s.m)
	default:
		s.errs = nil
	}
}
