package handlers

import (
	"fmt"
	"net/http"

	"github.com/MrSnakeDoc/launchbar/internal/domain"
	"github.com/MrSnakeDoc/launchbar/internal/edit"
	"github.com/MrSnakeDoc/launchbar/internal/httpserver/deps"
)

type selection struct {
	Object string `json:"object"`
	ID     string `json:"id"`
}

type editState struct {
	Action   string                  `json:"action"`
	Object   string                  `json:"object"`
	Selected *selection              `json:"selected,omitempty"`
	Section  *domain.Section         `json:"section,omitempty"`
	Shortcut *domain.Shortcut        `json:"shortcut,omitempty"`
	Preview  *edit.Preview           `json:"preview,omitempty"`
	CanSave  bool                    `json:"canSave"`
	Errors   domain.ValidationErrors `json:"errors,omitempty"`
}

func stateOf(s *edit.Session) editState {
	st := editState{
		Action:  s.Action().String(),
		Object:  s.Object().String(),
		CanSave: s.CanSave(),
	}
	if obj, id := s.Selected(); obj != edit.ObjectNone {
		st.Selected = &selection{Object: obj.String(), ID: id}
	}
	if sec, ok := s.DraftSection(); ok {
		st.Section = sec
	}
	if sc, ok := s.DraftShortcut(); ok {
		st.Shortcut = sc
		if p, err := s.Preview(); err == nil {
			st.Preview = &p
		}
	}
	if errs := s.Errors(); len(errs) > 0 {
		st.Errors = errs
	}
	return st
}

// editStep runs fn against the session and answers with the resulting
// state. A validation failure still reports the state alongside the
// field errors.
func editStep(d deps.Deps, w http.ResponseWriter, r *http.Request, fn func(s *edit.Session) error) {
	var (
		st    editState
		stepE error
	)
	err := d.Core.Edit(r.Context(), func(s *edit.Session) error {
		stepE = fn(s)
		st = stateOf(s)
		return nil
	})
	if err == nil {
		err = stepE
	}
	if err != nil {
		status := statusOf(err)
		if status == http.StatusUnprocessableEntity {
			writeJSON(d, w, status, st)
			return
		}
		writeError(d, w, r, err)
		return
	}
	writeJSON(d, w, http.StatusOK, st)
}

// EditState reports the session without changing it.
func EditState(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		editStep(d, w, r, func(*edit.Session) error { return nil })
	}
}

type selectRequest struct {
	Object string `json:"object"`
	ID     string `json:"id"`
}

func EditSelect(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req selectRequest
		if err := decode(w, r, &req); err != nil {
			badRequest(d, w, err)
			return
		}
		obj, err := edit.ParseObject(req.Object)
		if err != nil {
			badRequest(d, w, err)
			return
		}
		editStep(d, w, r, func(s *edit.Session) error {
			return s.Select(r.Context(), obj, req.ID)
		})
	}
}

type createRequest struct {
	Object string `json:"object"`
	Parent string `json:"parent"`
}

func EditCreate(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := decode(w, r, &req); err != nil {
			badRequest(d, w, err)
			return
		}
		obj, err := edit.ParseObject(req.Object)
		if err != nil || obj == edit.ObjectNone {
			badRequest(d, w, fmt.Errorf("object must be section or shortcut"))
			return
		}
		editStep(d, w, r, func(s *edit.Session) error {
			return s.BeginCreate(r.Context(), obj, req.Parent)
		})
	}
}

func EditAmend(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		editStep(d, w, r, func(s *edit.Session) error {
			return s.BeginAmend(r.Context())
		})
	}
}

func EditCommit(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		editStep(d, w, r, func(s *edit.Session) error {
			return s.Commit(r.Context())
		})
	}
}

func EditCancel(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		editStep(d, w, r, func(s *edit.Session) error {
			return s.Cancel(r.Context())
		})
	}
}

// draftPatch carries the fields a client may change on a draft. Absent
// fields are left alone; identity, ownership of nested links and the
// default flag are not patchable.
type draftPatch struct {
	Name          *string `json:"name"`
	Sequence      *int    `json:"sequence"`
	KeyEquivalent *string `json:"keyEquivalent"`
	Shared        *bool   `json:"shared"`

	MenuTitle *string `json:"menuTitle"`
	Inline    *bool   `json:"inline"`

	Action           *domain.Action `json:"action"`
	URL              *string        `json:"url"`
	CopyText         *string        `json:"copyText"`
	CopyMessage      *string        `json:"copyMessage"`
	CopyPrivate      *bool          `json:"copyPrivate"`
	ReplacementToken *string        `json:"replacementToken"`
	SectionID        *string        `json:"sectionId"`
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func (p draftPatch) applySection(sec *domain.Section) {
	set(&sec.Name, p.Name)
	set(&sec.Sequence, p.Sequence)
	set(&sec.KeyEquivalent, p.KeyEquivalent)
	set(&sec.Shared, p.Shared)
	set(&sec.MenuTitle, p.MenuTitle)
	set(&sec.Inline, p.Inline)
}

func (p draftPatch) applyShortcut(sc *domain.Shortcut) {
	set(&sc.Name, p.Name)
	set(&sc.Sequence, p.Sequence)
	set(&sc.KeyEquivalent, p.KeyEquivalent)
	set(&sc.Shared, p.Shared)
	set(&sc.Action, p.Action)
	set(&sc.URL, p.URL)
	set(&sc.CopyText, p.CopyText)
	set(&sc.CopyMessage, p.CopyMessage)
	set(&sc.CopyPrivate, p.CopyPrivate)
	set(&sc.ReplacementToken, p.ReplacementToken)
	set(&sc.SectionID, p.SectionID)
}

// EditDraft patches the open draft and revalidates it. An invalid draft is
// reported with 200 and its field errors; only Commit refuses it.
func EditDraft(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p draftPatch
		if err := decode(w, r, &p); err != nil {
			badRequest(d, w, err)
			return
		}
		editStep(d, w, r, func(s *edit.Session) error {
			switch s.Object() {
			case edit.ObjectSection:
				return s.EditSection(p.applySection)
			case edit.ObjectShortcut:
				return s.EditShortcut(p.applyShortcut)
			}
			return edit.ErrNotEditing
		})
	}
}
