package edit

import (
	"net/url"
	"strings"

	"github.com/MrSnakeDoc/launchbar/internal/domain"
	"github.com/MrSnakeDoc/launchbar/internal/token"
)

// Lookup is the read side of the hierarchy that validation consults.
// *hierarchy.Manager satisfies it.
type Lookup interface {
	Section(id string) (*domain.Section, bool)
	SectionNamed(name string) (*domain.Section, bool)
	Shortcut(id string) (*domain.Shortcut, bool)
	ShortcutNamed(name string) (*domain.Shortcut, bool)
	Replacement(tok string) (*domain.Replacement, bool)
	IsSectionShared(id string) bool
	Resolver() *token.Resolver
}

// Field names used as keys in domain.ValidationErrors.
const (
	FieldName             = "name"
	FieldURL              = "url"
	FieldCopyText         = "copyText"
	FieldCopyMessage      = "copyMessage"
	FieldReplacementToken = "replacementToken"
	FieldSection          = "section"
	FieldAction           = "action"
	FieldShared           = "shared"
)

// ValidateSection checks a section draft. A nil result means it can be saved.
func ValidateSection(d *domain.Section, l Lookup) domain.ValidationErrors {
	if d.IsDefault {
		return nil
	}
	errs := domain.ValidationErrors{}
	switch {
	case domain.Blank(d.Name):
		errs[FieldName] = "a name is required"
	default:
		if other, ok := l.SectionNamed(d.Name); ok && other.ID != d.ID {
			errs[FieldName] = "another section already uses this name"
		}
	}
	return result(errs)
}

// ValidateShortcut checks a shortcut draft. A nil result means it can be
// saved. The draft is expected to be normalised first.
func ValidateShortcut(d *domain.Shortcut, l Lookup) domain.ValidationErrors {
	errs := domain.ValidationErrors{}

	if _, ok := l.Section(d.SectionID); !ok {
		errs[FieldSection] = "choose a section"
	}

	if d.IsNestedLink() {
		// Links are only ever amended; their name follows the section.
		if cur, ok := l.Shortcut(d.ID); !ok || !cur.IsNestedLink() {
			errs[FieldAction] = "nested sections are added by nesting a section"
		}
		return result(errs)
	}

	switch {
	case domain.Blank(d.Name):
		errs[FieldName] = "a name is required"
	default:
		if other, ok := l.ShortcutNamed(d.Name); ok && other.ID != d.ID {
			errs[FieldName] = "another shortcut already uses this name"
		}
	}

	switch d.Action {
	case domain.ActionSetReplacement:
		if d.ReplacementToken == "" {
			errs[FieldReplacementToken] = "choose a replacement"
		} else if _, ok := l.Replacement(d.ReplacementToken); !ok {
			errs[FieldReplacementToken] = "no replacement uses this token"
		}
	default:
		if domain.Blank(d.URL) && domain.Blank(d.CopyText) {
			errs[FieldURL] = "enter a URL or text to copy"
		}
	}

	if !domain.Blank(d.URL) {
		if msg := checkURL(d, l.Resolver()); msg != "" {
			errs[FieldURL] = msg
		}
	}
	if d.CopyPrivate && domain.Blank(d.CopyMessage) {
		errs[FieldCopyMessage] = "private text needs a message to show instead"
	}
	if d.Shared && !l.IsSectionShared(d.SectionID) {
		errs[FieldShared] = "the section is not shared"
	}
	return result(errs)
}

// checkURL validates the URL after token expansion.
func checkURL(d *domain.Shortcut, r *token.Resolver) string {
	resolved, _, err := r.Resolve(strings.TrimSpace(d.URL))
	if err != nil {
		return err.Error()
	}
	u, err := url.Parse(resolved)
	if err != nil {
		return "not a valid URL"
	}
	if strings.EqualFold(u.Scheme, "file") && !d.HasFileBookmark() {
		return "local files need a security bookmark"
	}
	return ""
}

// NormalizeShortcut applies the rules a draft is held to while being
// edited: no message without text to copy, and nothing device-bound is
// shared.
func NormalizeShortcut(d *domain.Shortcut) {
	if d.CopyText == "" {
		d.CopyMessage = ""
	}
	if !d.ShareEligible() {
		d.Shared = false
	}
}

func result(errs domain.ValidationErrors) domain.ValidationErrors {
	if len(errs) == 0 {
		return nil
	}
	return errs
}
