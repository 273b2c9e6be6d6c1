// Package launch turns a shortcut into the concrete thing to do with it:
// a URL to open, text to copy, a section to show or a value to pick.
package launch

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/launchbar/internal/domain"
	"github.com/MrSnakeDoc/launchbar/internal/logger"
	"github.com/MrSnakeDoc/launchbar/internal/token"
)

type Kind string

const (
	KindOpenURL           Kind = "openURL"
	KindCopyText          Kind = "copyText"
	KindOpenSection       Kind = "openSection"
	KindChooseReplacement Kind = "chooseReplacement"
)

// Plan is what launching a shortcut amounts to. A URL plan may carry text
// to copy as well.
type Plan struct {
	Kind     Kind   `json:"kind"`
	Shortcut string `json:"shortcut"`

	URL     string `json:"url,omitempty"`
	Text    string `json:"text,omitempty"`
	Message string `json:"message,omitempty"`
	Section string `json:"section,omitempty"`

	// Tokens lists every replacement consulted; Expired the subset whose
	// value has outlived its expiry and should be asked for again.
	Tokens  []string `json:"tokens"`
	Expired []string `json:"expired,omitempty"`

	Replacement *Choice `json:"replacement,omitempty"`
}

// Choice describes the value picker of a setReplacement shortcut.
type Choice struct {
	Token   string   `json:"token"`
	Name    string   `json:"name"`
	Current string   `json:"current"`
	Choices []string `json:"choices,omitempty"`
	Expired bool     `json:"expired"`
}

// Source is what the planner reads. *hierarchy.Manager satisfies it.
type Source interface {
	Replacement(tok string) (*domain.Replacement, bool)
	Resolver() *token.Resolver
}

// Authenticator gates private copy text. A nil error means access granted.
type Authenticator interface {
	Authenticate(ctx context.Context, reason string) error
}

// BookmarkResolver turns an opaque file bookmark back into a URL.
type BookmarkResolver interface {
	ResolveBookmark(ctx context.Context, bookmark []byte) (string, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, reason string) error

func (f AuthenticatorFunc) Authenticate(ctx context.Context, reason string) error {
	return f(ctx, reason)
}

// DenyAll refuses every authentication request.
var DenyAll = AuthenticatorFunc(func(context.Context, string) error {
	return domain.ErrNotAuthenticated
})

type Planner struct {
	src       Source
	auth      Authenticator
	bookmarks BookmarkResolver
	logger    logger.Logger
	now       func() time.Time
}

type Option func(*Planner)

func WithAuthenticator(a Authenticator) Option {
	return func(p *Planner) { p.auth = a }
}

func WithBookmarkResolver(b BookmarkResolver) Option {
	return func(p *Planner) { p.bookmarks = b }
}

func WithClock(now func() time.Time) Option {
	return func(p *Planner) { p.now = now }
}

// NewPlanner builds a Planner. Without WithAuthenticator private text is
// never revealed.
func NewPlanner(src Source, log logger.Logger, opts ...Option) *Planner {
	p := &Planner{src: src, auth: DenyAll, logger: log, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan works out what launching sc does.
func (p *Planner) Plan(ctx context.Context, sc *domain.Shortcut) (*Plan, error) {
	plan := &Plan{Shortcut: sc.ID, Tokens: []string{}}

	switch sc.Action {
	case domain.ActionNestedSection:
		plan.Kind = KindOpenSection
		plan.Section = sc.NestedSectionID
		return plan, nil

	case domain.ActionSetReplacement:
		r, ok := p.src.Replacement(sc.ReplacementToken)
		if !ok {
			return nil, fmt.Errorf("replacement {%s}: %w", sc.ReplacementToken, domain.ErrNotFound)
		}
		expired := r.Expired(p.now())
		plan.Kind = KindChooseReplacement
		plan.Tokens = []string{r.Token}
		plan.Replacement = &Choice{
			Token:   r.Token,
			Name:    r.Name,
			Current: r.Replacement,
			Choices: r.Choices(),
			Expired: expired,
		}
		if expired {
			plan.Expired = []string{r.Token}
		}
		return plan, nil
	}

	res := p.src.Resolver()
	touched := token.Touched{}
	expand := func(text string) (string, error) {
		out, t, err := res.Resolve(text)
		for k, v := range t {
			touched[k] = v
		}
		return out, err
	}

	var err error
	if sc.HasFileBookmark() && p.bookmarks != nil {
		if plan.URL, err = p.bookmarks.ResolveBookmark(ctx, sc.URLSecurityBookmark); err != nil {
			return nil, fmt.Errorf("failed to resolve file bookmark: %w", err)
		}
	} else if plan.URL, err = expand(sc.URL); err != nil {
		return nil, err
	}

	if sc.CopyText != "" {
		if sc.CopyPrivate {
			if err := p.auth.Authenticate(ctx, fmt.Sprintf("copy %q", sc.Name)); err != nil {
				p.logger.Warn("private text withheld",
					logger.String("shortcut", sc.ID),
					logger.Error(err))
				return nil, fmt.Errorf("shortcut %q: %w", sc.Name, domain.ErrNotAuthenticated)
			}
		}
		if plan.Text, err = expand(sc.CopyText); err != nil {
			return nil, err
		}
		if plan.Message, err = expand(sc.CopyMessage); err != nil {
			return nil, err
		}
	}

	plan.Kind = KindCopyText
	if plan.URL != "" {
		plan.Kind = KindOpenURL
	}
	plan.Tokens = touched.Tokens()
	for _, r := range token.Expired(touched.Replacements(), p.now()) {
		plan.Expired = append(plan.Expired, r.Token)
	}
	return plan, nil
}
