package edit

import (
	"github.com/MrSnakeDoc/launchbar/internal/domain"
	"github.com/MrSnakeDoc/launchbar/internal/token"
)

// Preview is a shortcut as it would launch right now.
type Preview struct {
	Name     string   `json:"name"`
	URL      string   `json:"url,omitempty"`
	CopyText string   `json:"copyText,omitempty"`
	Tokens   []string `json:"tokens"`
}

// BuildPreview expands the tokens in a shortcut's name, URL and copy text.
// Private text is never expanded into a preview.
func BuildPreview(sc *domain.Shortcut, r *token.Resolver) (Preview, error) {
	all := token.Touched{}
	expand := func(text string) (string, error) {
		out, touched, err := r.Resolve(text)
		for k, v := range touched {
			all[k] = v
		}
		return out, err
	}

	var (
		p   Preview
		err error
	)
	if p.Name, err = expand(sc.Name); err != nil {
		return Preview{}, err
	}
	if p.URL, err = expand(sc.URL); err != nil {
		return Preview{}, err
	}
	if sc.CopyPrivate {
		p.CopyText = sc.CopyMessage
	} else if p.CopyText, err = expand(sc.CopyText); err != nil {
		return Preview{}, err
	}
	p.Tokens = all.Tokens()
	return p, nil
}
