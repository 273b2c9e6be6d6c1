package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreName(t *testing.T) {
	tests := []struct {
		name  string
		query string
		entry string
		want  float64
	}{
		{"exact", "github", "GitHub", ScoreExactMatch + ScoreExactNameBonus},
		{"prefix", "git", "GitHub", ScorePrefixMatch},
		{"first word prefix is a prefix", "team", "Team wiki", ScorePrefixMatch},
		{"second word prefix", "wik", "Team wiki", ScoreWordPrefix + positionBonus(1)},
		{"no match", "zzz", "GitHub", 0},
		{"empty query", "  ", "GitHub", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ScoreName(tt.query, tt.entry), 1e-9)
		})
	}
}

func TestScoreNameOrdering(t *testing.T) {
	exact := ScoreName("docs", "Docs")
	prefix := ScoreName("doc", "Docs")
	word := ScoreName("doc", "API docs")
	sub := ScoreName("ocs", "Docs")

	assert.Greater(t, exact, prefix)
	assert.Greater(t, prefix, word)
	assert.Greater(t, word, sub)
	assert.Greater(t, sub, 0.0)
}

func TestRankShortcuts(t *testing.T) {
	gh := &Shortcut{ID: "1", Name: "GitHub", Action: ActionURLLink}
	gl := &Shortcut{ID: "2", Name: "GitLab", Action: ActionURLLink}
	link := &Shortcut{ID: "3", Name: "Git tools", Action: ActionNestedSection, NestedSectionID: "x"}
	other := &Shortcut{ID: "4", Name: "Calendar", Action: ActionURLLink}

	got := RankShortcuts("git", []*Shortcut{gh, gl, link, other}, nil)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].Shortcut.ID, "ties keep input order")
	assert.Equal(t, "2", got[1].Shortcut.ID)

	got = RankShortcuts("git", []*Shortcut{gh, gl}, map[string]uint64{"2": 9})
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].Shortcut.ID, "usage breaks the tie")
	assert.InDelta(t, 10.0, got[0].UsageScore, 1e-9)
}
