package domain

import (
	"math"
	"sort"
	"strings"
)

const (
	ScoreExactMatch     = 100.0
	ScorePrefixMatch    = 75.0
	ScoreWordPrefix     = 60.0
	ScoreSubstringMatch = 50.0
	ScoreFuzzyMatch     = 25.0

	// Earlier words and earlier substrings score higher.
	ScorePositionBonus = 10.0

	// Exact name match bonus
	ScoreExactNameBonus = 200.0

	// Usage contributes log10(count+1) * weight * 100.
	ScoreUsageWeight = 0.1
)

// Match is a shortcut ranked against a search query.
type Match struct {
	Shortcut     *Shortcut `json:"shortcut"`
	LexicalScore float64   `json:"lexicalScore"`
	UsageScore   float64   `json:"usageScore"`
	TotalScore   float64   `json:"totalScore"`
}

// ScoreName scores a shortcut name against a query. Both are folded with
// NameKey first. Zero means no match.
func ScoreName(query, name string) float64 {
	q, n := NameKey(query), NameKey(name)
	if q == "" || n == "" {
		return 0
	}

	if q == n {
		return ScoreExactMatch + ScoreExactNameBonus
	}
	if strings.HasPrefix(n, q) {
		return ScorePrefixMatch
	}

	words := strings.Fields(n)
	for i, w := range words {
		if strings.HasPrefix(w, q) {
			return ScoreWordPrefix + positionBonus(i)
		}
	}

	if idx := strings.Index(n, q); idx >= 0 {
		return ScoreSubstringMatch + ScorePositionBonus*(1.0-float64(idx)/float64(len(n)))
	}

	// every query word appears somewhere in the name
	if qw := strings.Fields(q); len(qw) > 1 {
		all := true
		for _, w := range qw {
			if !strings.Contains(n, w) {
				all = false
				break
			}
		}
		if all {
			return ScoreFuzzyMatch
		}
	}

	if sim := similarity(q, n); sim > 0.5 {
		return ScoreFuzzyMatch * sim
	}
	return 0
}

func positionBonus(position int) float64 {
	return ScorePositionBonus * math.Exp(-float64(position)*0.3)
}

// similarity is the share of query runes present in s.
func similarity(query, s string) float64 {
	total, hits := 0, 0
	for _, c := range query {
		if c == ' ' {
			continue
		}
		total++
		if strings.ContainsRune(s, c) {
			hits++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// RankShortcuts scores every launchable shortcut against query and returns
// the matches best first. usage maps shortcut ids to launch counts and may
// be nil. Ties keep the order of shortcuts.
func RankShortcuts(query string, shortcuts []*Shortcut, usage map[string]uint64) []Match {
	out := make([]Match, 0, len(shortcuts))
	for _, sc := range shortcuts {
		if sc.IsNestedLink() {
			continue
		}
		lexical := ScoreName(query, sc.Name)
		if lexical == 0 {
			continue
		}

		var used float64
		if n := usage[sc.ID]; n > 0 {
			used = math.Log10(float64(n)+1) * ScoreUsageWeight * 100
		}
		out = append(out, Match{
			Shortcut:     sc,
			LexicalScore: lexical,
			UsageScore:   used,
			TotalScore:   lexical + used,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalScore > out[j].TotalScore
	})
	return out
}
