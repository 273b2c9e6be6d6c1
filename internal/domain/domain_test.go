package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionText(t *testing.T) {
	sc := Shortcut{ID: "x", Action: ActionSetReplacement}
	data, err := json.Marshal(&sc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"action":"setReplacement"`)

	var back Shortcut
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, ActionSetReplacement, back.Action)

	assert.Error(t, json.Unmarshal([]byte(`{"action":"launchRocket"}`), &back))
	assert.Equal(t, "Action(9)", Action(9).String())
}

func TestShareEligible(t *testing.T) {
	assert.True(t, (&Shortcut{}).ShareEligible())
	assert.False(t, (&Shortcut{CopyPrivate: true}).ShareEligible())
	assert.False(t, (&Shortcut{URLSecurityBookmark: []byte{}}).ShareEligible())
}

func TestCloneDetachesBookmark(t *testing.T) {
	sc := &Shortcut{URLSecurityBookmark: []byte("abc")}
	c := sc.Clone()
	c.URLSecurityBookmark[0] = 'z'
	assert.Equal(t, "abc", string(sc.URLSecurityBookmark))
}

func TestValidToken(t *testing.T) {
	for tok, want := range map[string]bool{
		"env":     true,
		"my-host": true,
		"A1":      true,
		"":        false,
		"a b":     false,
		"a_b":     false,
		"{x}":     false,
	} {
		assert.Equal(t, want, ValidToken(tok), tok)
	}
}

func TestReplacementChoices(t *testing.T) {
	r := &Replacement{AllowedValues: " dev, prod ,, staging "}
	assert.Equal(t, []string{"dev", "prod", "staging"}, r.Choices())
	assert.True(t, r.Allows("prod"))
	assert.False(t, r.Allows("Prod"))

	open := &Replacement{AllowedValues: "  "}
	assert.Nil(t, open.Choices())
	assert.True(t, open.Allows("anything"))
}

func TestReplacementExpiry(t *testing.T) {
	entered := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	r := &Replacement{Expiry: 2, Entered: entered}

	at, ok := r.ExpiresAt()
	require.True(t, ok)
	assert.Equal(t, entered.Add(2*time.Hour), at)
	assert.False(t, r.Expired(entered.Add(2*time.Hour)))
	assert.True(t, r.Expired(entered.Add(2*time.Hour+time.Second)))

	never := &Replacement{Expiry: 2}
	assert.True(t, never.Expired(entered), "a value never entered is expired")

	forever := &Replacement{Entered: entered}
	_, ok = forever.ExpiresAt()
	assert.False(t, ok)
	assert.False(t, forever.Expired(entered.Add(1000*time.Hour)))
}

func TestNames(t *testing.T) {
	assert.True(t, SameName("Work", " work "))
	assert.True(t, SameName("STRASSE", "strasse"))
	assert.False(t, SameName("Work", "Works"))
	assert.True(t, Blank(" \t\n"))
	assert.False(t, Blank(" x "))
}

func TestLocation(t *testing.T) {
	for _, l := range []StoreLocation{LocationLocal, LocationShared} {
		back, err := ParseLocation(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, back)
	}
	_, err := ParseLocation("cloud")
	assert.Error(t, err)
	assert.Equal(t, LocationShared, LocationFor(true))
	assert.Equal(t, LocationLocal, LocationFor(false))
}

func TestErrors(t *testing.T) {
	err := Violation(RuleUniqueName, "a section named %q already exists", "Work")
	assert.True(t, IsViolation(err, RuleUniqueName))
	assert.False(t, IsViolation(err, RuleDefaultSection))

	cause := errors.New("disk full")
	perr := &PersistenceError{Op: "save", Location: LocationLocal, Kind: KindSection, ID: "s", Err: cause}
	assert.ErrorIs(t, perr, cause)

	var pe *PersistenceError
	assert.True(t, errors.As(error(perr), &pe))
}

func TestNewIDIsUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewID()
		assert.False(t, seen[id])
		seen[id] = true
	}
}
