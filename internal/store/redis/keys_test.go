package redis

import (
	"testing"

	"github.com/MrSnakeDoc/launchbar/internal/domain"
	"github.com/MrSnakeDoc/launchbar/internal/logger"
)

func TestKeys(t *testing.T) {
	if got := RecordKey("shared", domain.KindSection, "abc"); got != "launchbar:shared:section:abc" {
		t.Errorf("RecordKey() = %q", got)
	}
	if got := IndexKey("local", domain.KindShortcut); got != "launchbar:local:shortcut:all" {
		t.Errorf("IndexKey() = %q", got)
	}
}

func TestChangeFeedIgnoresOwnNotices(t *testing.T) {
	f := NewChangeFeed(nil, "", "me", logger.NewNop())

	f.handle(`{"origin":"me","op":"put","kind":"section","id":"a"}`)
	f.handle(`not json`)
	if got := f.Counter(); got != 0 {
		t.Fatalf("Counter() = %d, want 0", got)
	}

	f.handle(`{"origin":"other","op":"put","kind":"section","id":"a"}`)
	if got := f.Counter(); got != 1 {
		t.Errorf("Counter() = %d, want 1", got)
	}
}
