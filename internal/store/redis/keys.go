package redis

import "github.com/MrSnakeDoc/launchbar/internal/domain"

const (
	// KeyPrefix namespaces every key written by launchbar.
	KeyPrefix = "launchbar:"
	// DefaultChangeChannel carries change notices for the shared store.
	DefaultChangeChannel = "launchbar:changes"
)

// RecordKey returns the key holding one entity.
// Example: launchbar:shared:section:0190...
func RecordKey(scope string, kind domain.Kind, id string) string {
	return KeyPrefix + scope + ":" + string(kind) + ":" + id
}

// IndexKey returns the set listing every id of a kind.
// Example: launchbar:shared:section:all
func IndexKey(scope string, kind domain.Kind) string {
	return KeyPrefix + scope + ":" + string(kind) + ":all"
}
