package domain

import "fmt"

// StoreLocation names one of the two physical backing stores.
type StoreLocation int

const (
	// LocationNone marks an entity that has not been persisted yet.
	LocationNone StoreLocation = iota
	// LocationLocal is the device-only store.
	LocationLocal
	// LocationShared is the synced store.
	LocationShared
)

func (l StoreLocation) String() string {
	switch l {
	case LocationLocal:
		return "local"
	case LocationShared:
		return "shared"
	default:
		return "none"
	}
}

// LocationFor maps a shared flag to the store the entity belongs in.
func LocationFor(shared bool) StoreLocation {
	if shared {
		return LocationShared
	}
	return LocationLocal
}

// Kind identifies an entity type inside a store.
type Kind string

const (
	KindSection     Kind = "section"
	KindShortcut    Kind = "shortcut"
	KindReplacement Kind = "replacement"
)

// Entity is implemented by everything EntityStore can place.
type Entity interface {
	EntityKind() Kind
	EntityID() string
	// Placement is the store implied by the entity's own flags.
	Placement() StoreLocation
	// StoredIn is the store the entity was last loaded from or saved to.
	StoredIn() StoreLocation
	MarkStored(loc StoreLocation)
}

// ParseLocation is the inverse of StoreLocation.String.
func ParseLocation(s string) (StoreLocation, error) {
	switch s {
	case "local":
		return LocationLocal, nil
	case "shared":
		return LocationShared, nil
	default:
		return LocationNone, fmt.Errorf("unknown store location %q", s)
	}
}
