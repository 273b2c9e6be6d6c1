// Package store places entities in one of two physical stores and moves
// them when their shared flag changes.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/launchbar/internal/domain"
	"github.com/MrSnakeDoc/launchbar/internal/logger"
)

// Record is one serialized entity as held by a Backend.
type Record struct {
	ID   string
	Data []byte
}

// Backend is one physical store. Implementations report their own I/O
// failures and never retry.
type Backend interface {
	List(ctx context.Context, kind domain.Kind) ([]Record, error)
	Put(ctx context.Context, kind domain.Kind, id string, data []byte) error
	Delete(ctx context.Context, kind domain.Kind, id string) error
}

// ChangeFeed exposes the remote-change counter of the shared store.
type ChangeFeed interface {
	Counter() uint64
}

// mirrored is implemented by entities that keep a local copy while shared.
type mirrored interface {
	MirrorsLocally() bool
}

// EntityStore decides, per entity, which Backend holds it.
type EntityStore struct {
	local  Backend
	shared Backend
	logger logger.Logger
}

// New creates an EntityStore over the two backends.
func New(local, shared Backend, log logger.Logger) *EntityStore {
	return &EntityStore{
		local:  local,
		shared: shared,
		logger: log,
	}
}

func (s *EntityStore) backend(loc domain.StoreLocation) Backend {
	if loc == domain.LocationShared {
		return s.shared
	}
	return s.local
}

// LoadSections returns the sections of both stores, each tagged with its location.
func (s *EntityStore) LoadSections(ctx context.Context) ([]*domain.Section, error) {
	return load[domain.Section](ctx, s, domain.KindSection)
}

// LoadShortcuts returns the shortcuts of both stores.
func (s *EntityStore) LoadShortcuts(ctx context.Context) ([]*domain.Shortcut, error) {
	return load[domain.Shortcut](ctx, s, domain.KindShortcut)
}

// LoadReplacements returns the replacements of both stores.
func (s *EntityStore) LoadReplacements(ctx context.Context) ([]*domain.Replacement, error) {
	return load[domain.Replacement](ctx, s, domain.KindReplacement)
}

// SaveSection writes a section, moving it between stores if needed.
func (s *EntityStore) SaveSection(ctx context.Context, sec *domain.Section) error {
	return s.save(ctx, sec)
}

// SaveShortcut writes a shortcut, moving it between stores if needed.
func (s *EntityStore) SaveShortcut(ctx context.Context, sc *domain.Shortcut) error {
	return s.save(ctx, sc)
}

// SaveReplacement writes a replacement.
func (s *EntityStore) SaveReplacement(ctx context.Context, r *domain.Replacement) error {
	return s.save(ctx, r)
}

// DeleteSection removes a section from wherever it lives.
func (s *EntityStore) DeleteSection(ctx context.Context, sec *domain.Section) error {
	return s.delete(ctx, sec)
}

// DeleteShortcut removes a shortcut from wherever it lives.
func (s *EntityStore) DeleteShortcut(ctx context.Context, sc *domain.Shortcut) error {
	return s.delete(ctx, sc)
}

// DeleteReplacement removes a replacement.
func (s *EntityStore) DeleteReplacement(ctx context.Context, r *domain.Replacement) error {
	return s.delete(ctx, r)
}

type entityPtr[T any] interface {
	*T
	domain.Entity
}

func load[T any, P entityPtr[T]](ctx context.Context, s *EntityStore, kind domain.Kind) ([]P, error) {
	var localRecs, sharedRecs []Record

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, err := s.local.List(gctx, kind)
		if err != nil {
			return &domain.PersistenceError{Op: "load", Location: domain.LocationLocal, Kind: kind, Err: err}
		}
		localRecs = recs
		return nil
	})
	g.Go(func() error {
		recs, err := s.shared.List(gctx, kind)
		if err != nil {
			return &domain.PersistenceError{Op: "load", Location: domain.LocationShared, Kind: kind, Err: err}
		}
		sharedRecs = recs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[string]P, len(localRecs)+len(sharedRecs))
	order := make([]string, 0, len(localRecs)+len(sharedRecs))
	add := func(loc domain.StoreLocation, recs []Record) {
		for _, rec := range recs {
			var v T
			if err := json.Unmarshal(rec.Data, &v); err != nil {
				s.logger.Warn("skipping undecodable record",
					logger.String("kind", string(kind)),
					logger.String("id", rec.ID),
					logger.String("location", loc.String()),
					logger.Error(err))
				continue
			}
			e := P(&v)
			e.MarkStored(loc)

			prev, dup := byID[e.EntityID()]
			if !dup {
				byID[e.EntityID()] = e
				order = append(order, e.EntityID())
				continue
			}
			if preferred(e, prev) {
				byID[e.EntityID()] = e
			}
		}
	}
	add(domain.LocationShared, sharedRecs)
	add(domain.LocationLocal, localRecs)

	out := make([]P, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	return out, nil
}

// updated is implemented by entities that carry a modification time.
type updated interface {
	Updated() time.Time
}

// preferred decides between two copies of the same id, which happens for a
// mirror or after an interrupted move. The copy sitting where its own flags
// place it wins, then the more recently updated one.
func preferred(a, b domain.Entity) bool {
	aHome := a.StoredIn() == a.Placement()
	bHome := b.StoredIn() == b.Placement()
	if aHome != bHome {
		return aHome
	}
	au, aok := a.(updated)
	bu, bok := b.(updated)
	return aok && bok && au.Updated().After(bu.Updated())
}

// save puts the entity where its flags place it. A move inserts into the
// target first and then deletes from the source; if that delete fails the
// target copy is withdrawn again so the entity stays in exactly one store.
func (s *EntityStore) save(ctx context.Context, e domain.Entity) error {
	kind, id := e.EntityKind(), e.EntityID()
	data, err := json.Marshal(e)
	if err != nil {
		return &domain.PersistenceError{Op: "encode", Location: e.Placement(), Kind: kind, ID: id, Err: err}
	}

	target, from := e.Placement(), e.StoredIn()
	mirror := false
	if m, ok := e.(mirrored); ok {
		mirror = m.MirrorsLocally()
	}

	if err := s.backend(target).Put(ctx, kind, id, data); err != nil {
		return &domain.PersistenceError{Op: "save", Location: target, Kind: kind, ID: id, Err: err}
	}

	if mirror {
		return s.settleMirrored(ctx, e, data, target, from)
	}

	if from != domain.LocationNone && from != target {
		if err := s.backend(from).Delete(ctx, kind, id); err != nil {
			if cerr := s.backend(target).Delete(ctx, kind, id); cerr != nil {
				s.logger.Error("entity left in both stores after failed move",
					logger.String("kind", string(kind)),
					logger.String("id", id),
					logger.Error(cerr))
				err = errors.Join(err, cerr)
			}
			return &domain.PersistenceError{Op: "move", Location: from, Kind: kind, ID: id, Err: err}
		}
		s.logger.Info("moved entity between stores",
			logger.String("kind", string(kind)),
			logger.String("id", id),
			logger.String("from", from.String()),
			logger.String("to", target.String()))
	}

	e.MarkStored(target)
	return nil
}

// settleMirrored keeps the local copy of a mirrored entity in step.
// While shared it is written to both stores; once local, the shared copy goes.
func (s *EntityStore) settleMirrored(ctx context.Context, e domain.Entity, data []byte, target, from domain.StoreLocation) error {
	kind, id := e.EntityKind(), e.EntityID()
	e.MarkStored(target)

	if target == domain.LocationShared {
		if err := s.local.Put(ctx, kind, id, data); err != nil {
			return &domain.PersistenceError{Op: "mirror", Location: domain.LocationLocal, Kind: kind, ID: id, Err: err}
		}
		return nil
	}

	if from == domain.LocationShared {
		if err := s.shared.Delete(ctx, kind, id); err != nil {
			return &domain.PersistenceError{Op: "move", Location: domain.LocationShared, Kind: kind, ID: id, Err: err}
		}
		s.logger.Info("stopped sharing mirrored entity",
			logger.String("kind", string(kind)),
			logger.String("id", id))
	}
	return nil
}

func (s *EntityStore) delete(ctx context.Context, e domain.Entity) error {
	kind, id, loc := e.EntityKind(), e.EntityID(), e.StoredIn()
	if loc == domain.LocationNone {
		return nil
	}
	if err := s.backend(loc).Delete(ctx, kind, id); err != nil {
		return &domain.PersistenceError{Op: "delete", Location: loc, Kind: kind, ID: id, Err: err}
	}
	if m, ok := e.(mirrored); ok && m.MirrorsLocally() && loc == domain.LocationShared {
		if err := s.local.Delete(ctx, kind, id); err != nil {
			return &domain.PersistenceError{Op: "delete", Location: domain.LocationLocal, Kind: kind, ID: id, Err: err}
		}
	}
	e.MarkStored(domain.LocationNone)
	return nil
}
