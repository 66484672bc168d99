package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/recallmesh/collection"
	"github.com/hupe1980/recallmesh/core"
	"github.com/hupe1980/recallmesh/logging"
	"github.com/hupe1980/recallmesh/store"
)

// Options configure a Store.
type Options struct {
	// Logger receives persistence events. Defaults to a no-op logger.
	Logger logging.Logger
	// Now overrides the timestamp source.
	Now func() time.Time
	// NewID overrides the entry identifier source.
	NewID func() string
}

// Store persists dialogue entries and structured payloads into the
// collection held by a manager.
type Store struct {
	mgr    *collection.Manager
	logger logging.Logger
	now    func() time.Time
	newID  func() string
}

// New creates a Store bound to the manager's collection.
func New(mgr *collection.Manager, optFns ...func(o *Options)) *Store {
	opts := Options{
		Logger: logging.NoOpLogger{},
		Now:    time.Now,
		NewID:  uuid.NewString,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Store{
		mgr:    mgr,
		logger: opts.Logger,
		now:    opts.Now,
		newID:  opts.NewID,
	}
}

// AppendTurn stores a single dialogue turn under a generated identifier and
// the current timestamp, returning the identifier. The manager must already
// be Open.
func (s *Store) AppendTurn(ctx context.Context, role core.Role, content string) (string, error) {
	col, err := s.mgr.Collection()
	if err != nil {
		return "", err
	}

	entry := core.NewDialogueEntry(s.now(), role, content)
	id := s.newID()

	if err := col.Insert(ctx, id, entry.Properties()); err != nil {
		return "", core.Wrap(core.KindPersistence, err, "append turn to %s", col.Name())
	}

	s.logger.Debug("Turn persisted", "collection", col.Name(), "role", string(role), "entry_id", id)

	return id, nil
}

// AppendPair stores a user turn and the assistant turn answering it as one
// batch write. Both entries share a single timestamp so the pair sorts as
// one exchange. The returned flag reports whether any entry in the batch
// failed; entries that succeeded stay persisted either way.
func (s *Store) AppendPair(ctx context.Context, userContent, assistantContent string) (bool, error) {
	col, err := s.mgr.Collection()
	if err != nil {
		return false, err
	}

	ts := s.now()

	objects := []store.BatchObject{
		{ID: s.newID(), Properties: core.NewDialogueEntry(ts, core.RoleUser, userContent).Properties()},
		{ID: s.newID(), Properties: core.NewDialogueEntry(ts, core.RoleAssistant, assistantContent).Properties()},
	}

	result, err := col.InsertMany(ctx, objects)
	if err != nil {
		return false, core.Wrap(core.KindPersistence, err, "append pair to %s", col.Name())
	}

	if result.HasErrors {
		for _, be := range result.Errors {
			s.logger.Warn("Pair entry rejected", "collection", col.Name(), "index", be.Index, "reason", be.Message)
		}
	} else {
		s.logger.Debug("Pair persisted", "collection", col.Name(), "entry_ids", result.IDs)
	}

	return result.HasErrors, nil
}

// AppendStructured stores an arbitrary payload after sanitizing it for the
// store's write path. The role always comes from the caller; a timestamp is
// stamped only when the payload carries none. Returns the generated entry
// identifier.
func (s *Store) AppendStructured(ctx context.Context, role core.Role, payload map[string]any) (string, error) {
	col, err := s.mgr.Collection()
	if err != nil {
		return "", err
	}

	props := Sanitize(payload)
	props["role"] = string(role)

	if _, ok := props["timestamp"]; !ok {
		props["timestamp"] = s.now().UTC().Format(time.RFC3339)
	}

	id := s.newID()

	if err := col.Insert(ctx, id, props); err != nil {
		return "", core.Wrap(core.KindPersistence, err, "append structured entry to %s", col.Name())
	}

	s.logger.Debug("Structured entry persisted", "collection", col.Name(), "role", string(role), "entry_id", id)

	return id, nil
}
