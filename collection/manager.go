package collection

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/recallmesh/core"
	"github.com/hupe1980/recallmesh/logging"
	"github.com/hupe1980/recallmesh/store"
)

// State is the lifecycle position of a managed collection.
type State int

const (
	// StateUnopened means no initialization attempt has been made yet.
	StateUnopened State = iota
	// StateOpen means the collection handle is ready for use.
	StateOpen
	// StateFailed means the last initialization attempt failed; a later
	// EnsureOpen may try again.
	StateFailed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateUnopened:
		return "unopened"
	case StateOpen:
		return "open"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrNotReady is returned for operations that require an open collection.
var ErrNotReady = core.NewError(core.KindCollection, "collection not ready")

// Options configure a Manager.
type Options struct {
	// Logger receives lifecycle messages.
	Logger logging.Logger
}

// Manager owns exactly one named collection: it connects lazily, checks
// existence, creates the collection with the kind's schema when absent and
// hands out the open handle afterwards. Creation is idempotent only at the
// store level; concurrent managers racing to create the same name are
// resolved by the store's own create semantics.
type Manager struct {
	connector store.Connector
	kind      SourceKind
	name      string
	schema    store.Schema
	logger    logging.Logger

	mu      sync.Mutex
	state   State
	col     store.Collection
	lastErr error
}

// NewManager creates a manager for the collection derived from (kind,
// logicalName), schema-bound to the given provider. Nothing is dialed until
// the first EnsureOpen call.
func NewManager(connector store.Connector, kind SourceKind, logicalName string, provider core.Provider, optFns ...func(o *Options)) *Manager {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	name := Name(kind, logicalName)
	return &Manager{
		connector: connector,
		kind:      kind,
		name:      name,
		schema:    SchemaFor(kind, name, provider),
		logger:    opts.Logger,
	}
}

// Name returns the deterministic collection name.
func (m *Manager) Name() string { return m.name }

// Kind returns the source kind the manager was created for.
func (m *Manager) Kind() SourceKind { return m.kind }

// Schema returns the creation schema of the managed collection.
func (m *Manager) Schema() store.Schema { return m.schema }

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// EnsureOpen brings the manager into the Open state. It is a no-op once
// open; from Unopened or Failed it connects, checks existence, creates the
// collection when absent and stores the handle. Any failure moves the
// manager to Failed and surfaces the wrapped cause.
func (m *Manager) EnsureOpen(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateOpen {
		return nil
	}

	if err := m.open(ctx); err != nil {
		m.state = StateFailed
		m.lastErr = err
		m.logger.Error("Collection open failed", "collection", m.name, "error", err.Error())
		return err
	}
	m.state = StateOpen
	m.lastErr = nil
	m.logger.Info("Collection open", "collection", m.name, "kind", string(m.kind))
	return nil
}

// open performs one initialization attempt. The connection is used for this
// single initialization and not held beyond it.
func (m *Manager) open(ctx context.Context) error {
	sess, err := m.connector.Connect(ctx)
	if err != nil {
		return fmt.Errorf("open collection %s: %w", m.name, err)
	}

	exists, err := sess.Exists(ctx, m.name)
	if err != nil {
		return core.Wrap(core.KindCollection, err, "existence check for %s", m.name)
	}
	if exists {
		m.col = sess.Collection(m.name)
		return nil
	}

	col, err := sess.Create(ctx, m.schema)
	if err != nil {
		return core.Wrap(core.KindCollection, err, "create collection %s", m.name)
	}
	m.col = col
	return nil
}

// Collection returns the open handle, or ErrNotReady when the manager is not
// in the Open state. It never triggers an initialization by itself.
func (m *Manager) Collection() (store.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateOpen {
		return nil, ErrNotReady
	}
	return m.col, nil
}
