package dispatch

import (
	"context"
	"time"

	"github.com/hupe1980/recallmesh/collection"
	"github.com/hupe1980/recallmesh/core"
	"github.com/hupe1980/recallmesh/logging"
	"github.com/hupe1980/recallmesh/memory"
	"github.com/hupe1980/recallmesh/transport"
)

// Options configure a Dispatcher.
type Options struct {
	// Logger receives routine telemetry.
	Logger logging.Logger
	// Messenger carries replies for the transport exchange routine. Leaving
	// it unset disables ChannelExchange.
	Messenger transport.Messenger
}

// Dispatcher executes the routine selected by a strategy pair against one
// managed collection and its memory store. It assumes the manager is already
// Open; the lazy opening happens one level up in the engine.
type Dispatcher struct {
	mgr       *collection.Manager
	mem       *memory.Store
	completer Completer
	messenger transport.Messenger
	fields    []string
	client    composer
	server    composer
	logger    logging.Logger
}

// New creates a Dispatcher over the manager's collection. The completer
// performs client-side composition for the semantic and transport routines.
func New(mgr *collection.Manager, mem *memory.Store, completer Completer, optFns ...func(o *Options)) *Dispatcher {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Dispatcher{
		mgr:       mgr,
		mem:       mem,
		completer: completer,
		messenger: opts.Messenger,
		fields:    mgr.Schema().PropertyNames(),
		client:    &clientComposer{completer: completer, logger: opts.Logger},
		server:    &serverComposer{logger: opts.Logger},
		logger:    opts.Logger,
	}
}

// Dispatch runs the routine selected by sel for the query. The task prompt
// is consumed only by the generative modes, where the store composes the
// reply around it. Errors stay structured here; rendering them to display
// text happens at the engine boundary.
func (d *Dispatcher) Dispatch(ctx context.Context, sel Selector, query, task string) (string, error) {
	preset, ok := PresetFor(sel)
	if !ok {
		d.logger.Warn("Unknown strategy pair rejected", "strategy", sel.String())
		return "", ErrUnknownStrategy
	}

	col, err := d.mgr.Collection()
	if err != nil {
		return "", err
	}

	req := request{col: col, sel: sel, preset: preset, fields: d.fields, query: query, task: task}

	start := time.Now()

	var reply string
	if sel.Response == ResponseGenerative {
		reply, err = d.runGenerative(ctx, req)
	} else {
		reply, err = d.runSemantic(ctx, req)
	}

	if err != nil {
		d.logger.Error("Exchange routine failed", "strategy", sel.String(), "collection", col.Name(), "error", err.Error())
		return "", err
	}

	d.logger.Debug("Exchange routine completed", "strategy", sel.String(), "collection", col.Name(), "duration", time.Since(start).String())

	return reply, nil
}

// runSemantic composes client-side and persists the (query, reply) pair.
// The composer already folded retrieval and completion failures into the
// reply text, so the only errors left are persistence ones.
func (d *Dispatcher) runSemantic(ctx context.Context, req request) (string, error) {
	reply, err := d.client.compose(ctx, req)
	if err != nil {
		return "", err
	}

	hasErrors, err := d.mem.AppendPair(ctx, req.query, reply)
	if err != nil {
		return "", err
	}
	if hasErrors {
		d.logger.Warn("Exchange pair persisted partially", "strategy", req.sel.String(), "collection", req.col.Name())
	}

	return reply, nil
}

// runGenerative composes server-side and persists a single assistant turn,
// but only when generation actually produced text. Failed generations leave
// the collection untouched.
func (d *Dispatcher) runGenerative(ctx context.Context, req request) (string, error) {
	reply, err := d.server.compose(ctx, req)
	if err != nil {
		return "", err
	}

	if _, err := d.mem.AppendTurn(ctx, core.RoleAssistant, reply); err != nil {
		return "", err
	}

	return reply, nil
}
