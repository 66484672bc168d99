// Package recallmesh provides a high-level façade over the exchange engine:
// vector-store backed conversational memory combined with a live user
// message to produce a grounded reply, durably recording the exchange for
// future retrieval. Most applications interact with this package by:
//  1. Creating an Engine via New() with the store cluster, provider
//     credentials and the collection the engine should remember into
//  2. Calling Exchange() with one of the four strategy selectors (or
//     ChannelExchange() for transport-driven conversations)
//  3. Reading the reply string; failures are already rendered to text
//
// The façade delegates routine selection to dispatch.Dispatcher while
// keeping setup ergonomics concise. The collection is opened lazily on the
// first exchange and the open handle is reused afterwards.
package recallmesh

import (
	"context"

	"github.com/hupe1980/recallmesh/collection"
	"github.com/hupe1980/recallmesh/completion"
	"github.com/hupe1980/recallmesh/core"
	"github.com/hupe1980/recallmesh/dispatch"
	"github.com/hupe1980/recallmesh/logging"
	"github.com/hupe1980/recallmesh/memory"
	"github.com/hupe1980/recallmesh/store"
	"github.com/hupe1980/recallmesh/store/weaviate"
	"github.com/hupe1980/recallmesh/transport"
	"github.com/hupe1980/recallmesh/transport/discord"
)

// Config carries the construction inputs of an Engine. All fields are fixed
// for the engine's lifetime; there is no runtime reconfiguration.
type Config struct {
	// ClusterURL is the vector store cluster endpoint.
	ClusterURL string

	// AdminKey authenticates against the cluster itself. Leave empty for
	// unauthenticated local clusters.
	AdminKey string

	// Credentials bind the engine to one model provider and its API key.
	// The key is forwarded to the store for vectorization and generation
	// and used directly for client-side completion calls.
	Credentials core.ProviderCredentials

	// Kind selects the collection schema: dialogue history or
	// transport-specific channel memory. Defaults to history.
	Kind collection.SourceKind

	// LogicalName is the human-readable collection name. The stored name is
	// derived from it deterministically.
	LogicalName string

	// BotToken enables the Discord transport for channel exchanges.
	// Optional; without it (or a Messenger override) ChannelExchange is
	// unavailable.
	BotToken string
}

// Options configure optional engine collaborators. Any unset dependency is
// built from the Config.
type Options struct {
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger

	// Connector overrides the store connector built from ClusterURL,
	// AdminKey and Credentials.
	Connector store.Connector

	// Completer overrides the completion client built from Credentials.
	Completer dispatch.Completer

	// Messenger overrides the transport built from BotToken.
	Messenger transport.Messenger

	// ChannelPrompt grounds channel replies. Empty uses the completion
	// client's default system prompt.
	ChannelPrompt string
}

// Engine ties collection lifecycle, retrieval dispatch and persistence into
// one exchange surface. An engine serves exactly one collection.
type Engine struct {
	cfg           Config
	mgr           *collection.Manager
	dispatcher    *dispatch.Dispatcher
	channelPrompt string
	logger        logging.Logger
}

// New creates an Engine for the collection named by the Config. No network
// traffic happens here; the store is dialed on the first exchange.
func New(cfg Config, optFns ...func(o *Options)) (*Engine, error) {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if err := cfg.Credentials.Validate(); err != nil {
		return nil, err
	}
	if cfg.LogicalName == "" {
		return nil, core.NewError(core.KindCollection, "missing logical collection name")
	}
	if cfg.ClusterURL == "" && opts.Connector == nil {
		return nil, core.NewError(core.KindConnection, "missing cluster url")
	}
	if cfg.Kind == "" {
		cfg.Kind = collection.SourceHistory
	}

	connector := opts.Connector
	if connector == nil {
		connector = weaviate.NewConnector(cfg.ClusterURL, cfg.AdminKey, cfg.Credentials, func(o *weaviate.Options) {
			o.Logger = opts.Logger
		})
	}

	completer := opts.Completer
	if completer == nil {
		client, err := completion.New(cfg.Credentials, func(o *completion.Options) {
			o.Logger = opts.Logger
		})
		if err != nil {
			return nil, err
		}
		completer = client
	}

	messenger := opts.Messenger
	if messenger == nil && cfg.BotToken != "" {
		m, err := discord.New(cfg.BotToken)
		if err != nil {
			return nil, err
		}
		messenger = m
	}

	mgr := collection.NewManager(connector, cfg.Kind, cfg.LogicalName, cfg.Credentials.Provider, func(o *collection.Options) {
		o.Logger = opts.Logger
	})

	mem := memory.New(mgr, func(o *memory.Options) {
		o.Logger = opts.Logger
	})

	d := dispatch.New(mgr, mem, completer, func(o *dispatch.Options) {
		o.Logger = opts.Logger
		o.Messenger = messenger
	})

	return &Engine{
		cfg:           cfg,
		mgr:           mgr,
		dispatcher:    d,
		channelPrompt: opts.ChannelPrompt,
		logger:        opts.Logger,
	}, nil
}

// ExchangeOptions configure a single exchange call.
type ExchangeOptions struct {
	// Task is the grounding prompt handed to the store's grouped generation
	// in the generative modes. Semantic modes ignore it.
	Task string
}

// WithTask sets the generative task prompt for one exchange.
func WithTask(task string) func(o *ExchangeOptions) {
	return func(o *ExchangeOptions) {
		o.Task = task
	}
}

// Exchange runs one full exchange: it lazily opens the collection on first
// use, dispatches the routine selected by sel and returns the reply. All
// failures are rendered to a human-readable string at this boundary; callers
// receive text, never a structured error.
func (e *Engine) Exchange(ctx context.Context, sel dispatch.Selector, query string, optFns ...func(o *ExchangeOptions)) string {
	opts := ExchangeOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	if err := e.mgr.EnsureOpen(ctx); err != nil {
		return core.Render(err)
	}

	reply, err := e.dispatcher.Dispatch(ctx, sel, query, opts.Task)
	if err != nil {
		return core.Render(err)
	}

	return reply
}

// ChannelExchange runs the transport exchange routine for one inbound
// message and returns the reply text. Failures are rendered to a display
// string like in Exchange.
func (e *Engine) ChannelExchange(ctx context.Context, msg transport.Inbound) string {
	if err := e.mgr.EnsureOpen(ctx); err != nil {
		return core.Render(err)
	}

	reply, err := e.dispatcher.ChannelExchange(ctx, msg, e.channelPrompt)
	if err != nil {
		return core.Render(err)
	}

	return reply
}

// CollectionName returns the derived name of the engine's collection.
func (e *Engine) CollectionName() string { return e.mgr.Name() }

// State returns the lifecycle state of the engine's collection.
func (e *Engine) State() collection.State { return e.mgr.State() }
