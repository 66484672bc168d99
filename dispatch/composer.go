package dispatch

import (
	"context"

	"github.com/hupe1980/recallmesh/completion"
	"github.com/hupe1980/recallmesh/core"
	"github.com/hupe1980/recallmesh/logging"
	"github.com/hupe1980/recallmesh/store"
)

// Completer is the client-side composition dependency of the semantic and
// transport routines.
type Completer interface {
	// Complete composes a reply to the query grounded in the retrieved rows.
	Complete(ctx context.Context, query string, contextRows []store.Object) (string, error)
	// CompleteGrounded composes a reply to a raw transport message using a
	// caller-supplied grounding prompt.
	CompleteGrounded(ctx context.Context, prompt, inbound string, contextRows []store.Object) (string, error)
}

// request carries one routine invocation through retrieval and composition.
type request struct {
	col    store.Collection
	sel    Selector
	preset Preset
	fields []string
	query  string
	task   string
}

func (r request) hybridOptions() store.HybridOptions {
	opts := store.HybridOptions{
		Limit:  r.preset.Limit,
		Alpha:  r.preset.Alpha,
		Fields: r.fields,
	}
	if r.preset.RestrictQuery {
		opts.QueryFields = r.fields
	}
	return opts
}

func (r request) nearTextOptions() store.NearTextOptions {
	return store.NearTextOptions{
		Limit:     r.preset.Limit,
		Certainty: r.preset.Certainty,
		Fields:    r.fields,
	}
}

// composer turns one dispatched request into reply text. The two
// implementations split on who composes: the completion API (client side) or
// the store's generative module (server side).
type composer interface {
	compose(ctx context.Context, req request) (string, error)
}

// clientComposer retrieves per the preset and hands the rows plus the raw
// query to the completion call. It always produces reply text: retrieval and
// completion failures are rendered into the reply instead of returned, so
// the exchange still records a pair and the failure text enters memory like
// any other assistant turn.
type clientComposer struct {
	completer Completer
	logger    logging.Logger
}

func (c *clientComposer) compose(ctx context.Context, req request) (string, error) {
	rows, err := retrieve(ctx, req)
	if err != nil {
		c.logger.Error("Retrieval failed", "strategy", req.sel.String(), "collection", req.col.Name(), "error", err.Error())
		return "retrieval failed: " + core.Render(err), nil
	}

	reply, err := c.completer.Complete(ctx, req.query, rows)
	if err != nil {
		c.logger.Error("Completion failed", "strategy", req.sel.String(), "collection", req.col.Name(), "error", err.Error())
		return completion.IssueText(err), nil
	}

	return reply, nil
}

// serverComposer delegates retrieval and composition to the store's grouped
// generation, prompted by the caller's task. A null generation is returned
// as a generation-kind error.
type serverComposer struct {
	logger logging.Logger
}

func (s *serverComposer) compose(ctx context.Context, req request) (string, error) {
	var (
		gen store.Generated
		err error
	)

	switch req.sel.Retrieval {
	case RetrievalHybrid:
		gen, err = req.col.GenerateHybrid(ctx, req.query, req.task, req.hybridOptions())
	case RetrievalNearText:
		gen, err = req.col.GenerateNearText(ctx, req.query, req.task, req.nearTextOptions())
	default:
		return "", ErrUnknownStrategy
	}

	if err != nil {
		return "", core.Wrap(core.KindGeneration, err, "grouped generation via %s", req.sel.String())
	}

	if !gen.OK || gen.Text == "" {
		s.logger.Warn("Generation returned no text", "strategy", req.sel.String(), "collection", req.col.Name())
		return "", core.NewError(core.KindGeneration, "generation returned no usable text")
	}

	return gen.Text, nil
}

// retrieve executes the preset's retrieval against the collection.
func retrieve(ctx context.Context, req request) ([]store.Object, error) {
	switch req.sel.Retrieval {
	case RetrievalHybrid:
		return req.col.Hybrid(ctx, req.query, req.hybridOptions())
	case RetrievalNearText:
		return req.col.NearText(ctx, req.query, req.nearTextOptions())
	default:
		return nil, ErrUnknownStrategy
	}
}
