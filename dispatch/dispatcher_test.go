package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/recallmesh/collection"
	"github.com/hupe1980/recallmesh/core"
	"github.com/hupe1980/recallmesh/internal/testutil"
	"github.com/hupe1980/recallmesh/memory"
	"github.com/hupe1980/recallmesh/store"
)

var historyFields = []string{"timestamp", "role", "content"}

func newTestDispatcher(t *testing.T, completer Completer, optFns ...func(o *Options)) (*Dispatcher, *testutil.FakeCollection) {
	t.Helper()

	connector, _, col := testutil.NewFakeStack("History_TestRoom")
	mgr := collection.NewManager(connector, collection.SourceHistory, "Test Room", core.ProviderMistral)
	assert.NoError(t, mgr.EnsureOpen(context.Background()))

	return New(mgr, memory.New(mgr), completer, optFns...), col
}

func TestDispatchSemanticHybrid(t *testing.T) {
	completer := &testutil.FakeCompleter{Reply: "composed reply"}
	d, col := newTestDispatcher(t, completer)
	col.HybridResults = []store.Object{
		{ID: "1", Properties: map[string]any{"role": "user", "content": "earlier message"}},
	}

	reply, err := d.Dispatch(context.Background(), SemanticHybrid, "what was said?", "")
	assert.NoError(t, err)
	assert.Equal(t, "composed reply", reply)

	calls := col.HybridCalls()
	assert.Len(t, calls, 1)
	assert.Equal(t, "what was said?", calls[0].Query)
	assert.Equal(t, 10, calls[0].Hybrid.Limit)
	assert.InDelta(t, 0.5, calls[0].Hybrid.Alpha, 1e-9)
	assert.Equal(t, historyFields, calls[0].Hybrid.QueryFields)
	assert.Equal(t, historyFields, calls[0].Hybrid.Fields)

	ccalls := completer.Calls()
	assert.Len(t, ccalls, 1)
	assert.Equal(t, "what was said?", ccalls[0].Query)
	assert.Len(t, ccalls[0].Context, 1)

	stored := col.Stored()
	assert.Len(t, stored, 2)
	assert.Equal(t, "user", stored[0].Properties["role"])
	assert.Equal(t, "what was said?", stored[0].Properties["content"])
	assert.Equal(t, "assistant", stored[1].Properties["role"])
	assert.Equal(t, "composed reply", stored[1].Properties["content"])
}

func TestDispatchSemanticNearText(t *testing.T) {
	completer := &testutil.FakeCompleter{Reply: "composed reply"}
	d, col := newTestDispatcher(t, completer)

	_, err := d.Dispatch(context.Background(), SemanticNearText, "hello", "")
	assert.NoError(t, err)

	calls := col.NearTextCalls()
	assert.Len(t, calls, 1)
	assert.Equal(t, 10, calls[0].NearText.Limit)
	assert.InDelta(t, 0.85, calls[0].NearText.Certainty, 1e-9)
	assert.Equal(t, historyFields, calls[0].NearText.Fields)
	assert.Equal(t, 2, col.EntryCount())
}

func TestSemanticCompletionFailureStillPersistsPair(t *testing.T) {
	completer := &testutil.FakeCompleter{Err: errors.New("completion down")}
	d, col := newTestDispatcher(t, completer)

	reply, err := d.Dispatch(context.Background(), SemanticHybrid, "hello", "")
	assert.NoError(t, err)
	assert.Equal(t, "completion failed: completion down", reply)

	// The failure text becomes the assistant turn of the persisted pair.
	stored := col.Stored()
	assert.Len(t, stored, 2)
	assert.Equal(t, "completion failed: completion down", stored[1].Properties["content"])
}

func TestSemanticRetrievalFailureStillPersistsPair(t *testing.T) {
	completer := &testutil.FakeCompleter{Reply: "never used"}
	d, col := newTestDispatcher(t, completer)
	col.HybridErr = errors.New("index offline")

	reply, err := d.Dispatch(context.Background(), SemanticHybrid, "hello", "")
	assert.NoError(t, err)
	assert.Equal(t, "retrieval failed: index offline", reply)
	assert.Empty(t, completer.Calls())
	assert.Equal(t, 2, col.EntryCount())
}

func TestDispatchGenerativeHybrid(t *testing.T) {
	completer := &testutil.FakeCompleter{Reply: "never used"}
	d, col := newTestDispatcher(t, completer)
	col.Generated = store.Generated{Text: "server composed summary", OK: true}

	reply, err := d.Dispatch(context.Background(), GenerativeHybrid, "summarize the room", "Summarize the conversation so far.")
	assert.NoError(t, err)
	assert.Equal(t, "server composed summary", reply)
	assert.Empty(t, completer.Calls())

	calls := col.GenerateHybridCalls()
	assert.Len(t, calls, 1)
	assert.Equal(t, "summarize the room", calls[0].Query)
	assert.Equal(t, "Summarize the conversation so far.", calls[0].Task)
	assert.Equal(t, 0, calls[0].Hybrid.Limit)
	assert.InDelta(t, 0.3, calls[0].Hybrid.Alpha, 1e-9)

	// Only the assistant turn lands; the query is not persisted.
	stored := col.Stored()
	assert.Len(t, stored, 1)
	assert.Equal(t, "assistant", stored[0].Properties["role"])
	assert.Equal(t, "server composed summary", stored[0].Properties["content"])
}

func TestDispatchGenerativeNearText(t *testing.T) {
	d, col := newTestDispatcher(t, &testutil.FakeCompleter{})
	col.Generated = store.Generated{Text: "generated", OK: true}

	_, err := d.Dispatch(context.Background(), GenerativeNearText, "hello", "task")
	assert.NoError(t, err)

	calls := col.GenerateNearTextCalls()
	assert.Len(t, calls, 1)
	assert.Equal(t, 0, calls[0].NearText.Limit)
	assert.InDelta(t, 0.72, calls[0].NearText.Certainty, 1e-9)
}

func TestGenerativeNullGenerationPersistsNothing(t *testing.T) {
	d, col := newTestDispatcher(t, &testutil.FakeCompleter{})
	col.Generated = store.Generated{OK: false}

	_, err := d.Dispatch(context.Background(), GenerativeHybrid, "hello", "task")
	assert.Error(t, err)
	assert.Equal(t, core.KindGeneration, core.KindOf(err))
	assert.Equal(t, 0, col.EntryCount())
}

func TestGenerativeErrorPersistsNothing(t *testing.T) {
	d, col := newTestDispatcher(t, &testutil.FakeCompleter{})
	col.GenerateErr = errors.New("module not enabled")

	_, err := d.Dispatch(context.Background(), GenerativeNearText, "hello", "task")
	assert.Error(t, err)
	assert.Equal(t, core.KindGeneration, core.KindOf(err))
	assert.Equal(t, 0, col.EntryCount())
}

func TestDispatchUnknownStrategy(t *testing.T) {
	d, col := newTestDispatcher(t, &testutil.FakeCompleter{})

	for _, sel := range []Selector{
		{Response: "semantic", Retrieval: "fuzzy"},
		{Response: "creative", Retrieval: "hybrid"},
		{},
	} {
		_, err := d.Dispatch(context.Background(), sel, "hello", "")
		assert.ErrorIs(t, err, ErrUnknownStrategy)
		assert.Equal(t, "unknown exchange strategy", err.Error())
	}

	assert.Equal(t, 0, col.EntryCount())
}

func TestDispatchTableCompleteness(t *testing.T) {
	for _, sel := range []Selector{SemanticHybrid, SemanticNearText, GenerativeHybrid, GenerativeNearText} {
		t.Run(sel.String(), func(t *testing.T) {
			d, col := newTestDispatcher(t, &testutil.FakeCompleter{Reply: "ok"})
			col.Generated = store.Generated{Text: "ok", OK: true}

			reply, err := d.Dispatch(context.Background(), sel, "hello", "task")
			assert.NoError(t, err)
			assert.Equal(t, "ok", reply)
		})
	}
}

func TestDispatchRequiresOpenCollection(t *testing.T) {
	connector, _, _ := testutil.NewFakeStack("History_TestRoom")
	mgr := collection.NewManager(connector, collection.SourceHistory, "Test Room", core.ProviderMistral)
	d := New(mgr, memory.New(mgr), &testutil.FakeCompleter{})

	_, err := d.Dispatch(context.Background(), SemanticHybrid, "hello", "")
	assert.Error(t, err)
	assert.Equal(t, "collection not ready", err.Error())
}

func TestSemanticPersistenceFailureSurfaces(t *testing.T) {
	d, col := newTestDispatcher(t, &testutil.FakeCompleter{Reply: "ok"})
	col.BatchErr = errors.New("write path down")

	_, err := d.Dispatch(context.Background(), SemanticHybrid, "hello", "")
	assert.Error(t, err)
	assert.Equal(t, core.KindPersistence, core.KindOf(err))
}

func TestPresetForReturnsCopies(t *testing.T) {
	p, ok := PresetFor(SemanticHybrid)
	assert.True(t, ok)
	p.Limit = 99

	again, _ := PresetFor(SemanticHybrid)
	assert.Equal(t, 10, again.Limit)
}

func TestPresetTable(t *testing.T) {
	tests := []struct {
		sel       Selector
		limit     int
		alpha     float64
		certainty float64
		restrict  bool
	}{
		{sel: SemanticHybrid, limit: 10, alpha: 0.5, restrict: true},
		{sel: SemanticNearText, limit: 10, certainty: 0.85},
		{sel: GenerativeHybrid, limit: 0, alpha: 0.3, restrict: true},
		{sel: GenerativeNearText, limit: 0, certainty: 0.72},
	}

	for _, tt := range tests {
		t.Run(tt.sel.String(), func(t *testing.T) {
			p, ok := PresetFor(tt.sel)
			assert.True(t, ok)
			assert.Equal(t, tt.limit, p.Limit)
			assert.InDelta(t, tt.alpha, p.Alpha, 1e-9)
			assert.InDelta(t, tt.certainty, p.Certainty, 1e-9)
			assert.Equal(t, tt.restrict, p.RestrictQuery)
		})
	}

	_, ok := PresetFor(Selector{Response: "semantic", Retrieval: "bm25"})
	assert.False(t, ok)
}
