package collection

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/recallmesh/core"
	"github.com/hupe1980/recallmesh/internal/testutil"
)

func TestManagerCreatesAbsentCollection(t *testing.T) {
	connector, session, _ := testutil.NewFakeStack("History_TestRoom")
	session.ExistsRes = false

	mgr := NewManager(connector, SourceHistory, "Test Room", core.ProviderMistral)
	assert.Equal(t, StateUnopened, mgr.State())

	err := mgr.EnsureOpen(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, StateOpen, mgr.State())

	assert.Equal(t, []string{"History_TestRoom"}, session.ExistsCalls())

	created := session.CreateCalls()
	assert.Len(t, created, 1)
	assert.Equal(t, "History_TestRoom", created[0].Class)
	assert.Equal(t, "text2vec-mistral", created[0].Vectorizer)
	assert.Equal(t, "generative-mistral", created[0].Generative)

	col, err := mgr.Collection()
	assert.NoError(t, err)
	assert.Equal(t, "History_TestRoom", col.Name())
}

func TestManagerReusesExistingCollection(t *testing.T) {
	connector, session, _ := testutil.NewFakeStack("History_TestRoom")

	mgr := NewManager(connector, SourceHistory, "Test Room", core.ProviderMistral)
	assert.NoError(t, mgr.EnsureOpen(context.Background()))

	assert.Empty(t, session.CreateCalls())

	_, err := mgr.Collection()
	assert.NoError(t, err)
}

func TestManagerEnsureOpenIsIdempotent(t *testing.T) {
	connector, _, _ := testutil.NewFakeStack("History_TestRoom")

	mgr := NewManager(connector, SourceHistory, "Test Room", core.ProviderMistral)
	assert.NoError(t, mgr.EnsureOpen(context.Background()))
	assert.NoError(t, mgr.EnsureOpen(context.Background()))
	assert.NoError(t, mgr.EnsureOpen(context.Background()))

	// Open is terminal; later calls must not redial.
	assert.Equal(t, 1, connector.Connects())
}

func TestManagerCollectionRequiresOpen(t *testing.T) {
	connector, _, _ := testutil.NewFakeStack("History_TestRoom")
	mgr := NewManager(connector, SourceHistory, "Test Room", core.ProviderMistral)

	_, err := mgr.Collection()
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Equal(t, "collection not ready", err.Error())
	assert.Equal(t, core.KindCollection, core.KindOf(err))

	// Collection never opens on its own.
	assert.Equal(t, 0, connector.Connects())
}

func TestManagerConnectFailure(t *testing.T) {
	connector, _, _ := testutil.NewFakeStack("History_TestRoom")
	connector.Err = errors.New("cluster unreachable")

	mgr := NewManager(connector, SourceHistory, "Test Room", core.ProviderMistral)

	err := mgr.EnsureOpen(context.Background())
	assert.Error(t, err)
	assert.Equal(t, "open collection History_TestRoom: cluster unreachable", err.Error())
	assert.Equal(t, StateFailed, mgr.State())

	_, err = mgr.Collection()
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestManagerExistenceCheckFailure(t *testing.T) {
	connector, session, _ := testutil.NewFakeStack("History_TestRoom")
	session.ExistsErr = errors.New("schema endpoint down")

	mgr := NewManager(connector, SourceHistory, "Test Room", core.ProviderMistral)

	err := mgr.EnsureOpen(context.Background())
	assert.Error(t, err)
	assert.Equal(t, core.KindCollection, core.KindOf(err))
	assert.Equal(t, StateFailed, mgr.State())
}

func TestManagerCreateFailure(t *testing.T) {
	connector, session, _ := testutil.NewFakeStack("History_TestRoom")
	session.ExistsRes = false
	session.CreateErr = errors.New("class limit reached")

	mgr := NewManager(connector, SourceHistory, "Test Room", core.ProviderMistral)

	err := mgr.EnsureOpen(context.Background())
	assert.Error(t, err)
	assert.Equal(t, core.KindCollection, core.KindOf(err))
	assert.Equal(t, StateFailed, mgr.State())
}

func TestManagerFailedStateCanRetry(t *testing.T) {
	connector, _, _ := testutil.NewFakeStack("History_TestRoom")
	connector.Err = errors.New("cluster unreachable")

	mgr := NewManager(connector, SourceHistory, "Test Room", core.ProviderMistral)
	assert.Error(t, mgr.EnsureOpen(context.Background()))
	assert.Equal(t, StateFailed, mgr.State())

	// The next attempt may succeed once the cluster is back.
	connector.Err = nil
	assert.NoError(t, mgr.EnsureOpen(context.Background()))
	assert.Equal(t, StateOpen, mgr.State())
	assert.Equal(t, 2, connector.Connects())
}

func TestManagerAccessors(t *testing.T) {
	connector, _, _ := testutil.NewFakeStack("Channel_general")
	mgr := NewManager(connector, SourceChannel, "general", core.ProviderOpenAI)

	assert.Equal(t, "Channel_general", mgr.Name())
	assert.Equal(t, SourceChannel, mgr.Kind())
	assert.Equal(t, "text2vec-openai", mgr.Schema().Vectorizer)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "unopened", StateUnopened.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "unknown", State(42).String())
}
