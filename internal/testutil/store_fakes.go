package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/recallmesh/store"
)

// StoredObject is one object a fake collection accepted.
type StoredObject struct {
	ID         string
	Properties map[string]any
}

// RetrievalCall records one retrieval invocation against a fake collection.
type RetrievalCall struct {
	Query    string
	Task     string // set for generative calls
	Hybrid   store.HybridOptions
	NearText store.NearTextOptions
}

// FakeCollection is an in-memory stand-in for one store collection. Scripted
// results and errors are plain exported fields; all accepted writes land in
// an internal slice that acts as the collection contents.
type FakeCollection struct {
	mu sync.Mutex

	ClassName string

	HybridResults   []store.Object
	HybridErr       error
	NearTextResults []store.Object
	NearTextErr     error

	Generated   store.Generated
	GenerateErr error

	InsertErr error
	BatchErr  error
	// FailBatchIndex marks batch positions that report a per-object error;
	// the remaining objects are still persisted (partial success).
	FailBatchIndex map[int]bool

	stored            []StoredObject
	hybridCalls       []RetrievalCall
	nearTextCalls     []RetrievalCall
	generateHybrid    []RetrievalCall
	generateNearText  []RetrievalCall
	singleInsertCount int
	batchCount        int
}

var _ store.Collection = (*FakeCollection)(nil)

// NewFakeCollection creates an empty fake collection.
func NewFakeCollection(name string) *FakeCollection {
	return &FakeCollection{ClassName: name, FailBatchIndex: map[int]bool{}}
}

// Name returns the collection name.
func (f *FakeCollection) Name() string { return f.ClassName }

// Hybrid returns the scripted hybrid results.
func (f *FakeCollection) Hybrid(_ context.Context, query string, opts store.HybridOptions) ([]store.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hybridCalls = append(f.hybridCalls, RetrievalCall{Query: query, Hybrid: opts})
	if f.HybridErr != nil {
		return nil, f.HybridErr
	}
	return append([]store.Object{}, f.HybridResults...), nil
}

// NearText returns the scripted nearText results.
func (f *FakeCollection) NearText(_ context.Context, query string, opts store.NearTextOptions) ([]store.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nearTextCalls = append(f.nearTextCalls, RetrievalCall{Query: query, NearText: opts})
	if f.NearTextErr != nil {
		return nil, f.NearTextErr
	}
	return append([]store.Object{}, f.NearTextResults...), nil
}

// GenerateHybrid returns the scripted generation outcome.
func (f *FakeCollection) GenerateHybrid(_ context.Context, query, task string, opts store.HybridOptions) (store.Generated, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generateHybrid = append(f.generateHybrid, RetrievalCall{Query: query, Task: task, Hybrid: opts})
	if f.GenerateErr != nil {
		return store.Generated{}, f.GenerateErr
	}
	return f.Generated, nil
}

// GenerateNearText returns the scripted generation outcome.
func (f *FakeCollection) GenerateNearText(_ context.Context, query, task string, opts store.NearTextOptions) (store.Generated, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generateNearText = append(f.generateNearText, RetrievalCall{Query: query, Task: task, NearText: opts})
	if f.GenerateErr != nil {
		return store.Generated{}, f.GenerateErr
	}
	return f.Generated, nil
}

// Insert stores one object unless InsertErr is scripted.
func (f *FakeCollection) Insert(_ context.Context, id string, properties map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.singleInsertCount++
	if f.InsertErr != nil {
		return f.InsertErr
	}
	f.stored = append(f.stored, StoredObject{ID: id, Properties: properties})
	return nil
}

// InsertMany stores the batch, skipping positions marked in FailBatchIndex
// and reporting them through the result.
func (f *FakeCollection) InsertMany(_ context.Context, objects []store.BatchObject) (store.BatchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchCount++
	if f.BatchErr != nil {
		return store.BatchResult{}, f.BatchErr
	}
	result := store.BatchResult{}
	for i, obj := range objects {
		result.IDs = append(result.IDs, obj.ID)
		if f.FailBatchIndex[i] {
			result.HasErrors = true
			result.Errors = append(result.Errors, store.BatchError{Index: i, Message: fmt.Sprintf("scripted failure at %d", i)})
			continue
		}
		f.stored = append(f.stored, StoredObject{ID: obj.ID, Properties: obj.Properties})
	}
	return result, nil
}

// Stored returns a copy of everything the collection accepted.
func (f *FakeCollection) Stored() []StoredObject {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]StoredObject{}, f.stored...)
}

// EntryCount returns how many objects the collection holds.
func (f *FakeCollection) EntryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.stored)
}

// HybridCalls returns the recorded hybrid retrievals.
func (f *FakeCollection) HybridCalls() []RetrievalCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RetrievalCall{}, f.hybridCalls...)
}

// NearTextCalls returns the recorded nearText retrievals.
func (f *FakeCollection) NearTextCalls() []RetrievalCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RetrievalCall{}, f.nearTextCalls...)
}

// GenerateHybridCalls returns the recorded generative hybrid calls.
func (f *FakeCollection) GenerateHybridCalls() []RetrievalCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RetrievalCall{}, f.generateHybrid...)
}

// GenerateNearTextCalls returns the recorded generative nearText calls.
func (f *FakeCollection) GenerateNearTextCalls() []RetrievalCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RetrievalCall{}, f.generateNearText...)
}

// FakeSession hands out one fake collection and records schema operations.
type FakeSession struct {
	mu sync.Mutex

	Col       *FakeCollection
	ExistsRes bool
	ExistsErr error
	CreateErr error

	existsCalls []string
	createCalls []store.Schema
}

var _ store.Session = (*FakeSession)(nil)

// NewFakeSession wraps the given collection.
func NewFakeSession(col *FakeCollection) *FakeSession {
	return &FakeSession{Col: col}
}

// Exists returns the scripted existence answer.
func (s *FakeSession) Exists(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.existsCalls = append(s.existsCalls, name)
	if s.ExistsErr != nil {
		return false, s.ExistsErr
	}
	return s.ExistsRes, nil
}

// Create records the schema and returns the wrapped collection.
func (s *FakeSession) Create(_ context.Context, schema store.Schema) (store.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls = append(s.createCalls, schema)
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	return s.Col, nil
}

// Collection returns the wrapped collection regardless of name.
func (s *FakeSession) Collection(string) store.Collection { return s.Col }

// ExistsCalls returns the names passed to Exists.
func (s *FakeSession) ExistsCalls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.existsCalls...)
}

// CreateCalls returns the schemas passed to Create.
func (s *FakeSession) CreateCalls() []store.Schema {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]store.Schema{}, s.createCalls...)
}

// FakeConnector yields a scripted session (or error) and counts dials.
type FakeConnector struct {
	mu sync.Mutex

	Session *FakeSession
	Err     error

	connects int
}

var _ store.Connector = (*FakeConnector)(nil)

// NewFakeConnector wraps the given session.
func NewFakeConnector(session *FakeSession) *FakeConnector {
	return &FakeConnector{Session: session}
}

// Connect returns the scripted session or error.
func (c *FakeConnector) Connect(context.Context) (store.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connects++
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Session, nil
}

// Connects returns how many times Connect was called.
func (c *FakeConnector) Connects() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connects
}

// NewFakeStack wires a collection, session and connector together for the
// common case of one open collection.
func NewFakeStack(name string) (*FakeConnector, *FakeSession, *FakeCollection) {
	col := NewFakeCollection(name)
	session := NewFakeSession(col)
	session.ExistsRes = true
	return NewFakeConnector(session), session, col
}
