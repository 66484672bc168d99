package store

import "context"

// FusionType selects how the store merges keyword and vector rankings in a
// hybrid search. The zero value leaves the choice to the store.
type FusionType string

const (
	// FusionRanked merges by reciprocal rank.
	FusionRanked FusionType = "rankedFusion"
	// FusionRelativeScore merges by normalized score.
	FusionRelativeScore FusionType = "relativeScoreFusion"
)

// Object is one ranked result returned by a retrieval call. Order across a
// result slice reflects the store's relevance ranking, not insertion order.
type Object struct {
	ID         string
	Properties map[string]any
}

// Generated carries the outcome of a server-side grouped generation. OK is
// false when the store answered with a null/empty generated text.
type Generated struct {
	Text string
	OK   bool
}

// Property declares one retrievable field of a collection schema.
type Property struct {
	Name     string
	DataType string // "text" for all current schemas
}

// Schema is the creation-time description of a collection. A collection's
// schema is fixed at creation and never altered.
type Schema struct {
	Class      string
	Properties []Property
	Vectorizer string // provider vectorizer module, e.g. text2vec-mistral
	Generative string // provider generative module, e.g. generative-mistral
}

// PropertyNames returns the declared property names in schema order.
func (s Schema) PropertyNames() []string {
	names := make([]string, len(s.Properties))
	for i, p := range s.Properties {
		names[i] = p.Name
	}
	return names
}

// HybridOptions parameterizes a hybrid (keyword + vector) search.
type HybridOptions struct {
	Limit       int        // 0 = no row cap
	Alpha       float64    // keyword/vector weighting, 0..1
	FusionType  FusionType // zero value = store default
	QueryFields []string   // keyword side restricted to these properties; empty = all
	Fields      []string   // properties to return
}

// NearTextOptions parameterizes a pure vector similarity search.
type NearTextOptions struct {
	Limit     int     // 0 = no row cap
	Certainty float64 // similarity threshold, 0..1
	Fields    []string
}

// BatchError describes one failed object within a batch write.
type BatchError struct {
	Index   int
	Message string
}

// BatchResult reports the outcome of a batch write. A batch with HasErrors
// still leaves the successful objects persisted; callers must not assume
// all-or-nothing atomicity.
type BatchResult struct {
	IDs       []string
	HasErrors bool
	Errors    []BatchError
}

// BatchObject is one object of a batch write.
type BatchObject struct {
	ID         string
	Properties map[string]any
}

// Connector dials the remote store, forwards provider credentials and blocks
// until the remote reports itself ready (bounded by the caller's context and
// the connector's own deadline). The session is not held beyond a single
// initialization.
type Connector interface {
	Connect(ctx context.Context) (Session, error)
}

// Session is an established connection to the vector store.
type Session interface {
	// Exists reports whether a collection with the given name exists.
	Exists(ctx context.Context, name string) (bool, error)
	// Create creates a collection from the schema and returns its handle.
	Create(ctx context.Context, schema Schema) (Collection, error)
	// Collection returns a handle by name without an existence check.
	Collection(name string) Collection
}

// Collection is the data surface of one named collection.
type Collection interface {
	// Name returns the collection name.
	Name() string
	// Hybrid runs a keyword+vector search and returns ranked objects.
	Hybrid(ctx context.Context, query string, opts HybridOptions) ([]Object, error)
	// NearText runs a pure vector search and returns ranked objects.
	NearText(ctx context.Context, query string, opts NearTextOptions) ([]Object, error)
	// GenerateHybrid grounds a server-side grouped generation on a hybrid search.
	GenerateHybrid(ctx context.Context, query, task string, opts HybridOptions) (Generated, error)
	// GenerateNearText grounds a server-side grouped generation on a vector search.
	GenerateNearText(ctx context.Context, query, task string, opts NearTextOptions) (Generated, error)
	// Insert writes one object under the given identifier.
	Insert(ctx context.Context, id string, properties map[string]any) error
	// InsertMany writes a batch in a single network operation. Partial
	// failure is reported through the result, not the error.
	InsertMany(ctx context.Context, objects []BatchObject) (BatchResult, error)
}
