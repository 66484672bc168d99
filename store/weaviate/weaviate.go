// Package weaviate implements the store boundary (Connector, Session,
// Collection) on top of the official Weaviate Go client. It adapts the
// engine's option records into GraphQL argument builders and maps the
// client's response shapes back into store types.
package weaviate

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/hupe1980/recallmesh/core"
	"github.com/hupe1980/recallmesh/logging"
	"github.com/hupe1980/recallmesh/store"
	wvc "github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

// Options configure the connector beyond its required inputs.
type Options struct {
	// ReadyInterval is the pause between readiness probes.
	ReadyInterval time.Duration
	// ReadyTimeout bounds the overall readiness wait. The caller's context
	// can end the wait earlier.
	ReadyTimeout time.Duration
	// HTTPClient overrides the transport used by the underlying client.
	HTTPClient *http.Client
	// Logger receives connection lifecycle messages.
	Logger logging.Logger
}

// Connector dials a Weaviate cluster and waits for it to report readiness.
// It forwards the provider API key under the provider's store header so the
// cluster can reach the embedding/generation modules on the caller's behalf.
type Connector struct {
	clusterURL string
	adminKey   string
	creds      core.ProviderCredentials
	opts       Options
}

var _ store.Connector = (*Connector)(nil)

// NewConnector creates a connector for the given cluster and credentials.
func NewConnector(clusterURL, adminKey string, creds core.ProviderCredentials, optFns ...func(o *Options)) *Connector {
	opts := Options{
		ReadyInterval: 2 * time.Second,
		ReadyTimeout:  60 * time.Second,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Connector{clusterURL: clusterURL, adminKey: adminKey, creds: creds, opts: opts}
}

// Connect establishes a client session and blocks until the cluster reports
// itself ready, probing every ReadyInterval. The wait ends early on context
// cancellation or once ReadyTimeout has elapsed.
func (c *Connector) Connect(ctx context.Context) (store.Session, error) {
	header, err := c.creds.AuthHeader()
	if err != nil {
		return nil, err
	}

	scheme, host, err := splitClusterURL(c.clusterURL)
	if err != nil {
		return nil, core.Wrap(core.KindConnection, err, "invalid cluster url %q", c.clusterURL)
	}

	cfg := wvc.Config{
		Host:    host,
		Scheme:  scheme,
		Headers: map[string]string{header: c.creds.APIKey},
	}
	if c.adminKey != "" {
		cfg.AuthConfig = auth.ApiKey{Value: c.adminKey}
	}
	if c.opts.HTTPClient != nil {
		cfg.ConnectionClient = c.opts.HTTPClient
	}

	client, err := wvc.NewClient(cfg)
	if err != nil {
		return nil, core.Wrap(core.KindConnection, err, "create store client")
	}

	if err := c.waitReady(ctx, client); err != nil {
		return nil, err
	}
	c.opts.Logger.Info("Store connection ready", "host", host, "provider", string(c.creds.Provider))
	return &session{client: client, logger: c.opts.Logger}, nil
}

// waitReady probes the cluster readiness endpoint until it answers ready.
func (c *Connector) waitReady(ctx context.Context, client *wvc.Client) error {
	deadline := time.Now().Add(c.opts.ReadyTimeout)
	var lastErr error
	for {
		ready, err := client.Misc().ReadyChecker().Do(ctx)
		if ready {
			return nil
		}
		if err != nil {
			lastErr = err
		}
		c.opts.Logger.Debug("Store not ready yet", "retry_in", c.opts.ReadyInterval.String())

		if time.Now().After(deadline) {
			if lastErr != nil {
				return core.Wrap(core.KindConnection, lastErr, "store not ready after %s", c.opts.ReadyTimeout)
			}
			return core.NewError(core.KindConnection, "store not ready after %s", c.opts.ReadyTimeout)
		}
		select {
		case <-ctx.Done():
			return core.Wrap(core.KindConnection, ctx.Err(), "readiness wait canceled")
		case <-time.After(c.opts.ReadyInterval):
		}
	}
}

// splitClusterURL accepts either a full URL or a bare host and returns the
// scheme (https when absent) and host portion.
func splitClusterURL(raw string) (string, string, error) {
	if raw == "" {
		return "", "", fmt.Errorf("empty cluster url")
	}
	if !strings.Contains(raw, "://") {
		return "https", raw, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("no host in %q", raw)
	}
	return u.Scheme, u.Host, nil
}

// session wraps an established client connection.
type session struct {
	client *wvc.Client
	logger logging.Logger
}

var _ store.Session = (*session)(nil)

func (s *session) Exists(ctx context.Context, name string) (bool, error) {
	ok, err := s.client.Schema().ClassExistenceChecker().WithClassName(name).Do(ctx)
	if err != nil {
		return false, fmt.Errorf("class existence check %s: %w", name, err)
	}
	return ok, nil
}

func (s *session) Create(ctx context.Context, schema store.Schema) (store.Collection, error) {
	class := &models.Class{
		Class:      schema.Class,
		Vectorizer: schema.Vectorizer,
		ModuleConfig: map[string]interface{}{
			schema.Vectorizer: map[string]interface{}{},
			schema.Generative: map[string]interface{}{},
		},
	}
	for _, p := range schema.Properties {
		class.Properties = append(class.Properties, &models.Property{
			Name:     p.Name,
			DataType: []string{p.DataType},
		})
	}
	if err := s.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		return nil, fmt.Errorf("create class %s: %w", schema.Class, err)
	}
	s.logger.Info("Collection created", "class", schema.Class, "vectorizer", schema.Vectorizer)
	return s.Collection(schema.Class), nil
}

func (s *session) Collection(name string) store.Collection {
	return &collection{client: s.client, class: name}
}

// collection is the data surface of one Weaviate class.
type collection struct {
	client *wvc.Client
	class  string
}

var _ store.Collection = (*collection)(nil)

func (c *collection) Name() string { return c.class }

func (c *collection) Hybrid(ctx context.Context, query string, opts store.HybridOptions) ([]store.Object, error) {
	hybrid := c.client.GraphQL().HybridArgumentBuilder().
		WithQuery(query).
		WithAlpha(float32(opts.Alpha))
	if len(opts.QueryFields) > 0 {
		hybrid = hybrid.WithProperties(opts.QueryFields)
	}
	if opts.FusionType != "" {
		hybrid = hybrid.WithFusionType(fusionType(opts.FusionType))
	}

	builder := c.client.GraphQL().Get().
		WithClassName(c.class).
		WithFields(selectFields(opts.Fields)...).
		WithHybrid(hybrid)
	if opts.Limit > 0 {
		builder = builder.WithLimit(opts.Limit)
	}

	resp, err := builder.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("hybrid search %s: %w", c.class, err)
	}
	return c.parseObjects(resp, opts.Fields)
}

func (c *collection) NearText(ctx context.Context, query string, opts store.NearTextOptions) ([]store.Object, error) {
	nearText := c.client.GraphQL().NearTextArgBuilder().
		WithConcepts([]string{query}).
		WithCertainty(float32(opts.Certainty))

	builder := c.client.GraphQL().Get().
		WithClassName(c.class).
		WithFields(selectFields(opts.Fields)...).
		WithNearText(nearText)
	if opts.Limit > 0 {
		builder = builder.WithLimit(opts.Limit)
	}

	resp, err := builder.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("nearText search %s: %w", c.class, err)
	}
	return c.parseObjects(resp, opts.Fields)
}

func (c *collection) GenerateHybrid(ctx context.Context, query, task string, opts store.HybridOptions) (store.Generated, error) {
	hybrid := c.client.GraphQL().HybridArgumentBuilder().
		WithQuery(query).
		WithAlpha(float32(opts.Alpha))
	if len(opts.QueryFields) > 0 {
		hybrid = hybrid.WithProperties(opts.QueryFields)
	}
	if opts.FusionType != "" {
		hybrid = hybrid.WithFusionType(fusionType(opts.FusionType))
	}

	builder := c.client.GraphQL().Get().
		WithClassName(c.class).
		WithFields(selectFields(opts.Fields)...).
		WithHybrid(hybrid).
		WithGenerativeSearch(graphql.NewGenerativeSearch().GroupedResult(task))
	if opts.Limit > 0 {
		builder = builder.WithLimit(opts.Limit)
	}

	resp, err := builder.Do(ctx)
	if err != nil {
		return store.Generated{}, fmt.Errorf("generative hybrid search %s: %w", c.class, err)
	}
	return c.parseGenerated(resp)
}

func (c *collection) GenerateNearText(ctx context.Context, query, task string, opts store.NearTextOptions) (store.Generated, error) {
	nearText := c.client.GraphQL().NearTextArgBuilder().
		WithConcepts([]string{query}).
		WithCertainty(float32(opts.Certainty))

	builder := c.client.GraphQL().Get().
		WithClassName(c.class).
		WithFields(selectFields(opts.Fields)...).
		WithNearText(nearText).
		WithGenerativeSearch(graphql.NewGenerativeSearch().GroupedResult(task))
	if opts.Limit > 0 {
		builder = builder.WithLimit(opts.Limit)
	}

	resp, err := builder.Do(ctx)
	if err != nil {
		return store.Generated{}, fmt.Errorf("generative nearText search %s: %w", c.class, err)
	}
	return c.parseGenerated(resp)
}

func (c *collection) Insert(ctx context.Context, id string, properties map[string]any) error {
	_, err := c.client.Data().Creator().
		WithClassName(c.class).
		WithID(id).
		WithProperties(properties).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("insert into %s: %w", c.class, err)
	}
	return nil
}

func (c *collection) InsertMany(ctx context.Context, objects []store.BatchObject) (store.BatchResult, error) {
	batch := make([]*models.Object, len(objects))
	result := store.BatchResult{IDs: make([]string, len(objects))}
	for i, obj := range objects {
		batch[i] = &models.Object{
			Class:      c.class,
			ID:         strfmt.UUID(obj.ID),
			Properties: obj.Properties,
		}
		result.IDs[i] = obj.ID
	}

	responses, err := c.client.Batch().ObjectsBatcher().WithObjects(batch...).Do(ctx)
	if err != nil {
		return store.BatchResult{}, fmt.Errorf("batch insert into %s: %w", c.class, err)
	}
	for i, resp := range responses {
		if resp.Result == nil || resp.Result.Errors == nil {
			continue
		}
		for _, item := range resp.Result.Errors.Error {
			if item == nil {
				continue
			}
			result.HasErrors = true
			result.Errors = append(result.Errors, store.BatchError{Index: i, Message: item.Message})
		}
	}
	return result, nil
}

// selectFields builds the GraphQL selection: the requested properties plus
// the _additional id needed to surface the store-assigned identifier.
func selectFields(fields []string) []graphql.Field {
	selected := make([]graphql.Field, 0, len(fields)+1)
	for _, f := range fields {
		selected = append(selected, graphql.Field{Name: f})
	}
	selected = append(selected, graphql.Field{
		Name:   "_additional",
		Fields: []graphql.Field{{Name: "id"}},
	})
	return selected
}

func fusionType(ft store.FusionType) graphql.FusionType {
	if ft == store.FusionRelativeScore {
		return graphql.RelativeScore
	}
	return graphql.Ranked
}

// parseObjects unpacks the ranked objects of a Get response.
func (c *collection) parseObjects(resp *models.GraphQLResponse, fields []string) ([]store.Object, error) {
	rows, err := c.classRows(resp)
	if err != nil {
		return nil, err
	}
	objects := make([]store.Object, 0, len(rows))
	for _, row := range rows {
		props, ok := row.(map[string]interface{})
		if !ok {
			continue
		}
		obj := store.Object{Properties: make(map[string]any, len(fields))}
		for k, v := range props {
			if k == "_additional" {
				if add, ok := v.(map[string]interface{}); ok {
					if id, ok := add["id"].(string); ok {
						obj.ID = id
					}
				}
				continue
			}
			obj.Properties[k] = v
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

// parseGenerated extracts the grouped generation outcome. A missing or null
// groupedResult yields Generated{OK: false} without an error; an explicit
// generation error message from the store is surfaced as an error.
func (c *collection) parseGenerated(resp *models.GraphQLResponse) (store.Generated, error) {
	rows, err := c.classRows(resp)
	if err != nil {
		return store.Generated{}, err
	}
	for _, row := range rows {
		props, ok := row.(map[string]interface{})
		if !ok {
			continue
		}
		add, ok := props["_additional"].(map[string]interface{})
		if !ok {
			continue
		}
		gen, ok := add["generate"].(map[string]interface{})
		if !ok {
			continue
		}
		if msg, ok := gen["error"].(string); ok && msg != "" {
			return store.Generated{}, fmt.Errorf("generative module: %s", msg)
		}
		if text, ok := gen["groupedResult"].(string); ok && text != "" {
			return store.Generated{Text: text, OK: true}, nil
		}
	}
	return store.Generated{}, nil
}

// classRows navigates data.Get.<Class> in a GraphQL response.
func (c *collection) classRows(resp *models.GraphQLResponse) ([]interface{}, error) {
	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			if e != nil {
				msgs = append(msgs, e.Message)
			}
		}
		return nil, fmt.Errorf("graphql errors on %s: %s", c.class, strings.Join(msgs, "; "))
	}
	get, ok := resp.Data["Get"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected response shape for %s: missing Get", c.class)
	}
	rows, ok := get[c.class].([]interface{})
	if !ok {
		// A class with no matches comes back as an empty list; anything else
		// (null, wrong type) is treated as empty as well.
		return nil, nil
	}
	return rows, nil
}
