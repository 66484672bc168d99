package collection

import (
	"github.com/hupe1980/recallmesh/core"
	"github.com/hupe1980/recallmesh/store"
)

// Schema presets per source kind. These are config data: the property sets
// are fixed at creation time and the engine never alters them afterwards.
var (
	dialogueProperties = []store.Property{
		{Name: "timestamp", DataType: "text"},
		{Name: "role", DataType: "text"},
		{Name: "content", DataType: "text"},
	}

	channelProperties = []store.Property{
		{Name: "sourceId", DataType: "text"},
		{Name: "channelId", DataType: "text"},
		{Name: "author", DataType: "text"},
		{Name: "role", DataType: "text"},
		{Name: "content", DataType: "text"},
		{Name: "timestamp", DataType: "text"},
	}
)

// SchemaFor returns the creation schema for a collection of the given kind,
// bound to the provider's vectorizer and generative modules.
func SchemaFor(kind SourceKind, name string, provider core.Provider) store.Schema {
	props := dialogueProperties
	if kind == SourceChannel {
		props = channelProperties
	}
	schema := store.Schema{
		Class:      name,
		Properties: make([]store.Property, len(props)),
		Vectorizer: provider.VectorizerModule(),
		Generative: provider.GenerativeModule(),
	}
	copy(schema.Properties, props)
	return schema
}
