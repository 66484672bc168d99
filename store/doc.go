// Package store defines the boundary to the remote vector store. The engine
// only ever talks to these interfaces:
//
//   - Connector (dial + readiness wait, yielding a Session)
//   - Session (collection existence, creation, handles)
//   - Collection (hybrid / nearText retrieval, server-side grouped
//     generation, single and batch writes)
//
// Implementations live in sub-packages (store/weaviate for the real client);
// tests use scripted fakes. Option records mirror the remote query surface:
// a Limit of 0 means "no row cap" and omits the limit clause entirely.
package store
