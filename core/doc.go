// Package core provides the foundational domain types shared by all
// recallmesh packages. It defines:
//
//   - DialogueEntry (one immutable conversation turn with role + timestamp)
//   - Provider / ProviderCredentials (the model provider an engine is bound to)
//   - The error taxonomy (connection, collection, dispatch, persistence,
//     generation) used to classify failures across layer boundaries
//
// The package intentionally keeps implementation concerns (store adapters,
// completion calls, orchestration) out of scope so higher packages can depend
// on small, stable contracts without cycles.
package core
