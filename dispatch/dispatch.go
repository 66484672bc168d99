// Package dispatch executes the retrieval and composition routines of the
// exchange protocol. A strategy selector pairs a response mode with a
// retrieval mode; the full 2x2 product is valid and each cell binds fixed
// retrieval parameters:
//
//	semantic/hybrid      limit 10, alpha 0.5, schema fields queryable
//	semantic/nearText    limit 10, certainty 0.85
//	generative/hybrid    no row cap, alpha 0.3
//	generative/nearText  no row cap, certainty 0.72
//
// Semantic modes retrieve candidate entries and hand them, together with the
// raw query, to a client-side completion call; the resulting pair is always
// persisted. Generative modes delegate composition to the store's grouped
// generation and persist a single assistant turn only when the store
// actually produced text.
//
// A fifth routine, the transport exchange, sits outside the matrix: it is
// always hybrid, always composes client-side and always records the inbound
// payload and the outbound reply as structured entries.
package dispatch

import (
	"github.com/hupe1980/recallmesh/core"
)

// ResponseMode selects who composes the reply: a separate client-side
// completion call or the store's own server-side generation.
type ResponseMode string

const (
	// ResponseSemantic composes client-side from retrieved entries.
	ResponseSemantic ResponseMode = "semantic"
	// ResponseGenerative delegates composition to the store.
	ResponseGenerative ResponseMode = "generative"
)

// RetrievalMode selects how grounding entries are retrieved.
type RetrievalMode string

const (
	// RetrievalHybrid blends keyword and vector similarity.
	RetrievalHybrid RetrievalMode = "hybrid"
	// RetrievalNearText uses pure vector similarity with a certainty floor.
	RetrievalNearText RetrievalMode = "nearText"
)

// Selector names exactly one dispatch routine.
type Selector struct {
	Response  ResponseMode
	Retrieval RetrievalMode
}

// String returns the routine name in "response/retrieval" form.
func (s Selector) String() string {
	return string(s.Response) + "/" + string(s.Retrieval)
}

// The four routines of the dispatch table.
var (
	SemanticHybrid     = Selector{Response: ResponseSemantic, Retrieval: RetrievalHybrid}
	SemanticNearText   = Selector{Response: ResponseSemantic, Retrieval: RetrievalNearText}
	GenerativeHybrid   = Selector{Response: ResponseGenerative, Retrieval: RetrievalHybrid}
	GenerativeNearText = Selector{Response: ResponseGenerative, Retrieval: RetrievalNearText}
)

// ErrUnknownStrategy rejects selector pairs outside the dispatch table.
// Unrecognized pairs never fall back to a default routine.
var ErrUnknownStrategy = core.NewError(core.KindDispatch, "unknown exchange strategy")
