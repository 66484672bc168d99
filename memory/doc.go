// Package memory implements the write side of the read-then-write exchange
// protocol: single dialogue turns, request/response pairs written as one
// batch and sanitized structured payloads for transport-backed memory.
//
// All operations require the collection manager to be Open already; none of
// them trigger an initialization. Callers that want lazy opening do it one
// level up, before handing the query to a dispatch routine.
package memory
