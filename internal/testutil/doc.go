// Package testutil contains scripted fakes and helpers used across tests to
// exercise the engine without network access: an in-memory store stack
// (connector, session, collection), a recording messenger, a canned
// completer and httptest servers speaking the chat completion wire shape.
// These helpers are intentionally minimal and avoid adding third-party
// dependencies. They are not intended for production usage.
package testutil
