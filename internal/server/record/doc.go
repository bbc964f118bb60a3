// Package record maps typed Go values onto the attribute-typed items of a
// schemaless key-value store.
//
// A Store is bound to one table and a fixed allowlist of fields. It offers
// lookups through a per-field secondary index (FindBy), whole-item writes
// (Insert) and partial updates where a nil value removes the attribute
// (UpdateField, UpdateFields). The store never interprets field semantics.
//
// Storage engines plug in through Backend. Implementations are provided for
// DynamoDB, PostgreSQL (JSONB items) and an in-process map for development
// and tests. Any backend failure is reported as a storage-unavailable
// common.Error; backend error codes are not interpreted.
package record
