// Package state persists the mapping table and restores it into the host at
// startup.
//
// Responsibilities:
//   - Store only reads and writes one whole table; it never talks to the host.
//   - Loader orchestrates startup: read the table, classify failures, and
//     re-apply every mapping through appmap.Reapply.
//   - The appmap package stays persistence-agnostic; sessions hand their
//     committed table to Loader.Persist.
//
// Data flow:
//
//	Store.Load -> Loader.Load -> appmap.Reapply(host) -> appmap.Stage -> Session.Commit -> Loader.Persist -> Store.Save
//
// File layout:
//
//	FileStore writes a single CBOR document to <Dir>/<FileName>, holding the
//	save metadata and the mapping records ordered by application. The format
//	is not versioned; changing the record shape makes older files fail to
//	decode, which Loader reports as LoadStatusDecodeFailed.
package state
