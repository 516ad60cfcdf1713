// Package library manages the two parallel folder/file trees of a workspace:
// broll and music.
//
// Each namespace is served by a Tree that pairs a REST Service with a Store
// caching per-directory listings keyed by parent id. Listings are fetched
// lazily per visited directory and treated as authoritative until a mutation,
// an Invalidate, or a workspace reset replaces them. Mutations are optimistic
// after server acknowledgement: the client computes its own next state rather
// than re-fetching. Concurrent edits from another session are therefore not
// reconciled; the last local write wins until the directory is re-fetched.
//
// A folder whose owner id differs from the active workspace is a shared
// folder: read-navigable but never mutated from here.
package library
