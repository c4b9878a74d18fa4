// Package properties exposes read-only views over metadata beans and the typed
// paging iterators used to walk the collections attached to an asset.
//
// A View wraps a bean together with a descriptor of the asset it was reached
// from. Every accessor that returns a bean returns a copy, so a View can be handed
// to untrusted callers without exposing the cached state behind it.
package properties
