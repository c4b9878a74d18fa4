// Package beans holds the plain metadata records served by a property server:
// assets, their connections and schemas, and the governance and feedback
// elements attached to them.
//
// Beans carry no behavior beyond Clone, which returns a deep copy, and Header,
// which returns a copy of the common element header. The read-only facades in
// package properties and the paging iterators hand out clones only.
package beans
