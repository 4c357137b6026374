// Package batch splits a slice into consecutive fixed-size batches and feeds
// them to a callback in order.
//
// The last batch may be shorter than the batch size. An empty input produces
// no batches. Progress is reported after each batch and the context is
// checked before each one.
package batch
