// Package service is the matching engine's public surface. Engine owns the
// per-symbol books, the order id allocator, the id index and the resting
// order pool, and is the only write entry point into any of them.
//
// Engine is single-threaded. Wrap it in Locked when more than one goroutine
// submits or cancels.
package service
