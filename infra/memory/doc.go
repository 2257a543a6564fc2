// Package memory provides the bounded object pool the matching engine draws
// resting-order records from. The pool's limit is the engine's capacity:
// once every slot is live, new resting orders are refused instead of
// growing the book without bound.
package memory
