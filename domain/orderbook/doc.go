// Package orderbook implements the per-symbol limit order book: two
// red-black trees of price levels (bids best-high, asks best-low), each level
// an intrusive FIFO of resting orders, and the price-time crossing loop.
//
// A book is a single-writer structure. It allocates no ids and keeps no
// index; the matching engine in package service owns both.
package orderbook
