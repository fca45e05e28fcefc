// Package cache keeps lesson audio close at hand: fetched recorded clips and
// synthesized sentences. It has an in-memory LRU tier (L1) backed by a
// zstd-compressed disk tier (L2) that survives restarts.
package cache
