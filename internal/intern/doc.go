// Package intern deduplicates short strings into small 1-based integer ids
// for the interned-data sections of the trace stream.
//
// A Table has a fixed capacity chosen at initialization and never grows.
// Lookup is a linear scan over occupied slots, which is fine at the table
// sizes used here (tens of entries). When the table is full, Intern returns
// 0 and the caller falls back to inline text or omits the name; 0 is never
// a valid id.
//
// Two independent tables exist in practice, one for event names and one for
// categories, each with its own id space.
package intern
