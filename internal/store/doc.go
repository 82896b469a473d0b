// Package store is the incremental client for the remote record store
// holding the five pipeline collections: raw notices, analyzed notices,
// sent markers, logs, and run metrics.
//
// The client derives "not yet processed" sets entirely client-side: it
// pages the downstream collection's join keys into a set, then pages the
// upstream collection and yields rows whose key is absent. At the data
// scale of sixteen small bulletin boards this full-scan diff is simpler
// and no slower than a server-side anti-join.
//
// Failure contract: store operations never propagate request errors.
// A failed read returns an absent result (nil slice, zero count, false)
// and a failed write returns nil; every failure is logged. Auth failures
// get exactly one reauthenticate-and-retry before counting as failed.
package store
