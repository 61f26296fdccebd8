// Package routine implements the distributed HTTP routine scheduler: a
// periodic tick loop that selects due routines from a shared Store, leases
// each to a single worker instance under a conditional-update lock, probes
// the routine's endpoint over HTTP, records the outcome, and advances the
// schedule without drift.
package routine
