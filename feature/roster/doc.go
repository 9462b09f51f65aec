// Package roster builds directory rosters and approval queues from a cascading filter
// selection.
//
// A request carries the caller's scope and profile plus one list of selected ids per
// hierarchy level. The service replays the selection through a fresh resolver, reads
// the primary records of every selected group and merges the secondary records of each
// leaf partition on top of them, keyed by the configured identity field.
package roster
