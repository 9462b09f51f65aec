// Package reconcile merges records that come from two independent sources keyed by
// different identifiers.
//
// It offers two pure operations:
//
//  1. Join: an ad hoc equality join with inner, left and right semantics. Multiple
//     matches expand into one row each; nothing is aggregated.
//
//  2. Accumulate: an identity-keyed merge of a primary record set with the secondary
//     rows of several partitions (e.g. one program and one semester each). Partitions
//     are fetched sequentially with a fixed delay, and later partitions win field by
//     field. The result keeps first-seen identity order, so identical inputs always
//     give identical output.
//
// Collect fetches partitions the same way but keeps the raw rows, typically as the
// right side of a Join.
//
// Project turns either result into a column-ordered table for an exporter.
//
// # Usage
//
//	acc, err := reconcile.Accumulate(ctx, students, tuple.Partitions(2), fetch, reconcile.AccumulateOptions{
//	    IdentityField: "student_id",
//	    Delay:         150 * time.Millisecond,
//	})
//	rows := acc.Rows()
//
//	joined := reconcile.Join(accounts, grades, "uid", "student_id", reconcile.JoinLeft)
package reconcile
