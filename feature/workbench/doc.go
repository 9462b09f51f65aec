// Package workbench joins the primary records of a filter selection with the raw
// secondary records of its partitions, the way an analyst would join two tables.
package workbench
