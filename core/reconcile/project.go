package reconcile

import (
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
)

// Table is the projector input: a fixed column order and one record per row.
type Table struct {
	Columns []string `json:"columns"`
	Records [][]any  `json:"records"`
}

// Project lays rows out under columns. Missing fields are nil. Without columns, the
// sorted union of every row's fields is used.
func Project(rows []Row, columns []string) Table {
	if len(columns) == 0 {
		union := mapset.NewThreadUnsafeSet[string]()
		for _, r := range rows {
			for k := range r {
				union.Add(k)
			}
		}
		columns = union.ToSlice()
		slices.Sort(columns)
	}

	records := make([][]any, 0, len(rows))
	for _, r := range rows {
		rec := make([]any, len(columns))
		for i, c := range columns {
			rec[i] = r[c]
		}
		records = append(records, rec)
	}
	return Table{Columns: slices.Clone(columns), Records: records}
}
