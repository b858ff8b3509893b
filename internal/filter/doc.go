// Package filter narrows and reshapes a season table for display.
//
// A Query combines equality criteria on named columns, an optional sort column
// and an optional column projection, applied in that order:
//
//	q := filter.NewQuery()
//	q.Where("País", "eng ENG")
//	q.SortBy, q.Desc = "Pontos", true
//	q.Columns = []string{"Equipe", "Pontos"}
//	out, err := q.Apply(table)
//
// Criteria are written as "column=value" on the command line and in API query
// strings; ParseCriterion and ParseSort read those forms.
package filter
