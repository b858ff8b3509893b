// Package normalizer turns a raw fbref.com statistics page into a stats.Table.
//
// Normalization runs in a fixed order: the first <table> of the document is
// extracted into a rectangular grid (colspan and rowspan expanded), stacked
// header rows are flattened into one name per column, names are renamed
// through a Translations table, per-column types are inferred, and finally
// every row with a missing value is dropped.
package normalizer
