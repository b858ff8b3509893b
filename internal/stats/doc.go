// Package stats holds the normalized team-statistics table.
//
// A Table is an ordered list of typed columns and an ordered list of rows.
// Row order is the ranking order of the source page and every operation keeps
// it unless asked to sort. Tables are treated as immutable: filtering,
// projection and sorting return new tables, so a Table shared through a cache
// can be read by many callers at once.
package stats
