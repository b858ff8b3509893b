// Package season identifies which Big 5 league season to fetch.
//
// A season Key is either the reserved Current marker, which selects the
// in-progress season, or a literal "YYYY-YYYY" season string. The package also
// holds the fixed catalog of selectable seasons shown to users and builds the
// fbref.com listing URL for a key.
package season
