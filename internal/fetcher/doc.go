// Package fetcher downloads the Big 5 statistics page for a season.
//
// fbref.com serves different or blocked content to non-browser agents, so every
// request carries a desktop browser User-Agent. A fetch is a single GET: there
// are no retries and no client-side timeout, callers bound it with a context.
// Every failure is reported as a *FetchError.
package fetcher
