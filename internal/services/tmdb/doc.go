// Package tmdb provides access to The Movie Database API: title search
// used by candidate enrichment, plus the trending and watch-provider
// passthrough lookups served by the daemon. An empty result set is a valid,
// non-error response everywhere in this package.
package tmdb
