package domain

// Principal is the authenticated caller of a search request.
// Authentication itself happens outside the core; the core only needs the
// identity to attach search history and tag-profile updates to.
type Principal struct {
	ID   int64
	Name string
}
