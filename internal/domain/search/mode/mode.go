package mode

// Mode is the search strategy.
type Mode string

// Search mode constants.
const (
	// Perfect matches the whole keyword verbatim against the target field.
	Perfect Mode = "perfect"
	// Partial tokenizes the keyword and requires every token to match.
	Partial Mode = "partial"
	// Fuzzy is Partial with edit-distance tolerance per token.
	Fuzzy Mode = "fuzzy"
	// Related relaxes matching to analyzer-driven relevance (synonym expansion).
	Related Mode = "related"
	// Regex bypasses the index and matches a regular expression against the
	// metadata store directly.
	Regex Mode = "regex"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	switch m {
	case Perfect, Partial, Fuzzy, Related, Regex:
		return true
	}
	return false
}

// UsesIndex reports whether the mode is served by the search index.
// Regex is evaluated against the metadata store instead.
func (m Mode) UsesIndex() bool {
	return m != Regex
}
