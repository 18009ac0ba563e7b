package domain

// TasteProfile is the lowercased view of a user's music taste used by
// the recommendation scorer. All sets hold already-normalized terms.
type TasteProfile struct {
	Artists map[string]struct{}
	Genres  map[string]struct{}
	Songs   map[string]struct{}

	// BioKeywords is the tokenized free text plus every structured
	// term above, so bio matches can echo the structured sets.
	BioKeywords map[string]struct{}
}

// Empty reports whether the profile carries no signal at all.
func (p TasteProfile) Empty() bool {
	return len(p.Artists) == 0 && len(p.Genres) == 0 && len(p.Songs) == 0 && len(p.BioKeywords) == 0
}

// ScoredEvent pairs an event with its relevance score for one user.
type ScoredEvent struct {
	Event Event   `json:"event"`
	Score float64 `json:"score"`
}
