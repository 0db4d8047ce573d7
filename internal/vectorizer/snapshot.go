package vectorizer

import "fmt"

// Snapshot is the serializable form of a Vectorizer: both token lists in
// index order plus the configured maximum sentence length. Because
// specials already present in a token list are left in place during
// reconstruction, a snapshot restores the exact indices it was taken
// from, including snapshots written by implementations that ordered
// their special front block differently.
type Snapshot struct {
	SourceTokens []string `json:"source_tokens"`
	TargetTokens []string `json:"target_tokens"`
	MaxWords     int      `json:"max_words"`
}

// Snapshot returns the serializable form of v.
func (v *Vectorizer) Snapshot() Snapshot {
	return Snapshot{
		SourceTokens: v.source.Tokens(),
		TargetTokens: v.target.Tokens(),
		MaxWords:     v.maxWords,
	}
}

// FromSnapshot reconstructs a vectorizer from its serialized form.
func FromSnapshot(snap Snapshot) (*Vectorizer, error) {
	v, err := New(snap.SourceTokens, snap.TargetTokens, snap.MaxWords)
	if err != nil {
		return nil, fmt.Errorf("restore vectorizer: %w", err)
	}

	return v, nil
}
