// Package vocab implements an ordered bidirectional mapping between token
// strings and dense integer indices.
//
// A Vocabulary is built once from an ordered token list and is read-only
// afterwards, so concurrent lookups need no synchronization. Indices are
// contiguous starting at 0 and follow order of first appearance; duplicate
// tokens collapse onto their first index. An optional default index serves
// as the lookup result for tokens absent from the mapping.
package vocab

import (
	"errors"
	"fmt"
)

// Vocabulary maps token strings to dense int64 indices and back.
type Vocabulary struct {
	tokens       []string
	index        map[string]int64
	defaultIndex int64
}

// New builds a vocabulary from tokens in order of first appearance.
// Duplicates collapse silently onto their first index. Empty-string
// tokens are rejected. The default index starts unset.
func New(tokens []string) (*Vocabulary, error) {
	v := &Vocabulary{
		tokens:       make([]string, 0, len(tokens)),
		index:        make(map[string]int64, len(tokens)),
		defaultIndex: -1,
	}

	for i, token := range tokens {
		if token == "" {
			return nil, fmt.Errorf("vocab: token %d is empty", i)
		}

		if _, seen := v.index[token]; seen {
			continue
		}

		v.index[token] = int64(len(v.tokens))
		v.tokens = append(v.tokens, token)
	}

	return v, nil
}

// NewWithSpecials builds a vocabulary whose front block holds the given
// special tokens in declaration order, followed by the corpus tokens.
// A special already present among the corpus tokens is not injected a
// second time and keeps its original position, so token lists that carry
// their own special ordering (a serialized itos list, for instance)
// reconstruct with identical indices.
func NewWithSpecials(specials, tokens []string) (*Vocabulary, error) {
	present := make(map[string]bool, len(tokens))
	for _, token := range tokens {
		present[token] = true
	}

	ordered := make([]string, 0, len(specials)+len(tokens))

	for _, special := range specials {
		if special == "" {
			return nil, errors.New("vocab: special token is empty")
		}

		if !present[special] {
			ordered = append(ordered, special)
		}
	}

	ordered = append(ordered, tokens...)

	return New(ordered)
}

// Index returns the index for token, falling back to the default index
// for tokens absent from the mapping. When no default has been set the
// fallback is -1; callers that need to distinguish use Lookup.
func (v *Vocabulary) Index(token string) int64 {
	if idx, ok := v.index[token]; ok {
		return idx
	}

	return v.defaultIndex
}

// Lookup returns the exact index for token without any fallback.
func (v *Vocabulary) Lookup(token string) (int64, bool) {
	idx, ok := v.index[token]
	return idx, ok
}

// Token returns the token at index.
func (v *Vocabulary) Token(index int64) (string, error) {
	if index < 0 || index >= int64(len(v.tokens)) {
		return "", fmt.Errorf("vocab: index %d out of range for size %d", index, len(v.tokens))
	}

	return v.tokens[index], nil
}

// Contains reports whether token is in the vocabulary.
func (v *Vocabulary) Contains(token string) bool {
	_, ok := v.index[token]
	return ok
}

// Len returns the number of tokens in the vocabulary.
func (v *Vocabulary) Len() int {
	return len(v.tokens)
}

// Tokens returns a copy of the token list in index order.
func (v *Vocabulary) Tokens() []string {
	return append([]string(nil), v.tokens...)
}

// SetDefaultIndex sets the fallback index returned by Index for absent
// tokens. The index must name an existing entry. Intended for the
// construction phase; a vocabulary is read-only once shared.
func (v *Vocabulary) SetDefaultIndex(index int64) error {
	if index < 0 || index >= int64(len(v.tokens)) {
		return fmt.Errorf("vocab: default index %d out of range for size %d", index, len(v.tokens))
	}

	v.defaultIndex = index

	return nil
}

// DefaultIndex returns the fallback index, or -1 when unset.
func (v *Vocabulary) DefaultIndex() int64 {
	return v.defaultIndex
}
