// Package vectorizer converts paired source/target sentences into the
// fixed-length integer vectors and boolean attention masks a
// sequence-to-sequence translation model consumes.
//
// A Vectorizer holds one vocabulary per language side plus the maximum
// sentence length, all fixed at construction. Every method is a pure
// function of its inputs and that read-only state, so a single
// Vectorizer is safe for concurrent use.
package vectorizer

import (
	"fmt"

	"github.com/example/go-nmt-prep/internal/text"
	"github.com/example/go-nmt-prep/internal/vector"
	"github.com/example/go-nmt-prep/internal/vocab"
)

// Special vocabulary tokens. Source vocabularies carry the first two,
// target vocabularies all four. Their indices are resolved by lookup at
// construction, never assumed, so vocabularies that arrive with a
// different front-block order keep their own indices.
const (
	UnknownToken = "<unk>"
	PadToken     = "<pad>"
	StartToken   = "<sos>"
	EndToken     = "<eos>"
)

var (
	sourceSpecials = []string{UnknownToken, PadToken}
	targetSpecials = []string{UnknownToken, PadToken, StartToken, EndToken}
)

// Pair is one parallel sentence pair.
type Pair struct {
	Source string
	Target string
}

// Example is the per-pair bundle a training loop consumes: model inputs,
// labels, and the masks that hide padding and future positions.
type Example struct {
	SourceVector  []int64      `json:"source_vector"`
	SourceMask    *vector.Mask `json:"source_mask"`
	TargetXVector []int64      `json:"target_x_vector"`
	TargetYVector []int64      `json:"target_y_vector"`
	TargetMask    *vector.Mask `json:"target_mask"`
}

// Vectorizer maps sentence text to fixed-length index vectors using one
// vocabulary per language side.
type Vectorizer struct {
	source   *vocab.Vocabulary
	target   *vocab.Vocabulary
	maxWords int

	sourcePad   int64
	targetPad   int64
	targetStart int64
	targetEnd   int64
}

// New builds a vectorizer from ordered token lists for each side.
// Missing special tokens are injected at the front of each vocabulary,
// each vocabulary's unknown token becomes its own out-of-vocabulary
// fallback, and maxWords caps the source sentence length in tokens
// (target vectors get one extra slot for the start or end marker).
func New(sourceTokens, targetTokens []string, maxWords int) (*Vectorizer, error) {
	if maxWords < 1 {
		return nil, fmt.Errorf("max words must be positive, got %d", maxWords)
	}

	source, err := buildVocab(sourceSpecials, sourceTokens)
	if err != nil {
		return nil, fmt.Errorf("source vocabulary: %w", err)
	}

	target, err := buildVocab(targetSpecials, targetTokens)
	if err != nil {
		return nil, fmt.Errorf("target vocabulary: %w", err)
	}

	v := &Vectorizer{
		source:   source,
		target:   target,
		maxWords: maxWords,
	}

	v.sourcePad, err = specialIndex(source, PadToken)
	if err != nil {
		return nil, err
	}

	v.targetPad, err = specialIndex(target, PadToken)
	if err != nil {
		return nil, err
	}

	v.targetStart, err = specialIndex(target, StartToken)
	if err != nil {
		return nil, err
	}

	v.targetEnd, err = specialIndex(target, EndToken)
	if err != nil {
		return nil, err
	}

	return v, nil
}

// FromPairs builds a vectorizer from a parallel corpus: each side of
// every pair is split on whitespace and its tokens collected in order of
// first appearance.
func FromPairs(pairs []Pair, maxWords int) (*Vectorizer, error) {
	var sourceTokens, targetTokens []string

	for _, pair := range pairs {
		sourceTokens = append(sourceTokens, text.Tokens(pair.Source)...)
		targetTokens = append(targetTokens, text.Tokens(pair.Target)...)
	}

	return New(sourceTokens, targetTokens, maxWords)
}

func buildVocab(specials, tokens []string) (*vocab.Vocabulary, error) {
	v, err := vocab.NewWithSpecials(specials, tokens)
	if err != nil {
		return nil, err
	}

	unk, err := specialIndex(v, UnknownToken)
	if err != nil {
		return nil, err
	}

	err = v.SetDefaultIndex(unk)
	if err != nil {
		return nil, err
	}

	return v, nil
}

func specialIndex(v *vocab.Vocabulary, token string) (int64, error) {
	idx, ok := v.Lookup(token)
	if !ok {
		return 0, fmt.Errorf("special token %q missing from vocabulary", token)
	}

	return idx, nil
}

// SourceIndices splits text on whitespace and maps each token through
// the source vocabulary, with out-of-vocabulary tokens resolving to the
// unknown index.
func (v *Vectorizer) SourceIndices(sourceText string) []int64 {
	return indicesFor(v.source, sourceText)
}

// TargetIndices maps text through the target vocabulary and derives the
// teacher-forcing pair: x prepends the start marker (decoder input), y
// appends the end marker (decoder label), so y[i] is the correct next
// token after x[i].
func (v *Vectorizer) TargetIndices(targetText string) (x, y []int64) {
	indices := indicesFor(v.target, targetText)

	x = make([]int64, 0, len(indices)+1)
	x = append(x, v.targetStart)
	x = append(x, indices...)

	y = make([]int64, 0, len(indices)+1)
	y = append(y, indices...)
	y = append(y, v.targetEnd)

	return x, y
}

func indicesFor(vo *vocab.Vocabulary, s string) []int64 {
	tokens := text.Tokens(s)

	indices := make([]int64, len(tokens))
	for i, token := range tokens {
		indices[i] = vo.Index(token)
	}

	return indices
}

// SourceMask returns the 1×len(source) padding-visibility row for a
// source vector: true where the entry is a real token.
func (v *Vectorizer) SourceMask(source []int64) *vector.Mask {
	return vector.PadMask(source, v.sourcePad)
}

// TargetMask returns the square decoder self-attention mask for a
// target-x vector: the padding row combined with the causal mask of
// matching size, false wherever either forbids attention.
func (v *Vectorizer) TargetMask(targetX []int64) (*vector.Mask, error) {
	causal, err := vector.CausalMask(len(targetX))
	if err != nil {
		return nil, err
	}

	return vector.PadMask(targetX, v.targetPad).And(causal)
}

// Vectorize converts one training pair into its Example bundle: the
// source vector padded to MaxWords, the target x/y vectors padded to
// MaxWords+1, and both attention masks. A sentence longer than MaxWords
// tokens fails with vector.ErrSequenceTooLong.
func (v *Vectorizer) Vectorize(sourceText, targetText string) (*Example, error) {
	sourceVector, err := vector.Pad(v.SourceIndices(sourceText), v.maxWords, v.sourcePad)
	if err != nil {
		return nil, fmt.Errorf("source sentence: %w", err)
	}

	targetX, targetY := v.TargetIndices(targetText)
	targetLength := v.maxWords + 1

	targetXVector, err := vector.Pad(targetX, targetLength, v.targetPad)
	if err != nil {
		return nil, fmt.Errorf("target sentence: %w", err)
	}

	targetYVector, err := vector.Pad(targetY, targetLength, v.targetPad)
	if err != nil {
		return nil, fmt.Errorf("target sentence: %w", err)
	}

	targetMask, err := v.TargetMask(targetXVector)
	if err != nil {
		return nil, err
	}

	return &Example{
		SourceVector:  sourceVector,
		SourceMask:    v.SourceMask(sourceVector),
		TargetXVector: targetXVector,
		TargetYVector: targetYVector,
		TargetMask:    targetMask,
	}, nil
}

// VectorizeSource converts a source sentence alone into its padded
// vector, for inference before any target tokens exist. The matching
// mask comes from SourceMask.
func (v *Vectorizer) VectorizeSource(sourceText string) ([]int64, error) {
	vec, err := vector.Pad(v.SourceIndices(sourceText), v.maxWords, v.sourcePad)
	if err != nil {
		return nil, fmt.Errorf("source sentence: %w", err)
	}

	return vec, nil
}

// MaxWords returns the configured maximum source sentence length.
func (v *Vectorizer) MaxWords() int {
	return v.maxWords
}

// SourceVocab returns the source-side vocabulary.
func (v *Vectorizer) SourceVocab() *vocab.Vocabulary {
	return v.source
}

// TargetVocab returns the target-side vocabulary.
func (v *Vectorizer) TargetVocab() *vocab.Vocabulary {
	return v.target
}
