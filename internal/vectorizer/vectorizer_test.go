package vectorizer_test

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/example/go-nmt-prep/internal/vector"
	"github.com/example/go-nmt-prep/internal/vectorizer"
)

func newTestVectorizer(t *testing.T, maxWords int) *vectorizer.Vectorizer {
	t.Helper()

	v, err := vectorizer.FromPairs([]vectorizer.Pair{
		{Source: "the cat sat", Target: "le chat assis"},
	}, maxWords)
	if err != nil {
		t.Fatalf("FromPairs: %v", err)
	}

	return v
}

func TestFromPairsSpecialTokenLayout(t *testing.T) {
	v := newTestVectorizer(t, 5)

	source := v.SourceVocab()
	if source.Len() != 5 {
		t.Fatalf("source vocab size = %d, want 5 (2 specials + 3 tokens)", source.Len())
	}

	sourceSpecials := map[string]int64{
		vectorizer.UnknownToken: 0,
		vectorizer.PadToken:     1,
	}
	for token, want := range sourceSpecials {
		got, ok := source.Lookup(token)
		if !ok {
			t.Fatalf("source vocab missing %q", token)
		}

		if got != want {
			t.Errorf("source index of %q = %d, want %d", token, got, want)
		}
	}

	target := v.TargetVocab()
	if target.Len() != 7 {
		t.Fatalf("target vocab size = %d, want 7 (4 specials + 3 tokens)", target.Len())
	}

	targetSpecials := map[string]int64{
		vectorizer.UnknownToken: 0,
		vectorizer.PadToken:     1,
		vectorizer.StartToken:   2,
		vectorizer.EndToken:     3,
	}
	for token, want := range targetSpecials {
		got, ok := target.Lookup(token)
		if !ok {
			t.Fatalf("target vocab missing %q", token)
		}

		if got != want {
			t.Errorf("target index of %q = %d, want %d", token, got, want)
		}
	}
}

func TestSpecialIndicesStableAcrossRebuilds(t *testing.T) {
	first := newTestVectorizer(t, 5)
	second := newTestVectorizer(t, 5)

	if !reflect.DeepEqual(first.SourceVocab().Tokens(), second.SourceVocab().Tokens()) {
		t.Error("source token order differs across rebuilds from the same corpus")
	}

	if !reflect.DeepEqual(first.TargetVocab().Tokens(), second.TargetVocab().Tokens()) {
		t.Error("target token order differs across rebuilds from the same corpus")
	}
}

func TestUnknownFallbackUsesOwnVocabulary(t *testing.T) {
	v := newTestVectorizer(t, 5)

	sourceUnk, ok := v.SourceVocab().Lookup(vectorizer.UnknownToken)
	if !ok {
		t.Fatal("source vocab has no unknown token")
	}

	got := v.SourceIndices("the dog sat")
	if got[1] != sourceUnk {
		t.Errorf("OOV source token mapped to %d, want unknown index %d", got[1], sourceUnk)
	}

	// The target side must resolve through its own unknown index, not the
	// source side's.
	targetUnk, ok := v.TargetVocab().Lookup(vectorizer.UnknownToken)
	if !ok {
		t.Fatal("target vocab has no unknown token")
	}

	if v.TargetVocab().DefaultIndex() != targetUnk {
		t.Errorf("target default index = %d, want target unknown %d", v.TargetVocab().DefaultIndex(), targetUnk)
	}

	x, y := v.TargetIndices("le chien assis")
	if x[2] != targetUnk {
		t.Errorf("OOV target token in x mapped to %d, want %d", x[2], targetUnk)
	}

	if y[1] != targetUnk {
		t.Errorf("OOV target token in y mapped to %d, want %d", y[1], targetUnk)
	}
}

func TestTargetIndicesTeacherForcingShift(t *testing.T) {
	v := newTestVectorizer(t, 5)

	x, y := v.TargetIndices("le chat assis")
	if len(x) != 4 || len(y) != 4 {
		t.Fatalf("x len %d, y len %d, want 4 and 4", len(x), len(y))
	}

	start, _ := v.TargetVocab().Lookup(vectorizer.StartToken)
	end, _ := v.TargetVocab().Lookup(vectorizer.EndToken)

	if x[0] != start {
		t.Errorf("x[0] = %d, want start index %d", x[0], start)
	}

	if y[len(y)-1] != end {
		t.Errorf("y[last] = %d, want end index %d", y[len(y)-1], end)
	}

	// y[i] is the correct next token after x[i].
	for i := 0; i < len(y)-1; i++ {
		if y[i] != x[i+1] {
			t.Errorf("y[%d] = %d, want x[%d] = %d", i, y[i], i+1, x[i+1])
		}
	}
}

func TestVectorizeEndToEnd(t *testing.T) {
	v := newTestVectorizer(t, 5)

	ex, err := v.Vectorize("the cat sat", "le chat assis")
	if err != nil {
		t.Fatalf("Vectorize: %v", err)
	}

	wantSource := []int64{2, 3, 4, 1, 1}
	if !reflect.DeepEqual(ex.SourceVector, wantSource) {
		t.Errorf("source vector = %v, want %v", ex.SourceVector, wantSource)
	}

	wantX := []int64{2, 4, 5, 6, 1, 1}
	if !reflect.DeepEqual(ex.TargetXVector, wantX) {
		t.Errorf("target x vector = %v, want %v", ex.TargetXVector, wantX)
	}

	wantY := []int64{4, 5, 6, 3, 1, 1}
	if !reflect.DeepEqual(ex.TargetYVector, wantY) {
		t.Errorf("target y vector = %v, want %v", ex.TargetYVector, wantY)
	}

	if ex.SourceMask.Rows() != 1 || ex.SourceMask.Cols() != 5 {
		t.Fatalf("source mask shape %dx%d, want 1x5", ex.SourceMask.Rows(), ex.SourceMask.Cols())
	}

	wantSourceMask := []bool{true, true, true, false, false}
	for j, want := range wantSourceMask {
		if ex.SourceMask.At(0, j) != want {
			t.Errorf("source mask[0][%d] = %v, want %v", j, ex.SourceMask.At(0, j), want)
		}
	}

	if ex.TargetMask.Rows() != 6 || ex.TargetMask.Cols() != 6 {
		t.Fatalf("target mask shape %dx%d, want 6x6", ex.TargetMask.Rows(), ex.TargetMask.Cols())
	}
}

func TestTargetMaskIsCausalAndPadded(t *testing.T) {
	v := newTestVectorizer(t, 5)

	ex, err := v.Vectorize("the cat sat", "le chat assis")
	if err != nil {
		t.Fatalf("Vectorize: %v", err)
	}

	// targetX has 4 real tokens (sos + 3) and 2 pads, so entry (i, j) is
	// visible iff j <= i and j < 4.
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			want := j <= i && j < 4
			if got := ex.TargetMask.At(i, j); got != want {
				t.Errorf("target mask[%d][%d] = %v, want %v", i, j, got, want)
			}
		}
	}
}

func TestVectorizeSource(t *testing.T) {
	v := newTestVectorizer(t, 5)

	got, err := v.VectorizeSource("the cat")
	if err != nil {
		t.Fatalf("VectorizeSource: %v", err)
	}

	want := []int64{2, 3, 1, 1, 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("source vector = %v, want %v", got, want)
	}
}

func TestVectorizeRejectsOversizedSource(t *testing.T) {
	v := newTestVectorizer(t, 1)

	_, err := v.Vectorize("the cat", "le")
	if !errors.Is(err, vector.ErrSequenceTooLong) {
		t.Fatalf("error = %v, want ErrSequenceTooLong", err)
	}

	_, err = v.VectorizeSource("the cat")
	if !errors.Is(err, vector.ErrSequenceTooLong) {
		t.Fatalf("VectorizeSource error = %v, want ErrSequenceTooLong", err)
	}
}

func TestVectorizeRejectsOversizedTarget(t *testing.T) {
	// maxWords+1 slots leave room for exactly maxWords target tokens plus
	// one marker, so a 2-token target overflows at maxWords=1.
	v := newTestVectorizer(t, 1)

	_, err := v.Vectorize("the", "le chat")
	if !errors.Is(err, vector.ErrSequenceTooLong) {
		t.Fatalf("error = %v, want ErrSequenceTooLong", err)
	}
}

func TestNewRejectsNonPositiveMaxWords(t *testing.T) {
	for _, maxWords := range []int{0, -3} {
		_, err := vectorizer.New(nil, nil, maxWords)
		if err == nil {
			t.Errorf("New with maxWords=%d succeeded, want error", maxWords)
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	v := newTestVectorizer(t, 5)

	restored, err := vectorizer.FromSnapshot(v.Snapshot())
	if err != nil {
		t.Fatalf("FromSnapshot: %v", err)
	}

	before, err := v.Vectorize("the cat sat", "le chat assis")
	if err != nil {
		t.Fatalf("Vectorize before snapshot: %v", err)
	}

	after, err := restored.Vectorize("the cat sat", "le chat assis")
	if err != nil {
		t.Fatalf("Vectorize after snapshot: %v", err)
	}

	if !reflect.DeepEqual(before.SourceVector, after.SourceVector) {
		t.Errorf("source vectors differ: %v vs %v", before.SourceVector, after.SourceVector)
	}

	if !reflect.DeepEqual(before.TargetXVector, after.TargetXVector) {
		t.Errorf("target x vectors differ: %v vs %v", before.TargetXVector, after.TargetXVector)
	}

	if !reflect.DeepEqual(before.TargetYVector, after.TargetYVector) {
		t.Errorf("target y vectors differ: %v vs %v", before.TargetYVector, after.TargetYVector)
	}

	if !before.SourceMask.Equal(after.SourceMask) {
		t.Error("source masks differ after snapshot round trip")
	}

	if !before.TargetMask.Equal(after.TargetMask) {
		t.Error("target masks differ after snapshot round trip")
	}
}

func TestSnapshotPreservesLegacySpecialOrder(t *testing.T) {
	// A snapshot whose token lists carry their own special front block,
	// in a different order than fresh construction uses, must restore
	// with the serialized indices untouched.
	snap := vectorizer.Snapshot{
		SourceTokens: []string{"<pad>", "<unk>", "the", "cat"},
		TargetTokens: []string{"<eos>", "<sos>", "<pad>", "<unk>", "le", "chat"},
		MaxWords:     4,
	}

	v, err := vectorizer.FromSnapshot(snap)
	if err != nil {
		t.Fatalf("FromSnapshot: %v", err)
	}

	if got := v.SourceVocab().Tokens(); !reflect.DeepEqual(got, snap.SourceTokens) {
		t.Errorf("source tokens = %v, want %v", got, snap.SourceTokens)
	}

	if got := v.TargetVocab().Tokens(); !reflect.DeepEqual(got, snap.TargetTokens) {
		t.Errorf("target tokens = %v, want %v", got, snap.TargetTokens)
	}

	pad, _ := v.SourceVocab().Lookup("<pad>")
	got, err := v.VectorizeSource("the cat missing")
	if err != nil {
		t.Fatalf("VectorizeSource: %v", err)
	}

	unk, _ := v.SourceVocab().Lookup("<unk>")
	want := []int64{2, 3, unk, pad}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("source vector = %v, want %v", got, want)
	}
}

func TestExampleJSONFieldNames(t *testing.T) {
	v := newTestVectorizer(t, 5)

	ex, err := v.Vectorize("the cat sat", "le chat assis")
	if err != nil {
		t.Fatalf("Vectorize: %v", err)
	}

	raw, err := json.Marshal(ex)
	if err != nil {
		t.Fatalf("marshal example: %v", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("unmarshal example: %v", err)
	}

	for _, key := range []string{"source_vector", "source_mask", "target_x_vector", "target_y_vector", "target_mask"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("example JSON missing field %q", key)
		}
	}
}
