// Package vector provides the fixed-length integer vectors and boolean
// attention masks the vectorizer produces.
//
// Vectors are plain []int64 and masks are dense row-major boolean
// matrices; only integer indices and visibility flags flow through this
// layer, so no numeric tensor machinery is involved.
package vector

import (
	"errors"
	"fmt"
)

// ErrSequenceTooLong is returned by Pad when an index sequence has more
// entries than the requested vector length. Match with errors.Is.
var ErrSequenceTooLong = errors.New("vector: sequence exceeds vector length")

// Pad returns a vector of the given length holding indices from position
// 0 and pad in every remaining slot. A negative length means
// len(indices): no padding and no capacity limit. A sequence longer than
// length fails with ErrSequenceTooLong; there is no silent truncation.
func Pad(indices []int64, length int, pad int64) ([]int64, error) {
	if length < 0 {
		length = len(indices)
	}

	if len(indices) > length {
		return nil, fmt.Errorf("%w: %d tokens, capacity %d", ErrSequenceTooLong, len(indices), length)
	}

	out := make([]int64, length)
	for i := range out {
		out[i] = pad
	}

	copy(out, indices)

	return out, nil
}

// StripPadding returns a copy of vec with trailing pad entries removed.
// Interior pad entries are preserved.
func StripPadding(vec []int64, pad int64) []int64 {
	end := len(vec)
	for end > 0 && vec[end-1] == pad {
		end--
	}

	return append([]int64(nil), vec[:end]...)
}
