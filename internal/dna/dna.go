// Package dna implements the deterministic genome codec: a fixed
// 36-bit genome packed into a uint64, decoding to the (speed, feed,
// cut_depth) triple the MGA searches over.
package dna

import "math"

// Field widths and offsets, in bit-vector order: speed occupies [0, 16),
// feed [16, 29), cut_depth [29, 36). Bit 0 of a field is its most
// significant bit (big-endian weighting within the field).
const (
	SpeedBits    = 16
	FeedBits     = 13
	CutDepthBits = 7
	TotalBits    = SpeedBits + FeedBits + CutDepthBits

	speedMax    = 1<<SpeedBits - 1
	feedMax     = 1<<FeedBits - 1
	cutDepthMax = 1<<CutDepthBits - 1
)

// Genome is a packed 36-bit genotype: bits [0,16) hold the speed field in
// bits [35,20] of the word (most-significant-first), [16,29) the feed
// field, [29,36) the cut_depth field. Using a single uint64 rather than a
// []bool bit-vector keeps genomes cheap value types.
type Genome uint64

// Ranges bounds the physical interval each field decodes into. Decoding
// scales the field's unsigned value linearly by the range's upper bound.
type Ranges struct {
	SpeedMaxRPM   float64
	FeedMaxMMMin  float64
	CutDepthMaxMM float64
}

// Triple is the decoded physical parameter set.
type Triple struct {
	SpeedRPM   float64
	FeedMMMin  float64
	CutDepthMM float64
}

// fieldOf extracts the unsigned integer value of one field from the packed
// word. shift is the bit offset of the field's least-significant bit
// within the 36 significant bits of g, counting from the cut_depth end;
// mask is the field's all-ones value (2^width - 1).
func fieldOf(g Genome, shift uint, mask uint64) uint64 {
	return (uint64(g) >> shift) & mask
}

// Decode is the scalar decoder: decode(genome) -> triple. It is a total
// function — every bit pattern decodes to a finite triple.
func Decode(g Genome, r Ranges) Triple {
	speedBits := fieldOf(g, FeedBits+CutDepthBits, speedMax)
	feedBits := fieldOf(g, CutDepthBits, feedMax)
	depthBits := fieldOf(g, 0, cutDepthMax)

	return Triple{
		SpeedRPM:   float64(speedBits) / speedMax * r.SpeedMaxRPM,
		FeedMMMin:  float64(feedBits) / feedMax * r.FeedMaxMMMin,
		CutDepthMM: float64(depthBits) / cutDepthMax * r.CutDepthMaxMM,
	}
}

// Encode is the inverse of Decode, used to seed or verify specific
// genomes. decode(encode(x)) = x up to the inherent quantization of each
// field's grid.
func Encode(t Triple, r Ranges) Genome {
	speedBits := quantize(t.SpeedRPM, r.SpeedMaxRPM, speedMax)
	feedBits := quantize(t.FeedMMMin, r.FeedMaxMMMin, feedMax)
	depthBits := quantize(t.CutDepthMM, r.CutDepthMaxMM, cutDepthMax)

	word := speedBits<<(FeedBits+CutDepthBits) | feedBits<<CutDepthBits | depthBits
	return Genome(word)
}

func quantize(value, upper float64, mask uint64) uint64 {
	if upper <= 0 {
		return 0
	}
	frac := value / upper
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	// Round rather than truncate so decode(encode(x)) round-trips exactly
	// on the representable grid despite floating-point division error.
	return uint64(math.Round(frac * float64(mask)))
}

// DecodeBatch decodes an entire population row format in one pass: one
// Genome per individual. It must use the exact same bit-weighting as
// Decode so the MGA's hot path and the facade's final scalar re-evaluation
// agree on every bit's weight.
func DecodeBatch(genomes []Genome, r Ranges) []Triple {
	out := make([]Triple, len(genomes))
	for i, g := range genomes {
		out[i] = Decode(g, r)
	}
	return out
}
