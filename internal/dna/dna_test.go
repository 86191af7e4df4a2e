package dna

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testRanges() Ranges {
	return Ranges{SpeedMaxRPM: 6000, FeedMaxMMMin: 3000, CutDepthMaxMM: 10}
}

func TestDecode_TotalFunction(t *testing.T) {
	r := testRanges()
	for _, word := range []uint64{0, 1, 1<<TotalBits - 1, 0x5555_5555_5, 0xAAAA_AAAA_A} {
		triple := Decode(Genome(word&(1<<TotalBits-1)), r)
		assert.False(t, math.IsNaN(triple.SpeedRPM))
		assert.False(t, math.IsInf(triple.SpeedRPM, 0))
		assert.GreaterOrEqual(t, triple.SpeedRPM, 0.0)
		assert.LessOrEqual(t, triple.SpeedRPM, r.SpeedMaxRPM)
		assert.GreaterOrEqual(t, triple.FeedMMMin, 0.0)
		assert.LessOrEqual(t, triple.FeedMMMin, r.FeedMaxMMMin)
		assert.GreaterOrEqual(t, triple.CutDepthMM, 0.0)
		assert.LessOrEqual(t, triple.CutDepthMM, r.CutDepthMaxMM)
	}
}

func TestDecode_IdenticalGenomesDecodeIdentically(t *testing.T) {
	r := testRanges()
	g := Genome(0x1234_5678_9)
	a := Decode(g, r)
	b := Decode(g, r)
	assert.Equal(t, a, b)
}

func TestEncodeDecode_RoundTripOnGrid(t *testing.T) {
	r := testRanges()
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 200; i++ {
		speedBits := rng.Uint64() % (speedMax + 1)
		feedBits := rng.Uint64() % (feedMax + 1)
		depthBits := rng.Uint64() % (cutDepthMax + 1)
		word := speedBits<<(FeedBits+CutDepthBits) | feedBits<<CutDepthBits | depthBits
		g := Genome(word)

		triple := Decode(g, r)
		roundTripped := Encode(triple, r)

		assert.Equal(t, g, roundTripped, "round trip mismatch at iteration %d", i)
	}
}

func TestDecode_ZeroCutDepthIsValidIdleCandidate(t *testing.T) {
	r := testRanges()
	g := Genome(0) // speed=0, feed=0, cut_depth=0
	triple := Decode(g, r)
	assert.Equal(t, 0.0, triple.CutDepthMM)
	assert.False(t, math.IsNaN(triple.CutDepthMM))
}

func TestDecodeBatch_AgreesWithScalarDecode(t *testing.T) {
	r := testRanges()
	rng := rand.New(rand.NewSource(2))
	genomes := make([]Genome, 64)
	for i := range genomes {
		genomes[i] = Genome(rng.Uint64() & (1<<TotalBits - 1))
	}

	batch := DecodeBatch(genomes, r)
	for i, g := range genomes {
		assert.Equal(t, Decode(g, r), batch[i])
	}
}

func TestBitAndWithBit_RoundTrip(t *testing.T) {
	g := Genome(0)
	for pos := 0; pos < TotalBits; pos++ {
		g = g.WithBit(pos, 1)
		assert.Equal(t, uint64(1), g.Bit(pos))
	}
	for pos := 0; pos < TotalBits; pos++ {
		assert.Equal(t, uint64(1), g.Bit(pos))
	}
	g2 := g.WithBit(0, 0)
	assert.Equal(t, uint64(0), g2.Bit(0))
	assert.Equal(t, uint64(1), g2.Bit(1))
}

func TestFieldWidths_SumToTotalBits(t *testing.T) {
	assert.Equal(t, TotalBits, SpeedBits+FeedBits+CutDepthBits)
	assert.Equal(t, 36, TotalBits)
}
