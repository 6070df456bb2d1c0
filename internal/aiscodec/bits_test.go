package aiscodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestBitWriterReader_UintRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		length := rapid.IntRange(1, 32).Draw(t, "length")
		max := uint64(1)<<uint(length) - 1
		v := rapid.Uint64Range(0, max).Draw(t, "value")

		w := &bitWriter{}
		w.putUint(v, length)

		r := newBitReader(w.bits)
		assert.Equal(t, v, r.uint(0, length))
	})
}

func TestBitWriterReader_IntRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		length := rapid.IntRange(2, 32).Draw(t, "length")
		min := -(int64(1) << uint(length-1))
		max := int64(1)<<uint(length-1) - 1
		v := rapid.Int64Range(min, max).Draw(t, "value")

		w := &bitWriter{}
		w.putInt(v, length)

		r := newBitReader(w.bits)
		assert.Equal(t, v, r.int(0, length))
	})
}

func TestArmor_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 200).Draw(t, "nbits")
		bits := make([]byte, n)
		for i := range bits {
			bits[i] = byte(rapid.IntRange(0, 1).Draw(t, "bit"))
		}

		payload, fill := encodeArmor(bits)
		decoded := decodeArmor(payload, fill)

		assert.Equal(t, bits, decoded)
	})
}

func TestTextFieldRoundTrip(t *testing.T) {
	w := &bitWriter{}
	w.putText("TEST SHIP", 9*6)

	r := newBitReader(w.bits)
	assert.Equal(t, "TEST SHIP", r.text(0, 9*6))
}

func TestTextFieldTrimsPadding(t *testing.T) {
	w := &bitWriter{}
	w.putText("AB", 6*6)

	r := newBitReader(w.bits)
	assert.Equal(t, "AB", r.text(0, 6*6))
}
