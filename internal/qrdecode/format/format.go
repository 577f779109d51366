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

// Package format decodes and error-corrects the 15-bit format-information
// word stamped twice next to a symbol's top-left finder, recovering the
// error-correction level and the mask id applied to the data region.
package format

import (
	"errors"

	"github.com/grkuntzmd/qrdecode/internal/qrdecode/galois"
	"github.com/grkuntzmd/qrdecode/internal/qrdecode/version"
)

// mask is the fixed XOR pattern every format word is stamped with before
// transmission, so the BCH codeword itself never reads as all-zero.
var mask = [15]int{1, 0, 1, 0, 1, 0, 0, 0, 0, 0, 1, 0, 0, 1, 0}

// ErrFormatCorrupted is returned when neither copy of the format word
// can be corrected to a word whose degree-1 BCH(15,5) syndrome is zero.
var ErrFormatCorrupted = errors.New("format: format information corrupted")

// ModuleMatrix is the narrow accessor format reads modules through.
// At(i, j) addresses column i, row j.
type ModuleMatrix interface {
	Side() int
	At(i, j int) bool
}

// MaskFunc reports whether module (col, row) is flipped by a mask pattern.
type MaskFunc func(col, row int) bool

// Info is the decoded, corrected format information for a symbol.
type Info struct {
	ECLevel version.ECLevel
	MaskID  int
	Mask    MaskFunc
}

// Read locates, corrects, and interprets a symbol's format information,
// trying the copy beside the top-left finder first and falling back to
// the redundant copy split across the top-right and bottom-left finders.
func Read(m ModuleMatrix) (Info, error) {
	bits, err := correct(readPrimary(m))
	if err != nil {
		bits, err = correct(readSecondary(m))
		if err != nil {
			return Info{}, ErrFormatCorrupted
		}
	}

	level, ok := eclevel(2*bits[0] + bits[1])
	if !ok {
		return Info{}, ErrFormatCorrupted
	}
	maskID := 4*bits[2] + 2*bits[3] + bits[4]
	fn, ok := maskPredicate(maskID)
	if !ok {
		return Info{}, ErrFormatCorrupted
	}

	return Info{ECLevel: level, MaskID: maskID, Mask: fn}, nil
}

func bit(dark bool) int {
	if dark {
		return 1
	}
	return 0
}

// readPrimary reads the 15-bit copy running across row 8 from column 0
// to 8 (skipping the timing column 6) and then up column 8 from row 7
// to 0 (skipping the timing-pattern row 6), then undoes the fixed mask.
func readPrimary(m ModuleMatrix) [15]int {
	var out [15]int
	n := 0
	for x := 0; x < 9; x++ {
		if x == 6 {
			continue
		}
		out[n] = bit(m.At(x, 8))
		n++
	}
	for y := 7; y >= 0; y-- {
		if y == 6 {
			continue
		}
		out[n] = bit(m.At(8, y))
		n++
	}
	for i := range out {
		out[i] ^= mask[i]
	}
	return out
}

// readSecondary reads the redundant copy: the tail of column 8 beside the
// bottom-left finder (upward from the last row), then the last eight
// modules of row 8 beside the top-right finder.
func readSecondary(m ModuleMatrix) [15]int {
	side := m.Side()
	var out [15]int
	n := 0
	for y := side - 1; y >= side-7; y-- {
		out[n] = bit(m.At(8, y))
		n++
	}
	for x := side - 8; x < side; x++ {
		out[n] = bit(m.At(x, 8))
		n++
	}
	for i := range out {
		out[i] ^= mask[i]
	}
	return out
}

// correct applies BCH(15,5) error correction over GF(2^4), using the
// syndrome-based closed-form solve for a 3-error-correcting code: if the
// degree-1 syndrome is already zero the word is clean; otherwise it
// solves for the error-locator polynomial's coefficients directly
// (no iterative Berlekamp-Massey needed at this fixed code length) and
// brute-forces its roots over the 16-element field to find the bit
// positions to flip.
func correct(word [15]int) ([15]int, error) {
	if syndrome1(word) == 0 {
		return word, nil
	}

	s1 := syndromeElem(word, 1)
	s2 := s1.Mul(s1)
	s4 := s2.Mul(s2)

	var s3, s5 galois.Elem4
	for i := 0; i < 15; i++ {
		bitVal := word[14-i]
		if bitVal == 0 {
			continue
		}
		s3 = s3.Add(galois.Exp4((3 * i) % 15))
		s5 = s5.Add(galois.Exp4((5 * i) % 15))
	}

	sigma1 := s1
	denom := s3.Sub(s1.Mul(s2))
	if denom == 0 {
		return word, ErrFormatCorrupted
	}
	sigma2 := (s5.Add(s4.Mul(sigma1))).Sub(s2.Mul(s3.Add(s2.Mul(sigma1)))).Div(denom)
	sigma3 := s3.Add(s2.Mul(sigma1)).Add(s1.Mul(sigma2))

	var errorPos []int
	for i := 0; i < 16; i++ {
		x := galois.Elem4(i)
		if sigma3.Add(sigma2.Mul(x)).Add(sigma1.Mul(x).Mul(x)).Add(x.Mul(x).Mul(x)) == 0 {
			if x == 0 {
				continue
			}
			errorPos = append(errorPos, galois.Log4(x))
		}
	}

	corrected := word
	for _, pos := range errorPos {
		corrected[14-pos] ^= 1
	}

	if syndrome1(corrected) != 0 {
		return word, ErrFormatCorrupted
	}
	return corrected, nil
}

func syndromeElem(word [15]int, power int) galois.Elem4 {
	var s galois.Elem4
	for i := 0; i < 15; i++ {
		if word[14-i] == 0 {
			continue
		}
		s = s.Add(galois.Exp4((power * i) % 15))
	}
	return s
}

func syndrome1(word [15]int) galois.Elem4 { return syndromeElem(word, 1) }

// eclevel maps the 2-bit format field to an error-correction level.
func eclevel(bits int) (version.ECLevel, bool) {
	switch bits {
	case 0b01:
		return version.Low, true
	case 0b00:
		return version.Medium, true
	case 0b11:
		return version.Quartile, true
	case 0b10:
		return version.High, true
	default:
		return 0, false
	}
}

// maskPredicate maps the 3-bit mask id to the predicate that reports
// whether a data module at (col, row) is flipped before masking.
func maskPredicate(id int) (MaskFunc, bool) {
	switch id {
	case 0b000:
		return func(col, row int) bool { return (col+row)%2 == 0 }, true
	case 0b001:
		return func(col, row int) bool { return row%2 == 0 }, true
	case 0b010:
		return func(col, row int) bool { return col%3 == 0 }, true
	case 0b011:
		return func(col, row int) bool { return (col+row)%3 == 0 }, true
	case 0b100:
		return func(col, row int) bool { return (row/2+col/3)%2 == 0 }, true
	case 0b101:
		return func(col, row int) bool { return (col*row)%2+(col*row)%3 == 0 }, true
	case 0b110:
		return func(col, row int) bool { return ((col*row)%2+(col*row)%3)%2 == 0 }, true
	case 0b111:
		return func(col, row int) bool { return ((col*row)%3+(col+row)%2)%2 == 0 }, true
	default:
		return nil, false
	}
}
