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

// Package rsblock reads the data-module zig-zag walk out of a sampled
// symbol, unmasks and deinterleaves it into physical Reed-Solomon
// blocks, and corrects each block against GF(2^8) errors.
package rsblock

import (
	"errors"
	"math/bits"

	"github.com/grkuntzmd/qrdecode/internal/qrdecode/galois"
	"github.com/grkuntzmd/qrdecode/internal/qrdecode/version"
)

// Errors reported by this package.
var (
	ErrBlockShapeMismatch = errors.New("rsblock: block layout did not match the raw codeword count")
	ErrCorrectionFailed   = errors.New("rsblock: error correction could not repair a block")
)

// ModuleMatrix is the narrow accessor this package reads modules
// through. At(i, j) addresses column i, row j.
type ModuleMatrix interface {
	Side() int
	At(i, j int) bool
}

// MaskFunc reports whether module (col, row) is flipped by the symbol's
// chosen mask pattern.
type MaskFunc func(col, row int) bool

// ReadCodewords walks the data region in the same zig-zag column order
// the codewords were originally written in, skipping every function
// module, unmasking each data bit, and packing the result MSB-first
// into bytes.
func ReadCodewords(m ModuleMatrix, ver int, mask MaskFunc) ([]byte, error) {
	side := m.Side()
	grid, err := functionGrid(side, ver)
	if err != nil {
		return nil, err
	}

	totalModules, err := version.NumRawDataModules(ver)
	if err != nil {
		return nil, err
	}
	totalBits := (totalModules / 8) * 8

	bits := make([]int, 0, totalBits)
	for right := side - 1; right >= 1; right -= 2 {
		if right == 6 {
			right = 5
		}
		for vert := 0; vert < side; vert++ {
			upward := (right+1)&2 == 0
			for j := 0; j < 2; j++ {
				x := right - j
				var y int
				if upward {
					y = side - 1 - vert
				} else {
					y = vert
				}
				if grid[y][x] {
					continue
				}
				if len(bits) >= totalBits {
					continue
				}
				dark := m.At(x, y)
				v := 0
				if dark != mask(x, y) {
					v = 1
				}
				bits = append(bits, v)
			}
		}
	}

	if len(bits) != totalBits {
		return nil, ErrBlockShapeMismatch
	}

	out := make([]byte, totalBits/8)
	for i, b := range bits {
		if b == 1 {
			out[i/8] |= 1 << uint(7-(i%8))
		}
	}
	return out, nil
}

// functionGrid marks every module that belongs to a finder, separator,
// timing, alignment, format-information, or version-information
// pattern rather than the data region, mirroring the layout the
// encoder direction stamps before it ever draws a codeword.
func functionGrid(side, ver int) ([][]bool, error) {
	grid := make([][]bool, side)
	for y := range grid {
		grid[y] = make([]bool, side)
	}
	mark := func(x, y int) {
		if x >= 0 && x < side && y >= 0 && y < side {
			grid[y][x] = true
		}
	}

	for i := 0; i < side; i++ {
		mark(6, i)
		mark(i, 6)
	}

	markFinder := func(cx, cy int) {
		for dy := -4; dy <= 4; dy++ {
			for dx := -4; dx <= 4; dx++ {
				mark(cx+dx, cy+dy)
			}
		}
	}
	markFinder(3, 3)
	markFinder(side-4, 3)
	markFinder(3, side-4)

	positions, err := version.AlignmentPositions(ver)
	if err != nil {
		return nil, err
	}
	n := len(positions)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == 0 && j == 0 || i == 0 && j == n-1 || i == n-1 && j == 0 {
				continue
			}
			cx, cy := positions[i], positions[j]
			for dy := -2; dy <= 2; dy++ {
				for dx := -2; dx <= 2; dx++ {
					mark(cx+dx, cy+dy)
				}
			}
		}
	}

	for i := 0; i <= 5; i++ {
		mark(8, i)
	}
	mark(8, 7)
	mark(8, 8)
	mark(7, 8)
	for i := 9; i < 15; i++ {
		mark(14-i, 8)
	}
	for i := 0; i < 8; i++ {
		mark(side-1-i, 8)
	}
	for i := 8; i < 15; i++ {
		mark(8, side-15+i)
	}
	mark(8, side-8)

	if ver >= 7 {
		for i := 0; i < 18; i++ {
			a := side - 11 + i%3
			b := i / 3
			mark(a, b)
			mark(b, a)
		}
	}

	return grid, nil
}

// Deinterleave splits raw codewords back into their physical blocks,
// reversing the round-robin interleave the encoder direction produces:
// all data codewords come first, taken one per block per round (short
// blocks drop out of the final data round), followed by the EC
// codewords in the same round-robin order.
func Deinterleave(raw []byte, blocks []version.Block) ([][]byte, error) {
	maxData, maxEC, total := 0, 0, 0
	for _, b := range blocks {
		if b.DataLen > maxData {
			maxData = b.DataLen
		}
		if b.ECLen() > maxEC {
			maxEC = b.ECLen()
		}
		total += b.TotalLen
	}
	if total != len(raw) {
		return nil, ErrBlockShapeMismatch
	}

	out := make([][]byte, len(blocks))
	for i, b := range blocks {
		out[i] = make([]byte, b.TotalLen)
	}

	k := 0
	for i := 0; i < maxData; i++ {
		for j, b := range blocks {
			if i < b.DataLen {
				out[j][i] = raw[k]
				k++
			}
		}
	}
	for i := 0; i < maxEC; i++ {
		for j, b := range blocks {
			if i < b.ECLen() {
				out[j][b.DataLen+i] = raw[k]
				k++
			}
		}
	}
	return out, nil
}

// Correct repairs block (data codewords followed by the block's error
// correction codewords) in place against up to floor(ecLen/2) byte
// errors, ecLen being the count of appended EC codewords, using
// syndrome computation, a descending-degree closed-form solve for the
// error-locator polynomial, a Chien-style root search over GF(2^8),
// and a second linear solve for the error magnitudes at the located
// positions. It returns the corrected codewords and the total bit
// errors repaired (the popcount of every XOR magnitude applied, not
// the count of differing codewords), or ErrCorrectionFailed if the
// block cannot be brought to a zero syndrome.
func Correct(block []byte, ecLen int) ([]byte, int, error) {
	ecCap := ecLen / 2
	if ecCap < 1 {
		return block, 0, nil
	}

	elems := make([]galois.Elem8, len(block))
	for i, b := range block {
		elems[i] = galois.Elem8(b)
	}

	syndromes := make([]galois.Elem8, ecCap*2)
	allZero := true
	for i := range syndromes {
		syndromes[i] = syndrome(elems, galois.Exp8(i))
		if syndromes[i] != 0 {
			allZero = false
		}
	}
	if allZero {
		return block, 0, nil
	}

	sigma, ok := findErrorLocatorPoly(syndromes, ecCap)
	if !ok {
		return nil, 0, ErrCorrectionFailed
	}

	locs := findRoots(sigma, len(block))
	if len(locs) == 0 {
		return nil, 0, ErrCorrectionFailed
	}

	eq := make([][]galois.Elem8, len(locs))
	for i := range eq {
		row := make([]galois.Elem8, len(locs)+1)
		for j, loc := range locs {
			row[j] = galois.Exp8((i * loc) % 255)
		}
		row[len(locs)] = syndromes[i]
		eq[i] = row
	}

	magnitudes, ok := solve(eq, false)
	if !ok {
		return nil, 0, ErrCorrectionFailed
	}

	corrected := append([]byte(nil), block...)
	bitErrors := 0
	for i, loc := range locs {
		pos := len(block) - 1 - loc
		corrected[pos] ^= byte(magnitudes[i])
		bitErrors += bits.OnesCount8(byte(magnitudes[i]))
	}

	correctedElems := make([]galois.Elem8, len(corrected))
	for i, b := range corrected {
		correctedElems[i] = galois.Elem8(b)
	}
	if syndrome(correctedElems, galois.Exp8(0)) != 0 {
		return nil, 0, ErrCorrectionFailed
	}
	return corrected, bitErrors, nil
}

// syndrome evaluates the received-word polynomial at base, codewords
// ordered least-significant (last byte) first.
func syndrome(block []galois.Elem8, base galois.Elem8) galois.Elem8 {
	var s galois.Elem8
	alpha := galois.Elem8(1)
	for i := len(block) - 1; i >= 0; i-- {
		s = s.Add(alpha.Mul(block[i]))
		alpha = alpha.Mul(base)
	}
	return s
}

// findErrorLocatorPoly solves descending degrees z = ecLen..1 for the
// error-locator polynomial's coefficients sigma[0..z-1] (the degree-z
// leading term is implicit), accepting the first degree whose system
// has full rank.
func findErrorLocatorPoly(syndromes []galois.Elem8, ecLen int) ([]galois.Elem8, bool) {
	for z := ecLen; z >= 1; z-- {
		eq := make([][]galois.Elem8, z)
		for i := 0; i < z; i++ {
			row := make([]galois.Elem8, z+1)
			copy(row, syndromes[i:z+1+i])
			eq[i] = row
		}
		if sigma, ok := solve(eq, true); ok {
			return sigma, true
		}
	}
	return nil, false
}

// findRoots evaluates the monic error-locator polynomial (coefficients
// sigma, implicit leading term x^len(sigma)) at every alpha^i for
// i in [0, limit), returning the exponents where it vanishes.
func findRoots(sigma []galois.Elem8, limit int) []int {
	var locs []int
	for i := 0; i < limit; i++ {
		e := galois.Exp8(i)
		x := e
		check := sigma[0]
		for _, s := range sigma[1:] {
			check = check.Add(x.Mul(s))
			x = x.Mul(e)
		}
		check = check.Add(x)
		if check == 0 {
			locs = append(locs, i)
		}
	}
	return locs
}

// solve performs Gaussian elimination over GF(2^8) on the augmented
// matrix eq (each row: coefficients followed by the constant term),
// returning the solution vector. A zero pivot is replaced by swapping in
// a later row with a nonzero entry in that column; when no such row
// exists the system is rank-deficient and solve reports failure instead
// of a bogus solution, whatever the value of failOnRank.
func solve(eq [][]galois.Elem8, failOnRank bool) ([]galois.Elem8, bool) {
	numEq := len(eq)
	if numEq == 0 {
		return nil, false
	}
	numCoeff := len(eq[0])
	if numCoeff == 0 {
		return nil, false
	}

	for i := 0; i < numEq; i++ {
		if eq[i][i] == 0 {
			for r := i + 1; r < numEq; r++ {
				if eq[r][i] != 0 {
					eq[i], eq[r] = eq[r], eq[i]
					break
				}
			}
			if eq[i][i] == 0 {
				return nil, false
			}
		}
		pivot := eq[i][i]
		for j := numCoeff - 1; j >= i; j-- {
			eq[i][j] = eq[i][j].Div(pivot)
		}
		for j := i + 1; j < numEq; j++ {
			factor := eq[j][i]
			for k := numCoeff - 1; k >= i; k-- {
				eq[j][k] = eq[j][k].Sub(factor.Mul(eq[i][k]))
			}
		}
	}

	solution := make([]galois.Elem8, numEq)
	for i := numEq - 1; i >= 0; i-- {
		solution[i] = eq[i][numCoeff-1]
		for j := i + 1; j < numCoeff-1; j++ {
			solution[i] = solution[i].Sub(eq[i][j].Mul(solution[j]))
		}
	}
	return solution, true
}
