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

package qrdecode

// This file builds synthetic QR symbols for decode_test.go's end-to-end
// fixtures. It is a minimal, byte-mode-only encoder: just enough to
// produce a module grid this package's own decode pipeline can read
// back, not a general-purpose encoder. It always uses byte mode (the
// numeric and alphanumeric bit-packing rules already have dedicated
// coverage in internal/qrdecode/bitstream's unit tests) and always
// masks with pattern 0 (mask selection-by-penalty-score is an encoding
// concern this package has no use for). Symbols needing version 7 or
// higher (which would also need a version-information block) are out
// of scope for these fixtures; every literal scenario below fits well
// under that.

import (
	"fmt"

	"github.com/grkuntzmd/qrdecode/internal/qrdecode/galois"
	"github.com/grkuntzmd/qrdecode/internal/qrdecode/version"
)

const fixtureMaskID = 0

// fixtureSymbol is a rendered QR module grid plus the metadata the
// end-to-end tests check against.
type fixtureSymbol struct {
	version int
	size    int
	ecLevel ECLevel
	dark    [][]bool
}

// buildFixtureSymbol byte-mode-encodes text at ecLevel into a complete,
// masked and function-pattern-stamped symbol.
func buildFixtureSymbol(text string, ecLevel ECLevel) (*fixtureSymbol, error) {
	data := []byte(text)

	ver, err := fixtureVersionFor(len(data), ecLevel)
	if err != nil {
		return nil, err
	}
	if ver >= 7 {
		return nil, fmt.Errorf("qrdecode: fixture encoder does not support version %d (>=7 needs version-information blocks)", ver)
	}

	payload, err := fixturePackBits(data, ver, ecLevel)
	if err != nil {
		return nil, err
	}

	blocks, err := version.Blocks(ver, ecLevel)
	if err != nil {
		return nil, err
	}
	raw, err := fixtureInterleave(payload, blocks)
	if err != nil {
		return nil, err
	}

	side := version.Side(ver)
	sym := &fixtureSymbol{version: ver, size: side, ecLevel: ecLevel}
	sym.dark = make([][]bool, side)
	for i := range sym.dark {
		sym.dark[i] = make([]bool, side)
	}

	fn := make([][]bool, side)
	for i := range fn {
		fn[i] = make([]bool, side)
	}

	sym.drawFunctionPatterns(fn)
	sym.drawFormatInfo(fn, fixtureMaskID)
	sym.drawCodewords(fn, raw)

	return sym, nil
}

// fixtureVersionFor returns the smallest version whose byte-mode
// capacity at ecLevel holds dataLen bytes.
func fixtureVersionFor(dataLen int, ecLevel ECLevel) (int, error) {
	for ver := version.MinVersion; ver <= version.MaxVersion; ver++ {
		capacity, err := version.TotalDataCodewords(ver, ecLevel)
		if err != nil {
			continue
		}
		needed := 4 + fixtureCharCountBits(ver) + dataLen*8
		if needed <= capacity*8 {
			return ver, nil
		}
	}
	return 0, fmt.Errorf("qrdecode: no version fits %d bytes at EC level %v", dataLen, ecLevel)
}

// fixtureCharCountBits is the byte-mode character-count field width,
// per the version bands bitstream.charCountBits also uses.
func fixtureCharCountBits(ver int) int {
	if ver <= 9 {
		return 8
	}
	return 16
}

// fixtureBits is a minimal MSB-first bit accumulator, just enough to
// pack a single byte-mode segment plus padding.
type fixtureBits struct {
	bytes []byte
	nbits int
}

func (b *fixtureBits) appendBits(value, length int) {
	for i := length - 1; i >= 0; i-- {
		byteIndex := b.nbits / 8
		for byteIndex >= len(b.bytes) {
			b.bytes = append(b.bytes, 0)
		}
		if (value>>uint(i))&1 == 1 {
			b.bytes[byteIndex] |= 1 << uint(7-b.nbits%8)
		}
		b.nbits++
	}
}

// fixturePackBits lays out one byte-mode segment (mode indicator,
// character count, data) followed by the terminator and pad codewords
// QR requires to fill a symbol's data capacity exactly.
func fixturePackBits(data []byte, ver int, ecLevel ECLevel) ([]byte, error) {
	capacity, err := version.TotalDataCodewords(ver, ecLevel)
	if err != nil {
		return nil, err
	}
	capacityBits := capacity * 8

	var bits fixtureBits
	const modeByte = 0b0100
	bits.appendBits(modeByte, 4)
	bits.appendBits(len(data), fixtureCharCountBits(ver))
	for _, b := range data {
		bits.appendBits(int(b), 8)
	}

	if term := capacityBits - bits.nbits; term > 0 {
		if term > 4 {
			term = 4
		}
		bits.appendBits(0, term)
	}
	if rem := bits.nbits % 8; rem != 0 {
		bits.appendBits(0, 8-rem)
	}

	pad := [2]int{0xEC, 0x11}
	for i := 0; bits.nbits/8 < capacity; i++ {
		bits.appendBits(pad[i%2], 8)
	}

	return bits.bytes, nil
}

// fixtureGenerator builds the degree-ecLen Reed-Solomon generator
// polynomial with roots alpha^0..alpha^(ecLen-1), coefficients stored
// highest-to-lowest power excluding the implicit leading 1 — the same
// construction internal/qrdecode/rsblock's own tests use to build
// fixtures for Correct.
func fixtureGenerator(ecLen int) []galois.Elem8 {
	coeffs := make([]galois.Elem8, ecLen)
	coeffs[ecLen-1] = 1
	root := galois.Elem8(1)
	for i := 0; i < ecLen; i++ {
		for j := 0; j < ecLen; j++ {
			coeffs[j] = coeffs[j].Mul(root)
			if j+1 < ecLen {
				coeffs[j] = coeffs[j].Add(coeffs[j+1])
			}
		}
		root = root.Mul(2)
	}
	return coeffs
}

// fixtureRSEncode appends ecLen Reed-Solomon parity codewords to data
// via polynomial long division against fixtureGenerator(ecLen).
func fixtureRSEncode(data []byte, ecLen int) []byte {
	gen := fixtureGenerator(ecLen)
	rem := make([]galois.Elem8, ecLen)
	for _, d := range data {
		factor := galois.Elem8(d).Add(rem[0])
		copy(rem, rem[1:])
		rem[ecLen-1] = 0
		for i := range rem {
			rem[i] = rem[i].Add(gen[i].Mul(factor))
		}
	}
	out := make([]byte, ecLen)
	for i, r := range rem {
		out[i] = byte(r)
	}
	return out
}

// fixtureInterleave splits payload across blocks' data codewords, computes
// each block's EC codewords, and round-robin interleaves data then EC —
// the inverse of rsblock.Deinterleave.
func fixtureInterleave(payload []byte, blocks []version.Block) ([]byte, error) {
	dataBlocks := make([][]byte, len(blocks))
	ecBlocks := make([][]byte, len(blocks))
	maxDataLen := 0
	offset := 0
	for i, blk := range blocks {
		if offset+blk.DataLen > len(payload) {
			return nil, fmt.Errorf("qrdecode: fixture payload too short for block layout")
		}
		chunk := payload[offset : offset+blk.DataLen]
		offset += blk.DataLen
		dataBlocks[i] = chunk
		ecBlocks[i] = fixtureRSEncode(chunk, blk.ECLen())
		if blk.DataLen > maxDataLen {
			maxDataLen = blk.DataLen
		}
	}

	var raw []byte
	for i := 0; i < maxDataLen; i++ {
		for _, blk := range dataBlocks {
			if i < len(blk) {
				raw = append(raw, blk[i])
			}
		}
	}
	ecLen := blocks[0].ECLen()
	for i := 0; i < ecLen; i++ {
		for _, blk := range ecBlocks {
			raw = append(raw, blk[i])
		}
	}
	return raw, nil
}

// drawFunctionPatterns stamps the finder/separator, timing, alignment,
// and dark-module patterns, marking every module it touches in fn so
// drawCodewords skips them.
func (s *fixtureSymbol) drawFunctionPatterns(fn [][]bool) {
	side := s.size

	set := func(x, y int, dark bool) {
		if x < 0 || x >= side || y < 0 || y >= side {
			return
		}
		s.dark[y][x] = dark
		fn[y][x] = true
	}
	chebyshev := func(dx, dy int) int {
		if dx < 0 {
			dx = -dx
		}
		if dy < 0 {
			dy = -dy
		}
		if dy > dx {
			return dy
		}
		return dx
	}

	for i := 0; i < side; i++ {
		set(6, i, i%2 == 0)
		set(i, 6, i%2 == 0)
	}

	drawFinder := func(cx, cy int) {
		for dy := -4; dy <= 4; dy++ {
			for dx := -4; dx <= 4; dx++ {
				d := chebyshev(dx, dy)
				dark := d == 0 || d == 1 || d == 3 // d==2 and d==4 (separator) stay light.
				set(cx+dx, cy+dy, dark)
			}
		}
	}
	drawFinder(3, 3)
	drawFinder(side-4, 3)
	drawFinder(3, side-4)

	positions, err := version.AlignmentPositions(s.version)
	if err == nil {
		n := len(positions)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i == 0 && j == 0 || i == 0 && j == n-1 || i == n-1 && j == 0 {
					continue
				}
				cx, cy := positions[i], positions[j]
				for dy := -2; dy <= 2; dy++ {
					for dx := -2; dx <= 2; dx++ {
						d := chebyshev(dx, dy)
						set(cx+dx, cy+dy, d == 0 || d == 2)
					}
				}
			}
		}
	}

	// Reserve the format-information modules (drawFormatInfo fills the
	// actual bit values); the dark module is always on.
	for x := 0; x <= 8; x++ {
		if x != 6 {
			fn[8][x] = true
		}
	}
	for y := 0; y <= 8; y++ {
		if y != 6 {
			fn[y][8] = true
		}
	}
	for y := side - 1; y >= side-7; y-- {
		fn[y][8] = true
	}
	for x := side - 8; x < side; x++ {
		fn[8][x] = true
	}
	set(8, side-8, true)
}

// drawFormatInfo BCH(15,5)-encodes ecLevel and maskID and stamps both
// redundant copies, in the same module order format.Read expects them.
func (s *fixtureSymbol) drawFormatInfo(fn [][]bool, maskID int) {
	bits := fixtureFormatBits(s.ecLevel, maskID)
	side := s.size

	stamp := func(x, y int, bit int) {
		s.dark[y][x] = bit == 1
		fn[y][x] = true
	}

	n := 0
	for x := 0; x <= 8; x++ {
		if x == 6 {
			continue
		}
		stamp(x, 8, bits[n])
		n++
	}
	for y := 7; y >= 0; y-- {
		if y == 6 {
			continue
		}
		stamp(8, y, bits[n])
		n++
	}

	n = 0
	for y := side - 1; y >= side-7; y-- {
		stamp(8, y, bits[n])
		n++
	}
	for x := side - 8; x < side; x++ {
		stamp(x, 8, bits[n])
		n++
	}
}

// fixtureFormatBits BCH(15,5)-encodes the 2-bit EC level field and
// 3-bit mask id, generator x^10+x^8+x^5+x^4+x^2+x+1 (0b10100110111),
// then XORs the fixed pattern every format word carries so it never
// reads as all-zero — the encode-direction counterpart of
// internal/qrdecode/format's correction, which undoes this same XOR.
func fixtureFormatBits(ecLevel ECLevel, maskID int) [15]int {
	var ecField int
	switch ecLevel {
	case version.Low:
		ecField = 0b01
	case version.Medium:
		ecField = 0b00
	case version.Quartile:
		ecField = 0b11
	case version.High:
		ecField = 0b10
	}

	const generator = 0b10100110111
	value := (ecField<<3 | maskID) << 10
	rem := value
	for i := 14; i >= 10; i-- {
		if rem&(1<<uint(i)) != 0 {
			rem ^= generator << uint(i-10)
		}
	}
	codeword := value | rem

	mask := [15]int{1, 0, 1, 0, 1, 0, 0, 0, 0, 0, 1, 0, 0, 1, 0}
	var bits [15]int
	for i := 0; i < 15; i++ {
		bits[i] = (int(codeword>>uint(14-i)) & 1) ^ mask[i]
	}
	return bits
}

// drawCodewords walks the zig-zag data-module column pairs in the same
// order internal/qrdecode/rsblock.ReadCodewords reads them, skipping
// every module fn marks as a function pattern, writing raw's bits
// XORed with mask pattern 0 ((col+row)%2==0).
func (s *fixtureSymbol) drawCodewords(fn [][]bool, raw []byte) {
	side := s.size
	totalBits := len(raw) * 8
	bitIdx := 0
	nextBit := func() bool {
		if bitIdx >= totalBits {
			return false
		}
		b := raw[bitIdx/8]
		v := (b>>uint(7-bitIdx%8))&1 == 1
		bitIdx++
		return v
	}

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
				if fn[y][x] {
					continue
				}
				bit := nextBit()
				masked := (x+y)%2 == 0
				s.dark[y][x] = bit != masked
			}
		}
	}
}

const (
	fixtureScale     = 4 // pixels per module
	fixtureQuietZone = 4 // modules of light border on every side
)

// rasterize renders sym's module grid into a GraySlice with a light
// quiet zone, at fixtureScale pixels per module, so the Binarizer and
// Detector see something resembling a photographed symbol rather than a
// bare module grid clipped at the image border.
func rasterize(sym *fixtureSymbol) *GraySlice {
	side := sym.size
	pixelsPerSide := (side + 2*fixtureQuietZone) * fixtureScale
	img := NewGraySlice(pixelsPerSide, pixelsPerSide)
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}

	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			if !sym.dark[y][x] {
				continue
			}
			px0 := (x + fixtureQuietZone) * fixtureScale
			py0 := (y + fixtureQuietZone) * fixtureScale
			for py := py0; py < py0+fixtureScale; py++ {
				for px := px0; px < px0+fixtureScale; px++ {
					img.Set(px, py, 0x00)
				}
			}
		}
	}

	return img
}

// placeSideBySide renders two symbols onto one canvas, left then
// right, each with its own quiet zone, for the multi-symbol scenario.
func placeSideBySide(a, b *GraySlice) *GraySlice {
	gap := fixtureScale * fixtureQuietZone
	width := a.Width + gap + b.Width
	height := a.Height
	if b.Height > height {
		height = b.Height
	}

	img := NewGraySlice(width, height)
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}

	for y := 0; y < a.Height; y++ {
		for x := 0; x < a.Width; x++ {
			img.Set(x, y, a.GrayAt(x, y))
		}
	}
	xOff := a.Width + gap
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			img.Set(xOff+x, y, b.GrayAt(x, y))
		}
	}

	return img
}

// flipModules flips count modules to simulate bit errors a reader would
// need Reed-Solomon correction to repair. It only touches the square
// interior [9, size-9) x [9, size-9), which for every QR version is
// clear of the finder, timing, and format-info patterns, so it never
// corrupts anything but data/EC modules. It mutates sym in place and
// returns how many modules it actually flipped.
func flipModules(sym *fixtureSymbol, count int) int {
	flipped := 0
	for y := 9; y < sym.size-9 && flipped < count; y++ {
		for x := 9; x < sym.size-9 && flipped < count; x++ {
			sym.dark[y][x] = !sym.dark[y][x]
			flipped++
		}
	}
	return flipped
}
