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
 *
 * Block-count, codeword, and alignment-pattern tables modeled after
 * https://github.com/nayuki/QR-Code-generator (the same source the
 * encoder direction of this package's tables were modeled after), consumed
 * here in the decode direction.
 */

// Package version holds the static per-version QR tables: side length,
// per-(version, ECLevel) physical block layout, and alignment-pattern
// coordinates. Nothing in this package depends on pixels; it is pure
// compile-time data plus the small formulas that generate it.
package version

import "fmt"

// ECLevel is one of the four QR error-correction levels.
type ECLevel int8

// ECLevel values, in table-indexing order. This is not the order of the
// 2-bit format field (Low=1, Medium=0, Quartile=3, High=2 there — see
// package format for the mapping).
const (
	Low ECLevel = iota
	Medium
	Quartile
	High
)

func (e ECLevel) String() string {
	switch e {
	case Low:
		return "LOW"
	case Medium:
		return "MEDIUM"
	case Quartile:
		return "QUARTILE"
	case High:
		return "HIGH"
	default:
		return fmt.Sprintf("ECLevel(%d)", int8(e))
	}
}

// MinVersion and MaxVersion bound the QR version range.
const (
	MinVersion = 1
	MaxVersion = 40
)

// Side returns the module side length (4*version+17) for version.
func Side(version int) int { return 4*version + 17 }

// Block describes one physical Reed-Solomon block: its total codeword
// count, the data-codeword prefix, and (total-data) gives the error
// correction capacity in codewords.
type Block struct {
	TotalLen int
	DataLen  int
}

// ECLen returns the number of error-correction codewords in the block.
func (b Block) ECLen() int { return b.TotalLen - b.DataLen }

var (
	eccCodewordsPerBlock [4][41]int = [4][41]int{
		//      0,  1,  2,  3,  4,  5,  6,  7,  8,  9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30, 31, 32, 33, 34, 35, 36, 37, 38, 39, 40
		{-1, 7, 10, 15, 20, 26, 18, 20, 24, 30, 18, 20, 24, 26, 30, 22, 24, 28, 30, 28, 28, 28, 28, 30, 30, 26, 28, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30},
		{-1, 10, 16, 26, 18, 24, 16, 18, 22, 22, 26, 30, 22, 22, 24, 24, 28, 28, 26, 26, 26, 26, 28, 28, 28, 28, 28, 28, 28, 28, 28, 28, 28, 28, 28, 28, 28, 28, 28, 28, 28},
		{-1, 13, 22, 18, 26, 18, 24, 18, 22, 20, 24, 28, 26, 24, 20, 30, 24, 28, 28, 26, 30, 28, 30, 30, 30, 30, 28, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30},
		{-1, 17, 28, 22, 16, 22, 28, 26, 26, 24, 28, 24, 28, 22, 24, 24, 30, 28, 28, 26, 28, 30, 24, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30},
	}

	numBlocksTable [4][41]int = [4][41]int{
		{-1, 1, 1, 1, 1, 1, 2, 2, 2, 2, 4, 4, 4, 4, 4, 6, 6, 6, 6, 7, 8, 8, 9, 9, 10, 12, 12, 12, 13, 14, 15, 16, 17, 18, 19, 19, 20, 21, 22, 24, 25},
		{-1, 1, 1, 1, 2, 2, 4, 4, 4, 5, 5, 5, 8, 9, 9, 10, 10, 11, 13, 14, 16, 17, 17, 18, 20, 21, 23, 25, 26, 28, 29, 31, 33, 35, 37, 38, 40, 43, 45, 47, 49},
		{-1, 1, 1, 2, 2, 4, 4, 6, 6, 8, 8, 8, 10, 12, 16, 12, 17, 16, 18, 21, 20, 23, 23, 25, 27, 29, 34, 34, 35, 38, 40, 43, 45, 48, 51, 53, 56, 59, 62, 65, 68},
		{-1, 1, 1, 2, 4, 4, 4, 5, 6, 8, 8, 11, 11, 16, 16, 18, 16, 19, 21, 25, 25, 25, 34, 30, 32, 35, 37, 40, 42, 45, 48, 51, 54, 57, 60, 63, 66, 70, 74, 77, 81},
	}

	numRawDataModules [41]int

	alignmentPositions [41][]int
)

func init() {
	for v := 1; v <= MaxVersion; v++ {
		result := (16*v+128)*v + 64
		if v >= 2 {
			numAlign := v/7 + 2
			result -= (25*numAlign-10)*numAlign - 55
			if v >= 7 {
				result -= 36
			}
		}
		numRawDataModules[v] = result
	}
	for v := 1; v <= MaxVersion; v++ {
		alignmentPositions[v] = computeAlignmentPositions(v)
	}
}

// NumRawDataModules returns the count of non-function-pattern bits a
// symbol of the given version carries, remainder bits included.
func NumRawDataModules(version int) (int, error) {
	if version < MinVersion || version > MaxVersion {
		return 0, fmt.Errorf("version: version %d out of range [%d,%d]", version, MinVersion, MaxVersion)
	}
	return numRawDataModules[version], nil
}

// Blocks returns the physical block layout for (version, level): one
// Block entry per physical block, short blocks first, matching the
// round-robin interleave order the encoder direction produces and the
// Block extractor consumes in reverse.
func Blocks(ver int, level ECLevel) ([]Block, error) {
	if ver < MinVersion || ver > MaxVersion {
		return nil, fmt.Errorf("version: version %d out of range [%d,%d]", ver, MinVersion, MaxVersion)
	}
	if level < Low || level > High {
		return nil, fmt.Errorf("version: unknown EC level %v", level)
	}

	numBlocks := numBlocksTable[level][ver]
	ecLen := eccCodewordsPerBlock[level][ver]
	if numBlocks <= 0 || ecLen <= 0 {
		return nil, fmt.Errorf("version: no block spec for version %d level %v", ver, level)
	}

	rawCodewords := numRawDataModules[ver] / 8
	numShortBlocks := numBlocks - rawCodewords%numBlocks
	shortTotalLen := rawCodewords / numBlocks

	blocks := make([]Block, numBlocks)
	for i := 0; i < numBlocks; i++ {
		totalLen := shortTotalLen
		if i >= numShortBlocks {
			totalLen++
		}
		blocks[i] = Block{TotalLen: totalLen, DataLen: totalLen - ecLen}
	}
	return blocks, nil
}

// TotalDataCodewords returns the sum of DataLen across all blocks for
// (version, level) — the symbol's data-codeword capacity.
func TotalDataCodewords(ver int, level ECLevel) (int, error) {
	blocks, err := Blocks(ver, level)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, b := range blocks {
		total += b.DataLen
	}
	return total, nil
}

func computeAlignmentPositions(ver int) []int {
	if ver == 1 {
		return nil
	}
	numAlign := ver/7 + 2
	var step int
	if ver == 32 {
		step = 26
	} else {
		step = (ver*4+numAlign*2+1)/(numAlign*2-2) * 2
	}
	result := make([]int, numAlign)
	result[0] = 6
	for i, pos := len(result)-1, ver*4+17-7; i >= 1; i-- {
		result[i] = pos
		pos -= step
	}
	return result
}

// AlignmentPositions returns the sorted list of alignment-pattern center
// coordinates along one axis for version (both axes share the same
// list); nil for version 1, which has no alignment pattern.
func AlignmentPositions(ver int) ([]int, error) {
	if ver < MinVersion || ver > MaxVersion {
		return nil, fmt.Errorf("version: version %d out of range [%d,%d]", ver, MinVersion, MaxVersion)
	}
	return alignmentPositions[ver], nil
}
