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

// Package sample reconstructs a symbol's module grid from a binary
// bitmap and a detected locator triple, correcting for the modest
// perspective skew a single bottom-right alignment pattern can resolve.
package sample

import (
	"errors"
	"math"

	"github.com/grkuntzmd/qrdecode/internal/qrdecode/detect"
	"github.com/grkuntzmd/qrdecode/internal/qrdecode/geom"
	"github.com/grkuntzmd/qrdecode/internal/qrdecode/version"
)

// BinaryImage is the narrow accessor the Sampler depends on.
type BinaryImage interface {
	Width() int
	Height() int
	Dark(x, y int) bool
}

// Errors reported by Sample.
var (
	ErrAlignmentNotFound = errors.New("sample: alignment pattern not found")
	ErrSampleOutOfBounds = errors.New("sample: module sample fell outside the image")
)

// ModuleMatrix is a side x side grid of QR modules. At(i, j) addresses
// column i, row j and returns true for dark.
type ModuleMatrix struct {
	side int
	bits []bool
}

func newModuleMatrix(side int) *ModuleMatrix {
	return &ModuleMatrix{side: side, bits: make([]bool, side*side)}
}

// Side returns the matrix's side length in modules.
func (m *ModuleMatrix) Side() int { return m.side }

// At reports whether module (column i, row j) is dark.
func (m *ModuleMatrix) At(i, j int) bool { return m.bits[j*m.side+i] }

func (m *ModuleMatrix) set(col, row int, dark bool) { m.bits[row*m.side+col] = dark }

// Sample reconstructs the ModuleMatrix for loc against img.
func Sample(img BinaryImage, loc detect.SymbolLocation) (*ModuleMatrix, error) {
	side := version.Side(loc.Version)

	dx := loc.TopRight.Delta(loc.TopLeft).Scale(1 / float64(side-7))
	dy := loc.BottomLeft.Delta(loc.TopLeft).Scale(1 / float64(side-7))

	var ddx, ddy geom.Delta
	if loc.Version >= 2 {
		est := estimatedAlignment(loc, dx, dy, side)
		found, ok := findAlignment(img, est, dx, dy)
		if !ok {
			return nil, ErrAlignmentNotFound
		}
		delta := found.Delta(est)
		denom := float64((side - 10) * (side - 10))
		ddx = delta.Scale(1 / denom)
	}

	return sampleGrid(img, loc.TopLeft, dx, dy, ddx, ddy, side)
}

func estimatedAlignment(loc detect.SymbolLocation, dx, dy geom.Delta, side int) geom.Point {
	xSource := loc.TopRight.Sub(dx.Scale(3)).Add(dy.Scale(float64(side - 10)))
	ySource := loc.BottomLeft.Add(dx.Scale(float64(side - 10))).Sub(dy.Scale(3))
	return geom.Point{X: xSource.X, Y: ySource.Y}
}

// findAlignment spirals outward from est, trying increasing offsets
// (0,1,2,3) half-steps along dx/dy and a small scale sweep at each
// offset, so the candidate nearest est wins.
func findAlignment(img BinaryImage, est geom.Point, dx, dy geom.Delta) (geom.Point, bool) {
	for i := 0; i <= 3; i++ {
		for j := -2; j <= 2; j++ {
			scale := 1.0 + float64(j)/10.0

			if i == 0 {
				if isAlignment(img, est, dx, dy, scale) {
					return est, true
				}
				continue
			}

			for x := -i; x <= i; x++ {
				c := est.Add(dx.Scale(float64(x) / 2.0)).Sub(dy.Scale(float64(i) / 2.0))
				if isAlignment(img, c, dx, dy, scale) {
					return c, true
				}
				c = est.Add(dx.Scale(float64(x) / 2.0)).Add(dy.Scale(float64(i) / 2.0))
				if isAlignment(img, c, dx, dy, scale) {
					return c, true
				}
			}
			for y := -i + 1; y < i; y++ {
				c := est.Sub(dx.Scale(float64(i) / 2.0)).Add(dy.Scale(float64(y) / 2.0))
				if isAlignment(img, c, dx, dy, scale) {
					return c, true
				}
				c = est.Add(dx.Scale(float64(i) / 2.0)).Add(dy.Scale(float64(y) / 2.0))
				if isAlignment(img, c, dx, dy, scale) {
					return c, true
				}
			}
		}
	}
	return geom.Point{}, false
}

// isAlignment reports whether p looks like an alignment pattern center
// under the scaled grid vectors sdx/sdy: the ring two modules out is
// dark, the ring one module out is light, and p itself is dark.
func isAlignment(img BinaryImage, p geom.Point, dx, dy geom.Delta, scale float64) bool {
	sdx := dx.Scale(scale)
	sdy := dy.Scale(scale)

	topLeft := p.Sub(sdx.Scale(2)).Sub(sdy.Scale(2))
	if topLeft.X < 0 || topLeft.Y < 0 {
		return false
	}
	bottomRight := p.Add(sdx.Scale(2)).Add(sdy.Scale(2))
	if bottomRight.X > float64(img.Width()) || bottomRight.Y > float64(img.Height()) {
		return false
	}

	dark := func(pt geom.Point) bool {
		return img.Dark(int(math.Round(pt.X)), int(math.Round(pt.Y)))
	}

	for _, x := range [...]float64{-2, -1, 0, 1} {
		if !dark(p.Add(sdx.Scale(x)).Sub(sdy.Scale(2))) {
			return false
		}
		if !dark(p.Add(sdx.Scale(x)).Add(sdy.Scale(2))) {
			return false
		}
	}
	for _, y := range [...]float64{-1, 0} {
		if !dark(p.Sub(sdx.Scale(2)).Add(sdy.Scale(y))) {
			return false
		}
		if !dark(p.Add(sdx.Scale(2)).Add(sdy.Scale(y))) {
			return false
		}
		if dark(p.Sub(sdx).Add(sdy.Scale(y))) {
			return false
		}
		if dark(p.Add(sdx).Add(sdy.Scale(y))) {
			return false
		}
	}

	if dark(p.Sub(sdy)) {
		return false
	}
	if dark(p.Add(sdy)) {
		return false
	}
	return dark(p)
}

// sampleGrid walks side x side module centers starting near top_left,
// letting dx/dy evolve by ddx/ddy every step so the walk follows the
// locally-linear perspective estimate rather than a single fixed
// affine map.
func sampleGrid(img BinaryImage, topLeft geom.Point, dx, dy, ddx, ddy geom.Delta, side int) (*ModuleMatrix, error) {
	start := topLeft.Sub(dy.Scale(3)).Sub(ddy.Scale(3))
	rowDY := dy.Sub(ddy.Scale(3))
	rowDX := dx.Sub(ddx.Scale(3))

	matrix := newModuleMatrix(side)
	width, height := img.Width(), img.Height()

	for row := 0; row < side; row++ {
		line := start.Sub(rowDX.Scale(3))
		for col := 0; col < side; col++ {
			x := int(math.Round(line.X))
			y := int(math.Round(line.Y))
			if x < 0 || y < 0 || x >= width || y >= height {
				return nil, ErrSampleOutOfBounds
			}
			matrix.set(col, row, img.Dark(x, y))
			line = line.Add(rowDX)
		}
		rowDX = rowDX.Add(ddx)
		start = start.Add(rowDY)
		rowDY = rowDY.Add(ddy)
	}

	return matrix, nil
}
