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

// Package detect scans a binary bitmap for QR finder-pattern triples. It
// is a three-stage pipeline: a run-length scan looking for 1-1-3-1-1
// dark/light ratios, a per-candidate refinement along three axes, and a
// triple-selection pass that turns compatible finder candidates into
// oriented SymbolLocations.
package detect

import (
	"math"

	"github.com/grkuntzmd/qrdecode/internal/qrdecode/geom"
	"github.com/grkuntzmd/qrdecode/internal/qrdecode/workpool"
)

// BinaryImage is the narrow accessor the Detector depends on. Any
// dark/light bitmap satisfies it; out-of-range coordinates must report
// light (false).
type BinaryImage interface {
	Width() int
	Height() int
	Dark(x, y int) bool
}

// FinderCandidate is a refined, but not yet triple-matched, finder-like
// pattern: its estimated center and module pitch.
type FinderCandidate struct {
	Center     geom.Point
	ModuleSize float64
}

// SymbolLocation names the three finder-pattern centers of a candidate
// QR symbol, its module pitch, and the version inferred from the
// locator spacing.
type SymbolLocation struct {
	TopLeft, TopRight, BottomLeft geom.Point
	ModuleSize                    float64
	Version                      int
}

// Detect scans img sequentially and returns the SymbolLocations found,
// in a stable, deterministic order. An image with fewer than three
// compatible finder candidates yields an empty (not nil-panicking)
// slice.
func Detect(img BinaryImage) []SymbolLocation {
	return detect(img, 0)
}

// DetectParallel behaves like Detect but scans row bands across up to
// workers goroutines. The merge back into row-major order is
// deterministic, so results are identical to Detect regardless of
// worker count.
func DetectParallel(img BinaryImage, workers int) []SymbolLocation {
	return detect(img, workers)
}

func detect(img BinaryImage, workers int) []SymbolLocation {
	height := img.Height()
	rows := make([]int, height)
	for y := range rows {
		rows[y] = y
	}

	perRow := workpool.Map(rows, workers, func(y int) []FinderCandidate {
		return refineRow(img, y)
	})

	var raw []FinderCandidate
	for _, c := range perRow {
		raw = append(raw, c...)
	}

	deduped := deduplicate(raw)
	return buildTriples(deduped)
}

// runTracker is the sliding 7-entry run-length window shared by the row
// scan and every refinement axis.
type runTracker struct {
	e [7]int
}

func (p *runTracker) slide() {
	if float64(p.e[6]) < float64(p.e[5])/10.0 && p.e[4] != 0 {
		p.e[6] += p.e[5]
		p.e[5] = p.e[4]
		p.e[4] = p.e[3]
		p.e[3] = p.e[2]
		p.e[2] = p.e[1]
		p.e[1] = p.e[0]
		p.e[0] = 0
	} else {
		p.e[0] = p.e[1]
		p.e[1] = p.e[2]
		p.e[2] = p.e[3]
		p.e[3] = p.e[4]
		p.e[4] = p.e[5]
		p.e[5] = p.e[6]
		p.e[6] = 1
	}
}

func (p *runTracker) estModSize() float64 {
	return float64(p.e[2]+p.e[3]+p.e[4]+p.e[5]+p.e[6]) / 7.0
}

func (p *runTracker) looksLikeFinder() bool {
	total := p.e[2] + p.e[3] + p.e[4] + p.e[5] + p.e[6]
	if total < 7 {
		return false
	}
	m := float64(total) / 7.0
	maxVariance := m / 1.5
	if math.Abs(m-float64(p.e[2])) > maxVariance {
		return false
	}
	if math.Abs(m-float64(p.e[3])) > maxVariance {
		return false
	}
	if math.Abs(m*3-float64(p.e[4])) > maxVariance {
		return false
	}
	if math.Abs(m-float64(p.e[5])) > maxVariance {
		return false
	}
	if math.Abs(m-float64(p.e[6])) > maxVariance {
		return false
	}
	return true
}

// scanRow performs the §4.2.1 run-length scan over one row and returns
// every raw finder-shaped candidate found, left to right.
func scanRow(img BinaryImage, y int) []FinderCandidate {
	width := img.Width()
	var out []FinderCandidate
	lastState := -1
	var p runTracker
	for x := 0; x < width; x++ {
		cur := stateOf(img.Dark(x, y))
		if cur == lastState {
			p.e[6]++
			if x != width-1 {
				continue
			}
		}
		if !p.looksLikeFinder() {
			lastState = cur
			p.slide()
			continue
		}

		m := p.estModSize()
		out = append(out, FinderCandidate{
			Center:     geom.Point{X: float64(x) - m*3.5, Y: float64(y)},
			ModuleSize: m,
		})

		lastState = cur
		p.slide()
	}
	return out
}

func stateOf(dark bool) int {
	if dark {
		return 1
	}
	return 0
}

// refineRow scans row y for raw candidates and runs the three-axis
// refinement (§4.2.2) on each, discarding any that fail to confirm.
func refineRow(img BinaryImage, y int) []FinderCandidate {
	raw := scanRow(img, y)
	var refined []FinderCandidate
	for _, c := range raw {
		if r, ok := refineCandidate(img, c); ok {
			refined = append(refined, r)
		}
	}
	return refined
}

func refineCandidate(img BinaryImage, c FinderCandidate) (FinderCandidate, bool) {
	center, m := c.Center, c.ModuleSize

	pt, newM, ok := refineAxis(img, center, m, 0, 1, false)
	if !ok {
		return FinderCandidate{}, false
	}
	half := 3.5 * newM
	center = geom.Point{X: pt.X - 0*half, Y: pt.Y - 1*half}
	m = newM

	pt, newM, ok = refineAxis(img, center, m, 1, 0, false)
	if !ok {
		return FinderCandidate{}, false
	}
	half = 3.5 * newM
	center = geom.Point{X: pt.X - 1*half, Y: pt.Y - 0*half}
	m = newM

	_, newM, ok = refineAxis(img, center, m, 1, 1, true)
	if !ok {
		return FinderCandidate{}, false
	}
	m = newM

	return FinderCandidate{Center: center, ModuleSize: m}, true
}

// refineAxis runs the generic run-length re-scan along one of the three
// refinement axes: vertical (weightX=0,weightY=1), horizontal
// (weightX=1,weightY=0), or diagonal (weightX=1,weightY=1,isDiagonal).
func refineAxis(img BinaryImage, finder geom.Point, moduleSize float64, weightX, weightY int, isDiagonal bool) (geom.Point, float64, bool) {
	var coords []imgPoint
	switch {
	case isDiagonal:
		coords = diagonalCoords(img, finder, moduleSize)
	case weightY == 1:
		coords = verticalCoords(img, finder, moduleSize)
	default:
		coords = horizontalCoords(img, finder, moduleSize)
	}
	return refine(img, coords, moduleSize, isDiagonal)
}

type imgPoint struct{ x, y int }

func clampRound(v, lo, hi float64) int {
	r := math.Round(v)
	if r < lo {
		r = lo
	}
	if r > hi {
		r = hi
	}
	return int(r)
}

func verticalCoords(img BinaryImage, finder geom.Point, m float64) []imgPoint {
	height := img.Height()
	startY := clampRound(finder.Y-5*m, 0, float64(height))
	endY := int(math.Round(finder.Y + 5*m))
	if endY > height {
		endY = height
	}
	x := int(math.Round(finder.X))
	var coords []imgPoint
	for y := startY; y < endY; y++ {
		coords = append(coords, imgPoint{x, y})
	}
	return coords
}

func horizontalCoords(img BinaryImage, finder geom.Point, m float64) []imgPoint {
	width := img.Width()
	startX := clampRound(finder.X-5*m, 0, float64(width))
	endX := int(math.Round(finder.X + 5*m))
	if endX > width {
		endX = width
	}
	y := int(math.Round(finder.Y))
	var coords []imgPoint
	for x := startX; x < endX; x++ {
		coords = append(coords, imgPoint{x, y})
	}
	return coords
}

func diagonalCoords(img BinaryImage, finder geom.Point, m float64) []imgPoint {
	side := 5 * m
	startX, startY := 0.0, 0.0

	switch {
	case finder.X < side && finder.Y < side:
		if finder.X < finder.Y {
			startY = finder.Y - finder.X
		} else {
			startX = finder.X - finder.Y
		}
	case finder.X < side:
		startY = finder.Y - finder.X
	case finder.Y < side:
		startX = finder.X - finder.Y
	default:
		startX = finder.X - side
		startY = finder.Y - side
	}

	width, height := img.Width(), img.Height()
	x := int(math.Round(startX))
	y := int(math.Round(startY))
	endX := int(math.Round(finder.X + 5*m))
	if endX > width {
		endX = width
	}
	endY := int(math.Round(finder.Y + 5*m))
	if endY > height {
		endY = height
	}

	var coords []imgPoint
	for x < endX && y < endY {
		coords = append(coords, imgPoint{x, y})
		x++
		y++
	}
	return coords
}

// refine replays the run-length state machine over coords and returns
// the first point where a finder-shaped run is confirmed (module size
// within 20% of moduleSize, or any size on the diagonal axis). Diagonal
// refinement is unreliable at low resolution, so its module-size gate
// is skipped per §4.2.2.
func refine(img BinaryImage, coords []imgPoint, moduleSize float64, isDiagonal bool) (geom.Point, float64, bool) {
	if len(coords) == 0 {
		return geom.Point{}, 0, false
	}

	lastState := -1
	var p runTracker
	var lastX, lastY int

	accept := func() (geom.Point, float64, bool) {
		if p.looksLikeFinder() && (diffRatio(moduleSize, p.estModSize()) < 0.2 || isDiagonal) {
			return geom.Point{X: float64(lastX), Y: float64(lastY)}, (moduleSize + p.estModSize()) / 2, true
		}
		return geom.Point{}, 0, false
	}

	for _, c := range coords {
		cur := stateOf(img.Dark(c.x, c.y))
		if cur == lastState {
			p.e[6]++
		} else {
			if pt, m, ok := accept(); ok {
				return pt, m, true
			}
			lastState = cur
			p.slide()
		}
		lastX, lastY = c.x, c.y
	}

	return accept()
}

func diffRatio(a, b float64) float64 {
	if a > b {
		return (a - b) / a
	}
	return (b - a) / b
}

// deduplicate merges candidates whose module sizes agree within 10%
// and whose centers fall within 7 module widths of an earlier, kept
// candidate (§4.2.3); ties keep the earlier candidate.
func deduplicate(cands []FinderCandidate) []FinderCandidate {
	var kept []FinderCandidate
candidates:
	for _, c := range cands {
		for _, k := range kept {
			if diffRatio(c.ModuleSize, k.ModuleSize) < 0.10 {
				if c.Center.Delta(k.Center).Len() < 7*c.ModuleSize {
					continue candidates
				}
			}
		}
		kept = append(kept, c)
	}
	return kept
}

// buildTriples enumerates unordered candidate triples and emits an
// oriented SymbolLocation for each that passes the §4.2.4 right-angle
// and distance checks.
func buildTriples(cands []FinderCandidate) []SymbolLocation {
	var out []SymbolLocation
	n := len(cands)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if diffRatio(cands[i].ModuleSize, cands[j].ModuleSize) > 0.1 {
				continue
			}
			for k := j + 1; k < n; k++ {
				if diffRatio(cands[i].ModuleSize, cands[k].ModuleSize) > 0.1 {
					continue
				}

				m := cands[i].ModuleSize
				if loc, ok := tryCorner(cands[i].Center, cands[j].Center, cands[k].Center, m); ok {
					out = append(out, loc)
				} else if loc, ok := tryCorner(cands[j].Center, cands[i].Center, cands[k].Center, m); ok {
					out = append(out, loc)
				} else if loc, ok := tryCorner(cands[k].Center, cands[i].Center, cands[j].Center, m); ok {
					out = append(out, loc)
				}
			}
		}
	}
	return out
}

// tryCorner treats A as the right-angle corner and tests whether
// (A,B,C) forms a valid locator triple, per the formulas in §4.2.4.
func tryCorner(a, b, c geom.Point, moduleSize float64) (SymbolLocation, bool) {
	legB := b.Delta(a)
	legC := c.Delta(a)

	lenB := legB.Len()
	lenC := legC.Len()
	if diffRatio(lenB, lenC) > 0.06 {
		return SymbolLocation{}, false
	}

	cross := -legB.Cross(legC)
	perpendicular := cross / lenB / lenC
	if math.Abs(math.Abs(perpendicular)-1.0) > 0.05 {
		return SymbolLocation{}, false
	}

	distModules := int(a.Delta(c).Len()/moduleSize) + 7
	if distModules < 20 {
		return SymbolLocation{}, false
	}

	switch distModules % 4 {
	case 0:
		distModules++
	case 2:
		distModules--
	case 3:
		distModules -= 2
	}

	version := (distModules - 17) / 4
	if version < 1 || version > 40 {
		return SymbolLocation{}, false
	}

	loc := SymbolLocation{ModuleSize: moduleSize, Version: version}
	if perpendicular > 0 {
		loc.TopLeft, loc.TopRight, loc.BottomLeft = a, c, b
	} else {
		loc.TopLeft, loc.TopRight, loc.BottomLeft = a, b, c
	}
	return loc, true
}
