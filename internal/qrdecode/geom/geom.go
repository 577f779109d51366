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

// Package geom provides the small affine vector space the Detector and
// Sampler reason in: pixel-space Points and the Deltas between them.
package geom

import "math"

// Point is a location in the source image, in pixels.
type Point struct {
	X, Y float64
}

// Delta is the difference between two Points, in pixels.
type Delta struct {
	DX, DY float64
}

// Add returns p + d.
func (p Point) Add(d Delta) Point { return Point{p.X + d.DX, p.Y + d.DY} }

// Sub returns p - d.
func (p Point) Sub(d Delta) Point { return Point{p.X - d.DX, p.Y - d.DY} }

// Delta returns p - other as a Delta.
func (p Point) Delta(other Point) Delta { return Delta{p.X - other.X, p.Y - other.Y} }

// Add returns d + other.
func (d Delta) Add(other Delta) Delta { return Delta{d.DX + other.DX, d.DY + other.DY} }

// Sub returns d - other.
func (d Delta) Sub(other Delta) Delta { return Delta{d.DX - other.DX, d.DY - other.DY} }

// Scale returns d scaled by s.
func (d Delta) Scale(s float64) Delta { return Delta{d.DX * s, d.DY * s} }

// Len returns the Euclidean length of d.
func (d Delta) Len() float64 { return math.Hypot(d.DX, d.DY) }

// Cross returns the z component of d × other (a scalar in 2D).
func (d Delta) Cross(other Delta) float64 { return d.DX*other.DY - d.DY*other.DX }
