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

// GrayImage is the narrow grayscale accessor Decode and DecodeWithInfo
// consume. Callers that already hold a decoded image.Gray, a raw byte
// slice, or some other pixel source need only implement this to be
// decoded; they are never asked to produce a binary bitmap themselves.
type GrayImage interface {
	// Bounds returns the image's width and height in pixels.
	Bounds() (w, h int)

	// GrayAt returns the gray level of the pixel at (x, y), which must
	// lie within the bounds reported by Bounds.
	GrayAt(x, y int) uint8
}

// GraySlice is a GrayImage backed by a flat, row-major byte slice.
type GraySlice struct {
	Width, Height int
	Pix           []uint8
}

// NewGraySlice allocates a width x height all-black GraySlice.
func NewGraySlice(width, height int) *GraySlice {
	return &GraySlice{Width: width, Height: height, Pix: make([]uint8, width*height)}
}

// Bounds implements GrayImage.
func (g *GraySlice) Bounds() (int, int) { return g.Width, g.Height }

// GrayAt implements GrayImage.
func (g *GraySlice) GrayAt(x, y int) uint8 { return g.Pix[y*g.Width+x] }

// Set stores the gray level v at (x, y).
func (g *GraySlice) Set(x, y int, v uint8) { g.Pix[y*g.Width+x] = v }

// grayAdapter presents a GrayImage through the Width()/Height() shape
// binarize.GrayImage expects.
type grayAdapter struct {
	img  GrayImage
	w, h int
}

func newGrayAdapter(img GrayImage) grayAdapter {
	w, h := img.Bounds()
	return grayAdapter{img: img, w: w, h: h}
}

func (a grayAdapter) Width() int            { return a.w }
func (a grayAdapter) Height() int           { return a.h }
func (a grayAdapter) GrayAt(x, y int) uint8 { return a.img.GrayAt(x, y) }
