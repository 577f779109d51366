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

import "log/slog"

// defaultBlockSize and defaultBlockMeanSize are the Binarizer defaults
// used when a Config (or a nil Config) does not set them.
const (
	defaultBlockSize     = 5
	defaultBlockMeanSize = 7
)

// BinaryImage is the narrow dark/light accessor every stage after the
// Binarizer depends on.
type BinaryImage interface {
	Width() int
	Height() int
	Dark(x, y int) bool
}

// ModuleMatrix is a side x side grid of QR modules. At(i, j) addresses
// column i, row j and reports true for a dark module.
type ModuleMatrix interface {
	Side() int
	At(i, j int) bool
}

// Binarizer turns a grayscale image into a dark/light bitmap.
type Binarizer interface {
	Binarize(img GrayImage, blockSize, blockMeanSize int) BinaryImage
}

// Detector scans a binary bitmap for candidate QR symbol locations.
type Detector interface {
	Detect(img BinaryImage) []SymbolLocation
}

// Sampler reconstructs a symbol's ModuleMatrix from a binary bitmap and
// a detected location.
type Sampler interface {
	Sample(img BinaryImage, loc SymbolLocation) (ModuleMatrix, error)
}

// Corrector reads format info and data codewords from a ModuleMatrix
// and applies Reed-Solomon error correction, returning the corrected
// data codewords and the diagnostic detail their format/block info
// carried. version is the symbol version the Detector inferred from
// locator spacing.
type Corrector interface {
	Correct(m ModuleMatrix, version int) ([]byte, DecodeInfo, error)
}

// Interpreter turns corrected data codewords into the decoded text.
type Interpreter interface {
	Interpret(data []byte, version int) (string, error)
}

// Config controls how Decode and DecodeWithInfo process an image. The
// zero Config and a nil Config are both valid and select the documented
// defaults.
type Config struct {
	// BlockSize is the Binarizer's cell side in pixels. Zero selects
	// the default of 5.
	BlockSize int
	// BlockMeanSize is the Binarizer's averaging window, in cells. Zero
	// selects the default of 7; even values are rounded down by the
	// Binarizer.
	BlockMeanSize int
	// Workers bounds how many goroutines the Detector may use to scan
	// row bands concurrently. Zero or one means sequential scanning.
	Workers int
	// Logger receives per-stage diagnostic messages. A nil Logger
	// discards them.
	Logger *slog.Logger

	// Binarizer, Detector, Sampler, Corrector, and Interpreter replace
	// the default pipeline stages. Either all five are set, or all
	// five are left nil and the defaults are used; any other
	// combination is rejected with ErrConfig.
	Binarizer   Binarizer
	Detector    Detector
	Sampler     Sampler
	Corrector   Corrector
	Interpreter Interpreter
}

// resolved is a Config with every field populated, defaults applied.
type resolved struct {
	blockSize     int
	blockMeanSize int
	workers       int
	logger        *slog.Logger
	binarizer     Binarizer
	detector      Detector
	sampler       Sampler
	corrector     Corrector
	interpreter   Interpreter
}

func resolveConfig(cfg *Config) (resolved, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	blockSize := cfg.BlockSize
	if blockSize <= 0 {
		blockSize = defaultBlockSize
	}
	blockMeanSize := cfg.BlockMeanSize
	if blockMeanSize <= 0 {
		blockMeanSize = defaultBlockMeanSize
	}

	logger := cfg.Logger

	set := 0
	if cfg.Binarizer != nil {
		set++
	}
	if cfg.Detector != nil {
		set++
	}
	if cfg.Sampler != nil {
		set++
	}
	if cfg.Corrector != nil {
		set++
	}
	if cfg.Interpreter != nil {
		set++
	}
	if set != 0 && set != 5 {
		return resolved{}, ErrConfig
	}

	r := resolved{
		blockSize:     blockSize,
		blockMeanSize: blockMeanSize,
		workers:       cfg.Workers,
		logger:        logger,
		binarizer:     cfg.Binarizer,
		detector:      cfg.Detector,
		sampler:       cfg.Sampler,
		corrector:     cfg.Corrector,
		interpreter:   cfg.Interpreter,
	}
	if set == 0 {
		r.binarizer = defaultBinarizer{}
		r.detector = defaultDetector{workers: cfg.Workers}
		r.sampler = defaultSampler{}
		r.corrector = defaultCorrector{}
		r.interpreter = defaultInterpreter{}
	}

	return r, nil
}

// debug logs msg at debug level if a Logger was configured; it is a
// no-op otherwise so callers never need to nil-check.
func (r resolved) debug(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}
