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

import (
	"errors"

	"github.com/grkuntzmd/qrdecode/internal/qrdecode/binarize"
	"github.com/grkuntzmd/qrdecode/internal/qrdecode/bitstream"
	"github.com/grkuntzmd/qrdecode/internal/qrdecode/detect"
	"github.com/grkuntzmd/qrdecode/internal/qrdecode/format"
	"github.com/grkuntzmd/qrdecode/internal/qrdecode/rsblock"
	"github.com/grkuntzmd/qrdecode/internal/qrdecode/sample"
	"github.com/grkuntzmd/qrdecode/internal/qrdecode/version"
)

// defaultBinarizer wraps internal/qrdecode/binarize's block-mean
// adaptive threshold.
type defaultBinarizer struct{}

func (defaultBinarizer) Binarize(img GrayImage, blockSize, blockMeanSize int) BinaryImage {
	return binarize.Binarize(newGrayAdapter(img), blockSize, blockMeanSize)
}

// defaultDetector wraps internal/qrdecode/detect, optionally scanning
// row bands across workers goroutines.
type defaultDetector struct{ workers int }

func (d defaultDetector) Detect(img BinaryImage) []SymbolLocation {
	if d.workers > 1 {
		return detect.DetectParallel(img, d.workers)
	}
	return detect.Detect(img)
}

// defaultSampler wraps internal/qrdecode/sample's perspective-aware
// module extraction.
type defaultSampler struct{}

func (defaultSampler) Sample(img BinaryImage, loc SymbolLocation) (ModuleMatrix, error) {
	m, err := sample.Sample(img, loc)
	if err != nil {
		kind := SampleOutOfBounds
		if errors.Is(err, sample.ErrAlignmentNotFound) {
			kind = AlignmentNotFound
		}
		return nil, newDecodeError(kind, err)
	}
	return m, nil
}

// defaultCorrector wraps format-info decode, zig-zag codeword
// extraction, deinterleaving, and Reed-Solomon correction.
type defaultCorrector struct{}

func (defaultCorrector) Correct(m ModuleMatrix, ver int) ([]byte, DecodeInfo, error) {
	info, err := format.Read(m)
	if err != nil {
		return nil, DecodeInfo{}, newDecodeError(FormatCorrupted, err)
	}

	raw, err := rsblock.ReadCodewords(m, ver, rsblock.MaskFunc(info.Mask))
	if err != nil {
		return nil, DecodeInfo{}, newDecodeError(BlockShapeMismatch, err)
	}

	blocks, err := version.Blocks(ver, info.ECLevel)
	if err != nil {
		return nil, DecodeInfo{}, newDecodeError(UnknownBlockSpec, err)
	}

	rawBlocks, err := rsblock.Deinterleave(raw, blocks)
	if err != nil {
		return nil, DecodeInfo{}, newDecodeError(BlockShapeMismatch, err)
	}

	var data []byte
	corrected := 0
	for i, block := range rawBlocks {
		fixed, bitErrors, err := rsblock.Correct(block, blocks[i].ECLen())
		if err != nil {
			return nil, DecodeInfo{}, newDecodeError(CorrectionFailed, err)
		}
		corrected += bitErrors
		data = append(data, fixed[:blocks[i].DataLen]...)
	}

	return data, DecodeInfo{
		Version:         ver,
		ECLevel:         info.ECLevel,
		TotalDataBits:   len(data) * 8,
		CorrectedErrors: corrected,
	}, nil
}

// defaultInterpreter wraps internal/qrdecode/bitstream's segment
// decode.
type defaultInterpreter struct{}

func (defaultInterpreter) Interpret(data []byte, ver int) (string, error) {
	text, err := bitstream.Decode(data, ver)
	if err != nil {
		kind := BitstreamExhausted
		if err == bitstream.ErrUnsupportedMode {
			kind = UnsupportedMode
		}
		return "", newDecodeError(kind, err)
	}
	return text, nil
}
