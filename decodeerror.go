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
	"fmt"
)

// DecodeErrorKind classifies why one SymbolLocation failed to decode.
type DecodeErrorKind int8

// DecodeErrorKind values.
const (
	// FormatCorrupted means both format-info copies failed BCH
	// correction.
	FormatCorrupted DecodeErrorKind = iota
	// AlignmentNotFound means version >= 2 and no alignment pattern was
	// detectable near its expected position.
	AlignmentNotFound
	// SampleOutOfBounds means module sampling indexed outside the
	// image.
	SampleOutOfBounds
	// BlockShapeMismatch means the extracted codewords did not match
	// the expected per-block totals for the symbol's (version,
	// ECLevel).
	BlockShapeMismatch
	// UnknownBlockSpec means the symbol's (version, ECLevel) pair has
	// no entry in the block-shape table.
	UnknownBlockSpec
	// CorrectionFailed means Reed-Solomon correction could not drive a
	// block's syndromes to zero.
	CorrectionFailed
	// UnsupportedMode means the bitstream named a mode this decoder
	// does not implement.
	UnsupportedMode
	// BitstreamExhausted means a length field or segment body ran past
	// the available data codewords.
	BitstreamExhausted
	// EncodingError means a byte-mode payload was rejected by the
	// caller's chosen text policy.
	EncodingError
)

// String names k for log messages and error text.
func (k DecodeErrorKind) String() string {
	switch k {
	case FormatCorrupted:
		return "format corrupted"
	case AlignmentNotFound:
		return "alignment pattern not found"
	case SampleOutOfBounds:
		return "sample out of bounds"
	case BlockShapeMismatch:
		return "block shape mismatch"
	case UnknownBlockSpec:
		return "unknown block spec"
	case CorrectionFailed:
		return "error correction failed"
	case UnsupportedMode:
		return "unsupported bitstream mode"
	case BitstreamExhausted:
		return "bitstream exhausted"
	case EncodingError:
		return "encoding error"
	default:
		return "unknown decode error"
	}
}

// DecodeError reports why one SymbolLocation failed to decode. It wraps
// the underlying stage error so callers can still use errors.Is/As
// against sentinels from internal/qrdecode/format, sample, and rsblock.
type DecodeError struct {
	Kind DecodeErrorKind
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func newDecodeError(kind DecodeErrorKind, err error) *DecodeError {
	return &DecodeError{Kind: kind, Err: err}
}

// ErrConfig is returned by Decode/DecodeWithInfo when a caller-supplied
// Config requests custom composition but leaves one of the replaceable
// stages nil.
var ErrConfig = errors.New("qrdecode: config sets one replaceable stage without the others")
