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

// DecodeInfo carries diagnostic detail about a successfully decoded
// symbol beyond its text: the version and error correction level read
// from its format info, how many data bits its codewords held, and how
// many bit errors Reed-Solomon correction had to repair (the popcount of
// every applied correction, not the count of corrected codewords).
type DecodeInfo struct {
	Version         int
	ECLevel         ECLevel
	TotalDataBits   int
	CorrectedErrors int
}

// Result is one SymbolLocation's decode outcome. Exactly one of Text or
// Err is meaningful at a time: Err is nil on success.
type Result struct {
	Location SymbolLocation
	Text     string
	Err      error
}

// ResultWithInfo is a Result enriched with DecodeInfo, returned by
// DecodeWithInfo.
type ResultWithInfo struct {
	Location SymbolLocation
	Text     string
	Info     DecodeInfo
	Err      error
}
