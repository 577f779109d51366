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

// Package qrdecode reads a QR code out of a grayscale image: binarize,
// locate finder-pattern triples, sample the module grid, recover format
// info, correct the data codewords against Reed-Solomon errors, and
// interpret the resulting bitstream as text. Every stage is replaceable
// through Config for testing or for algorithms this package does not
// implement.
package qrdecode

// Decode locates every QR symbol in gray and decodes each to text. The
// result slice has one entry per SymbolLocation the Detector found, in
// the order it found them; a symbol that fails any stage reports its
// own error in its slot rather than aborting the whole image. A nil
// Config selects the documented defaults.
func Decode(gray GrayImage, cfg *Config) ([]Result, error) {
	withInfo, err := DecodeWithInfo(gray, cfg)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(withInfo))
	for i, r := range withInfo {
		results[i] = Result{Location: r.Location, Text: r.Text, Err: r.Err}
	}
	return results, nil
}

// DecodeWithInfo behaves like Decode but additionally reports DecodeInfo
// for each symbol that decodes successfully.
func DecodeWithInfo(gray GrayImage, cfg *Config) ([]ResultWithInfo, error) {
	r, err := resolveConfig(cfg)
	if err != nil {
		return nil, err
	}

	bitmap := r.binarizer.Binarize(gray, r.blockSize, r.blockMeanSize)
	locations := r.detector.Detect(bitmap)
	r.debug("detected symbol candidates", "count", len(locations))

	results := make([]ResultWithInfo, len(locations))
	for i, loc := range locations {
		results[i] = decodeOne(r, bitmap, loc)
	}
	return results, nil
}

// decodeOne runs one SymbolLocation through Sample -> Correct ->
// Interpret, capturing any stage's error instead of propagating it.
func decodeOne(r resolved, bitmap BinaryImage, loc SymbolLocation) ResultWithInfo {
	matrix, err := r.sampler.Sample(bitmap, loc)
	if err != nil {
		r.debug("sample failed", "version", loc.Version, "err", err)
		return ResultWithInfo{Location: loc, Err: err}
	}

	data, info, err := r.corrector.Correct(matrix, loc.Version)
	if err != nil {
		r.debug("correction failed", "version", loc.Version, "err", err)
		return ResultWithInfo{Location: loc, Err: err}
	}

	text, err := r.interpreter.Interpret(data, loc.Version)
	if err != nil {
		r.debug("bitstream interpretation failed", "version", loc.Version, "err", err)
		return ResultWithInfo{Location: loc, Info: info, Err: err}
	}

	r.debug("decoded symbol", "version", loc.Version, "ecLevel", info.ECLevel, "correctedErrors", info.CorrectedErrors)
	return ResultWithInfo{Location: loc, Text: text, Info: info}
}
