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

import "github.com/grkuntzmd/qrdecode/internal/qrdecode/version"

// ECLevel is one of the four QR error correction levels, shared by the
// encode and decode directions of this package.
type ECLevel = version.ECLevel

// ECLevel values.
const (
	Low      = version.Low      // Recovers 7% of data.
	Medium   = version.Medium   // Recovers 15% of data.
	Quartile = version.Quartile // Recovers 25% of data.
	High     = version.High     // Recovers 30% of data.
)
