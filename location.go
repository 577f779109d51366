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
	"github.com/grkuntzmd/qrdecode/internal/qrdecode/detect"
	"github.com/grkuntzmd/qrdecode/internal/qrdecode/geom"
)

// Point and Delta are shared by every stage of the decode pipeline:
// finder-pattern centers, module-grid steps, and the perspective
// correction terms the Sampler solves for are all expressed in terms of
// them.
type (
	Point = geom.Point
	Delta = geom.Delta
)

// SymbolLocation names the three finder-pattern centers the Detector
// found for one candidate QR symbol, its estimated module pitch, and
// the version inferred from the locator spacing.
type SymbolLocation = detect.SymbolLocation
