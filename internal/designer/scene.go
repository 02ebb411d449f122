/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package designer

import (
	"math"

	"labdesigner/internal/domain"
)

// BoardScale returns the factor that makes the workshop board cover the viewport.
func BoardScale(vp domain.Viewport) float64 {
	if vp.Width <= 0 || vp.Height <= 0 {
		return 1
	}
	return math.Max(vp.Width/domain.BoardWidth, vp.Height/domain.BoardHeight)
}

// Placement is the transform handed to the 3D model viewer.
type Placement struct {
	Scale    float64    `json:"scale"`
	Position [3]float64 `json:"position"`
}

// ModelPlacement returns the model transform for touch or pointer devices.
func ModelPlacement(touch bool) Placement {
	scale := 0.5
	if touch {
		scale = 0.7
	}
	return Placement{Scale: scale, Position: [3]float64{0, -0.5, 0}}
}
