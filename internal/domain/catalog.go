/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// Kind tells the registry how to default a record and whether resize applies.
type Kind int

const (
	// Positional entities only carry an offset.
	Positional Kind = iota
	// Resizable entities carry an offset and a size and accept resize transactions.
	Resizable
)

// Fixed UI entity ids known to the page.
const (
	HeroTitle         EntityID = "heroTitle"
	HeroPara          EntityID = "heroPara"
	HeroBtn           EntityID = "heroBtn"
	SkyTitle          EntityID = "skyTitle"
	SkyPara           EntityID = "skyPara"
	ServiceSlider     EntityID = "serviceSlider"
	LightSwitch       EntityID = "lightSwitch"
	Pillow1           EntityID = "pillow1"
	Pillow2           EntityID = "pillow2"
	Founder1          EntityID = "founder1"
	Founder2          EntityID = "founder2"
	Founder3          EntityID = "founder3"
	Founder4          EntityID = "founder4"
	Founder5          EntityID = "founder5"
	Pegboard          EntityID = "pegboard"
	LabNote           EntityID = "labNote"
	StatusLabel       EntityID = "statusLabel"
	GearTag           EntityID = "gearTag"
	LaptopVideo       EntityID = "laptopVideo"
	WorkshopBg        EntityID = "workshopBg"
	FoundersContainer EntityID = "foundersContainer"
	JoinInvitation    EntityID = "joinInvitation"
)

var resizable = map[EntityID]bool{
	Pegboard:    true,
	WorkshopBg:  true,
	LabNote:     true,
	StatusLabel: true,
	GearTag:     true,
	LaptopVideo: true,
}

// KindOf returns the kind of a fixed entity; unknown ids are positional.
func KindOf(id EntityID) Kind {
	if resizable[id] {
		return Resizable
	}
	return Positional
}

// DefaultRecord is what a lookup yields for an id that has never been stored.
func DefaultRecord(id EntityID) LayoutRecord {
	if KindOf(id) == Resizable {
		return LayoutRecord{X: 0, Y: 0, W: F(400), H: F(300)}
	}
	return LayoutRecord{X: 0, Y: 0}
}

// Default stacking when z is absent.
const (
	DesignZ = 1000
	LiveZ   = 5
)

// ZOrDefault resolves the stacking order used by the rendering layer.
func (r LayoutRecord) ZOrDefault(designMode bool) int {
	if designMode {
		return r.ZOr(DesignZ)
	}
	return r.ZOr(LiveZ)
}
