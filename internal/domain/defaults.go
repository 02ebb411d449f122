/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// The tables below are the page's shipped layouts. Every call returns fresh
// copies so callers can mutate them freely.

// DesktopLayout returns the seed registry for the desktop breakpoint.
func DesktopLayout() map[EntityID]LayoutRecord {
	return map[EntityID]LayoutRecord{
		HeroTitle:         {X: 12, Y: -126, Z: I(50)},
		HeroPara:          {X: 32, Y: -119, Z: I(50)},
		HeroBtn:           {X: 0, Y: 0, Z: I(50)},
		SkyTitle:          {X: -25, Y: 228},
		SkyPara:           {X: -4, Y: 358},
		ServiceSlider:     {X: 0, Y: 0},
		LightSwitch:       {X: 0, Y: 0, Z: I(9999)},
		Pillow1:           {X: -242.3515625, Y: 13.23046875, Z: I(1)},
		Pillow2:           {X: -190.3203125, Y: 21.421875, Z: I(1)},
		Founder1:          {X: 0, Y: 0},
		Founder2:          {X: 0, Y: 0},
		Founder3:          {X: 0, Y: 0, Locked: B(false)},
		Founder4:          {X: 0, Y: 0},
		Founder5:          {X: 0, Y: 0},
		Pegboard:          {X: 1050, Y: 480, W: F(644), H: F(892), Locked: B(false)},
		LabNote:           {X: 100, Y: 350, W: F(240), H: F(120)},
		StatusLabel:       {X: 1018, Y: -771, W: F(180), H: F(40)},
		GearTag:           {X: 970, Y: 92, W: F(140), H: F(35)},
		LaptopVideo:       {X: 289, Y: 405, W: F(232), H: F(148)},
		WorkshopBg:        {X: -51, Y: -82, W: F(1725), H: F(1131), Locked: B(false)},
		FoundersContainer: {X: 0, Y: 0},
		JoinInvitation:    {X: 0, Y: -50, Z: I(100)},
	}
}

// MobileLayout returns the seed registry for the mobile breakpoint.
func MobileLayout() map[EntityID]LayoutRecord {
	return map[EntityID]LayoutRecord{
		HeroTitle:         {X: -9.333333333333371, Y: -32.999999999999986, Z: I(50)},
		HeroPara:          {X: -3.6666666666668277, Y: -57.999999999999986, Z: I(50)},
		HeroBtn:           {X: 0, Y: 0, Z: I(50)},
		SkyTitle:          {X: 25.666666666666572, Y: 62.333333333333314},
		SkyPara:           {X: 24, Y: 133.66666666666652},
		ServiceSlider:     {X: 0, Y: 0},
		LightSwitch:       {X: 345.33333333333337, Y: -16.333333333333314, Z: I(9999)},
		Pillow1:           {X: -92.66666666666663, Y: 11.666666666666686, Size: F(90), Z: I(1)},
		Pillow2:           {X: -137, Y: 10.666666666666629, Size: F(90), Z: I(1)},
		Founder1:          {X: 0, Y: 0},
		Founder2:          {X: 0, Y: 0},
		Founder3:          {X: 0, Y: 0, Locked: B(false)},
		Founder4:          {X: 0, Y: 0},
		Founder5:          {X: 0, Y: 0},
		Pegboard:          {X: 1250, Y: 480, W: F(600), H: F(800), Locked: B(false)},
		LabNote:           {X: 100, Y: 350, W: F(240), H: F(120)},
		StatusLabel:       {X: 1018, Y: -771, W: F(180), H: F(40)},
		GearTag:           {X: 970, Y: 92, W: F(140), H: F(35)},
		LaptopVideo:       {X: 289, Y: 405, W: F(232), H: F(148)},
		WorkshopBg:        {X: -183, Y: -106, W: F(1725), H: F(1131), Locked: B(true)},
		FoundersContainer: {X: 123.6666666666668, Y: 1},
		JoinInvitation:    {X: 0, Y: 0, Z: I(100)},
	}
}

func cloud(id, src, class string, x, y float64) CloudEntity {
	return CloudEntity{ID: EntityID(id), Src: src, ClassName: class, LayoutRecord: LayoutRecord{X: x, Y: y}}
}

// DesktopClouds returns the cloud seed used when the page loads on a desktop viewport.
func DesktopClouds() []CloudEntity {
	return []CloudEntity{
		cloud("c1", "/cloud_new_1.png", "c1", 115.33333333333331, -12.666666666666742),
		cloud("c3", "/cloud_new_3.png", "c3", 861, -44),
		cloud("c4", "/cloud_new_1.png", "c4", 467.33333333333314, 27.999999999999943),
		cloud("c6", "/cloud_new_3.png", "c6", 606.3333333333335, 2.3333333333332575),
		cloud("c3_copy_1769687040434", "/cloud_new_3.png", "c3", -531, -33),
		cloud("c6_copy_1769688285584", "/cloud_new_3.png", "c6", -57.66666666666676, 12.6666666666668),
		cloud("c4_copy_1769690562836", "/cloud_new_1.png", "c4", 868, 66),
		cloud("c4_copy_1769690583619", "/cloud_new_1.png", "c4", 389.99999999999994, 30.666666666666686),
		cloud("c4_copy_1769690757189", "/cloud_new_1.png", "c4", 1348, 58),
	}
}

// MobileClouds returns the cloud seed for a mobile viewport. It currently matches
// the desktop seed; the two are kept apart so either can be tuned alone.
func MobileClouds() []CloudEntity { return DesktopClouds() }

// CloudSeed picks the cloud seed for the initial breakpoint.
func CloudSeed(bp Breakpoint) []CloudEntity {
	if bp == Mobile {
		return MobileClouds()
	}
	return DesktopClouds()
}

// Seed returns the default registry for bp.
func Seed(bp Breakpoint) map[EntityID]LayoutRecord {
	if bp == Mobile {
		return MobileLayout()
	}
	return DesktopLayout()
}

// DefaultDocument is the snapshot a fresh session exports for bp.
func DefaultDocument(bp Breakpoint) Document {
	return Document{Clouds: CloudSeed(bp), UI: Seed(bp)}
}
