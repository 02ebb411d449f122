/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// Founder is an avatar in the founders carousel. Placeholders render as "???".
type Founder struct {
	ID          EntityID `json:"id"`
	Src         string   `json:"src,omitempty"`
	Note        string   `json:"note,omitempty"`
	Placeholder bool     `json:"isPlaceholder,omitempty"`
}

// ClientWork is a testimonial card pinned on the pegboard.
type ClientWork struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Project   string `json:"project"`
	Image     string `json:"image,omitempty"`
	Quote     string `json:"quote"`
	Instagram string `json:"instagram,omitempty"`
	Link      string `json:"link,omitempty"`
}

// Service is a slide of the services slider.
type Service struct {
	ID          int    `json:"id"`
	Tag         string `json:"tag"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
}

// FoundersWindow is how many founder avatars are visible at once.
const FoundersWindow = 5

func Founders() []Founder {
	return []Founder{
		{ID: "founder1", Src: "/founder_anim_1.png"},
		{ID: "founder2", Src: "/founder_anim_2.png"},
		{ID: "founder3", Src: "/founder_anim_3.png", Note: "A WEB3 BUILDER SHIPPING ONCHAIN PRODUCT"},
		{ID: "founder4", Src: "/founder_anim_4.png"},
		{ID: "founder5", Src: "/founder_anim_5.png"},
		{ID: "upcoming_1", Placeholder: true},
		{ID: "upcoming_2", Placeholder: true},
		{ID: "upcoming_3", Placeholder: true},
	}
}

func ClientWorks() []ClientWork {
	return []ClientWork{
		{
			ID:        1,
			Name:      "NutriBrunch",
			Project:   "NUTRITION PLATFORM",
			Image:     "/nutribrunch.png",
			Quote:     "NutriBrunch is a nutrition-first food platform delivering fresh, Indian-inspired fruit and protein bowls. We focus on real food and oil-free recipes that fit naturally into daily routines. Through simple, affordable subscription plans, we help you build long-term healthy habits—one bowl at a time.",
			Instagram: "https://www.instagram.com/nutribrunch.in/",
			Link:      "https://nutribrunch.in",
		},
		{ID: 2, Name: "Vidhi", Project: "ELARA", Quote: "Highphaus connected me with a community of builders who challenged me to think bigger. The energy here gave me the confidence to go all in on my startup and set it on a path to grow."},
		{ID: 3, Name: "Dev Mandal", Project: "MARKOV", Quote: "Being at Highphaus was simply the most productive, fun and exhilarating months of my life! It gave me exactly the environment needed to launch my startup and meet incredible people."},
		{ID: 4, Name: "Dheemanth", Project: "MAYA RESEARCH", Quote: "The drive to build something bold and useful has always been inside me. Highp Haus provided the early support and radical collaboration that meant everything to our progress."},
	}
}

func Services() []Service {
	return []Service{
		{ID: 1, Tag: "LIVE", Title: "The Founders Lab", Description: "At Highp haus, Gen Z builders are crafting AI, robotics, and hardware solutions — reminiscent of early Silicon Valley energy.", Link: "READ ARTICLE ↗"},
		{ID: 2, Tag: "CRAFT", Title: "Media Production", Description: "We help high-growth founders tell their stories through cinematic video, high-end editorial, and viral storytelling.", Link: "VIEW WORKS ↗"},
		{ID: 3, Tag: "SPACE", Title: "Shared Environments", Description: "Access to private labs and shared making-spaces designed for 24/7 building, learning, and radical collaboration.", Link: "APPLY NOW ↗"},
	}
}

// Videos is the laptop screen playlist (video ids of the embedded player).
func Videos() []string { return []string{"YykjpeuMNEk", "eJnQBXmZ7Ek"} }
