/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Commit kinds reported by the metrics and telemetry.
const (
	KindDrag      = "drag"
	KindResize    = "resize"
	KindFront     = "front"
	KindLock      = "lock"
	KindDuplicate = "duplicate"
	KindDelete    = "delete"
	KindMove      = "move"
)

// Metrics holds the collectors of one server. Each server owns its registry so tests
// can build several servers in one process.
type Metrics struct {
	Registry  *prometheus.Registry
	Commits   *prometheus.CounterVec
	Rejected  *prometheus.CounterVec
	Published prometheus.Counter
}

func newMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "labdesigner",
			Name:      "commits_total",
			Help:      "Layout edits committed to the active registry, by kind.",
		}, []string{"kind"}),
		Rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "labdesigner",
			Name:      "rejected_total",
			Help:      "Layout edits refused, by kind.",
		}, []string{"kind"}),
		Published: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "labdesigner",
			Name:      "published_total",
			Help:      "Layout documents stored in the published store.",
		}),
	}
	m.Registry.MustRegister(
		m.Commits,
		m.Rejected,
		m.Published,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}
