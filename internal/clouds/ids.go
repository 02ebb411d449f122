/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package clouds

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"labdesigner/internal/domain"
)

// IDGenerator produces ids for duplicated clouds. Implementations must never return
// the same id twice within one process.
type IDGenerator interface {
	NewID(className string) domain.EntityID
}

// Counter numbers copies with a process-wide monotonic counter.
type Counter struct {
	n atomic.Uint64
}

// NewCounter returns a counter whose first id ends in start+1.
func NewCounter(start uint64) *Counter {
	c := &Counter{}
	c.n.Store(start)
	return c
}

func (c *Counter) NewID(className string) domain.EntityID {
	return domain.EntityID(fmt.Sprintf("%s_copy_%d", className, c.n.Add(1)))
}

// UUID suffixes copies with a random version 4 uuid.
type UUID struct{}

func (UUID) NewID(className string) domain.EntityID {
	return domain.EntityID(className + "_copy_" + uuid.NewString())
}

// NewGenerator maps a configured strategy name to a generator. Unknown names
// fall back to the counter.
func NewGenerator(strategy string) IDGenerator {
	if strategy == "uuid" {
		return UUID{}
	}
	return NewCounter(0)
}
