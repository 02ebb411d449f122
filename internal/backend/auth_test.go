/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	tok, err := signToken("k", "alice", now.Add(time.Minute))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	sub, err := verifyToken("k", tok, now)
	if err != nil || sub != "alice" {
		t.Fatalf("verify = %q, %v", sub, err)
	}
}

func TestTokenRejections(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	tok, _ := signToken("k", "alice", now.Add(time.Minute))

	if _, err := verifyToken("other", tok, now); !errors.Is(err, errTokenSignature) {
		t.Fatalf("wrong secret: %v", err)
	}
	if _, err := verifyToken("k", tok, now.Add(2*time.Minute)); !errors.Is(err, errTokenExpired) {
		t.Fatalf("expired: %v", err)
	}
	if _, err := verifyToken("k", "nodot", now); !errors.Is(err, errTokenFormat) {
		t.Fatalf("format: %v", err)
	}
	parts := strings.SplitN(tok, ".", 2)
	if _, err := verifyToken("k", parts[0]+".!!!", now); !errors.Is(err, errTokenFormat) {
		t.Fatalf("bad base64: %v", err)
	}
}

func TestEmptySubjectDefaultsToDev(t *testing.T) {
	now := time.Now()
	tok, _ := signToken("k", "", now.Add(time.Minute))
	sub, err := verifyToken("k", tok, now)
	if err != nil || sub != "dev" {
		t.Fatalf("verify = %q, %v", sub, err)
	}
}
