/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"context"
	"log/slog"
)

const (
	componentKey  = "component"
	requestIDKey  = "req_id"
	breakpointKey = "bp"
	entityKey     = "entity"
)

type designerCtx struct {
	requestID  string
	breakpoint string
	entity     string
}

type ctxKey struct{}

func fromCtx(ctx context.Context) designerCtx {
	if ctx == nil {
		return designerCtx{}
	}
	dc, _ := ctx.Value(ctxKey{}).(designerCtx)
	return dc
}

func with(ctx context.Context, fn func(*designerCtx)) context.Context {
	dc := fromCtx(ctx)
	fn(&dc)
	return context.WithValue(ctx, ctxKey{}, dc)
}

// WithRequestID tags records logged with ctx with the HTTP request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return with(ctx, func(dc *designerCtx) { dc.requestID = id })
}

// WithBreakpoint tags records logged with ctx with the breakpoint being edited.
func WithBreakpoint(ctx context.Context, bp string) context.Context {
	return with(ctx, func(dc *designerCtx) { dc.breakpoint = bp })
}

// WithEntity tags records logged with ctx with the entity being edited.
func WithEntity(ctx context.Context, id string) context.Context {
	return with(ctx, func(dc *designerCtx) { dc.entity = id })
}

// contextHandler appends the designer context of a record's ctx as attributes.
type contextHandler struct{ next slog.Handler }

func (h contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	dc := fromCtx(ctx)
	for _, a := range [...]slog.Attr{
		slog.String(requestIDKey, dc.requestID),
		slog.String(breakpointKey, dc.breakpoint),
		slog.String(entityKey, dc.entity),
	} {
		if a.Value.String() != "" {
			r.AddAttrs(a)
		}
	}
	return h.next.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{next: h.next.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{next: h.next.WithGroup(name)}
}
