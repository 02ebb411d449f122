/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package snapshot converts designer state to and from the portable layout document.
package snapshot

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"labdesigner/internal/domain"
)

//go:embed schema/layout.schema.json
var schemaBytes []byte

// ErrInvalidDocument wraps every schema or decoding failure.
var ErrInvalidDocument = errors.New("invalid layout document")

// Schema returns the JSON schema the document conforms to.
func Schema() []byte { return append([]byte(nil), schemaBytes...) }

// CloudSource lists the cloud entities in order.
type CloudSource interface {
	All() []domain.CloudEntity
}

// RecordSource exposes a detached copy of one registry.
type RecordSource interface {
	Snapshot() map[domain.EntityID]domain.LayoutRecord
}

// Export builds the document from the cloud list and the active registry.
// It only reads its inputs.
func Export(clouds CloudSource, ui RecordSource) domain.Document {
	doc := domain.Document{Clouds: clouds.All(), UI: ui.Snapshot()}
	if doc.Clouds == nil {
		doc.Clouds = []domain.CloudEntity{}
	}
	if doc.UI == nil {
		doc.UI = map[domain.EntityID]domain.LayoutRecord{}
	}
	return doc
}

// Marshal renders doc as indented JSON. Map keys come out sorted.
func Marshal(doc domain.Document) ([]byte, error) {
	if doc.Clouds == nil {
		doc.Clouds = []domain.CloudEntity{}
	}
	if doc.UI == nil {
		doc.UI = map[domain.EntityID]domain.LayoutRecord{}
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Validate checks data against the embedded schema.
func Validate(data []byte) error {
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaBytes), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(msgs, "; "))
}

// Parse validates and decodes a document.
func Parse(data []byte) (domain.Document, error) {
	if err := Validate(data); err != nil {
		return domain.Document{}, err
	}
	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return doc, nil
}

// CloudSink accepts a wholesale replacement of the cloud list.
type CloudSink interface {
	Replace(list []domain.CloudEntity)
}

// RecordSink accepts a wholesale replacement of one registry.
type RecordSink interface {
	Replace(m map[domain.EntityID]domain.LayoutRecord)
}

// Apply loads doc into the given sinks. This is the programmatic load path and
// may change locked records.
func Apply(doc domain.Document, clouds CloudSink, ui RecordSink) {
	clouds.Replace(doc.Clouds)
	ui.Replace(doc.UI)
}
