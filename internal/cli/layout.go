/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"labdesigner/internal/domain"
	"labdesigner/internal/export"
	applog "labdesigner/internal/log"
	"labdesigner/internal/snapshot"
	"labdesigner/internal/storage"
	"labdesigner/internal/telemetry"
)

// DefaultsCmd prints the shipped default document.
func DefaultsCmd() *cobra.Command {
	var mobile bool
	cmd := &cobra.Command{
		Use:   "defaults",
		Short: "Print the default layout document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bp := domain.Desktop
			if mobile {
				bp = domain.Mobile
			}
			data, err := snapshot.Marshal(domain.DefaultDocument(bp))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	cmd.Flags().BoolVar(&mobile, "mobile", false, "print the mobile defaults")
	return cmd
}

// ValidateCmd checks a document against the layout schema.
func ValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a layout document ('-' reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args[0])
			if err != nil {
				return err
			}
			doc, err := snapshot.Parse(data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d entities, %d clouds\n", len(doc.UI), len(doc.Clouds))
			return nil
		},
	}
}

// ImportCmd validates a document, stores it in the layout file and records it in the history.
func ImportCmd() *cobra.Command {
	var (
		layoutPath string
		bpName     string
	)
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Validate a document and store it as the current layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l := applog.WithOperation(applog.WithComponent("cli"), "import")
			bp, err := parseBreakpoint(bpName)
			if err != nil {
				return err
			}
			data, err := readInput(args[0])
			if err != nil {
				return err
			}
			doc, err := snapshot.Parse(data)
			if err != nil {
				return err
			}
			path := storage.BreakpointPath(layoutPathOr(layoutPath), bp)
			h, err := storage.OpenOrCreate(path, domain.DefaultDocument(bp))
			if err != nil {
				return err
			}
			h.Doc = doc
			if err := storage.Save(h); err != nil {
				return err
			}
			if err := recordHistory(cmd.Context(), h.Dir(), bp, doc); err != nil {
				l.Warn("history not updated", slog.Any("err", err))
			}
			l.Info("layout imported", slog.String("path", h.Path), slog.String("bp", bp.String()))
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d entities, %d clouds into %s\n", len(doc.UI), len(doc.Clouds), h.Path)
			return nil
		},
	}
	cmd.Flags().StringVar(&layoutPath, "layout", "", "layout file (default from config); mobile documents go to <name>.mobile.json")
	cmd.Flags().StringVar(&bpName, "bp", string(domain.Desktop), "breakpoint the document belongs to")
	return cmd
}

// PreviewCmd renders a blueprint of a document.
func PreviewCmd() *cobra.Command {
	var (
		format string
		out    string
		bpName string
		scale  float64
		guides bool
		labels bool
	)
	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Render a wireframe blueprint (svg, png or pdf)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bp, err := parseBreakpoint(bpName)
			if err != nil {
				return err
			}
			data, err := readInput(args[0])
			if err != nil {
				return err
			}
			doc, err := snapshot.Parse(data)
			if err != nil {
				return err
			}
			if out == "" {
				return fmt.Errorf("--out is required")
			}
			if format == "" {
				format = strings.TrimPrefix(strings.ToLower(filepath.Ext(out)), ".")
			}
			b := export.FromDocument(bp, doc)
			if err := export.WriteFile(out, format, b, export.Options{Scale: scale, IncludeGuides: guides, Labels: labels}); err != nil {
				return err
			}
			reportExport(cmd.Context(), format)
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "svg, png or pdf (default from --out extension)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	cmd.Flags().StringVar(&bpName, "bp", string(domain.Desktop), "breakpoint label")
	cmd.Flags().Float64Var(&scale, "scale", 1, "pixels per layout unit (svg/png)")
	cmd.Flags().BoolVar(&guides, "guides", false, "draw board guides")
	cmd.Flags().BoolVar(&labels, "labels", true, "draw entity ids")
	return cmd
}

func layoutPathOr(flag string) string {
	if flag != "" {
		return flag
	}
	return current.cfg.Storage.LayoutPath
}

func recordHistory(ctx context.Context, dir string, bp domain.Breakpoint, doc domain.Document) error {
	if ctx == nil {
		ctx = context.Background()
	}
	hist, _, err := storage.RecoverHistory(ctx, dir)
	if err != nil {
		return err
	}
	defer hist.Close()
	data, err := snapshot.Marshal(doc)
	if err != nil {
		return err
	}
	if err := hist.Record(ctx, bp, data, time.Now()); err != nil {
		return err
	}
	if keep := current.cfg.Storage.HistoryKeep; keep > 0 {
		if _, err := hist.Prune(ctx, bp, keep); err != nil {
			return err
		}
	}
	return nil
}

// reportExport sends the export event when telemetry is opted in.
func reportExport(ctx context.Context, format string) {
	tel := telemetry.New(telemetryConfig(current.cfg))
	defer tel.Close()
	tel.Export(format)
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	tel.Flush(ctx)
}
