/*
 * Copyright © 2020, G.Ralph Kuntz, MD.
 *
 * Licensed under the Apache License, Version 2.0(the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIC
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/grkuntzmd/qrdecode"
)

var (
	flagECDebugDir    string
	flagBlockSize     int
	flagBlockMeanSize int
)

var scanCmd = &cobra.Command{
	Use:   "scan <image...>",
	Short: "Decode every QR symbol found in one or more image files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().StringVar(&flagECDebugDir, "ec-debug-dir", "", "directory to write a decode debug report into, opened in the system browser")
	scanCmd.Flags().IntVar(&flagBlockSize, "block-size", 0, "binarizer cell side in pixels (default 5)")
	scanCmd.Flags().IntVar(&flagBlockMeanSize, "block-mean-size", 0, "binarizer averaging window in cells (default 7)")
}

func runScan(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cfg := &qrdecode.Config{
		BlockSize:     flagBlockSize,
		BlockMeanSize: flagBlockMeanSize,
		Logger:        logger,
	}

	var report strings.Builder
	failed := false

	for _, path := range args {
		gray, err := loadGray(path)
		if err != nil {
			logger.Error("loading image", "path", path, "err", err)
			failed = true
			continue
		}

		results, err := qrdecode.DecodeWithInfo(gray, cfg)
		if err != nil {
			logger.Error("decoding image", "path", path, "err", err)
			failed = true
			continue
		}

		if len(results) == 0 {
			fmt.Printf("%s: no symbols found\n", path)
			continue
		}

		for i, r := range results {
			if r.Err != nil {
				fmt.Printf("%s[%d]: error: %v\n", path, i, r.Err)
				failed = true
				continue
			}
			fmt.Printf("%s[%d]: ok: %s\n", path, i, r.Text)
			if flagECDebugDir != "" {
				writeDebugEntry(&report, path, i, r)
			}
		}
	}

	if flagECDebugDir != "" {
		if err := openDebugReport(flagECDebugDir, report.String()); err != nil {
			logger.Warn("opening debug report", "err", err)
		}
	}

	if failed {
		return fmt.Errorf("one or more images failed to decode")
	}
	return nil
}

func writeDebugEntry(report *strings.Builder, path string, index int, r qrdecode.ResultWithInfo) {
	fmt.Fprintf(report, "<h2>%s[%d]</h2><ul>", path, index)
	fmt.Fprintf(report, "<li>version: %d</li>", r.Info.Version)
	fmt.Fprintf(report, "<li>EC level: %v</li>", r.Info.ECLevel)
	fmt.Fprintf(report, "<li>data bits: %d</li>", r.Info.TotalDataBits)
	fmt.Fprintf(report, "<li>corrected errors: %d</li>", r.Info.CorrectedErrors)
	fmt.Fprintf(report, "</ul>")
}

func openDebugReport(dir, body string) error {
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("ec-debug-dir: %w", err)
	}

	path := filepath.Join(dir, "qrdecode-report.html")
	html := "<html><body><h1>qrdecode debug report</h1>" + body + "</body></html>"
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return fmt.Errorf("writing debug report: %w", err)
	}

	return browser.OpenFile(path)
}

// grayAdapter presents a decoded image.Image, converted to grayscale,
// through qrdecode.GrayImage.
type grayAdapter struct {
	gray *image.Gray
}

func (g grayAdapter) Bounds() (int, int) {
	b := g.gray.Bounds()
	return b.Dx(), b.Dy()
}

func (g grayAdapter) GrayAt(x, y int) uint8 {
	b := g.gray.Bounds()
	return g.gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y
}

func loadGray(path string) (qrdecode.GrayImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	gray := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			gray.Set(x, y, img.At(x, y))
		}
	}

	return grayAdapter{gray: gray}, nil
}
