package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/DrSkyle/knapsack-ga/pkg/catalog"
	"github.com/DrSkyle/knapsack-ga/pkg/config"
	"github.com/DrSkyle/knapsack-ga/pkg/engine/evolution"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for export paths with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Document is the exported form of a run.
type Document struct {
	RunID       string                 `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Input       string                 `json:"input" yaml:"input"`
	Seed        uint64                 `json:"seed" yaml:"seed"`
	Params      config.EvolutionConfig `json:"params" yaml:"params"`
	Capacity    int                    `json:"capacity" yaml:"capacity"`
	BestValue   int                    `json:"best_value" yaml:"best_value"`
	BestWeight  int                    `json:"best_weight" yaml:"best_weight"`
	BestItems   []catalog.Item         `json:"best_items" yaml:"best_items"`
	Waste       int                    `json:"waste" yaml:"waste"`
	Utilization float64                `json:"utilization" yaml:"utilization"`
	Optimum     *int                   `json:"optimum,omitempty" yaml:"optimum,omitempty"`
	ElapsedMS   int64                  `json:"elapsed_ms" yaml:"elapsed_ms"`
	Generations []evolution.Stats      `json:"generations" yaml:"generations"`
}

var statsHeader = []string{
	"Generation", "Best", "GenerationBest", "Mean", "StdDev",
	"Feasible", "Kept", "Crossovers", "Mutations",
}

// Export writes doc to path. The extension selects the format:
// .json, .yaml/.yml, .csv (generation series) or .xlsx.
func Export(doc Document, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return GenerateJSON(doc, path)
	case ".yaml", ".yml":
		return GenerateYAML(doc, path)
	case ".csv":
		return GenerateCSV(doc, path)
	case ".xlsx":
		return GenerateXLSX(doc, path)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// GenerateJSON writes the document as indented JSON.
func GenerateJSON(doc Document, path string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// GenerateYAML writes the document as YAML.
func GenerateYAML(doc Document, path string) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// GenerateCSV writes one row per generation.
func GenerateCSV(doc Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(statsHeader); err != nil {
		return err
	}
	for _, s := range doc.Generations {
		if err := w.Write(statsRow(s)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func statsRow(s evolution.Stats) []string {
	return []string{
		strconv.Itoa(s.Generation),
		strconv.Itoa(s.Best),
		strconv.Itoa(s.GenerationBest),
		strconv.FormatFloat(s.Mean, 'f', 4, 64),
		strconv.FormatFloat(s.StdDev, 'f', 4, 64),
		strconv.Itoa(s.Feasible),
		strconv.Itoa(s.Kept),
		strconv.Itoa(s.Crossovers),
		strconv.Itoa(s.Mutations),
	}
}

// Sheet names used by GenerateXLSX.
const (
	SheetConvergence = "Convergence"
	SheetBestItems   = "Best Items"
)

// GenerateXLSX writes a workbook with the generation series and the best
// item set on separate sheets.
func GenerateXLSX(doc Document, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetConvergence); err != nil {
		return err
	}
	for i, col := range statsHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(SheetConvergence, cell, col)
	}
	for i, s := range doc.Generations {
		row := []interface{}{
			s.Generation, s.Best, s.GenerationBest, s.Mean, s.StdDev,
			s.Feasible, s.Kept, s.Crossovers, s.Mutations,
		}
		for j, v := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue(SheetConvergence, cell, v)
		}
	}

	if _, err := f.NewSheet(SheetBestItems); err != nil {
		return err
	}
	for i, col := range []string{"ID", "Value", "Weight"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(SheetBestItems, cell, col)
	}
	for i, it := range doc.BestItems {
		for j, v := range []int{it.ID, it.Value, it.Weight} {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue(SheetBestItems, cell, v)
		}
	}

	return f.SaveAs(path)
}
