package catalog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	// ErrMalformedCapacity is returned when the capacity line cannot be parsed.
	ErrMalformedCapacity = errors.New("malformed capacity")
	// ErrMalformedItem is returned when an item line cannot be parsed.
	ErrMalformedItem = errors.New("malformed item")
)

// ParseError pins a parse failure to its input line.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// LoadFile reads a catalog from disk. Files ending in .hcl are decoded as
// HCL, everything else uses the line-oriented text format.
func LoadFile(path string) (*Catalog, error) {
	if strings.EqualFold(filepath.Ext(path), ".hcl") {
		return LoadHCL(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads the text format: the first line is the capacity, every
// following line is "value weight". Item ids are assigned 1, 2, 3... in
// encounter order. Blank lines are ignored.
func Parse(r io.Reader) (*Catalog, error) {
	scanner := bufio.NewScanner(r)

	capacity := -1
	var items []Item
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		if capacity < 0 {
			c, err := strconv.Atoi(text)
			if err != nil || c < 0 {
				return nil, &ParseError{Line: lineNo, Text: text, Err: ErrMalformedCapacity}
			}
			capacity = c
			continue
		}

		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, &ParseError{Line: lineNo, Text: text, Err: ErrMalformedItem}
		}
		value, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, &ParseError{Line: lineNo, Text: text, Err: ErrMalformedItem}
		}
		weight, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, &ParseError{Line: lineNo, Text: text, Err: ErrMalformedItem}
		}

		items = append(items, Item{ID: len(items) + 1, Value: value, Weight: weight})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	if capacity < 0 {
		return nil, &ParseError{Line: lineNo, Err: ErrMalformedCapacity}
	}

	return New(capacity, items)
}
