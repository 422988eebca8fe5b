package catalog

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// hclDocument mirrors a catalog written as HCL:
//
//	capacity = 10
//	item {
//	  value  = 3
//	  weight = 4
//	}
type hclDocument struct {
	Capacity int       `hcl:"capacity"`
	Items    []hclItem `hcl:"item,block"`
}

type hclItem struct {
	ID     *int `hcl:"id,optional"`
	Value  int  `hcl:"value"`
	Weight int  `hcl:"weight"`
}

// LoadHCL reads an HCL catalog from disk.
func LoadHCL(path string) (*Catalog, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return ParseHCL(src, path)
}

// ParseHCL decodes an HCL catalog. Items without an explicit id are numbered
// by block position, starting at 1.
func ParseHCL(src []byte, filename string) (*Catalog, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrMalformedItem, diags.Error())
	}

	var doc hclDocument
	if diags := gohcl.DecodeBody(f.Body, nil, &doc); diags.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrMalformedItem, diags.Error())
	}

	items := make([]Item, 0, len(doc.Items))
	for i, hi := range doc.Items {
		id := i + 1
		if hi.ID != nil {
			id = *hi.ID
		}
		items = append(items, Item{ID: id, Value: hi.Value, Weight: hi.Weight})
	}

	return New(doc.Capacity, items)
}
