package pdfio

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// WriteSubrange writes pages [start, end] (inclusive, 0-based) of src as a
// new PDF at dst. pdfcpu selections are 1-based, the shift happens here.
func WriteSubrange(src, dst string, start, end int) error {
	if start > end {
		return fmt.Errorf("empty page range %d-%d", start, end)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	sel := []string{fmt.Sprintf("%d-%d", start+1, end+1)}
	if err := api.TrimFile(src, dst, sel, nil); err != nil {
		return fmt.Errorf("trim %s pages %d-%d: %w", src, start+1, end+1, err)
	}
	return nil
}
