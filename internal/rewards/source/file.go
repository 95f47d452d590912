// Package source provides reward catalog document sources: a local file for
// development and an S3 object for production.
package source

import (
	"context"
	"fmt"
	"os"
)

// File reads the catalog document from local disk.
type File struct {
	Path string
}

// Fetch reads the file contents.
func (f File) Fetch(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file %s: %w", f.Path, err)
	}
	return data, nil
}
