package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FileExporter implements videos.Exporter over a local directory tree.
type FileExporter struct {
	root string
}

// NewFileExporter serves files below root.
func NewFileExporter(root string) (*FileExporter, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("file exporter: root is required")
	}
	return &FileExporter{root: root}, nil
}

// Export copies the file at name, resolved inside the root, to w.
func (e *FileExporter) Export(ctx context.Context, name string, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rel := strings.TrimPrefix(path.Clean("/"+name), "/")
	if rel == "" {
		return fmt.Errorf("file export: empty path")
	}

	f, err := os.Open(filepath.Join(e.root, filepath.FromSlash(rel)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("file export %s: %w", rel, ErrObjectNotFound)
		}
		return fmt.Errorf("file export %s: %w", rel, err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("file export %s: %w", rel, err)
	}
	return nil
}
