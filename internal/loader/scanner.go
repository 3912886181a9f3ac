// Package loader discovers GraphQL operation files under a source directory
// and reads them into memory with comments stripped.
package loader

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/gqlperf/internal/parser"
)

// Extensions recognised as operation definition files.
var Extensions = []string{".graphql", ".gql"}

// skipDirs are never descended into.
var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
}

// File is one operation definition file.
type File struct {
	// Path is the file path as found under the scanned root.
	Path string
	// Text is the file content with `#` comments stripped.
	Text string
}

// Scan recursively lists operation files under root in lexical order.
func Scan(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source path is not a directory: %s", root)
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if hasExtension(d.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	sort.Strings(paths)
	return paths, nil
}

// Load scans root and reads every operation file. Files are read
// concurrently but returned in Scan order, so callers relying on
// first-occurrence semantics see a stable sequence.
func Load(ctx context.Context, root string) ([]File, error) {
	paths, err := Scan(root)
	if err != nil {
		return nil, err
	}

	files := make([]File, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			content, err := os.ReadFile(path) //nolint:gosec // G304: path comes from WalkDir under root
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			files[i] = File{Path: path, Text: parser.StripComments(string(content))}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return files, nil
}

func hasExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
