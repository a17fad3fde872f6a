// Package filesystem provides a connector that loads documents from a
// local directory tree.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/minato-lab/innersearch/internal/core/domain"
	"github.com/minato-lab/innersearch/internal/core/ports/driven"
	"github.com/minato-lab/innersearch/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// mimeByExt drives file-type dispatch, case-insensitive on extension.
// Extensions absent from this table are skipped silently.
var mimeByExt = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".csv":  "text/csv",
	".txt":  "text/plain",
}

// Connector walks a root directory and emits raw documents for every
// recognised file. The walk uses an explicit work stack rather than
// recursion, so pathological nesting cannot exhaust the call stack, and
// symlinked directories are not followed.
type Connector struct {
	root    string
	watcher *fsnotify.Watcher
}

// New creates a filesystem connector for the given root directory.
func New(root string) (*Connector, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", root)
	}
	return &Connector{root: root}, nil
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return "filesystem"
}

// Capabilities returns what this connector supports.
func (c *Connector) Capabilities() driven.ConnectorCapabilities {
	return driven.ConnectorCapabilities{SupportsWatch: true}
}

// Load walks the tree depth-first in sorted directory-listing order.
// Files in a directory are emitted before its subdirectories are
// visited. A read failure on a recognised file aborts the walk.
func (c *Connector) Load(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	docs := make(chan domain.RawDocument)
	errs := make(chan error, 1)

	go func() {
		defer close(docs)
		defer close(errs)

		stack := []string{c.root}
		for len(stack) > 0 {
			dir := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			entries, err := os.ReadDir(dir)
			if err != nil {
				errs <- fmt.Errorf("%w: read dir %s: %w", domain.ErrLoad, dir, err)
				return
			}

			var subdirs []string
			for _, entry := range entries {
				path := filepath.Join(dir, entry.Name())

				if entry.IsDir() {
					subdirs = append(subdirs, path)
					continue
				}
				if entry.Type()&os.ModeSymlink != 0 {
					// Symlinks are not followed; cycles would make the
					// walk unbounded.
					logger.Debug("Skipping symlink: %s", path)
					continue
				}

				mimeType, ok := mimeByExt[strings.ToLower(filepath.Ext(path))]
				if !ok {
					continue
				}

				content, err := os.ReadFile(path)
				if err != nil {
					errs <- fmt.Errorf("%w: read %s: %w", domain.ErrLoad, path, err)
					return
				}

				select {
				case docs <- domain.RawDocument{URI: path, MIMEType: mimeType, Content: content}:
				case <-ctx.Done():
					errs <- ctx.Err()
					return
				}
			}

			// Push in reverse so the sorted listing order is preserved
			// when popping.
			for i := len(subdirs) - 1; i >= 0; i-- {
				stack = append(stack, subdirs[i])
			}
		}
	}()

	return docs, errs
}

// Watch emits the path of every recognised file created or modified
// under the root. Subdirectories present at watch start are covered.
func (c *Connector) Watch(ctx context.Context) (<-chan string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	c.watcher = watcher

	// fsnotify does not recurse; register every directory up front.
	stack := []string{c.root}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			watcher.Close()
			return nil, fmt.Errorf("read dir %s: %w", dir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				stack = append(stack, filepath.Join(dir, entry.Name()))
			}
		}
	}

	changes := make(chan string)
	go func() {
		defer close(changes)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if _, recognised := mimeByExt[strings.ToLower(filepath.Ext(event.Name))]; !recognised {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					select {
					case changes <- event.Name:
					case <-ctx.Done():
						return
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Watcher error: %v", err)
			case <-ctx.Done():
				return
			}
		}
	}()

	return changes, nil
}

// Close releases resources.
func (c *Connector) Close() error {
	if c.watcher != nil {
		return c.watcher.Close()
	}
	return nil
}
