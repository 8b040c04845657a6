package navigation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/mchmarny/blogadmin/pkg/nav"
)

// reloadDebounce collapses the burst of events an editor save produces.
var reloadDebounce = 150 * time.Millisecond

// File is a Source reading the tree from a local YAML or JSON file.
type File struct {
	Path string
}

// Tree implements Source.
func (f File) Tree(ctx context.Context) ([]nav.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadFile(f.Path)
}

// LoadFile reads a tree from path. Files ending in .json are decoded as
// JSON, anything else as YAML. Missing ids are derived from the href or
// the node position, and parent ids and depths are filled in from the
// nesting.
func LoadFile(path string) ([]nav.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read navigation file: %w", err)
	}

	var tree []nav.Node
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &tree)
	} else {
		err = yaml.Unmarshal(data, &tree)
	}
	if err != nil {
		return nil, fmt.Errorf("parse navigation file %s: %w", path, err)
	}

	normalize(tree, "", "", 1)

	if err := nav.Validate(tree); err != nil {
		return nil, fmt.Errorf("navigation file %s: %w", path, err)
	}

	return tree, nil
}

func normalize(nodes []nav.Node, parent nav.ID, prefix string, depth int) {
	for i := range nodes {
		n := &nodes[i]
		pos := prefix + strconv.Itoa(i+1)

		if n.ID.IsZero() {
			if n.Href != "" {
				n.ID = nav.ID(n.Href)
			} else {
				n.ID = nav.ID("#" + pos)
			}
		}
		if n.SortOrder == 0 {
			n.SortOrder = i + 1
		}
		n.ParentID = parent
		n.Depth = depth

		normalize(n.Children, n.ID, pos+".", depth+1)
	}
}

// WatchFile calls fn with the reloaded tree (or the load error) every time
// path changes, until ctx is done. The directory is watched rather than
// the file so editors that replace the file on save are picked up.
func WatchFile(ctx context.Context, path string, fn func([]nav.Node, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	var (
		debounce = reloadDebounce
		timer    *time.Timer
		reload   <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			reload = timer.C

		case <-reload:
			reload = nil
			tree, err := LoadFile(abs)
			if err != nil {
				slog.Warn("navigation file reload failed", "path", abs, "error", err)
			}
			fn(tree, err)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("navigation file watcher error", "path", abs, "error", err)
		}
	}
}
