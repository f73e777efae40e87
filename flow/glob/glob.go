// Package glob provides file system nodes: Sources that match or walk paths
// off the loop, and Transforms that filter and stat the paths flowing through.
package glob

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/lguimbarda/bloem/flow/core"
	"github.com/lguimbarda/bloem/flow/filter"
	"github.com/lguimbarda/bloem/flow/transform"
)

// FileInfo contains information about a file or directory.
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	Mode    fs.FileMode
	IsDir   bool
	ModTime int64
}

// Match creates a Source that emits the paths matching pattern, as returned by
// filepath.Glob. A malformed pattern is raised as one error.
func Match(loop *core.Loop, pattern string, opts ...core.Option) *core.Source {
	opts = append([]core.Option{core.WithName("globMatch")}, opts...)
	return core.Produce(loop, func(emit core.Next) {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			emit(err, nil)
			return
		}
		for _, match := range matches {
			emit(nil, match)
		}
	}, opts...)
}

func walk(loop *core.Loop, root string, keep func(fs.DirEntry) bool, opts []core.Option) *core.Source {
	return core.Produce(loop, func(emit core.Next) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				emit(err, nil)
				return nil
			}
			if keep(d) {
				emit(nil, path)
			}
			return nil
		})
	}, opts...)
}

// Walk creates a Source that emits every file and directory path under root,
// root included, in lexical order. Unreadable entries are raised as errors
// and the walk continues.
func Walk(loop *core.Loop, root string, opts ...core.Option) *core.Source {
	return walk(loop, root, func(fs.DirEntry) bool { return true },
		append([]core.Option{core.WithName("walk")}, opts...))
}

// WalkFiles is Walk restricted to non-directory paths.
func WalkFiles(loop *core.Loop, root string, opts ...core.Option) *core.Source {
	return walk(loop, root, func(d fs.DirEntry) bool { return !d.IsDir() },
		append([]core.Option{core.WithName("walkFiles")}, opts...))
}

// WalkDirs is Walk restricted to directories.
func WalkDirs(loop *core.Loop, root string, opts ...core.Option) *core.Source {
	return walk(loop, root, func(d fs.DirEntry) bool { return d.IsDir() },
		append([]core.Option{core.WithName("walkDirs")}, opts...))
}

// ListDir creates a Source that emits the immediate children of dir.
func ListDir(loop *core.Loop, dir string, opts ...core.Option) *core.Source {
	opts = append([]core.Option{core.WithName("listDir")}, opts...)
	return core.Produce(loop, func(emit core.Next) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			emit(err, nil)
			return
		}
		for _, entry := range entries {
			emit(nil, filepath.Join(dir, entry.Name()))
		}
	}, opts...)
}

// Filter creates a Transform that forwards the paths whose base name matches
// pattern. A malformed pattern raises an error for every path.
func Filter(pattern string, opts ...core.Option) *core.Transform {
	opts = append([]core.Option{core.WithName("globFilter")}, opts...)
	return filter.Filter(core.Sync(func(path string) (bool, error) {
		return filepath.Match(pattern, filepath.Base(path))
	}), opts...)
}

// Stat creates a Transform that replaces each path with its FileInfo.
func Stat(opts ...core.Option) *core.Transform {
	opts = append([]core.Option{core.WithName("stat")}, opts...)
	return transform.Map(core.Sync(func(path string) (FileInfo, error) {
		info, err := os.Stat(path)
		if err != nil {
			return FileInfo{}, err
		}
		return FileInfo{
			Path:    path,
			Name:    info.Name(),
			Size:    info.Size(),
			Mode:    info.Mode(),
			IsDir:   info.IsDir(),
			ModTime: info.ModTime().Unix(),
		}, nil
	}), opts...)
}
