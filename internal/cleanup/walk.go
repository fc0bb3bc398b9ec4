package cleanup

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"ds-clean/internal/safety"
)

var (
	ErrOpenDirectory  = errors.New("cannot open directory")
	ErrPathTooLong    = errors.New("path too long")
	ErrCloseDirectory = errors.New("cannot close directory")
)

// FatalError aborts a walk. Kind is one of the Err* sentinels, Err the underlying cause.
type FatalError struct {
	Kind error
	Path string
	Err  error
}

func (e *FatalError) Error() string {
	switch e.Kind {
	case ErrOpenDirectory:
		return fmt.Sprintf("Cannot open path '%s': %s.", e.Path, describe(e.Err))
	case ErrPathTooLong:
		return fmt.Sprintf("Path too long: %s", e.Path)
	default:
		return fmt.Sprintf("Could not close '%s': %s", e.Path, describe(e.Err))
	}
}

func (e *FatalError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// describe strips the op and path from a *PathError, leaving the system message
func describe(err error) string {
	var pe *os.PathError
	if errors.As(err, &pe) {
		return pe.Err.Error()
	}
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

// DirHandle is an open directory as the walker uses it; *os.File satisfies it
type DirHandle interface {
	ReadDir(n int) ([]os.DirEntry, error)
	Close() error
}

// Opener opens a directory for listing
type Opener func(path string) (DirHandle, error)

func openDir(path string) (DirHandle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// frame is one directory on the walk stack; it owns the open handle
type frame struct {
	path    string
	dir     DirHandle
	pending []os.DirEntry
}

// Clean removes every target entry at or below root.
// Subdirectories are entered as they are listed, so matches and descents interleave in
// listing order. Symbolic links are never followed. The first fatal error stops the walk.
func (c *Cleaner) Clean(root string, verbose bool) (Result, error) {
	var res Result
	root = TrimTrailingSeparators(root)
	validator := safety.NewValidator(c.target, []string{root}, c.protected)

	var stack []*frame
	abort := func(err error) (Result, error) {
		for i := len(stack) - 1; i >= 0; i-- {
			stack[i].dir.Close()
		}
		return res, err
	}

	top, err := c.openFrame(root)
	if err != nil {
		return res, err
	}
	stack = append(stack, top)
	res.Directories++

	for len(stack) > 0 {
		top = stack[len(stack)-1]

		if len(top.pending) == 0 {
			entries, err := top.dir.ReadDir(c.batchSize)
			if err != nil && err != io.EOF {
				return abort(&FatalError{Kind: ErrOpenDirectory, Path: top.path, Err: err})
			}
			if len(entries) == 0 {
				stack = stack[:len(stack)-1]
				if err := top.dir.Close(); err != nil {
					return abort(&FatalError{Kind: ErrCloseDirectory, Path: top.path, Err: err})
				}
				continue
			}
			top.pending = entries
		}

		entry := top.pending[0]
		top.pending = top.pending[1:]

		name := entry.Name()
		if safety.IsPseudoEntry(name) {
			continue
		}

		// Type comes from lstat, so a symlink to a directory is not a directory here
		if entry.IsDir() {
			child := joinPath(top.path, name)
			if len(child) > c.maxPath {
				return abort(&FatalError{Kind: ErrPathTooLong, Path: child})
			}
			next, err := c.openFrame(child)
			if err != nil {
				return abort(err)
			}
			stack = append(stack, next)
			res.Directories++
			continue
		}

		if name == c.target {
			c.removeMatch(validator, root, top.path, entry, verbose, &res)
		}
	}

	return res, nil
}

func (c *Cleaner) openFrame(path string) (*frame, error) {
	f, err := c.open(path)
	if err != nil {
		return nil, &FatalError{Kind: ErrOpenDirectory, Path: path, Err: err}
	}
	c.metrics.DirectoriesVisitedTotal().Inc()
	if c.limiter != nil {
		c.limiter.Throttle()
	}
	return &frame{path: path, dir: f}, nil
}

// TrimTrailingSeparators drops trailing separators, keeping a lone "/" intact
func TrimTrailingSeparators(path string) string {
	sep := string(os.PathSeparator)
	trimmed := strings.TrimRight(path, sep)
	if trimmed == "" && path != "" {
		return sep
	}
	return trimmed
}

// joinPath concatenates without cleaning, so reported paths keep the caller's spelling
func joinPath(dir, name string) string {
	if strings.HasSuffix(dir, string(os.PathSeparator)) {
		return dir + name
	}
	return dir + string(os.PathSeparator) + name
}
