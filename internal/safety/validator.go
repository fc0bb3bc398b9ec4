package safety

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrInvalidPath    = errors.New("invalid path")
	ErrPseudoEntry    = errors.New("pseudo directory entry")
	ErrNotTarget      = errors.New("name does not match target")
	ErrProtectedPath  = errors.New("protected path")
	ErrOutsideAllowed = errors.New("outside allowed roots")
)

// Validator enforces the removal contract: only the target name, only below an allowed root,
// never below a protected path
type Validator struct {
	TargetName     string
	AllowedRoots   []string
	ProtectedPaths []string
}

// NewValidator creates a validator for target under the allowed roots
func NewValidator(target string, allowed []string, protected []string) *Validator {
	return &Validator{
		TargetName:     target,
		AllowedRoots:   normalizeRoots(allowed),
		ProtectedPaths: normalizeRoots(protected),
	}
}

// ValidateRemoveTarget is the single-source-of-truth for removal authorization
// Returns typed error on violation
func (v *Validator) ValidateRemoveTarget(path string) error {
	name := filepath.Base(path)
	if IsPseudoEntry(name) {
		return ErrPseudoEntry
	}
	if name != v.TargetName {
		return ErrNotTarget
	}

	p, err := NormalizePath(path)
	if err != nil {
		return err
	}

	if IsProtectedPath(p, v.ProtectedPaths) {
		return ErrProtectedPath
	}

	if !IsWithinAllowedRoots(p, v.AllowedRoots) {
		return ErrOutsideAllowed
	}

	return nil
}

// IsPseudoEntry reports whether name is the "." or ".." directory entry
func IsPseudoEntry(name string) bool {
	return name == "." || name == ".."
}

// NormalizePath converts path to absolute, cleaned form
func NormalizePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrInvalidPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", ErrInvalidPath
	}
	return filepath.Clean(abs), nil
}

// IsWithinAllowedRoots checks if path is within any allowed root
func IsWithinAllowedRoots(path string, allowedRoots []string) bool {
	p := filepath.Clean(path)
	for _, r := range allowedRoots {
		if hasPathPrefix(p, r) {
			return true
		}
	}
	return false
}

// IsProtectedPath checks if path is at or below any protected path
func IsProtectedPath(path string, protected []string) bool {
	p := filepath.Clean(path)
	for _, prot := range protected {
		if hasPathPrefix(p, prot) {
			return true
		}
	}
	return false
}

// hasPathPrefix checks if path is prefix itself or below it
func hasPathPrefix(path, prefix string) bool {
	path = filepath.Clean(path)
	prefix = filepath.Clean(prefix)

	if path == prefix {
		return true
	}
	if prefix == string(os.PathSeparator) {
		return strings.HasPrefix(path, prefix)
	}
	return strings.HasPrefix(path, prefix+string(os.PathSeparator))
}

// normalizeRoots converts slice of roots to absolute, cleaned paths
func normalizeRoots(roots []string) []string {
	out := make([]string, 0, len(roots))
	for _, r := range roots {
		if strings.TrimSpace(r) == "" {
			continue
		}
		abs, err := filepath.Abs(r)
		if err != nil {
			continue
		}
		out = append(out, filepath.Clean(abs))
	}
	return out
}
