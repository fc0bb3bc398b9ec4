package safety

import (
	"path/filepath"
	"testing"
)

func TestIsPseudoEntry(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{".", true},
		{"..", true},
		{"...", false},
		{".DS_Store", false},
		{"sub", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPseudoEntry(tt.name); got != tt.expected {
				t.Errorf("IsPseudoEntry(%q) = %v, expected %v", tt.name, got, tt.expected)
			}
		})
	}
}

// TestProtectedPathBlocking verifies protected paths block everything below them
func TestProtectedPathBlocking(t *testing.T) {
	protected := []string{"/srv/share/keep", "/var/lib/ds-clean"}

	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{"protected exact", "/srv/share/keep", true},
		{"protected child", "/srv/share/keep/.DS_Store", true},
		{"protected deep child", "/srv/share/keep/a/b/.DS_Store", true},
		{"state dir", "/var/lib/ds-clean/.DS_Store", true},
		{"sibling", "/srv/share/keeper/.DS_Store", false},
		{"parent", "/srv/share/.DS_Store", false},
		{"unrelated", "/home/user/.DS_Store", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsProtectedPath(tt.path, protected)
			if result != tt.expected {
				t.Errorf("IsProtectedPath(%s) = %v, expected %v", tt.path, result, tt.expected)
			}
		})
	}
}

// TestAllowedRootEnforcement verifies paths are restricted to allowed roots
func TestAllowedRootEnforcement(t *testing.T) {
	allowed := []string{"/tmp/allowed", "/var/cleanup"}

	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{"inside allowed tmp", "/tmp/allowed/.DS_Store", true},
		{"inside allowed var", "/var/cleanup/sub/.DS_Store", true},
		{"allowed root exact", "/tmp/allowed", true},
		{"outside allowed", "/tmp/notallowed/.DS_Store", false},
		{"parent of allowed", "/tmp", false},
		{"completely different", "/home/user/.DS_Store", false},
		{"root", "/", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsWithinAllowedRoots(tt.path, allowed)
			if result != tt.expected {
				t.Errorf("IsWithinAllowedRoots(%s) = %v, expected %v", tt.path, result, tt.expected)
			}
		})
	}
}

// TestPathNormalization verifies paths are normalized correctly
func TestPathNormalization(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		expectError bool
	}{
		{"absolute path", "/tmp/.DS_Store", false},
		{"relative path", "sub/.DS_Store", false}, // Gets normalized to absolute
		{"path with dots", "/tmp/./.DS_Store", false},
		{"empty path", "", true},
		{"whitespace only", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NormalizePath(tt.path)
			if tt.expectError {
				if err == nil {
					t.Errorf("NormalizePath(%s) expected error, got nil", tt.path)
				}
			} else {
				if err != nil {
					t.Errorf("NormalizePath(%s) unexpected error: %v", tt.path, err)
				}
				if !filepath.IsAbs(result) {
					t.Errorf("NormalizePath(%s) = %s, expected absolute path", tt.path, result)
				}
			}
		})
	}
}

// TestValidateRemoveTarget covers the full removal contract
func TestValidateRemoveTarget(t *testing.T) {
	root := t.TempDir()
	keep := filepath.Join(root, "keep")

	validator := NewValidator(".DS_Store", []string{root}, []string{keep})

	tests := []struct {
		name        string
		path        string
		expectError error
	}{
		{"match at root", filepath.Join(root, ".DS_Store"), nil},
		{"match in subdir", filepath.Join(root, "a", "b", ".DS_Store"), nil},
		{"other name", filepath.Join(root, "keep.txt"), ErrNotTarget},
		{"case differs", filepath.Join(root, ".ds_store"), ErrNotTarget},
		{"dot entry", root + "/.", ErrPseudoEntry},
		{"dotdot entry", root + "/..", ErrPseudoEntry},
		{"protected subtree", filepath.Join(keep, ".DS_Store"), ErrProtectedPath},
		{"outside root", "/elsewhere/.DS_Store", ErrOutsideAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateRemoveTarget(tt.path)
			if err != tt.expectError {
				t.Errorf("ValidateRemoveTarget(%s) = %v, expected %v", tt.path, err, tt.expectError)
			}
		})
	}
}

// TestValidatorRelativeRoot verifies relative roots like ./dir are accepted
func TestValidatorRelativeRoot(t *testing.T) {
	validator := NewValidator(".DS_Store", []string{"./photos/"}, nil)
	if err := validator.ValidateRemoveTarget("./photos/2014/.DS_Store"); err != nil {
		t.Errorf("Expected relative target to be allowed, got %v", err)
	}
	if err := validator.ValidateRemoveTarget("../photos/.DS_Store"); err != ErrOutsideAllowed {
		t.Errorf("Expected ErrOutsideAllowed, got %v", err)
	}
}

// TestHasPathPrefix verifies the path prefix checking logic
func TestHasPathPrefix(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		prefix   string
		expected bool
	}{
		{"exact match", "/tmp/allowed", "/tmp/allowed", true},
		{"subdirectory", "/tmp/allowed/sub", "/tmp/allowed", true},
		{"not a prefix", "/tmp/other", "/tmp/allowed", false},
		{"partial match", "/tmp/allowedother", "/tmp/allowed", false},
		{"root prefix", "/tmp", "/", true},
		{"root itself", "/", "/", true},
		{"trailing slash prefix", "/tmp/allowed/x", "/tmp/allowed/", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := hasPathPrefix(tt.path, tt.prefix)
			if result != tt.expected {
				t.Errorf("hasPathPrefix(%s, %s) = %v, expected %v", tt.path, tt.prefix, result, tt.expected)
			}
		})
	}
}
