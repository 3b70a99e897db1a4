// Package refpath converts between filesystem paths and entry references.
//
// A reference is a forward-slash path rooted at a reference root, e.g. the
// file /home/me/ws1/src/a.go watched under root /home/me/ws1 with reference
// root "ws1/" becomes "ws1/src/a.go".
package refpath

import (
	"path/filepath"
	"strings"
)

// FromPath computes the reference for path under dir. It returns false when
// path is outside dir.
func FromPath(dir, refRoot, path string) (string, bool) {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	if rel == "." {
		return strings.TrimSuffix(refRoot, "/"), true
	}
	return Join(refRoot, filepath.ToSlash(rel)), true
}

// Join appends a relative slash path to a reference root, inserting a single
// "/" between them when needed.
func Join(refRoot, rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if refRoot == "" {
		return rel
	}
	if rel == "" {
		return refRoot
	}
	return FolderPrefix(refRoot) + rel
}

// FolderPrefix returns ref with exactly one trailing "/", the prefix shared by
// every reference inside the folder ref.
func FolderPrefix(ref string) string {
	return strings.TrimRight(ref, "/") + "/"
}
