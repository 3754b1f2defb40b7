package isotree

import (
	"fmt"
	"os"
	"strings"
)

// MaxNameLength is the post-translation name length ceiling.
const MaxNameLength = 255

// ErrAboveRoot is returned when a ".." component would escape the image
// root.
var ErrAboveRoot = fmt.Errorf("isotree: path climbs above root")

// ErrNameTooLong is returned when a path component exceeds MaxNameLength.
var ErrNameTooLong = fmt.Errorf("isotree: name exceeds maximum length")

// splitClean splits a '/'-separated path into components, collapsing "."
// and resolving ".." against the accumulated stack; a ".." with an empty
// stack is an error. ("A '..' above the root is an
// error").
func splitClean(path string) ([]string, error) {
	var stack []string
	for _, part := range strings.Split(path, "/") {
		switch part {
		case "", ".":
			continue
		case "..":
			if len(stack) == 0 {
				return nil, ErrAboveRoot
			}
			stack = stack[:len(stack)-1]
		default:
			if len(part) > MaxNameLength {
				return nil, ErrNameTooLong
			}
			stack = append(stack, part)
		}
	}
	return stack, nil
}

// Resolve walks path from root (the image root directory node, or an
// arbitrary working directory node for relative lookups), returning the
// node it names. Resolution is purely structural, never touching the disk
// side.
func Resolve(root *Node, path string) (*Node, error) {
	parts, err := splitClean(path)
	if err != nil {
		return nil, err
	}
	cur := root
	for i, part := range parts {
		if cur.Kind != KindDirectory {
			return nil, fmt.Errorf("isotree: %q is not a directory", strings.Join(parts[:i], "/"))
		}
		next := cur.Child(part)
		if next == nil {
			return nil, ErrNotFound
		}
		cur = next
	}
	return cur, nil
}

// ResolveParent resolves the directory component of path and returns it
// together with the final name component, for callers (graft, mkdir) that
// need to insert a new leaf rather than look up an existing one.
func ResolveParent(root *Node, path string) (dir *Node, leaf string, err error) {
	parts, err := splitClean(path)
	if err != nil {
		return nil, "", err
	}
	if len(parts) == 0 {
		return nil, "", fmt.Errorf("isotree: empty path has no parent")
	}
	cur := root
	for _, part := range parts[:len(parts)-1] {
		if cur.Kind != KindDirectory {
			return nil, "", fmt.Errorf("isotree: %q is not a directory", part)
		}
		next := cur.Child(part)
		if next == nil {
			return nil, "", ErrNotFound
		}
		cur = next
	}
	return cur, parts[len(parts)-1], nil
}

// MkdirAll walks path from root, creating any missing directory components
// along the way, including the final one. When leafDiskDir is non-empty,
// it names the disk directory path's final component corresponds to: if
// that component is freshly created (not already present), it inherits
// leafDiskDir's mode and mtime (and, on platforms that support it,
// uid/gid) instead of the defaults NewDirectory gives it (mode 0 and
// timestamps set to the time of creation).
// Intermediate components have no reliable disk correspondent in
// general and are left at their defaults.
func MkdirAll(root *Node, path, leafDiskDir string) (*Node, error) {
	parts, err := splitClean(path)
	if err != nil {
		return nil, err
	}
	cur := root
	for i, part := range parts {
		if cur.Kind != KindDirectory {
			return nil, fmt.Errorf("isotree: %q is not a directory", part)
		}
		next := cur.Child(part)
		created := false
		if next == nil {
			next, err = cur.AddChild(part, NewDirectory(part), OverwriteNondir)
			if err != nil {
				return nil, err
			}
			created = true
		} else if next.Kind != KindDirectory {
			return nil, fmt.Errorf("isotree: %q exists and is not a directory", part)
		}
		if created && i == len(parts)-1 && leafDiskDir != "" {
			if fi, statErr := os.Stat(leafDiskDir); statErr == nil {
				transferProps(next, fi, leafDiskDir)
			}
		}
		cur = next
	}
	return cur, nil
}
