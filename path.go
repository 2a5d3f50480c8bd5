package drivedav

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// ResolvePath turns a raw, percent-encoded request path into a logical path.
//
// It decodes the path, drops empty and "." segments and applies ".." by
// popping the previous segment. A ".." with nothing left to pop is rejected
// with ErrPathEscapesRoot rather than clamped to the root. Segments carrying
// NUL, control characters, DEL or a backslash are rejected with
// ErrBadRequest.
//
// The result has no leading or trailing '/'; the root is "".
func ResolvePath(raw string) (string, error) {
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w: %w", ErrBadRequest, err)
	}

	if !utf8.ValidString(decoded) {
		return "", fmt.Errorf("resolve path: %w: invalid utf-8", ErrBadRequest)
	}

	segments := make([]string, 0, strings.Count(decoded, "/")+1)
	for _, seg := range strings.Split(decoded, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(segments) == 0 {
				return "", fmt.Errorf("resolve path %q: %w", raw, ErrPathEscapesRoot)
			}
			segments = segments[:len(segments)-1]
			continue
		}

		if !isValidSegment(seg) {
			return "", fmt.Errorf("resolve path %q: %w: invalid character in segment", raw, ErrBadRequest)
		}
		segments = append(segments, seg)
	}

	return strings.Join(segments, "/"), nil
}

func isValidSegment(seg string) bool {
	for _, r := range seg {
		if r < 0x20 || r == 0x7f || r == '\\' {
			return false
		}
	}
	return true
}

// IsValidName reports whether name can be used as a single path segment,
// for example as a per-identity root.
func IsValidName(name string) bool {
	if name == "" || name == "." || name == ".." || strings.Contains(name, "/") {
		return false
	}
	return utf8.ValidString(name) && isValidSegment(name)
}

// JoinPath joins logical path elements, skipping empty ones.
func JoinPath(elem ...string) string {
	parts := make([]string, 0, len(elem))
	for _, e := range elem {
		e = strings.Trim(e, "/")
		if e != "" {
			parts = append(parts, e)
		}
	}
	return strings.Join(parts, "/")
}

// ParentPath returns the parent of p. The parent of a top-level entry and
// of the root is the root.
func ParentPath(p string) string {
	i := strings.LastIndexByte(p, '/')
	if i < 0 {
		return ""
	}
	return p[:i]
}

// BaseName returns the last segment of p, or "" for the root.
func BaseName(p string) string {
	return p[strings.LastIndexByte(p, '/')+1:]
}

// IsWithin reports whether p is a strict descendant of ancestor.
// Every non-root path is within the root.
func IsWithin(p, ancestor string) bool {
	if ancestor == "" {
		return p != ""
	}
	return strings.HasPrefix(p, ancestor+"/")
}

// ScopePath places p under scope. An empty scope leaves p unchanged.
func ScopePath(scope, p string) string {
	return JoinPath(scope, p)
}

// UnscopePath strips scope from p. It is the inverse of ScopePath for paths
// inside scope.
func UnscopePath(scope, p string) string {
	if scope == "" {
		return p
	}
	if p == scope {
		return ""
	}
	return strings.TrimPrefix(p, scope+"/")
}
