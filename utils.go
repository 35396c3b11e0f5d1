package bucketgate

import (
	"strings"

	"github.com/google/uuid"
)

// SanitizePath normalizes an upload path into a storage key prefix.
// It drops leading, trailing and repeated slashes and removes "." and ".."
// segments, so the result can never climb above the bucket root.
//
//	SanitizePath("/images/")          // "images"
//	SanitizePath("../../etc/passwd")  // "etc/passwd"
//	SanitizePath("a/../b")            // "a/b"
func SanitizePath(p string) string {
	segments := strings.Split(p, "/")
	kept := segments[:0]
	for _, s := range segments {
		if s == "" || s == "." || s == ".." {
			continue
		}
		kept = append(kept, s)
	}
	return strings.Join(kept, "/")
}

// IsPathAllowed reports whether requested may be written under allowedPaths.
// The path is normalized with SanitizePath before any comparison.
// It returns true when:
//   - allowedPaths contains "*"
//   - the normalized path is empty and allowedPaths contains "" or "/"
//   - the first segment of the path equals a normalized allow-list entry
//   - the path equals or starts with "<entry>/" for a multi-segment entry
func IsPathAllowed(requested string, allowedPaths []string) bool {
	for _, entry := range allowedPaths {
		if strings.TrimSpace(entry) == WildcardPath {
			return true
		}
	}

	normalized := SanitizePath(requested)
	if normalized == "" {
		for _, entry := range allowedPaths {
			if SanitizePath(strings.TrimSpace(entry)) == "" {
				return true
			}
		}
		return false
	}

	top, _, _ := strings.Cut(normalized, "/")
	for _, entry := range allowedPaths {
		e := SanitizePath(strings.TrimSpace(entry))
		if e == "" {
			continue
		}
		if top == e || normalized == e || strings.HasPrefix(normalized, e+"/") {
			return true
		}
	}

	return false
}

// FileExtension returns the extension of name including the dot.
// A leading dot does not start an extension, so ".env" has none.
func FileExtension(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	i := strings.LastIndex(name, ".")
	if i <= 0 {
		return ""
	}
	return name[i:]
}

// GenerateFileName returns a random object name that keeps the extension of original.
func GenerateFileName(original string) string {
	return uuid.NewString() + FileExtension(original)
}

// BuildKey joins an upload path and a file name into a normalized storage key.
func BuildKey(path, fileName string) string {
	return SanitizePath(path + "/" + fileName)
}
