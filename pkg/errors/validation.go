package errors

import (
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// MaxLimit caps distance limits accepted from users. Larger limits would
// make a lookback visit the whole component anyway.
const MaxLimit = 1 << 40

// ValidatePath checks a user-supplied file path. Paths may be absolute or
// relative but must be non-empty, reasonably short and free of control
// characters.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}
	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}

// ValidateTreeID parses a tree id issued by the server.
func ValidateTreeID(id string) (uuid.UUID, error) {
	if id == "" {
		return uuid.Nil, New(ErrCodeInvalidInput, "tree id cannot be empty")
	}
	u, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, New(ErrCodeInvalidInput, "invalid tree id %q", id)
	}
	return u, nil
}

// ValidateLimit parses a distance limit. An empty string yields def.
func ValidateLimit(s string, def uint64) (uint64, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, New(ErrCodeInvalidLimit, "limit %q is not a non-negative integer", s)
	}
	if n > MaxLimit {
		return 0, New(ErrCodeInvalidLimit, "limit %d exceeds the maximum of %d", n, uint64(MaxLimit))
	}
	return n, nil
}

// ValidateSeed parses a seed index and checks it against the number of
// seeds in a tree.
func ValidateSeed(s string, count int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, New(ErrCodeInvalidInput, "seed %q is not an integer", s)
	}
	if n < 0 || n >= count {
		return 0, New(ErrCodeSeedNotFound, "seed %d not in tree (%d seeds)", n, count)
	}
	return n, nil
}

// ValidateFormat checks format against the allowed values, ignoring case,
// and returns it lower-cased.
func ValidateFormat(format string, allowed ...string) (string, error) {
	f := strings.ToLower(strings.TrimPrefix(format, "."))
	if !slices.Contains(allowed, f) {
		return "", New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(allowed, ", "))
	}
	return f, nil
}
