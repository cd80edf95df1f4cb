// Package validate provides ready-made value hooks for option declarations.
// Each helper builds a closure suitable for OptionBuilder.Validate, compiled
// state (like regular expressions) captured once at declaration time.
package validate

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Error is a validation rejection. When Bare is set, the message is shown to
// the user verbatim instead of being wrapped in the standard
// invalid-value-for-option phrasing.
type Error struct {
	Message string
	Bare    bool
}

func (e *Error) Error() string { return e.Message }

// Bare builds a rejection whose message replaces the standard prefix.
func Bare(format string, args ...any) error {
	return &Error{Message: fmt.Sprintf(format, args...), Bare: true}
}

// Chain runs hooks in order and stops at the first rejection.
func Chain[T any](hooks ...func(T) error) func(T) error {
	return func(v T) error {
		for _, hook := range hooks {
			if err := hook(v); err != nil {
				return err
			}
		}
		return nil
	}
}

// NonEmpty rejects empty and all-whitespace strings.
func NonEmpty() func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("value cannot be empty")
		}
		return nil
	}
}

// File builds a hook for file paths.
func File(mustExist bool) func(string) error {
	return func(path string) error {
		if path == "" {
			return fmt.Errorf("file path cannot be empty")
		}
		if mustExist {
			info, err := os.Stat(path)
			if os.IsNotExist(err) {
				return fmt.Errorf("file does not exist: %s", path)
			} else if err != nil {
				return fmt.Errorf("cannot access file %s: %v", path, err)
			} else if info.IsDir() {
				return fmt.Errorf("path is a directory, not a file: %s", path)
			}
		}
		return nil
	}
}

// Dir builds a hook for directory paths.
func Dir(mustExist bool) func(string) error {
	return func(path string) error {
		if path == "" {
			return fmt.Errorf("directory path cannot be empty")
		}
		if mustExist {
			info, err := os.Stat(path)
			if os.IsNotExist(err) {
				return fmt.Errorf("directory does not exist: %s", path)
			} else if err != nil {
				return fmt.Errorf("cannot access directory %s: %v", path, err)
			} else if !info.IsDir() {
				return fmt.Errorf("path is not a directory: %s", path)
			}
		}
		return nil
	}
}

// Regex builds a hook matching values against the pattern. The pattern
// compiles once; a bad pattern yields a hook that rejects everything with the
// compilation error.
func Regex(pattern string) func(string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return func(string) error {
			return fmt.Errorf("invalid pattern %q: %v", pattern, err)
		}
	}
	return func(value string) error {
		if !re.MatchString(value) {
			return fmt.Errorf("value %q does not match pattern %q", value, pattern)
		}
		return nil
	}
}

// OneOf builds a hook accepting only the listed values.
func OneOf[T comparable](values ...T) func(T) error {
	return func(value T) error {
		for _, v := range values {
			if value == v {
				return nil
			}
		}
		return fmt.Errorf("value %v is not one of the allowed values: %v", value, values)
	}
}

// Prefix builds a hook requiring the given prefix.
func Prefix(prefix string) func(string) error {
	return func(value string) error {
		if !strings.HasPrefix(value, prefix) {
			return fmt.Errorf("value %q must start with %q", value, prefix)
		}
		return nil
	}
}

// Suffix builds a hook requiring the given suffix.
func Suffix(suffix string) func(string) error {
	return func(value string) error {
		if !strings.HasSuffix(value, suffix) {
			return fmt.Errorf("value %q must end with %q", value, suffix)
		}
		return nil
	}
}
