package lister

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// Kind classifies a listing failure.
type Kind uint8

const (
	KindOther      Kind = iota // Unclassified error.
	KindPermission             // Permission denied.
	KindNotExist               // Directory does not exist.
	KindNotDir                 // Path is not a directory.
)

func (k Kind) String() string {
	switch k {
	case KindPermission:
		return "permission"
	case KindNotExist:
		return "not-exist"
	case KindNotDir:
		return "not-dir"
	default:
		return "other"
	}
}

// Error is returned by List when a directory cannot be read.
type Error struct {
	Path string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("list %s (%s): %v", e.Path, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsPermission reports whether err is a permission-denied listing failure.
func IsPermission(err error) bool {
	var lerr *Error
	if errors.As(err, &lerr) {
		return lerr.Kind == KindPermission
	}
	return errors.Is(err, fs.ErrPermission)
}

func classify(err error) Kind {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return KindPermission
	case errors.Is(err, fs.ErrNotExist):
		return KindNotExist
	case errors.Is(err, syscall.ENOTDIR):
		return KindNotDir
	default:
		return KindOther
	}
}
