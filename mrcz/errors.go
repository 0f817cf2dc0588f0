// Package mrcz reads and writes MRC and MRCZ volume files: a 1024-byte MRC2014
// header, optional JSON metadata, and a payload that is either stored
// plainly or split into independently compressed blocks.
package mrcz

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-mrcz/internal/dtype"
	"github.com/robert-malhotra/go-mrcz/internal/filter"
	"github.com/robert-malhotra/go-mrcz/internal/header"
	"github.com/robert-malhotra/go-mrcz/internal/layout"
)

// Errors returned by this package. Errors from the codec packages are the
// same values, so errors.Is works across layers.
var (
	ErrUnsupportedType = dtype.ErrUnsupportedType
	ErrOutOfRange      = dtype.ErrOutOfRange
	ErrUnsupportedCast = dtype.ErrUnsupportedCast

	ErrTruncatedHeader = header.ErrTruncatedHeader
	ErrCorruptHeader   = header.ErrCorruptHeader

	ErrInvalidLevel          = filter.ErrInvalidLevel
	ErrUnsupportedCompressor = filter.ErrUnsupportedCompressor
	ErrCorruptBlock          = filter.ErrCorruptBlock
	ErrBlockLengthMismatch   = layout.ErrBlockLengthMismatch
	ErrInvalidBlockSize      = layout.ErrInvalidBlockSize
	ErrFileTooShort          = layout.ErrFileTooShort

	ErrUnwritablePath    = errors.New("unwritable path")
	ErrChecksumMismatch  = errors.New("payload checksum mismatch")
	ErrPixelUnitMismatch = errors.New("pixel unit mismatch")
	ErrCanceled          = errors.New("operation canceled")
)

// FileError records the operation and file behind a failure.
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("mrcz: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

func wrapErr(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var fe *FileError
	if errors.As(err, &fe) {
		return err
	}
	return &FileError{Op: op, Path: path, Err: err}
}
