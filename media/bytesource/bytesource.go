// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package bytesource gives the pipeline a read-only, random-access view
// of the input file, indexed by absolute byte offset. The Parser reads
// it sequentially; the Sender reads NAL and fragment payload ranges
// positionally, independent of the Parser's read position.
package bytesource

import (
	"fmt"
	"io"
	"os"
)

// Source is a read-only, concurrency-safe positional view of a file.
// Positional reads use the file's pread semantics (os.File.ReadAt), so
// they never move a shared cursor and may be issued from any goroutine
// while a sequential reader (SequentialReader) scans the same file.
type Source struct {
	f    *os.File
	size int64
}

// Open opens path for positional, read-only access.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Source{f: f, size: fi.Size()}, nil
}

// Close closes the underlying file.
func (s *Source) Close() error {
	return s.f.Close()
}

// Size is the total byte length of the file.
func (s *Source) Size() uint64 {
	return uint64(s.size)
}

// ReadRange returns the bytes in [start, end). It allocates exactly
// end-start bytes; callers that want to avoid the allocation on a hot
// path should use ReadRangeInto.
func (s *Source) ReadRange(start, end uint64) ([]byte, error) {
	if end < start {
		return nil, fmt.Errorf("bytesource: invalid range [%d,%d)", start, end)
	}
	buf := make([]byte, end-start)
	if err := s.ReadRangeInto(buf, start); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadRangeInto fills buf from the absolute offset start, via a
// positional read (no shared cursor is advanced).
func (s *Source) ReadRangeInto(buf []byte, start uint64) error {
	if len(buf) == 0 {
		return nil
	}
	n, err := s.f.ReadAt(buf, int64(start))
	if n == len(buf) {
		// ReadAt may report io.EOF even when it filled buf with the
		// file's final bytes; a full read is never an error here.
		return nil
	}
	if err == nil || err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// SequentialReader opens an independent, forward-only reader over the
// same file, starting at offset 0, for the Parser's sequential scan.
// It does not share state with ReadRange's positional reads.
func (s *Source) SequentialReader() (io.ReadCloser, error) {
	f, err := os.Open(s.f.Name())
	if err != nil {
		return nil, err
	}
	return f, nil
}
