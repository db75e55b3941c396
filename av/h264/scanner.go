// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package h264

import (
	"bufio"
	"io"
)

const defaultScanBufferSize = 64 * 1024

// Scanner locates and classifies NAL units in an Annex B byte stream,
// one at a time, without copying payload bytes. It tracks the absolute
// byte offset of the underlying reader so callers can later re-read
// payload ranges positionally from the same source.
type Scanner struct {
	r      *bufio.Reader
	offset uint64
	err    error
}

// NewScanner wraps r for sequential Annex B scanning starting at its
// current read position (treated as absolute offset 0).
func NewScanner(r io.Reader) *Scanner {
	return NewScannerSize(r, defaultScanBufferSize)
}

// NewScannerSize is like NewScanner but sets the internal read-ahead
// buffer size explicitly; mainly useful to exercise start codes that
// straddle a buffer refill in tests.
func NewScannerSize(r io.Reader, bufSize int) *Scanner {
	return &Scanner{r: bufio.NewReaderSize(r, bufSize)}
}

// Next returns the next NAL unit, or io.EOF once the stream is
// exhausted. A non-EOF error is a fatal I/O failure; no partial NAL is
// ever returned for it.
func (s *Scanner) Next() (Nal, error) {
	if s.err != nil {
		return Nal{}, s.err
	}

	codeLen, found, err := s.advanceToStartCode()
	if err != nil {
		s.err = err
		return Nal{}, err
	}
	if !found {
		s.err = io.EOF
		return Nal{}, io.EOF
	}
	if err := s.discard(codeLen); err != nil {
		s.err = err
		return Nal{}, err
	}

	startOff := s.offset
	headerByte, err := s.r.ReadByte()
	if err != nil {
		if err != io.EOF {
			s.err = err
			return Nal{}, err
		}
		// Start code with nothing after it: a truncated tail, not a
		// NAL. Treat as clean end of stream per the truncated-input
		// contract, not a fatal error.
		s.err = io.EOF
		return Nal{}, io.EOF
	}
	s.offset++
	header := DecodeNalHeader(headerByte)

	if _, _, err := s.advanceToStartCode(); err != nil {
		s.err = err
		return Nal{}, err
	}
	endOff := s.offset

	return Nal{Header: header, StartOff: startOff, EndOff: endOff}, nil
}

// advanceToStartCode advances the read position byte by byte until a
// start-code prefix matches at the current position (left unconsumed)
// or EOF is reached. A 4-byte start code is checked before a 3-byte
// one at every position, so it wins when both would match.
func (s *Scanner) advanceToStartCode() (codeLen int, found bool, err error) {
	for {
		peek, perr := s.r.Peek(4)
		if len(peek) >= 4 && peek[0] == 0 && peek[1] == 0 && peek[2] == 0 && peek[3] == 1 {
			return 4, true, nil
		}
		if len(peek) >= 3 && peek[0] == 0 && peek[1] == 0 && peek[2] == 1 {
			return 3, true, nil
		}
		if perr != nil && perr != io.EOF {
			return 0, false, perr
		}
		if len(peek) == 0 {
			return 0, false, nil
		}
		if _, rerr := s.r.ReadByte(); rerr != nil {
			return 0, false, nil
		}
		s.offset++
	}
}

func (s *Scanner) discard(n int) error {
	d, err := s.r.Discard(n)
	s.offset += uint64(d)
	return err
}
