// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package media

import (
	"errors"
	"io"

	"github.com/cnotch/rtpsend/av/h264"
	"github.com/cnotch/rtpsend/media/bytesource"
)

// FindParameterSets scans the Annex B file at path for SPS and PPS NAL
// units and returns the bytes of the last one of each kind, header byte
// included, or nil for a kind the file does not contain. It is a
// separate pre-streaming pass; the companion SDP description has to be
// on disk before the first RTP packet leaves, so a player can join from
// the start.
func FindParameterSets(path string) (sps, pps []byte, err error) {
	src, err := bytesource.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer src.Close()

	seq, err := src.SequentialReader()
	if err != nil {
		return nil, nil, err
	}
	defer seq.Close()

	var spsNal, ppsNal *h264.Nal
	scanner := h264.NewScanner(seq)
	for {
		nal, err := scanner.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, err
		}
		switch nal.Header.Kind() {
		case h264.NalSps:
			found := nal
			spsNal = &found
		case h264.NalPps:
			found := nal
			ppsNal = &found
		}
	}

	if spsNal != nil {
		if sps, err = src.ReadRange(spsNal.StartOff, spsNal.EndOff); err != nil {
			return nil, nil, err
		}
	}
	if ppsNal != nil {
		if pps, err = src.ReadRange(ppsNal.StartOff, ppsNal.EndOff); err != nil {
			return nil, nil, err
		}
	}
	return sps, pps, nil
}
