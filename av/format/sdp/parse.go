// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sdp

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/pixelbender/go-sdp/sdp"
)

// Parsed is what Parse extracts back out of a description written by
// Write, for tests to assert the two agree.
type Parsed struct {
	ClockRate          uint32
	SpropParameterSets string
}

// Parse wraps a standard SDP parser around raw so a description
// written by Write can be checked for round-trip fidelity, rather than
// trusting that Write's hand-formatted lines are independently
// well-formed.
func Parse(raw string) (*Parsed, error) {
	sess, err := sdp.ParseString(raw)
	if err != nil {
		return nil, err
	}

	for _, media := range sess.Media {
		if media.Type != "video" || len(media.Format) == 0 {
			continue
		}
		format := media.Format[0]
		if format.Name != "H264" && format.Name != "h264" {
			continue
		}

		parsed := &Parsed{ClockRate: uint32(format.ClockRate)}
		for _, p := range format.Params {
			i := strings.Index(p, "sprop-parameter-sets=")
			if i < 0 {
				continue
			}
			parsed.SpropParameterSets = p[i+len("sprop-parameter-sets="):]
		}
		return parsed, nil
	}
	return nil, fmt.Errorf("sdp: no H264 video media found")
}

// DecodeSpropParameterSets splits and decodes a sprop-parameter-sets
// value into its SPS and PPS bytes.
func DecodeSpropParameterSets(value string) (sps, pps []byte, err error) {
	parts := strings.SplitN(value, ",", 2)
	if len(parts) != 2 {
		return nil, nil, fmt.Errorf("sdp: malformed sprop-parameter-sets %q", value)
	}
	sps, err = base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, nil, err
	}
	pps, err = base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, nil, err
	}
	return sps, pps, nil
}
