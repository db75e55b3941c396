// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sdp writes the companion SDP file that tells a receiver how
// to interpret the RTP stream rtpsend produces, and can parse one of
// its own descriptions back for a round-trip self-check.
package sdp

import (
	"encoding/base64"
	"fmt"
	"io"
)

// Params describes the one video stream rtpsend ever announces.
type Params struct {
	Dest        string
	Port        int
	PayloadType uint8
	ClockRate   uint32

	// SPS and PPS are the full NAL bytes (header byte included, no
	// Annex B start code), as found by the pre-streaming parameter-set
	// scan.
	SPS []byte
	PPS []byte
}

// Write renders an SDP session description for p to w. The line order
// and field set are pinned to what a receiver actually needs for a
// single H.264 video stream; a general-purpose SDP encoder would not
// guarantee that exact shape, so the lines are written directly. The
// a=fmtp line is omitted when the input carried no SPS/PPS to announce.
func Write(w io.Writer, p Params) error {
	lines := []string{
		"v=0",
		fmt.Sprintf("o=- 0 0 IN IP4 %s", p.Dest),
		"s=H264 RTP stream",
		fmt.Sprintf("c=IN IP4 %s", p.Dest),
		"t=0 0",
		fmt.Sprintf("m=video %d RTP/AVP %d", p.Port, p.PayloadType),
		fmt.Sprintf("a=rtpmap:%d H264/%d", p.PayloadType, p.ClockRate),
	}
	if len(p.SPS) > 0 && len(p.PPS) > 0 {
		lines = append(lines,
			fmt.Sprintf("a=fmtp:%d packetization-mode=1; sprop-parameter-sets=%s,%s",
				p.PayloadType,
				base64.StdEncoding.EncodeToString(p.SPS),
				base64.StdEncoding.EncodeToString(p.PPS)))
	}

	for _, line := range lines {
		if _, err := io.WriteString(w, line+"\r\n"); err != nil {
			return err
		}
	}
	return nil
}
