// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sdp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, Params{
		Dest:        "127.0.0.1",
		Port:        5004,
		PayloadType: 96,
		ClockRate:   90000,
		SPS:         []byte{0x67, 0x42, 0x80},
		PPS:         []byte{0x68, 0xCE},
	})
	assert.NoError(t, err)

	got := buf.String()
	assert.True(t, strings.HasPrefix(got, "v=0\r\n"))
	assert.Contains(t, got, "s=H264 RTP stream\r\n")
	assert.Contains(t, got, "c=IN IP4 127.0.0.1\r\n")
	assert.Contains(t, got, "m=video 5004 RTP/AVP 96\r\n")
	assert.Contains(t, got, "a=rtpmap:96 H264/90000\r\n")
	assert.Contains(t, got, "a=fmtp:96 packetization-mode=1; sprop-parameter-sets=Z0KA,aM4=\r\n")
}

// Without parameter sets the fmtp line is dropped entirely; announcing
// an empty sprop would be worse than announcing none.
func TestWrite_NoParameterSets(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, Params{
		Dest:        "127.0.0.1",
		Port:        5004,
		PayloadType: 96,
		ClockRate:   90000,
	})
	assert.NoError(t, err)

	got := buf.String()
	assert.NotContains(t, got, "a=fmtp")
	assert.Contains(t, got, "a=rtpmap:96 H264/90000\r\n")
}

// A description produced by Write must survive a real SDP parser and
// yield back the same parameter sets.
func TestWrite_RoundTrip(t *testing.T) {
	sps := []byte{0x67, 0x42, 0x00, 0x1F}
	pps := []byte{0x68, 0xCE, 0x3C, 0x80}

	var buf bytes.Buffer
	err := Write(&buf, Params{
		Dest:        "127.0.0.1",
		Port:        5004,
		PayloadType: 96,
		ClockRate:   90000,
		SPS:         sps,
		PPS:         pps,
	})
	assert.NoError(t, err)

	parsed, err := Parse(buf.String())
	assert.NoError(t, err)
	assert.Equal(t, uint32(90000), parsed.ClockRate)

	gotSPS, gotPPS, err := DecodeSpropParameterSets(parsed.SpropParameterSets)
	assert.NoError(t, err)
	assert.Equal(t, sps, gotSPS)
	assert.Equal(t, pps, gotPPS)
}
