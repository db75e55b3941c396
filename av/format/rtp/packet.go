// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package rtp packetizes Annex B NAL units into RTP packet descriptors
// (single-NAL or FU-A per RFC 6184) and serializes + paces their
// delivery over UDP.
package rtp

import (
	"github.com/pion/rtp"
)

// Kind discriminates the two packet shapes this streamer ever emits.
type Kind int

const (
	// KindSingleNal carries one whole NAL as the RTP payload.
	KindSingleNal Kind = iota
	// KindFUA carries one RFC 6184 FU-A fragment.
	KindFUA
)

// FUIndicatorType is the fixed NAL type carried by every FU-A indicator
// byte (RFC 6184 §5.8).
const FUIndicatorType = 28

// Packet is a packet descriptor: the RTP header state plus a reference
// to the payload bytes that still live in the Byte Source. The Sender
// resolves Nal/Payload offsets into wire bytes at send time; nothing
// here copies the underlying NAL bytes.
type Packet struct {
	rtp.Header

	Kind Kind

	// KindSingleNal: the full NAL (header byte + payload), verbatim.
	NalOffset uint64
	NalLen    uint64

	// KindFUA: the FU indicator/header bytes plus a payload slice of
	// the source NAL, excluding its own header byte.
	FUIndicator   byte
	FUHeader      byte
	PayloadOffset uint64
	PayloadLen    uint64
}

// FUStart reports the S bit of an FU-A packet's FU header.
func (p *Packet) FUStart() bool { return p.FUHeader&0x80 != 0 }

// FUEnd reports the E bit of an FU-A packet's FU header.
func (p *Packet) FUEnd() bool { return p.FUHeader&0x40 != 0 }

// WireLen returns the total UDP datagram size this packet will
// serialize to: a fixed 12-byte RTP header, plus 2 more bytes of FU-A
// indicator/header for fragments, plus the payload length.
func (p *Packet) WireLen() int {
	const rtpHeaderLen = 12
	switch p.Kind {
	case KindFUA:
		return rtpHeaderLen + 2 + int(p.PayloadLen)
	default:
		return rtpHeaderLen + int(p.NalLen)
	}
}

func newFUHeader(s, e bool, nalKind uint8) byte {
	h := nalKind & 0x1F
	if s {
		h |= 0x80
	}
	if e {
		h |= 0x40
	}
	return h
}

func newFUIndicator(nalRefIdc uint8) byte {
	return (nalRefIdc&0x3)<<5 | FUIndicatorType
}
