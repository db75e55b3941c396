// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtp

import (
	"context"

	"github.com/pion/rtp"

	"github.com/cnotch/rtpsend/av/h264"
	"github.com/cnotch/rtpsend/media/queue"
)

// Config holds the fixed parameters of one packetization/send session.
type Config struct {
	SSRC        uint32
	PayloadType uint8
	MTU         int

	// TimestampStep is the RTP timestamp increment applied ahead of every
	// emitted NAL, at the 90kHz media clock. 90000/fps for a fixed frame
	// rate.
	TimestampStep uint32

	// ParamResendInterval is the number of NALs (other than SPS, PPS and
	// IDR slices) after which the cached parameter sets are resent, as
	// insurance against a lost initial delivery. IDR slices always
	// trigger a resend regardless of this counter.
	ParamResendInterval int
}

// Packetizer turns the NAL stream on in into RTP packet descriptors on
// out, one packetization pass per NAL: a single-NAL packet when the NAL
// fits the configured MTU, or a run of RFC 6184 FU-A fragments
// otherwise. It caches the most recently seen SPS/PPS and resends them
// ahead of IDR slices and periodically during long parameter-set-free
// runs.
type Packetizer struct {
	cfg Config

	seq       uint16
	timestamp uint32

	cachedSPS          *h264.Nal
	cachedPPS          *h264.Nal
	pendingSPS         bool
	pendingPPS         bool
	packetsSinceResend int
}

// NewPacketizer creates a Packetizer that starts from sequence number 0
// and timestamp 0.
func NewPacketizer(cfg Config) *Packetizer {
	return &Packetizer{cfg: cfg}
}

// Run pulls h264.Nal values from in until it closes, packetizes each,
// and pushes the resulting *Packet values to out in order. Run closes
// out exactly once, whether it returns nil or an error, so a downstream
// consumer always observes a terminated queue.
func (p *Packetizer) Run(ctx context.Context, in, out *queue.Queue) error {
	defer out.Close()
	for {
		item, err := in.Pop(ctx)
		if err == queue.ErrClosed {
			return nil
		}
		if err != nil {
			return err
		}
		if err := p.process(ctx, item.(h264.Nal), out); err != nil {
			return err
		}
	}
}

// process packetizes one fetched NAL: update the parameter-set cache,
// decide whether a cached SPS/PPS resend is due, drain the pending
// resends, then emit the NAL itself. Each emission (resend or stream
// NAL) advances the timestamp by one step first, so all fragments of
// one NAL share the timestamp assigned here.
func (p *Packetizer) process(ctx context.Context, nal h264.Nal, out *queue.Queue) error {
	switch nal.Header.Kind() {
	case h264.NalSps:
		cached := nal
		p.cachedSPS = &cached
	case h264.NalPps:
		cached := nal
		p.cachedPPS = &cached
	case h264.NalIdrSlice:
		p.pendingSPS = p.cachedSPS != nil
		p.pendingPPS = p.cachedPPS != nil
	default:
		p.packetsSinceResend++
		if p.packetsSinceResend >= p.cfg.ParamResendInterval &&
			(p.cachedSPS != nil || p.cachedPPS != nil) {
			p.pendingSPS = p.cachedSPS != nil
			p.pendingPPS = p.cachedPPS != nil
		}
	}

	if p.pendingSPS {
		p.pendingSPS = false
		p.packetsSinceResend = 0
		p.timestamp += p.cfg.TimestampStep
		if err := p.emit(ctx, *p.cachedSPS, out); err != nil {
			return err
		}
	}
	if p.pendingPPS {
		p.pendingPPS = false
		p.packetsSinceResend = 0
		p.timestamp += p.cfg.TimestampStep
		if err := p.emit(ctx, *p.cachedPPS, out); err != nil {
			return err
		}
	}

	p.timestamp += p.cfg.TimestampStep
	return p.emit(ctx, nal, out)
}

func (p *Packetizer) emit(ctx context.Context, nal h264.Nal, out *queue.Queue) error {
	maxSingle := p.cfg.MTU - 12
	if int(nal.Size()) <= maxSingle {
		pkt := &Packet{
			Header: rtp.Header{
				Version:        2,
				PayloadType:    p.cfg.PayloadType,
				SequenceNumber: p.seq,
				Timestamp:      p.timestamp,
				SSRC:           p.cfg.SSRC,
				Marker:         nal.Header.IsVCL(),
			},
			Kind:      KindSingleNal,
			NalOffset: nal.StartOff,
			NalLen:    nal.Size(),
		}
		p.seq++
		return out.Push(ctx, pkt)
	}
	return p.emitFUA(ctx, nal, out)
}

func (p *Packetizer) emitFUA(ctx context.Context, nal h264.Nal, out *queue.Queue) error {
	maxFragPayload := uint64(p.cfg.MTU - 12 - 2)
	offset := nal.StartOff + 1
	remaining := nal.PayloadLen()
	indicator := newFUIndicator(nal.Header.RefIdc())

	first := true
	for remaining > 0 {
		n := remaining
		if n > maxFragPayload {
			n = maxFragPayload
		}
		last := n == remaining

		pkt := &Packet{
			Header: rtp.Header{
				Version:        2,
				PayloadType:    p.cfg.PayloadType,
				SequenceNumber: p.seq,
				Timestamp:      p.timestamp,
				SSRC:           p.cfg.SSRC,
				Marker:         last && nal.Header.IsVCL(),
			},
			Kind:          KindFUA,
			FUIndicator:   indicator,
			FUHeader:      newFUHeader(first, last, nal.Header.Kind()),
			PayloadOffset: offset,
			PayloadLen:    n,
		}
		p.seq++
		if err := out.Push(ctx, pkt); err != nil {
			return err
		}

		offset += n
		remaining -= n
		first = false
	}
	return nil
}
