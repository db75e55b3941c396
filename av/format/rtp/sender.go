// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtp

import (
	"context"
	"net"
	"time"

	"github.com/cnotch/rtpsend/media/queue"
	"github.com/cnotch/rtpsend/media/stats"
)

// payloadReader is the subset of bytesource.Source the Sender needs to
// resolve a packet's payload bytes from the underlying file.
type payloadReader interface {
	ReadRangeInto(buf []byte, start uint64) error
}

// Sender drains a queue of *Packet descriptors, serializes each to
// wire bytes and writes it to conn, paced to the 90kHz RTP media clock
// carried in the packet timestamps rather than to wall-clock arrival
// order.
type Sender struct {
	conn      *net.UDPConn
	src       payloadReader
	clockRate uint32
	counters  *stats.Counters

	havePrev bool
	start    time.Time
	prevTS   uint32
}

// NewSender creates a Sender writing to conn, resolving NAL/fragment
// payload bytes from src, pacing against a clockRate Hz media clock
// (90000 for H.264), and tallying throughput into counters.
func NewSender(conn *net.UDPConn, src payloadReader, clockRate uint32, counters *stats.Counters) *Sender {
	return &Sender{conn: conn, src: src, clockRate: clockRate, counters: counters}
}

// Run drains in until it closes, sending every packet in order. A send
// error or a canceled ctx aborts the run; a closed in is a clean exit.
func (s *Sender) Run(ctx context.Context, in *queue.Queue) error {
	for {
		item, err := in.Pop(ctx)
		if err == queue.ErrClosed {
			return nil
		}
		if err != nil {
			return err
		}
		pkt := item.(*Packet)

		if err := s.pace(ctx, pkt.Timestamp); err != nil {
			return err
		}

		buf, err := s.serialize(pkt)
		if err != nil {
			return err
		}
		n, err := s.conn.Write(buf)
		if err != nil {
			return err
		}
		if s.counters != nil {
			s.counters.Add(n)
		}
	}
}

// pace sleeps until the wall-clock moment that corresponds to ts on the
// media clock, measured from the previously sent packet. The first
// packet establishes the anchor and is sent immediately. A wrapped
// delta of zero or of a full clock period or more (duplicate timestamp,
// rollback, or a gap too large to be real pacing) is a discontinuity:
// no sleep, just resync. The anchor is reset to now after every packet,
// whether or not a sleep happened.
func (s *Sender) pace(ctx context.Context, ts uint32) error {
	if s.havePrev {
		delta := ts - s.prevTS
		if delta > 0 && delta < s.clockRate {
			target := time.Duration(delta) * time.Second / time.Duration(s.clockRate)
			if wait := target - time.Since(s.start); wait > 0 {
				timer := time.NewTimer(wait)
				defer timer.Stop()
				select {
				case <-timer.C:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
	s.havePrev = true
	s.start = time.Now()
	s.prevTS = ts
	return nil
}

func (s *Sender) serialize(pkt *Packet) ([]byte, error) {
	hdr, err := pkt.Header.Marshal()
	if err != nil {
		return nil, err
	}

	buf := make([]byte, pkt.WireLen())
	copy(buf, hdr)

	switch pkt.Kind {
	case KindFUA:
		buf[len(hdr)] = pkt.FUIndicator
		buf[len(hdr)+1] = pkt.FUHeader
		if err := s.src.ReadRangeInto(buf[len(hdr)+2:], pkt.PayloadOffset); err != nil {
			return nil, err
		}
	default:
		if err := s.src.ReadRangeInto(buf[len(hdr):], pkt.NalOffset); err != nil {
			return nil, err
		}
	}
	return buf, nil
}
