// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtp

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/pion/rtp"
	"github.com/stretchr/testify/assert"

	"github.com/cnotch/rtpsend/media/queue"
)

// memSource serves positional reads from an in-memory byte slice, in
// place of the file-backed byte source.
type memSource []byte

func (m memSource) ReadRangeInto(buf []byte, start uint64) error {
	if start+uint64(len(buf)) > uint64(len(m)) {
		return io.ErrUnexpectedEOF
	}
	copy(buf, m[start:])
	return nil
}

func TestSender_SerializeSingleNal(t *testing.T) {
	src := memSource{0xAA, 0xBB, 0x65, 0x01, 0x02, 0x03, 0xCC}
	s := NewSender(nil, src, 90000, nil)

	pkt := &Packet{
		Header: rtp.Header{
			Version:        2,
			Marker:         true,
			PayloadType:    96,
			SequenceNumber: 0x1234,
			Timestamp:      0x00BC614E,
			SSRC:           0x00066E64,
		},
		Kind:      KindSingleNal,
		NalOffset: 2,
		NalLen:    4,
	}

	buf, err := s.serialize(pkt)
	assert.NoError(t, err)
	assert.Equal(t, []byte{
		0x80,       // V=2, P=0, X=0, CC=0
		0xE0,       // M=1, PT=96
		0x12, 0x34, // sequence, big-endian
		0x00, 0xBC, 0x61, 0x4E, // timestamp, big-endian
		0x00, 0x06, 0x6E, 0x64, // ssrc, big-endian
		0x65, 0x01, 0x02, 0x03, // the whole NAL, header byte first
	}, buf)
}

func TestSender_SerializeFuA(t *testing.T) {
	src := memSource{0x65, 0x10, 0x20, 0x30, 0x40}
	s := NewSender(nil, src, 90000, nil)

	pkt := &Packet{
		Header: rtp.Header{
			Version:        2,
			PayloadType:    96,
			SequenceNumber: 7,
			Timestamp:      3000,
			SSRC:           0x00066E64,
		},
		Kind:          KindFUA,
		FUIndicator:   newFUIndicator(3),
		FUHeader:      newFUHeader(true, false, 5),
		PayloadOffset: 1,
		PayloadLen:    4,
	}

	buf, err := s.serialize(pkt)
	assert.NoError(t, err)
	assert.Equal(t, []byte{
		0x80,
		0x60, // M=0, PT=96
		0x00, 0x07,
		0x00, 0x00, 0x0B, 0xB8,
		0x00, 0x06, 0x6E, 0x64,
		0x7C,                   // F=0, NRI=3, type 28
		0x85,                   // S=1, E=0, R=0, type 5
		0x10, 0x20, 0x30, 0x40, // payload, source header byte excluded
	}, buf)
}

// Run drains the queue onto a loopback socket in order, one datagram
// per packet, then exits cleanly when the queue closes.
func TestSender_Run(t *testing.T) {
	recv, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	assert.NoError(t, err)
	defer recv.Close()

	conn, err := net.DialUDP("udp", nil, recv.LocalAddr().(*net.UDPAddr))
	assert.NoError(t, err)
	defer conn.Close()

	src := memSource{0x65, 0x11, 0x22, 0x33}
	ctx := context.Background()
	in := queue.New(8)
	for i := 0; i < 3; i++ {
		pkt := &Packet{
			Header: rtp.Header{
				Version:        2,
				PayloadType:    96,
				SequenceNumber: uint16(i),
				Timestamp:      uint32(i) * 9, // sub-millisecond pacing
				SSRC:           1,
			},
			Kind:      KindSingleNal,
			NalOffset: 0,
			NalLen:    4,
		}
		assert.NoError(t, in.Push(ctx, pkt))
	}
	in.Close()

	done := make(chan error, 1)
	go func() {
		done <- NewSender(conn, src, 90000, nil).Run(ctx, in)
	}()

	buf := make([]byte, 1500)
	for i := 0; i < 3; i++ {
		recv.SetReadDeadline(time.Now().Add(2 * time.Second))
		n, _, err := recv.ReadFromUDP(buf)
		assert.NoError(t, err)
		assert.Equal(t, 16, n)
		assert.Equal(t, byte(i), buf[3], "datagram %d sequence low byte", i)
		assert.Equal(t, []byte{0x65, 0x11, 0x22, 0x33}, buf[12:16])
	}
	assert.NoError(t, <-done)
}

func TestSender_Pace(t *testing.T) {
	s := NewSender(nil, nil, 90000, nil)
	ctx := context.Background()

	// First packet: anchor only, no sleep.
	begin := time.Now()
	assert.NoError(t, s.pace(ctx, 9000))
	assert.Less(t, int64(time.Since(begin)), int64(20*time.Millisecond))

	// 4500 ticks at 90kHz = 50ms.
	begin = time.Now()
	assert.NoError(t, s.pace(ctx, 13500))
	elapsed := time.Since(begin)
	assert.GreaterOrEqual(t, int64(elapsed), int64(45*time.Millisecond))

	// Equal timestamp: fragment of the same NAL, no sleep.
	begin = time.Now()
	assert.NoError(t, s.pace(ctx, 13500))
	assert.Less(t, int64(time.Since(begin)), int64(20*time.Millisecond))

	// A jump of >= one clock period is a discontinuity: resync, no
	// sleep.
	begin = time.Now()
	assert.NoError(t, s.pace(ctx, 13500+90000))
	assert.Less(t, int64(time.Since(begin)), int64(20*time.Millisecond))

	// Timestamp going backwards wraps to a huge delta: filtered too.
	begin = time.Now()
	assert.NoError(t, s.pace(ctx, 9000))
	assert.Less(t, int64(time.Since(begin)), int64(20*time.Millisecond))
}

func TestSender_PaceCancel(t *testing.T) {
	s := NewSender(nil, nil, 90000, nil)
	ctx, cancel := context.WithCancel(context.Background())

	assert.NoError(t, s.pace(ctx, 0))

	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()
	// 89999 ticks is just under the discontinuity filter: ~1s sleep,
	// cut short by the cancel.
	err := s.pace(ctx, 89999)
	assert.Equal(t, context.Canceled, err)
}
