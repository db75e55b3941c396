// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package stats tracks packet and byte throughput for the RTP sender
// stage, sampled periodically for a progress log.
package stats

import "sync/atomic"

// Sample is an immutable snapshot of Counters at some point in time.
type Sample struct {
	Packets int64
	Bytes   int64
}

// Counters accumulates packets and bytes sent, safe for concurrent use.
type Counters struct {
	packets int64
	bytes   int64
}

// Add records one more sent packet of the given wire size.
func (c *Counters) Add(bytes int) {
	atomic.AddInt64(&c.packets, 1)
	atomic.AddInt64(&c.bytes, int64(bytes))
}

// GetSample returns the running totals.
func (c *Counters) GetSample() Sample {
	return Sample{
		Packets: atomic.LoadInt64(&c.packets),
		Bytes:   atomic.LoadInt64(&c.bytes),
	}
}

// Delta returns the change since a previously taken sample.
func (s Sample) Delta(prev Sample) Sample {
	return Sample{
		Packets: s.Packets - prev.Packets,
		Bytes:   s.Bytes - prev.Bytes,
	}
}
