// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package media wires the three pipeline stages - NAL parser,
// packetizer, RTP sender - together over bounded queues and runs them
// under a shared cancellable context, so that any stage's failure
// unwinds the whole pipeline.
package media

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/cnotch/scheduler"
	"github.com/cnotch/xlog"
	"golang.org/x/sync/errgroup"

	"github.com/cnotch/rtpsend/av/format/rtp"
	"github.com/cnotch/rtpsend/av/h264"
	"github.com/cnotch/rtpsend/media/bytesource"
	"github.com/cnotch/rtpsend/media/queue"
	"github.com/cnotch/rtpsend/media/stats"
)

// queueCapacity bounds how far the fastest stage may run ahead of the
// slowest, giving the pipeline its back-pressure.
const queueCapacity = 1024

// statsInterval is how often the pipeline logs throughput while
// running.
const statsInterval = 2 * time.Second

// Pipeline runs the parse -> packetize -> send chain for one input
// file against one destination.
type Pipeline struct {
	InputPath string
	Dest      *net.UDPAddr

	PacketizerConfig rtp.Config
	ClockRate        uint32
}

// Run executes the pipeline to completion or until ctx is canceled. It
// opens InputPath twice: once for the Parser's sequential scan, once
// as the Byte Source the Sender resolves payload bytes from
// positionally.
func (p *Pipeline) Run(ctx context.Context) error {
	src, err := bytesource.Open(p.InputPath)
	if err != nil {
		return err
	}
	defer src.Close()

	seq, err := src.SequentialReader()
	if err != nil {
		return err
	}
	defer seq.Close()

	conn, err := net.DialUDP("udp", nil, p.Dest)
	if err != nil {
		return err
	}
	defer conn.Close()

	nalQueue := queue.New(queueCapacity)
	pktQueue := queue.New(queueCapacity)
	counters := &stats.Counters{}

	scanner := h264.NewScanner(seq)
	packetizer := rtp.NewPacketizer(p.PacketizerConfig)
	sender := rtp.NewSender(conn, src, p.ClockRate, counters)

	scheduler.PeriodFunc(statsInterval, statsInterval,
		statsReporter(counters), "periodic send throughput log")
	defer cancelJobs()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer nalQueue.Close()
		for {
			nal, err := scanner.Next()
			if err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				return err
			}
			if err := nalQueue.Push(ctx, nal); err != nil {
				return err
			}
		}
	})

	g.Go(func() error {
		return packetizer.Run(ctx, nalQueue, pktQueue)
	})

	g.Go(func() error {
		return sender.Run(ctx, pktQueue)
	})

	return g.Wait()
}

// cancelJobs stops every scheduled job. The pipeline is the only
// component that posts jobs, and it runs once per process, so a blanket
// cancel is safe.
func cancelJobs() {
	for _, job := range scheduler.Jobs() {
		job.Cancel()
	}
}

// statsReporter returns the periodic task that logs how much the sender
// moved since its previous firing. It never fails the pipeline; it just
// reads the counters.
func statsReporter(counters *stats.Counters) func() {
	prev := counters.GetSample()
	return func() {
		cur := counters.GetSample()
		delta := cur.Delta(prev)
		prev = cur
		xlog.L().Infof("sent %d packets (%d bytes) in the last %s, %d packets total",
			delta.Packets, delta.Bytes, statsInterval, cur.Packets)
	}
}
