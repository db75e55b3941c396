// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/cnotch/scheduler"
	"github.com/cnotch/xlog"

	"github.com/cnotch/rtpsend/av/format/rtp"
	"github.com/cnotch/rtpsend/av/format/sdp"
	"github.com/cnotch/rtpsend/config"
	"github.com/cnotch/rtpsend/media"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		xlog.Errorf("%v", err)
		os.Exit(1)
	}

	cfg.Log.InitLogger()

	scheduler.SetPanicHandler(func(job *scheduler.ManagedJob, r interface{}) {
		xlog.L().Errorf("scheduler task panic. tag: %v, recover: %v", job.Tag, r)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		xlog.L().Info("received signal, shutting down")
		cancel()
	}()

	// The description must exist before the first packet is on the
	// wire, or a player started alongside rtpsend misses the stream
	// head.
	if err := writeSDP(cfg); err != nil {
		xlog.L().Errorf("writing sdp description: %v", err)
		os.Exit(1)
	}

	pipeline := &media.Pipeline{
		InputPath: cfg.InputPath,
		Dest:      cfg.Dest,
		ClockRate: config.ClockRate(),
		PacketizerConfig: rtp.Config{
			SSRC:                cfg.SSRC,
			PayloadType:         cfg.PayloadType,
			MTU:                 cfg.MTU,
			TimestampStep:       cfg.TimestampStep,
			ParamResendInterval: cfg.ParamResendInterval,
		},
	}

	xlog.L().Infof("streaming %s to %s at %d fps", cfg.InputPath, cfg.Dest, cfg.FPS)

	if err := pipeline.Run(ctx); err != nil {
		xlog.L().Errorf("pipeline stopped: %v", err)
		os.Exit(1)
	}

	xlog.L().Info("done")
}

func writeSDP(cfg *config.Config) error {
	sps, pps, err := media.FindParameterSets(cfg.InputPath)
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(filepath.Base(cfg.InputPath), filepath.Ext(cfg.InputPath))
	f, err := os.Create(base + ".sdp")
	if err != nil {
		return err
	}
	defer f.Close()

	return sdp.Write(f, sdp.Params{
		Dest:        cfg.Dest.IP.String(),
		Port:        cfg.Dest.Port,
		PayloadType: cfg.PayloadType,
		ClockRate:   config.ClockRate(),
		SPS:         sps,
		PPS:         pps,
	})
}
