// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config resolves the rtpsend run configuration from, in
// ascending priority: built-in defaults, an optional JSON config file
// next to the executable, RTPSEND_-prefixed environment variables, and
// command-line flags.
package config

import (
	"flag"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	loader "github.com/cnotch/loader"
)

// Name is the program name, used in flag usage text, the config file
// name and the environment variable prefix.
const Name = "rtpsend"

const (
	defaultFPS            = 30
	defaultDest           = "127.0.0.1:5004"
	defaultSSRC           = 0x00066E64
	defaultMTU            = 1500
	defaultPayloadType    = 96
	defaultResendInterval = 100

	rtpClockRate uint32 = 90000
)

// options is the loadable surface shared by the config file, the
// environment and the flags. Validation happens after all three are
// applied.
type options struct {
	FPS                 int       `json:"fps"`
	Dest                string    `json:"dest"`
	SSRC                uint      `json:"ssrc"`
	MTU                 int       `json:"mtu"`
	PayloadType         uint      `json:"payloadtype"`
	ParamResendInterval int       `json:"paramresendinterval"`
	Log                 LogConfig `json:"log"`
}

func (o *options) initFlags(fs *flag.FlagSet) {
	fs.IntVar(&o.FPS, "fps", o.FPS,
		"Set the encoded frame rate, used to derive the RTP timestamp step")
	fs.StringVar(&o.Dest, "dest", o.Dest,
		"Set the destination host:port for the RTP/UDP stream")
	fs.UintVar(&o.SSRC, "ssrc", o.SSRC,
		"Set the RTP SSRC to stamp on every packet")
	fs.IntVar(&o.MTU, "mtu", o.MTU,
		"Set the maximum RTP datagram size; larger NALs are FU-A fragmented")
	fs.UintVar(&o.PayloadType, "payload-type", o.PayloadType,
		"Set the RTP payload type")
	fs.IntVar(&o.ParamResendInterval, "param-resend-interval", o.ParamResendInterval,
		"Resend cached SPS/PPS after this many NALs without a resend")
	o.Log.initFlags(fs)
}

// Config is the fully resolved, validated configuration for one run.
type Config struct {
	InputPath string
	Dest      *net.UDPAddr

	FPS                 int
	TimestampStep       uint32
	SSRC                uint32
	MTU                 int
	PayloadType         uint8
	ParamResendInterval int

	Log LogConfig
}

// Parse resolves args (excluding the program name, as in os.Args[1:])
// and the lower-priority sources into a Config. It fails closed: any
// invalid value or missing positional input_path is reported before the
// input file or the network is touched.
func Parse(args []string) (*Config, error) {
	opts := &options{
		FPS:                 defaultFPS,
		Dest:                defaultDest,
		SSRC:                defaultSSRC,
		MTU:                 defaultMTU,
		PayloadType:         defaultPayloadType,
		ParamResendInterval: defaultResendInterval,
		Log:                 defaultLogConfig(),
	}

	// The config file and environment sit between the defaults and the
	// flags; flags get registered afterwards so their defaults are the
	// already-loaded values.
	if err := loader.Load(opts,
		&loader.JSONLoader{Path: configPath(), CreatedIfNonExsit: true},
		&loader.EnvLoader{Prefix: strings.ToUpper(Name)}); err != nil {
		return nil, fmt.Errorf("%s: loading config: %w", Name, err)
	}

	fs := flag.NewFlagSet(Name, flag.ContinueOnError)
	opts.initFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if fs.NArg() < 1 {
		return nil, fmt.Errorf("%s: missing required input_path argument", Name)
	}
	if fs.NArg() >= 2 {
		// Positional fps, overriding the flag and the lower layers.
		v, err := strconv.Atoi(fs.Arg(1))
		if err != nil {
			return nil, fmt.Errorf("%s: invalid fps argument %q", Name, fs.Arg(1))
		}
		opts.FPS = v
	}

	if opts.FPS <= 0 || uint32(opts.FPS) > rtpClockRate {
		return nil, fmt.Errorf("%s: fps must be in (0, %d], got %d", Name, rtpClockRate, opts.FPS)
	}
	if opts.MTU <= 14 {
		return nil, fmt.Errorf("%s: mtu must be greater than the RTP+FU-A header overhead, got %d", Name, opts.MTU)
	}
	if opts.PayloadType > 127 {
		return nil, fmt.Errorf("%s: payload type must be in [0, 127], got %d", Name, opts.PayloadType)
	}

	destAddr, err := net.ResolveUDPAddr("udp", opts.Dest)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid dest %q: %w", Name, opts.Dest, err)
	}

	return &Config{
		InputPath:           fs.Arg(0),
		Dest:                destAddr,
		FPS:                 opts.FPS,
		TimestampStep:       rtpClockRate / uint32(opts.FPS),
		SSRC:                uint32(opts.SSRC),
		MTU:                 opts.MTU,
		PayloadType:         uint8(opts.PayloadType),
		ParamResendInterval: opts.ParamResendInterval,
		Log:                 opts.Log,
	}, nil
}

// configPath places the optional config file next to the executable,
// not in the working directory, so a restarted stream finds the same
// settings regardless of where it was launched from.
func configPath() string {
	exe, err := os.Executable()
	if err != nil {
		return Name + ".conf"
	}
	return filepath.Join(filepath.Dir(exe), Name+".conf")
}

// ClockRate is the fixed H.264 RTP media clock rate in Hz.
func ClockRate() uint32 { return rtpClockRate }
