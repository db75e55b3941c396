// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Parse([]string{"input.h264"})
		assert.NoError(t, err)
		assert.Equal(t, "input.h264", cfg.InputPath)
		assert.Equal(t, 30, cfg.FPS)
		assert.Equal(t, uint32(3000), cfg.TimestampStep)
		assert.Equal(t, uint32(0x00066E64), cfg.SSRC)
		assert.Equal(t, 1500, cfg.MTU)
		assert.Equal(t, uint8(96), cfg.PayloadType)
		assert.Equal(t, 100, cfg.ParamResendInterval)
		assert.Equal(t, "127.0.0.1:5004", cfg.Dest.String())
	})

	t.Run("fps derives the timestamp step", func(t *testing.T) {
		cfg, err := Parse([]string{"-fps", "25", "input.h264"})
		assert.NoError(t, err)
		assert.Equal(t, 25, cfg.FPS)
		assert.Equal(t, uint32(3600), cfg.TimestampStep)
	})

	t.Run("positional fps wins over the flag", func(t *testing.T) {
		cfg, err := Parse([]string{"-fps", "25", "input.h264", "60"})
		assert.NoError(t, err)
		assert.Equal(t, 60, cfg.FPS)
		assert.Equal(t, uint32(1500), cfg.TimestampStep)
	})

	t.Run("custom destination", func(t *testing.T) {
		cfg, err := Parse([]string{"-dest", "127.0.0.1:9000", "input.h264"})
		assert.NoError(t, err)
		assert.Equal(t, 9000, cfg.Dest.Port)
	})

	t.Run("log flags", func(t *testing.T) {
		cfg, err := Parse([]string{"-log-tofile", "-log-filename", "out.log", "input.h264"})
		assert.NoError(t, err)
		assert.True(t, cfg.Log.ToFile)
		assert.Equal(t, "out.log", cfg.Log.Filename)
	})

	tests := []struct {
		name string
		args []string
	}{
		{"missing input path", nil},
		{"fps zero", []string{"-fps", "0", "input.h264"}},
		{"fps negative", []string{"-fps", "-5", "input.h264"}},
		{"fps above clock rate", []string{"-fps", "90001", "input.h264"}},
		{"positional fps not a number", []string{"input.h264", "abc"}},
		{"positional fps zero", []string{"input.h264", "0"}},
		{"mtu not above header overhead", []string{"-mtu", "14", "input.h264"}},
		{"unresolvable dest", []string{"-dest", "not-an-address", "input.h264"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.args)
			assert.Error(t, err)
		})
	}
}
