// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"flag"
	"os"

	"github.com/cnotch/xlog"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志输出级别
	Level xlog.Level `json:"level"`

	// ToFile 是否将日志记录到文件
	ToFile bool `json:"tofile"`

	// Filename 日志文件名称
	Filename string `json:"filename"`

	// MaxSize 日志文件的最大尺寸，以兆为单位
	MaxSize int `json:"maxsize"`

	// MaxDays 旧日志最多保存多少天
	MaxDays int `json:"maxdays"`

	// MaxBackups 旧日志最多保持数量。
	// 注意：旧日志保存的条件包括 <=MaxDays && <=MaxBackups
	MaxBackups int `json:"maxbackups"`

	// Compress 是否用 gzip 压缩
	Compress bool `json:"compress"`
}

func defaultLogConfig() LogConfig {
	return LogConfig{
		Filename:   "./logs/" + Name + ".log",
		MaxSize:    20,
		MaxDays:    7,
		MaxBackups: 14,
	}
}

func (c *LogConfig) initFlags(fs *flag.FlagSet) {
	fs.Var(&c.Level, "log-level",
		"Set the log level to output")
	fs.BoolVar(&c.ToFile, "log-tofile", c.ToFile,
		"Determines if logs should be saved to file")
	fs.StringVar(&c.Filename, "log-filename", c.Filename,
		"Set the file to write logs to")
	fs.IntVar(&c.MaxSize, "log-maxsize", c.MaxSize,
		"Set the maximum size in megabytes of the log file before it gets rotated")
	fs.IntVar(&c.MaxDays, "log-maxdays", c.MaxDays,
		"Set the maximum days of old log files to retain")
	fs.IntVar(&c.MaxBackups, "log-maxbackups", c.MaxBackups,
		"Set the maximum number of old log files to retain")
	fs.BoolVar(&c.Compress, "log-compress", c.Compress,
		"Determines if the log files should be compressed")
}

// InitLogger 初始化根日志
func (c *LogConfig) InitLogger() {
	if c.ToFile {
		// 文件输出
		fileWriter := &lumberjack.Logger{
			Filename:   c.Filename,
			MaxSize:    c.MaxSize,
			MaxBackups: c.MaxBackups,
			MaxAge:     c.MaxDays,
			LocalTime:  true,
			Compress:   c.Compress,
		}

		xlog.ReplaceGlobal(
			xlog.New(xlog.NewTee(xlog.NewCore(xlog.NewConsoleEncoder(xlog.LstdFlags|xlog.Lmicroseconds|xlog.Llongfile), xlog.Lock(os.Stderr), c.Level),
				xlog.NewCore(xlog.NewJSONEncoder(xlog.Llongfile), fileWriter, c.Level)),
				xlog.AddCaller()))
	} else {
		xlog.ReplaceGlobal(
			xlog.New(xlog.NewCore(xlog.NewConsoleEncoder(xlog.LstdFlags|xlog.Lmicroseconds|xlog.Llongfile), xlog.Lock(os.Stderr), c.Level),
				xlog.AddCaller()))
	}
}
