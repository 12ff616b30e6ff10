/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package common

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
	"k8s.io/klog/v2"

	"github.com/ardikabs/downscaler/internal/config"
)

// DefaultLogFormat picks the console encoder when stderr is a terminal.
func DefaultLogFormat() string {
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return config.LogFormatConsole
	}
	return config.LogFormatJSON
}

// NewLogger builds the process logger and routes client-go logging through it.
func NewLogger(debug bool, format string) (logr.Logger, func(), error) {
	var zc zap.Config
	switch format {
	case config.LogFormatConsole:
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	case config.LogFormatJSON, "":
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	default:
		return logr.Discard(), nil, fmt.Errorf("unsupported log format %q", format)
	}

	zc.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if debug {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	zapLog, err := zc.Build()
	if err != nil {
		return logr.Discard(), nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger := zapr.NewLogger(zapLog).WithName("downscaler")
	klog.SetLogger(logger.WithName("client-go"))

	return logger, func() { _ = zapLog.Sync() }, nil
}
