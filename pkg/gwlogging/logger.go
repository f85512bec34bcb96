// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

// Package gwlogging adapts github.com/stacklok/toolhive-core/logging into the
// gateway's process-wide logger, the way the teacher's own pkg/logger adapts
// the same module for the rest of toolhive.
package gwlogging

import (
	"os"
	"strconv"

	"github.com/stacklok/toolhive-core/logging"
)

// Initialize configures the process logger. debug raises the level;
// UNSTRUCTURED_LOGS=false switches to JSON output, matching the teacher's
// unstructuredLogsWithEnv default-true behavior.
func Initialize(debug bool) {
	logging.Configure(logging.Options{
		Debug:       debug,
		Unstructured: unstructuredLogs(),
	})
}

func unstructuredLogs() bool {
	v, ok := os.LookupEnv("UNSTRUCTURED_LOGS")
	if !ok {
		return true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return true
	}
	return b
}

// Package-level forwarders so callers never import toolhive-core/logging directly.
var (
	Debug  = logging.Debug
	Debugf = logging.Debugf
	Debugw = logging.Debugw
	Info   = logging.Info
	Infof  = logging.Infof
	Infow  = logging.Infow
	Warn   = logging.Warn
	Warnf  = logging.Warnf
	Warnw  = logging.Warnw
	Error  = logging.Error
	Errorf = logging.Errorf
	Errorw = logging.Errorw
)
