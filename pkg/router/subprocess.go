// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package router

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/stacklok/vgate/pkg/errs"
)

// SubprocessVariant implements the Subprocess routing backend: command,
// args[], optional env, cwd, timeout_ms, per spec §4.4's table.
type SubprocessVariant struct{}

func (v *SubprocessVariant) Invoke(ctx context.Context, config map[string]any) (*Result, error) {
	command, err := stringField(config, "command")
	if err != nil {
		return nil, err
	}
	args, err := stringSliceField(config, "args")
	if err != nil {
		return nil, err
	}

	runCtx, cancel := withTimeout(ctx, timeoutField(config, "timeout_ms", 0))
	defer cancel()

	cmd := exec.CommandContext(runCtx, command, args...)
	if cwd := optionalStringField(config, "cwd", ""); cwd != "" {
		cmd.Dir = cwd
	}
	if env := stringMapField(config, "env"); len(env) > 0 {
		for k, val := range env {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, val))
		}
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runCtx.Err() == context.DeadlineExceeded {
		return nil, errs.NewTimeoutError(fmt.Sprintf("subprocess %q timed out", command), runCtx.Err())
	}
	if runErr != nil {
		exitCode := -1
		if ee, ok := runErr.(*exec.ExitError); ok {
			exitCode = ee.ExitCode()
		}
		return nil, errs.NewRemoteError(
			fmt.Sprintf("subprocess %q exited %d: %s", command, exitCode, stderr.String()), runErr)
	}

	return textResult(true, stdout.String()), nil
}
