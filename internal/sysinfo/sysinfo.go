// Package sysinfo reads the local device's identity and runs local commands.
package sysinfo

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/shirou/gopsutil/v3/host"
)

// DeviceName returns the local machine name, which is the name the managed
// device is enrolled under.
func DeviceName() (string, error) {
	if info, err := host.Info(); err == nil && info.Hostname != "" {
		return info.Hostname, nil
	}
	name, err := os.Hostname()
	if err != nil {
		return "", err
	}
	return name, nil
}

// OSDetails returns a one-line platform description for the run banner.
func OSDetails() string {
	info, err := host.Info()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(fmt.Sprintf("%s %s (%s)", info.Platform, info.PlatformVersion, info.KernelArch))
}

// RunCommand executes a local command and returns its stdout. Stderr is
// folded into the error on failure.
func RunCommand(ctx context.Context, name string, args ...string) (string, error) {
	c := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if err := c.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", err
		}
		return "", fmt.Errorf("%w: %s", err, msg)
	}
	return stdout.String(), nil
}
