// Package staging places the tenant's Autopilot provisioning profile into
// the system provisioning directory.
package staging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrSourceMissing indicates the provisioning profile is not next to the
// agent binary; without it the new tenant cannot claim the device.
var ErrSourceMissing = errors.New("provisioning profile not found")

// Stage copies src into destDir, overwriting any previous profile. Returns
// the destination path. Any failure here is fatal to the run.
func Stage(src, destDir string) (string, error) {
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrSourceMissing, src)
		}
		return "", err
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("creating provisioning directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	dest := filepath.Join(destDir, filepath.Base(src))
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", fmt.Errorf("copying provisioning profile: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return dest, nil
}
