// Package wipe triggers the operating system's factory reset through the
// local MDM management interface.
package wipe

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"tenantmove/internal/sysinfo"
)

const powerShell = "powershell.exe"

// doWipeMethod takes no confirmation; invoking it is the deliberate final
// action of the run and there is no rollback.
const wipeScript = `Get-CimInstance -Namespace 'root\cimv2\mdm\dmmap' -ClassName 'MDM_RemoteWipe' ` +
	`-Filter "ParentID='./Vendor/MSFT' and InstanceID='RemoteWipe'" ` +
	`| Invoke-CimMethod -MethodName doWipeMethod -Arguments @{param=''}`

type CommandRunner func(ctx context.Context, name string, args ...string) (string, error)

type Trigger struct {
	run CommandRunner
	log zerolog.Logger
}

func New(log zerolog.Logger) *Trigger {
	return &Trigger{run: sysinfo.RunCommand, log: log}
}

// NewWithRunner is for tests.
func NewWithRunner(run CommandRunner, log zerolog.Logger) *Trigger {
	return &Trigger{run: run, log: log}
}

// Wipe requests an immediate factory reset of the local machine.
func (t *Trigger) Wipe(ctx context.Context) error {
	t.log.Info().Msg("invoking MDM_RemoteWipe doWipeMethod")
	out, err := t.run(ctx, powerShell, "-NoProfile", "-NonInteractive", "-Command", wipeScript)
	if err != nil {
		return fmt.Errorf("invoking remote wipe: %w", err)
	}
	t.log.Info().Str("output", out).Msg("factory reset requested")
	return nil
}
