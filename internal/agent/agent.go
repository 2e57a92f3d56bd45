// Package agent runs the tenant move: stage the new tenant's provisioning
// profile, authenticate, remove the device's records from the source tenant,
// scrub the management agent log, and trigger the factory reset.
package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tenantmove/internal/auth"
	"tenantmove/internal/config"
	"tenantmove/internal/graph"
	"tenantmove/internal/logging"
	"tenantmove/internal/model"
	"tenantmove/internal/sanitize"
	"tenantmove/internal/staging"
	"tenantmove/internal/sysinfo"
	"tenantmove/internal/wipe"
)

// DeviceAPI is the slice of the Graph client the resolver/deleter needs.
type DeviceAPI interface {
	FindManagedDeviceByName(ctx context.Context, name string) ([]model.ManagedDevice, error)
	DeleteManagedDevice(ctx context.Context, id string) error
	FindAutopilotDeviceBySerial(ctx context.Context, serial string) ([]model.AutopilotDeviceIdentity, error)
	DeleteAutopilotDevice(ctx context.Context, id string) error
	SyncAutopilotService(ctx context.Context) error
}

type Options struct {
	// DryRun resolves the records but performs no delete, scrub, or reset.
	DryRun bool
	// SkipReset runs the full cleanup but leaves the machine unwiped.
	SkipReset bool
}

type Agent struct {
	cfg  *config.Config
	log  zerolog.Logger
	opts Options

	stage      func(src, destDir string) (string, error)
	token      func(ctx context.Context) (model.Token, error)
	api        func(tok model.Token) DeviceAPI
	scrub      func(path, marker string) (int, error)
	reset      func(ctx context.Context) error
	deviceName func() (string, error)
	sleep      func(time.Duration)
}

func New(cfg *config.Config, log zerolog.Logger, opts Options) *Agent {
	authClient := auth.NewClient(cfg.Azure.LoginURL, cfg.HTTPTimeout(), logging.WithComponent(log, "auth"))
	wiper := wipe.New(logging.WithComponent(log, "wipe"))

	return &Agent{
		cfg:   cfg,
		log:   log,
		opts:  opts,
		stage: staging.Stage,
		token: func(ctx context.Context) (model.Token, error) {
			return authClient.Token(ctx, auth.Credentials{
				TenantID:     cfg.Azure.TenantID,
				ClientID:     cfg.Azure.ClientID,
				ClientSecret: cfg.Azure.ClientSecret,
				Resource:     cfg.Azure.Resource,
			})
		},
		api: func(tok model.Token) DeviceAPI {
			return graph.NewClient(cfg.Azure.GraphURL, tok, cfg.HTTPTimeout(), logging.WithComponent(log, "graph"))
		},
		scrub:      sanitize.Scrub,
		reset:      wiper.Wipe,
		deviceName: sysinfo.DeviceName,
		sleep:      time.Sleep,
	}
}

// Run executes the move start to finish. A nil return means the reset was
// requested (or deliberately skipped); any error aborts the sequence at the
// point it occurred.
func (a *Agent) Run(ctx context.Context) error {
	log := a.log.With().Str("run_id", uuid.NewString()).Logger()

	name := a.cfg.Agent.DeviceName
	if name == "" {
		resolved, err := a.deviceName()
		if err != nil {
			return fmt.Errorf("resolving local device name: %w", err)
		}
		name = resolved
	}
	log.Info().
		Str("device_name", name).
		Str("os", sysinfo.OSDetails()).
		Bool("dry_run", a.opts.DryRun).
		Msg("starting tenant move")

	src, err := a.cfg.ProfileSource()
	if err != nil {
		return err
	}
	dest, err := a.stage(src, a.cfg.Agent.ProvisioningDir)
	if err != nil {
		return fmt.Errorf("staging provisioning profile: %w", err)
	}
	log.Info().Str("path", dest).Msg("provisioning profile staged")

	tok, err := a.token(ctx)
	if err != nil {
		return err
	}
	api := a.api(tok)

	device, err := a.removeManagedDevice(ctx, api, log, name)
	if err != nil {
		return err
	}

	if err := a.retireRegistration(ctx, api, log, device.SerialNumber); err != nil {
		return err
	}

	a.scrubAgentLog(log)

	return a.triggerReset(ctx, log)
}

// removeManagedDevice is phase A: the device-name filter must match exactly
// one record before anything is deleted. Zero or multiple matches abort the
// whole run.
func (a *Agent) removeManagedDevice(ctx context.Context, api DeviceAPI, log zerolog.Logger, name string) (model.ManagedDevice, error) {
	devices, err := api.FindManagedDeviceByName(ctx, name)
	if err != nil {
		return model.ManagedDevice{}, err
	}

	switch {
	case len(devices) == 0:
		log.Error().Str("device_name", name).Msg("managed device not found")
		return model.ManagedDevice{}, fmt.Errorf("%w: %s", ErrDeviceNotFound, name)
	case len(devices) > 1:
		log.Error().Str("device_name", name).Int("count", len(devices)).Msg("too many managed devices matched")
		return model.ManagedDevice{}, fmt.Errorf("%w: %s matched %d", ErrAmbiguousDevice, name, len(devices))
	}

	device := devices[0]
	log.Info().
		Str("device_name", device.DeviceName).
		Str("id", device.ID).
		Str("azure_ad_device_id", device.AzureADDeviceID).
		Str("serial_number", device.SerialNumber).
		Msg("managed device matched")

	if a.opts.DryRun {
		log.Info().Str("id", device.ID).Msg("dry run, managed device left in place")
		return device, nil
	}

	if err := api.DeleteManagedDevice(ctx, device.ID); err != nil {
		return model.ManagedDevice{}, err
	}
	log.Info().Str("id", device.ID).Msg("managed device deleted")

	a.settle(ctx, log, func(ctx context.Context) (bool, error) {
		remaining, err := api.FindManagedDeviceByName(ctx, name)
		return len(remaining) == 0, err
	})
	return device, nil
}

// retireRegistration is phase B: anything other than exactly one registration
// match is logged and skipped, never fatal. API transport failures still
// abort the run.
func (a *Agent) retireRegistration(ctx context.Context, api DeviceAPI, log zerolog.Logger, serial string) error {
	records, err := api.FindAutopilotDeviceBySerial(ctx, serial)
	if err != nil {
		return err
	}

	if len(records) != 1 {
		log.Warn().
			Str("serial_number", serial).
			Int("count", len(records)).
			Msg("device not found as registered in tenant, skipping registration cleanup")
		return nil
	}

	record := records[0]
	log.Info().
		Str("serial_number", record.SerialNumber).
		Str("model", record.Model).
		Str("id", record.ID).
		Str("managed_device_id", record.ManagedDeviceID).
		Msg("autopilot registration matched")

	if a.opts.DryRun {
		log.Info().Str("id", record.ID).Msg("dry run, registration left in place")
		return nil
	}

	if err := api.DeleteAutopilotDevice(ctx, record.ID); err != nil {
		return err
	}
	log.Info().Str("id", record.ID).Msg("autopilot registration deleted")

	a.settle(ctx, log, func(ctx context.Context) (bool, error) {
		remaining, err := api.FindAutopilotDeviceBySerial(ctx, serial)
		return len(remaining) == 0, err
	})

	if err := api.SyncAutopilotService(ctx); err != nil {
		return err
	}
	log.Info().Msg("registration service sync requested")
	return nil
}

// settle waits out eventual-consistency lag after a delete. With absence
// polling enabled the wait repeats until the filter comes back empty, up to
// the configured attempt bound; polling errors downgrade to the blind wait.
func (a *Agent) settle(ctx context.Context, log zerolog.Logger, gone func(context.Context) (bool, error)) {
	attempts := a.cfg.Agent.AbsencePollAttempts
	if attempts <= 0 {
		a.sleep(a.cfg.SettleInterval())
		return
	}

	for i := 1; i <= attempts; i++ {
		a.sleep(a.cfg.SettleInterval())
		absent, err := gone(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("absence poll failed, continuing after settle interval")
			return
		}
		if absent {
			log.Debug().Int("attempt", i).Msg("delete confirmed absent")
			return
		}
	}
	log.Warn().Int("attempts", attempts).Msg("delete still visible after absence polling")
}

func (a *Agent) scrubAgentLog(log zerolog.Logger) {
	if a.opts.DryRun {
		log.Info().Msg("dry run, agent log left unscrubbed")
		return
	}
	removed, err := a.scrub(a.cfg.Agent.AgentLogPath, a.cfg.Agent.SanitizeMarker)
	if err != nil {
		log.Warn().Err(err).Str("path", a.cfg.Agent.AgentLogPath).Msg("agent log scrub failed")
		return
	}
	log.Info().Int("removed_lines", removed).Str("path", a.cfg.Agent.AgentLogPath).Msg("agent log scrubbed")
}

func (a *Agent) triggerReset(ctx context.Context, log zerolog.Logger) error {
	if a.opts.DryRun || a.opts.SkipReset {
		log.Info().Msg("factory reset skipped")
		return nil
	}
	if err := a.reset(ctx); err != nil {
		return err
	}
	log.Info().Msg("tenant move complete, device is resetting")
	return nil
}
