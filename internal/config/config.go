package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"

	"tenantmove/internal/model"
)

// Azure and Agent are embedded so envconfig keeps the outer TENANTMOVE
// prefix for their fields (e.g. TENANTMOVE_TENANT_ID, not
// TENANTMOVE_AZURE_TENANT_ID).
type Azure struct {
	TenantID     string `envconfig:"TENANT_ID" required:"true"`
	ClientID     string `envconfig:"CLIENT_ID" required:"true"`
	ClientSecret string `envconfig:"CLIENT_SECRET" required:"true"`
	Resource     string `envconfig:"GRAPH_RESOURCE" default:"https://graph.microsoft.com"`
	LoginURL     string `envconfig:"LOGIN_URL" default:"https://login.microsoftonline.com"`
	GraphURL     string `envconfig:"GRAPH_URL" default:"https://graph.microsoft.com"`
}

type Agent struct {
	ProfileName         string `envconfig:"PROFILE_NAME" default:"AutopilotConfigurationFile.json"`
	ProvisioningDir     string `envconfig:"PROVISIONING_DIR" default:"C:\\Windows\\Provisioning\\Autopilot"`
	RunLogPath          string `envconfig:"RUN_LOG_PATH" default:"C:\\Users\\Public\\Documents\\IntuneDetectionLogs\\AutopilotTenantMove.log"`
	AgentLogPath        string `envconfig:"AGENT_LOG_PATH" default:"C:\\ProgramData\\Microsoft\\IntuneManagementExtension\\Logs\\IntuneManagementExtension.log"`
	SanitizeMarker      string `envconfig:"SANITIZE_MARKER"`
	SettleSeconds       int    `envconfig:"SETTLE_SECONDS" default:"3"`
	AbsencePollAttempts int    `envconfig:"ABSENCE_POLL_ATTEMPTS" default:"0"`
	HTTPTimeoutSeconds  int    `envconfig:"HTTP_TIMEOUT_SECONDS" default:"30"`
	DeviceName          string `envconfig:"DEVICE_NAME"`
}

type Config struct {
	Azure
	Agent
}

func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("TENANTMOVE", &cfg); err != nil {
		return nil, err
	}
	if cfg.Azure.GraphURL == "" {
		cfg.Azure.GraphURL = model.GraphBaseURL
	}
	// The marker scrubbed from the management-agent log is the client secret
	// unless overridden; unrelated agent processes echo it verbatim.
	if cfg.Agent.SanitizeMarker == "" {
		cfg.Agent.SanitizeMarker = cfg.Azure.ClientSecret
	}
	return &cfg, nil
}

func (c *Config) SettleInterval() time.Duration {
	if c.Agent.SettleSeconds <= 0 {
		return 3 * time.Second
	}
	return time.Duration(c.Agent.SettleSeconds) * time.Second
}

func (c *Config) HTTPTimeout() time.Duration {
	if c.Agent.HTTPTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Agent.HTTPTimeoutSeconds) * time.Second
}

// ProfileSource resolves the staging source: the provisioning profile sits
// next to the agent binary.
func (c *Config) ProfileSource() (string, error) {
	if c.Agent.ProfileName == "" {
		return "", errors.New("empty provisioning profile name")
	}
	if filepath.IsAbs(c.Agent.ProfileName) {
		return c.Agent.ProfileName, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(exe), c.Agent.ProfileName), nil
}
