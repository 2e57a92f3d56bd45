package model

import "strconv"

// ManagedDevice is the Intune representation of an enrolled machine.
type ManagedDevice struct {
	ID               string `json:"id"`
	DeviceName       string `json:"deviceName"`
	AzureADDeviceID  string `json:"azureADDeviceId"`
	SerialNumber     string `json:"serialNumber"`
	Model            string `json:"model,omitempty"`
	Manufacturer     string `json:"manufacturer,omitempty"`
	EnrolledDateTime string `json:"enrolledDateTime,omitempty"`
}

type ManagedDeviceList struct {
	Count int64           `json:"@odata.count"`
	Value []ManagedDevice `json:"value"`
}

// AutopilotDeviceIdentity is the record of a device pre-registered for
// zero-touch provisioning.
type AutopilotDeviceIdentity struct {
	ID              string `json:"id"`
	SerialNumber    string `json:"serialNumber"`
	Model           string `json:"model"`
	Manufacturer    string `json:"manufacturer,omitempty"`
	ManagedDeviceID string `json:"managedDeviceId"`
	GroupTag        string `json:"groupTag,omitempty"`
}

type AutopilotDeviceIdentityList struct {
	Count int64                     `json:"@odata.count"`
	Value []AutopilotDeviceIdentity `json:"value"`
}

// Token is the result of the client-credentials exchange. A single token is
// obtained per run and passed explicitly to every Graph call.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresOn   string `json:"expires_on"`
	Resource    string `json:"resource"`
}

func (t Token) Authorization() string {
	return "Bearer " + t.AccessToken
}

// ExpiresOnUnix parses the token endpoint's epoch-seconds expiry field.
// Returns 0 when the field is absent or malformed.
func (t Token) ExpiresOnUnix() int64 {
	n, err := strconv.ParseInt(t.ExpiresOn, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

const (
	GraphBaseURL = "https://graph.microsoft.com"
	LoginBaseURL = "https://login.microsoftonline.com"

	// The managed-device list lives on the beta surface; deletion is on v1.0.
	ManagedDevicesBetaPath = "/Beta/deviceManagement/managedDevices"
	ManagedDevicesV1Path   = "/v1.0/deviceManagement/managedDevices"
	AutopilotDevicesPath   = "/beta/deviceManagement/windowsAutopilotDeviceIdentities"
	AutopilotSyncPath      = "/beta/deviceManagement/windowsAutopilotSettings/sync"
)
