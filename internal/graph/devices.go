package graph

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"tenantmove/internal/model"
)

// FindManagedDeviceByName queries the managed-device collection with an exact
// deviceName filter. Cardinality decisions belong to the caller.
func (c *Client) FindManagedDeviceByName(ctx context.Context, name string) ([]model.ManagedDevice, error) {
	q := url.Values{}
	q.Set("$filter", fmt.Sprintf("deviceName eq '%s'", name))

	var list model.ManagedDeviceList
	if err := c.do(ctx, http.MethodGet, model.ManagedDevicesBetaPath+"?"+q.Encode(), nil, &list); err != nil {
		return nil, err
	}
	return list.Value, nil
}

func (c *Client) DeleteManagedDevice(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, model.ManagedDevicesV1Path+"/"+url.PathEscape(id), nil, nil)
}

// FindAutopilotDeviceBySerial queries the Autopilot registration collection
// with a contains(serialNumber, ...) filter.
func (c *Client) FindAutopilotDeviceBySerial(ctx context.Context, serial string) ([]model.AutopilotDeviceIdentity, error) {
	q := url.Values{}
	q.Set("$filter", fmt.Sprintf("contains(serialNumber,'%s')", serial))

	var list model.AutopilotDeviceIdentityList
	if err := c.do(ctx, http.MethodGet, model.AutopilotDevicesPath+"?"+q.Encode(), nil, &list); err != nil {
		return nil, err
	}
	return list.Value, nil
}

func (c *Client) DeleteAutopilotDevice(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, model.AutopilotDevicesPath+"/"+url.PathEscape(id), nil, nil)
}

// SyncAutopilotService asks the registration service to reconcile its state
// against registered hardware.
func (c *Client) SyncAutopilotService(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, model.AutopilotSyncPath, nil, nil)
}
