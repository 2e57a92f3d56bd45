package agent

import "errors"

var (
	// ErrDeviceNotFound indicates no managed device in the source tenant
	// carries the local machine name.
	ErrDeviceNotFound = errors.New("managed device not found in tenant")

	// ErrAmbiguousDevice indicates the device-name filter matched more than
	// one managed device; deleting on a guess is not acceptable.
	ErrAmbiguousDevice = errors.New("device name matched more than one managed device")
)
