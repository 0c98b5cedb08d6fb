package engine

import (
	"context"

	"github.com/wirelark/fortidash/pkg/fortigate"
)

// ApplianceClient is the upstream surface the engine consumes. The fortigate
// client satisfies it; tests substitute fakes.
type ApplianceClient interface {
	Configured() bool
	SystemStatus(ctx context.Context) (*fortigate.SystemStatus, error)
	SwitchPortStats(ctx context.Context) ([]fortigate.ManagedSwitch, error)
	SwitchIdentities(ctx context.Context) ([]fortigate.SwitchIdentity, error)
	ManagedAPs(ctx context.Context) ([]fortigate.ManagedAP, error)
	ArpTable(ctx context.Context) ([]fortigate.ArpEntry, error)
	DetectedDevices(ctx context.Context) ([]fortigate.DetectedDevice, error)
	UserDevices(ctx context.Context) ([]fortigate.UserDevice, error)
}
