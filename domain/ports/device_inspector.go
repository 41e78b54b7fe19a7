package ports

import (
	"context"

	"github.com/carlosrabelo/swhealth/domain/entities"
)

// DeviceInspector runs the full check sequence against one switch.
// The only error it returns is *entities.ConnectFailure.
type DeviceInspector interface {
	Inspect(ctx context.Context, spec entities.DeviceSpec) (entities.CheckResult, error)
}
