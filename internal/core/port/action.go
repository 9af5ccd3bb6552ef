package port

import (
	"context"
	"tehbot/internal/core/domain"
)

type ActionClient interface {
	// SwitchToTechMode asks the club API to put the workstation with the given UUID into technical/free
	// mode. Failures are reported through the result, never as an error or panic.
	SwitchToTechMode(ctx context.Context, uuid string) domain.ActionResult
}

type WorkstationResolver interface {
	// Resolve returns the UUID for a workstation number or an error wrapping domain.ErrWorkstationNotFound.
	Resolve(n int) (string, error)
}
