package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sagarc03/drivedav"
	"github.com/sagarc03/drivedav/config"
	"github.com/sagarc03/drivedav/storage"
)

// openGateway opens the configured backend and wraps it in a gateway.
// The returned cleanup releases the backend.
func openGateway(ctx context.Context, cfg *config.Config) (*drivedav.Gateway, func(), error) {
	backend, cleanup, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}

	gateway, err := drivedav.NewGateway(backend, drivedav.GatewayConfig{
		CleanupTimeout: time.Duration(cfg.Service.CleanupTimeout) * time.Second,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("create gateway: %w", err)
	}

	return gateway, cleanup, nil
}
