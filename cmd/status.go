package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/msx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Status checks the server health endpoint.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	client := r.client(cmd.String("endpoint"))

	resp, err := client.Get(ctx, "/healthz")
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, err)
	}
	if !resp.OK() {
		return fmt.Errorf("%w: %w: %d", shared.ErrServiceUnavailable, shared.ErrUnexpectedStatus, resp.StatusCode)
	}

	return r.writePlain("✓ server is up (HTTP %d)\n", resp.StatusCode)
}
