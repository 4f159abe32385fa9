package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ptxhome/ptxswitchd/pkg/client"
)

type clientContextKey struct{}

type loggerContextKey struct{}

// WithClient stores the API client used by every command.
func WithClient(ctx context.Context, c client.API) context.Context {
	return context.WithValue(ctx, clientContextKey{}, c)
}

// clientFromCmd returns the API client stored on the command context.
func clientFromCmd(cmd *cobra.Command) (client.API, error) {
	if ctx := cmd.Context(); ctx != nil {
		if c, ok := ctx.Value(clientContextKey{}).(client.API); ok && c != nil {
			return c, nil
		}
	}
	return nil, fmt.Errorf("no API client configured")
}
