package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

const healthPollInterval = 250 * time.Millisecond

func newHealthCmd() *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Long: `Report the server status along with its live room and client counts.

With --wait the check is retried until the server answers or the wait runs out.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := pollHealth(cmd.Context(), wait)
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().DurationVar(&wait, "wait", 0, "Keep retrying for up to this long")
	return cmd
}

// pollHealth returns the first successful health reply, or the last error once
// wait has elapsed
func pollHealth(ctx context.Context, wait time.Duration) (HealthResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	deadline := time.Now().Add(wait)

	for {
		var result HealthResult
		err := client.Get("/api/v1/health", &result)
		if err == nil {
			return result, nil
		}
		if time.Now().Add(healthPollInterval).After(deadline) {
			return HealthResult{}, err
		}

		select {
		case <-ctx.Done():
			return HealthResult{}, err
		case <-time.After(healthPollInterval):
		}
	}
}
