package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"staylink-admin/internal/envutil"
	"staylink-admin/internal/pkg/chromedevtools"
)

func newDoctorCmd() *cobra.Command {
	var host, port string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check DevTools is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			url, effectiveHost := chromedevtools.VersionURLResolved(context.Background(), host, port)
			fmt.Println("Checking:", url)

			_, err := chromedevtools.CheckReachable(context.Background(), url, 3*time.Second)
			if err != nil {
				return fmt.Errorf("Chrome DevTools not reachable on %s (is Chrome running with --remote-debugging-port=%s?): %w", effectiveHost, port, err)
			}
			fmt.Println("OK: Chrome DevTools reachable.")
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", envutil.String(os.Getenv, "CHROME_DEBUG_HOST", ""), "Chrome DevTools host (default localhost, host.docker.internal in Docker)")
	cmd.Flags().StringVar(&port, "port", envutil.String(os.Getenv, "CHROME_DEBUG_PORT", "9222"), "Chrome DevTools remote debugging port")
	return cmd
}
