package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"staylink-admin/config"
	"staylink-admin/internal/amazon"
	"staylink-admin/internal/importer"
	"staylink-admin/internal/logs"
	"staylink-admin/internal/shopee"
)

func newOnceCmd() *cobra.Command {
	var (
		url     string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "once",
		Short: "Import one product URL on the host (fast loop)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(url) == "" {
				return errors.New("missing required flag: --url")
			}

			cfg, err := config.NewConfig(config.NewViper())
			if err != nil {
				return err
			}

			logger, err := logs.NewLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck
			sugar := logs.NewSugaredLogger(logger)

			imp := importer.NewImporter(importer.NewImporterParams{
				Cfg:    cfg,
				Amazon: amazon.NewClient(sugar),
				Shopee: shopee.NewScraper(cfg, sugar),
				Logger: sugar,
			})

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			res, err := imp.Import(ctx, url)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Amazon or Shopee product URL")
	cmd.Flags().DurationVar(&timeout, "timeout", 90*time.Second, "Overall import timeout")
	return cmd
}
