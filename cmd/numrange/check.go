package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/helixml/numrange"
	"github.com/helixml/numrange/application/service"
	"github.com/helixml/numrange/internal/log"
)

func checkCmd() *cobra.Command {
	var (
		envFile string
		format  string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Generate the sample ranges and report the results",
		Long: `Generate the sample ranges (3 to 8, 7 to 7, -3 to 3) through the
configured limits and report each result. Exits non-zero if any sample fails.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(envFile)
			if err != nil {
				return err
			}
			logger := log.NewLogger(cfg).Slog()

			client, err := numrange.New(clientOptions(cfg, logger)...)
			if err != nil {
				return fmt.Errorf("create numrange client: %w", err)
			}
			defer func() { _ = client.Close() }()

			outcomes := service.RunSelfCheck(cmd.Context(), client.Ranges, logger)

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(outcomes); err != nil {
					return fmt.Errorf("encode outcomes: %w", err)
				}
			case "text":
				for _, o := range outcomes {
					status := "ok"
					if !o.OK {
						status = "FAIL"
					}
					_, _ = fmt.Fprintf(out, "%-4s %-16s %s\n", status, o.Sample.Label, o.Output)
				}
			default:
				return fmt.Errorf("unknown format %q: use text or json", format)
			}

			for _, o := range outcomes {
				if !o.OK {
					return fmt.Errorf("self check failed: %s", o.Sample.Label)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")

	return cmd
}
