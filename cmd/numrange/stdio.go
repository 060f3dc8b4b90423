package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/helixml/numrange"
	"github.com/helixml/numrange/internal/log"
	"github.com/helixml/numrange/internal/mcp"
)

func stdioCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "stdio",
		Short: "Start MCP server on stdio",
		Long: `Start the MCP (Model Context Protocol) server on stdio.

This lets AI assistants call get_number_range directly. Logs are written to
stderr so stdout carries only protocol messages. Configuration is loaded from
environment variables and .env file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStdio(envFile)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")

	return cmd
}

func runStdio(envFile string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	// Logger writes to stderr; stdout belongs to MCP
	logger := log.Configure(cfg)
	slogger := logger.Slog()

	slogger.Info("starting MCP server",
		slog.String("version", version),
		slog.Int("max_range_size", cfg.MaxRangeSize()),
	)

	client, err := numrange.New(clientOptions(cfg, slogger)...)
	if err != nil {
		return fmt.Errorf("create numrange client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			slogger.Error("failed to close numrange client", slog.Any("error", err))
		}
	}()

	mcpServer := mcp.NewServer(client.Ranges, client.Capabilities, version, slogger)

	return mcpServer.ServeStdio()
}
