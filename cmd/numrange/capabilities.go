package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/helixml/numrange"
	"github.com/helixml/numrange/domain/capability"
)

// manifest is the document printed by the capabilities command.
type manifest struct {
	Name         string                  `json:"name" yaml:"name"`
	Version      string                  `json:"version" yaml:"version"`
	Capabilities []capability.Descriptor `json:"capabilities" yaml:"capabilities"`
}

func capabilitiesCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "capabilities",
		Short: "Print the capability manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := numrange.New(numrange.WithMetrics(false))
			if err != nil {
				return fmt.Errorf("create numrange client: %w", err)
			}
			defer func() { _ = client.Close() }()

			m := manifest{
				Name:         "numrange",
				Version:      version,
				Capabilities: client.Capabilities.List(),
			}
			return writeManifest(cmd.OutOrStdout(), m, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or yaml")

	return cmd
}

func writeManifest(w io.Writer, m manifest, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q: use json or yaml", format)
	}
}
