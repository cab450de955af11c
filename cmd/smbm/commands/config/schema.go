package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/marmos91/smbmanager/pkg/config"
)

const schemaDraft = "https://json-schema.org/draft/2020-12/schema"

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the configuration file",
	Long: `Print the JSON schema of config.yaml, suitable for a YAML language
server. Property names follow the yaml tags of the file.`,
	Example: `  smbm config schema > config.schema.json
  smbm config schema -o /etc/smbm/config.schema.json`,
	Args: cobra.NoArgs,
	RunE: runSchema,
}

func init() {
	schemaCmd.Flags().StringP("output", "o", "", "write to this file instead of stdout")
}

// Schema reflects config.Config into an inlined JSON schema.
func Schema() *jsonschema.Schema {
	r := jsonschema.Reflector{
		FieldNameTag:   "yaml",
		DoNotReference: true,
	}
	s := r.Reflect(&config.Config{})
	s.Version = schemaDraft
	s.Title = "smbm configuration"
	return s
}

func runSchema(cmd *cobra.Command, _ []string) error {
	data, err := json.MarshalIndent(Schema(), "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	dest, _ := cmd.Flags().GetString("output")
	if dest == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("write schema: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "schema written to %s\n", dest)
	return nil
}
