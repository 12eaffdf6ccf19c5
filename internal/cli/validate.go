package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"essaylens/internal/config"
)

func newValidateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate .essaylens/config.yml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := resolveConfigPath(a.configPath)
			if err != nil {
				return fmt.Errorf("validation failed:\n%w", err)
			}
			if _, err := config.Load(path); err != nil {
				return fmt.Errorf("validation failed:\n%w", err)
			}
			fmt.Fprintf(a.stdout, "Config OK: %s\n", path)
			return nil
		},
	}
}
