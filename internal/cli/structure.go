package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"essaylens/internal/scoring"
)

func newStructureCommand(a *app) *cobra.Command {
	var pdf, asJSON bool
	cmd := &cobra.Command{
		Use:   "structure [essay|-]",
		Short: "Split an essay into sections with the scoring service",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			if err := a.initLogger(false); err != nil {
				return err
			}
			defer a.syncLogger()

			usePDF := pdf || (len(args) == 1 && strings.HasSuffix(strings.ToLower(args[0]), ".pdf"))
			service := newService(a.cfg, a.logger)
			var sections []scoring.Section
			if usePDF {
				if len(args) == 0 || args[0] == "-" {
					return usageErrorf("a PDF essay must be given as a file path")
				}
				upload, err := scoring.LoadUpload(args[0])
				if err != nil {
					return err
				}
				sections, err = service.StructurePDF(cmd.Context(), upload)
				if err != nil {
					return err
				}
			} else {
				text, _, err := readTextArg(args)
				if err != nil {
					return err
				}
				if strings.TrimSpace(text) == "" {
					return usageErrorf("essay is empty")
				}
				sections, err = service.Structure(cmd.Context(), text)
				if err != nil {
					return err
				}
			}

			if asJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(sections)
			}
			for i, section := range sections {
				if i > 0 {
					fmt.Fprintln(a.stdout)
				}
				fmt.Fprintf(a.stdout, "## %s\n%s\n", section.Name, strings.TrimSpace(section.Text))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&pdf, "pdf", false, "Upload the essay as a PDF")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print sections as JSON")
	return cmd
}
