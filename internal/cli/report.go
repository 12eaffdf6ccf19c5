package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"essaylens/internal/report"
)

func newReportCommand(a *app) *cobra.Command {
	var (
		style     string
		width     int
		raw       bool
		outputDir string
	)
	cmd := &cobra.Command{
		Use:   "report [run-id|latest]",
		Short: "Render a stored run in the terminal",
		Long: `Render a stored run as Markdown in the terminal. The run is named by its
id, a unique id prefix, or "latest" (the default).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			dir := a.cfg.Output.Dir
			if outputDir != "" {
				dir = outputDir
			}
			ref := "latest"
			if len(args) == 1 {
				ref = args[0]
			}
			result, _, err := report.ResolveRun(dir, ref)
			if err != nil {
				return err
			}
			md := report.Markdown(result)
			if raw {
				fmt.Fprint(a.stdout, md)
				return nil
			}
			if style == "" {
				style = "notty"
				if !a.cfg.UI.NoColor && isTerminal(a.stdout) {
					style = "dark"
				}
			}
			rendered, err := report.RenderTerminal(md, style, width)
			if err != nil {
				return err
			}
			fmt.Fprint(a.stdout, rendered)
			return nil
		},
	}
	cmd.Flags().StringVar(&style, "style", "", "Glamour style: dark|light|notty|ascii (default: dark on a TTY)")
	cmd.Flags().IntVar(&width, "width", 0, "Wrap width (default 80)")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the Markdown source")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Results directory (default from config)")
	return cmd
}
