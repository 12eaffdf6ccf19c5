package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"essaylens/internal/rubric"
)

func newRubricCommand(a *app) *cobra.Command {
	var points, asJSON bool
	cmd := &cobra.Command{
		Use:   "rubric [file|-]",
		Short: "Parse a rubric and print its criteria",
		Long: `Parse rubric text locally. Lines become criteria; A-F headings group the
criteria that follow. With --points, "Name (N points)" rows are extracted
from text copied out of a scanned rubric instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, _, err := readTextArg(args)
			if err != nil {
				return err
			}
			parsed := rubric.Parse(text)
			if points {
				parsed = rubric.ParsePoints(text)
			}
			if asJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(parsed)
			}
			printRubric(a, parsed)
			return nil
		},
	}
	cmd.Flags().BoolVar(&points, "points", false, "Extract \"Name (N points)\" criteria")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the parsed rubric as JSON")
	return cmd
}

func printRubric(a *app, parsed rubric.Parsed) {
	criteria := parsed.Criteria()
	if len(criteria) == 0 {
		fmt.Fprintln(a.stdout, "No criteria found")
		return
	}
	for _, criterion := range parsed.Flat {
		if criterion != "" {
			fmt.Fprintf(a.stdout, "- %s\n", criterion)
		}
	}
	for _, grade := range parsed.GradeKeys() {
		fmt.Fprintf(a.stdout, "%s:\n", grade)
		for _, criterion := range parsed.ByGrade[grade] {
			if criterion != "" {
				fmt.Fprintf(a.stdout, "  - %s\n", criterion)
			}
		}
	}
	fmt.Fprintf(a.stdout, "%d criteria\n", len(criteria))
}
