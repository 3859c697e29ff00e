package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"campus-sports-cli/api"

	"github.com/spf13/cobra"
)

func sportsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sports",
		Short: "List bookable sports",
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputJSON {
				return writeJSON(api.SportChoices)
			}
			if outputCompact {
				fmt.Println(choiceValues(api.SportChoices))
				return nil
			}

			writer := tabwriter.NewWriter(os.Stdout, 2, 2, 2, ' ', 0)
			fmt.Fprintln(writer, "SPORT\tNAME")
			for _, choice := range api.SportChoices {
				fmt.Fprintf(writer, "%s\t%s\n", choice.Value, choice.Label)
			}
			return writer.Flush()
		},
	}

	return cmd
}
