package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/adforge/pkg/channel"
	"github.com/matzehuels/adforge/pkg/config"
)

// channelsCommand creates the channels listing command.
func (c *CLI) channelsCommand() *cobra.Command {
	var (
		category string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "channels",
		Short: "List the channels layouts can be composed for",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, _, err := config.Defaults(c.catalog)
			if err != nil {
				return err
			}

			var specs []channel.Spec
			for _, s := range reg.All() {
				if category == "" || string(s.Category) == category {
					specs = append(specs, s)
				}
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(specs)
			}

			rows := make([][]string, len(specs))
			for i, s := range specs {
				rows[i] = []string{
					s.ID,
					s.Name,
					string(s.Category),
					fmt.Sprintf("%d×%d", s.Width, s.Height),
					fmt.Sprint(s.DPI),
					string(s.ColorSpace),
					string(s.Format),
				}
			}
			fmt.Println(renderTable([]string{"ID", "Name", "Category", "Size", "DPI", "Color", "Format"}, rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "only list channels in this category (social, print, digital, retail)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print channel specs as JSON")
	_ = cmd.RegisterFlagCompletionFunc("category", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{string(channel.Social), string(channel.Print), string(channel.Digital), string(channel.Retail)}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}
