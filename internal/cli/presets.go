package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/adforge/pkg/config"
	"github.com/matzehuels/adforge/pkg/export"
)

// presetsCommand creates the presets listing command.
func (c *CLI) presetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List named export presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, presets, err := config.Defaults(c.catalog)
			if err != nil {
				return err
			}
			rows := make([][]string, 0)
			for _, p := range presets.All() {
				rows = append(rows, []string{p.Name, string(p.Config.Quality), fmt.Sprint(p.Config.Compression), presetFlags(p.Config), p.Description})
			}
			fmt.Println(renderTable([]string{"Name", "Quality", "Compression", "Print", "Description"}, rows))
			return nil
		},
	}
}

func presetFlags(cfg export.Config) string {
	var flags []string
	if cfg.IncludeBleed {
		flags = append(flags, "bleed")
	}
	if cfg.IncludeCropMarks {
		flags = append(flags, "crop marks")
	}
	if cfg.ColorProfile != "" {
		flags = append(flags, cfg.ColorProfile)
	}
	if len(flags) == 0 {
		return "—"
	}
	return strings.Join(flags, ", ")
}
