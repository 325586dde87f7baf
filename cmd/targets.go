package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zopnote/dartcc/internal/ui"
	"github.com/zopnote/dartcc/targets"
)

var targetsCmd = &cobra.Command{
	Use:           "targets",
	Short:         "List the available build targets",
	RunE:          runTargets,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func runTargets(cmd *cobra.Command, args []string) error {
	styles := ui.DefaultStyles()

	reg := targets.Builtin()
	if _, err := reg.LoadFile(configPath()); err != nil {
		fmt.Fprintln(os.Stderr, styles.Error.Render(err.Error()))
		return err
	}

	for _, name := range reg.Names() {
		steps, err := reg.Resolve(name)
		if err != nil {
			return err
		}
		fmt.Printf("%s %s\n",
			styles.Accent.Render(name),
			styles.Dim.Render(fmt.Sprintf("(%d steps)", len(steps))))
	}
	return nil
}
