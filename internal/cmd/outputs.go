package cmd

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"deedles.dev/waysmoke/wstk"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var (
	listGlobals bool

	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

var outputsCmd = &cobra.Command{
	Use:   "outputs",
	Short: "List outputs",
	Long:  `List the outputs that the compositor advertises along with their current mode and scale.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := connect()
		if err != nil {
			return err
		}
		defer env.Close()

		w := cmd.OutOrStdout()
		fmt.Fprintln(w, outputTable(env.Outputs()))

		if listGlobals {
			fmt.Fprintln(w)
			fmt.Fprintln(w, globalTable(env))
		}
		return nil
	},
}

func init() {
	outputsCmd.Flags().BoolVarP(&listGlobals, "globals", "g", false, "Also list every global in the registry")

	rootCmd.AddCommand(outputsCmd)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func outputTable(outputs []*wstk.Output) string {
	t := newTable("NAME", "DESCRIPTION", "MODEL", "POSITION", "SIZE", "SCALE")
	for _, out := range outputs {
		info := out.Info
		t.Row(
			out.String(),
			info.Description,
			fmt.Sprintf("%v %v", info.Make, info.Model),
			fmt.Sprintf("%v,%v", info.Position.X, info.Position.Y),
			fmt.Sprintf("%vx%v", info.Size.X, info.Size.Y),
			strconv.Itoa(info.Scale),
		)
	}
	return t.String()
}

func globalTable(env *wstk.Env) string {
	globals := env.Registry.Globals()
	names := slices.Sorted(maps.Keys(globals))

	t := newTable("NAME", "INTERFACE", "VERSION")
	for _, name := range names {
		g := globals[name]
		t.Row(strconv.FormatUint(uint64(name), 10), g.Interface, strconv.FormatUint(uint64(g.Version), 10))
	}
	return t.String()
}
