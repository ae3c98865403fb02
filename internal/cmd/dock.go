package cmd

import (
	"fmt"

	"deedles.dev/waysmoke/internal/apps"
	"deedles.dev/waysmoke/internal/config"
	"deedles.dev/waysmoke/internal/logger"
	"deedles.dev/waysmoke/internal/power"
	"deedles.dev/waysmoke/shell/dock"
	"deedles.dev/waysmoke/toplevel"
	"deedles.dev/waysmoke/wstk"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var dockCmd = &cobra.Command{
	Use:   "dock",
	Short: "Run the dock on every output",
	Long: `Run a dock at the bottom of every output. The dock shows pinned and
running applications and the battery level. It stays hidden behind a
thin bar until the pointer or a touch reaches it.`,
	RunE: runDock,
}

func init() {
	dockCmd.Flags().StringSlice("pin", nil, "App IDs to pin to the dock")
	dockCmd.Flags().Int("icon-size", 0, "Icon size in pixels")

	viper.BindPFlag("dock.pinned", dockCmd.Flags().Lookup("pin"))
	viper.BindPFlag("dock.icon_size", dockCmd.Flags().Lookup("icon-size"))

	rootCmd.AddCommand(dockCmd)
}

func runDock(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	ctx, cancel := signalContext()
	defer cancel()

	env, err := connect()
	if err != nil {
		return err
	}
	defer env.Close()

	battery := power.NewService(afero.NewOsFs(), cfg.Dock.BatteryPath, 0)
	go battery.Run(ctx)

	svc := dock.Services{
		Power:    battery,
		Apps:     apps.NewFinder(cfg.Dock.IconSize),
		Activate: activator(env),
		Launch:   (*apps.App).Launch,
		Pinned:   cfg.Dock.Pinned,
		Icons:    cfg.Dock.Icons,
		IconSize: cfg.Dock.IconSize,
	}
	if env.Toplevels != nil {
		svc.Toplevels = env.Toplevels
	} else {
		logger.Warn("compositor does not support foreign toplevels, only pinned apps will be shown")
	}

	factory := wstk.Spawn(env, func(out *wstk.Output) (wstk.Surface[dock.Msg], error) {
		logger.Debug("creating dock", "output", out)
		return dock.New(&svc), nil
	})
	if err := supervise(ctx, env, factory); err != nil {
		return fmt.Errorf("dock: %w", err)
	}
	return nil
}

// activator returns a function that raises a window using the
// environment's seat.
func activator(env *wstk.Env) func(toplevel.Toplevel) {
	return func(top toplevel.Toplevel) {
		if top.Handle == nil || env.Seat == nil {
			return
		}
		top.Handle.Activate(env.Seat)
	}
}
