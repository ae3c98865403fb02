package cmd

import (
	"fmt"
	"image"

	"deedles.dev/waysmoke/internal/config"
	"deedles.dev/waysmoke/internal/logger"
	"deedles.dev/waysmoke/shell/style"
	"deedles.dev/waysmoke/shell/wallpaper"
	"deedles.dev/waysmoke/wstk"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var wallpaperCmd = &cobra.Command{
	Use:   "wallpaper [image]",
	Short: "Draw a wallpaper on every output",
	Long: `Draw an image, or a solid color if no image is configured, behind
all other windows on every output. PNG, JPEG and WebP images are
supported.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWallpaper,
}

func init() {
	wallpaperCmd.Flags().String("color", "", "Named color to draw behind the image")

	viper.BindPFlag("wallpaper.color", wallpaperCmd.Flags().Lookup("color"))

	rootCmd.AddCommand(wallpaperCmd)
}

func runWallpaper(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	path := cfg.Wallpaper.Path
	if len(args) > 0 {
		path = args[0]
	}

	var img image.Image
	if path != "" {
		var err error
		img, err = wallpaper.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load wallpaper: %w", err)
		}
	}

	if _, ok := style.Color(cfg.Wallpaper.Color); !ok && cfg.Wallpaper.Color != "" {
		logger.Warn("unknown wallpaper color, using default", "color", cfg.Wallpaper.Color)
	}
	c := wallpaper.ParseColor(cfg.Wallpaper.Color)

	ctx, cancel := signalContext()
	defer cancel()

	env, err := connect()
	if err != nil {
		return err
	}
	defer env.Close()

	factory := wstk.Spawn(env, func(out *wstk.Output) (wstk.Surface[wallpaper.Msg], error) {
		logger.Debug("creating wallpaper", "output", out, "image", path)
		return wallpaper.New(img, c), nil
	})
	if err := supervise(ctx, env, factory); err != nil {
		return fmt.Errorf("wallpaper: %w", err)
	}
	return nil
}
