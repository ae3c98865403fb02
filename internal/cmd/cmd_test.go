package cmd

import (
	"bytes"
	"image"
	"testing"

	"deedles.dev/waysmoke/wstk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputTable(t *testing.T) {
	outputs := []*wstk.Output{
		{
			Global: 4,
			Info: wstk.OutputInfo{
				Name:        "DP-1",
				Description: "Main display",
				Make:        "Dell",
				Model:       "U2720Q",
				Position:    image.Pt(0, 0),
				Size:        image.Pt(3840, 2160),
				Scale:       2,
			},
		},
		{Global: 9, Info: wstk.OutputInfo{Size: image.Pt(1920, 1080), Scale: 1}},
	}

	out := outputTable(outputs)
	for _, want := range []string{"NAME", "DP-1", "Main display", "Dell U2720Q", "3840x2160", "output-9", "1920x1080"} {
		assert.Contains(t, out, want)
	}
}

func TestVersion(t *testing.T) {
	Version, Commit, Date = "1.2.3", "abc123", ""

	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)

	assert.Equal(t, "waysmoke 1.2.3\ncommit: abc123\n", buf.String())
}

func TestSubcommands(t *testing.T) {
	for _, name := range []string{"dock", "wallpaper", "outputs", "version"} {
		t.Run(name, func(t *testing.T) {
			cmd, _, err := rootCmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, cmd.Name())
		})
	}

	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("log-level"))
}
