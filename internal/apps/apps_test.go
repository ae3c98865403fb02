package apps

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const firefoxEntry = `[Desktop Entry]
Version=1.0
Name=Firefox
Name[de]=Feuerfuchs
Comment=Browse the Web
Exec=firefox %u
Icon=firefox
Terminal=false
Type=Application

[Desktop Action new-window]
Name=New Window
Exec=firefox --new-window %u
`

func TestParse(t *testing.T) {
	app, err := Parse(strings.NewReader(firefoxEntry), "firefox")
	require.NoError(t, err)
	assert.Equal(t, &App{
		ID:   "firefox",
		Name: "Firefox",
		Icon: "firefox",
		Exec: "firefox %u",
	}, app)
}

func TestParseRejectsLinks(t *testing.T) {
	_, err := Parse(strings.NewReader("[Desktop Entry]\nType=Link\nURL=https://example.com\n"), "link")
	assert.Error(t, err)
}

func TestParseDefaultsName(t *testing.T) {
	app, err := Parse(strings.NewReader("[Desktop Entry]\nType=Application\nExec=foot\n"), "foot")
	require.NoError(t, err)
	assert.Equal(t, "foot", app.Name)
}

func testFinder(t *testing.T, files map[string]string) *Finder {
	t.Helper()

	fs := afero.NewMemMapFs()
	for name, data := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(data), 0644))
	}
	return &Finder{
		Fs:       fs,
		AppDirs:  []string{"/home/user/.local/share/applications", "/usr/share/applications"},
		DataDirs: []string{"/home/user/.local/share", "/usr/share"},
		IconSize: 48,
	}
}

func TestLookup(t *testing.T) {
	f := testFinder(t, map[string]string{
		"/usr/share/applications/firefox.desktop":                 firefoxEntry,
		"/home/user/.local/share/applications/firefox.desktop":    strings.Replace(firefoxEntry, "Name=Firefox", "Name=My Firefox", 1),
		"/usr/share/applications/Alacritty.desktop":               "[Desktop Entry]\nType=Application\nName=Alacritty\nExec=alacritty\n",
		"/usr/share/applications/org.gnome.Nautilus.desktop":      "[Desktop Entry]\nType=Application\nName=Files\nExec=nautilus --new-window %U\n",
		"/usr/share/applications/not-an-application.desktop.orig": "",
	})

	tests := []struct {
		id   string
		name string
		err  bool
	}{
		{id: "firefox", name: "My Firefox"},
		{id: "alacritty", name: "Alacritty"},
		{id: "org.gnome.Nautilus", name: "Files"},
		{id: "telegramdesktop", err: true},
		{id: "", err: true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			app, err := f.Lookup(tt.id)
			if tt.err {
				assert.ErrorIs(t, err, ErrNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, app.Name)
		})
	}
}

func TestIcon(t *testing.T) {
	f := testFinder(t, map[string]string{
		"/usr/share/icons/hicolor/256x256/apps/firefox.png":      "",
		"/usr/share/icons/hicolor/48x48/apps/firefox.png":        "",
		"/usr/share/icons/Adwaita/64x64/legacy/ac-adapter.png":   "",
		"/usr/share/pixmaps/xterm.png":                           "",
		"/opt/custom/icon.webp":                                  "",
		"/usr/share/icons/hicolor/scalable/apps/inkscape.svg":    "",
		"/home/user/.local/share/icons/hicolor/48x48/apps/a.jpg": "",
	})

	tests := []struct {
		name string
		path string
	}{
		{name: "firefox", path: "/usr/share/icons/hicolor/48x48/apps/firefox.png"},
		{name: "ac-adapter", path: "/usr/share/icons/Adwaita/64x64/legacy/ac-adapter.png"},
		{name: "xterm", path: "/usr/share/pixmaps/xterm.png"},
		{name: "/opt/custom/icon.webp", path: "/opt/custom/icon.webp"},
		{name: "/opt/custom/missing.png", path: ""},
		{name: "inkscape", path: ""},
		{name: "a", path: "/home/user/.local/share/icons/hicolor/48x48/apps/a.jpg"},
		{name: "", path: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.path, f.Icon(tt.name))
		})
	}
}

func TestCommand(t *testing.T) {
	tests := []struct {
		name     string
		exec     string
		terminal bool
		args     []string
		err      bool
	}{
		{name: "Field codes", exec: "firefox %u", args: []string{"firefox"}},
		{name: "Quoted", exec: `"/opt/My App/run" --flag "a \"b\""`, args: []string{"/opt/My App/run", "--flag", `a "b"`}},
		{name: "Percent", exec: "printf 100%%", args: []string{"printf", "100%"}},
		{name: "Spaces", exec: "  foot   -e  htop ", args: []string{"foot", "-e", "htop"}},
		{name: "Terminal", exec: "htop", terminal: true, args: []string{"xterm", "-e", "htop"}},
		{name: "Unterminated", exec: `sh "-c`, err: true},
		{name: "Empty", exec: "%U", err: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TERMINAL", "")

			app := App{ID: "test", Exec: tt.exec, Terminal: tt.terminal}
			args, err := app.Command()
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.args, args)
		})
	}
}
