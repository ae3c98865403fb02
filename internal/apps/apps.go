// Package apps finds installed applications through their desktop
// entries.
package apps

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"deedles.dev/waysmoke/internal/logger"
	"github.com/adrg/xdg"
	"github.com/spf13/afero"
)

// ErrNotFound is returned when no desktop entry exists for an app ID.
var ErrNotFound = errors.New("application not found")

// App is an application described by a desktop entry.
type App struct {
	ID       string
	Name     string
	Icon     string
	Exec     string
	Terminal bool
}

func (app App) String() string {
	return app.ID
}

// Parse reads a desktop entry. Only the [Desktop Entry] group is
// interpreted and localized keys are ignored.
func Parse(r io.Reader, id string) (*App, error) {
	app := App{ID: id}
	var inEntry bool
	var typ string

	s := bufio.NewScanner(r)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") {
			inEntry = line == "[Desktop Entry]"
			continue
		}
		if !inEntry {
			continue
		}

		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key, val = strings.TrimSpace(key), unescape(strings.TrimSpace(val))

		switch key {
		case "Type":
			typ = val
		case "Name":
			app.Name = val
		case "Icon":
			app.Icon = val
		case "Exec":
			app.Exec = val
		case "Terminal":
			app.Terminal = val == "true"
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("read desktop entry: %w", err)
	}

	if typ != "Application" {
		return nil, fmt.Errorf("desktop entry %v has type %q", id, typ)
	}
	if app.Name == "" {
		app.Name = id
	}
	return &app, nil
}

func unescape(v string) string {
	if !strings.Contains(v, `\`) {
		return v
	}
	return strings.NewReplacer(`\s`, " ", `\n`, "\n", `\t`, "\t", `\r`, "\r", `\\`, `\`).Replace(v)
}

// Finder looks up desktop entries and icons in a set of directories.
type Finder struct {
	Fs afero.Fs

	// AppDirs are searched in order for desktop entries.
	AppDirs []string

	// DataDirs are searched in order for icons.
	DataDirs []string

	// IconSize is the preferred size of icons.
	IconSize int
}

// NewFinder returns a Finder for the XDG directories of the current
// user.
func NewFinder(iconSize int) *Finder {
	return &Finder{
		Fs:       afero.NewOsFs(),
		AppDirs:  xdg.ApplicationDirs,
		DataDirs: append([]string{xdg.DataHome}, xdg.DataDirs...),
		IconSize: iconSize,
	}
}

// Lookup finds the application with the given ID. IDs are matched
// against desktop entry file names without the extension, falling
// back to a case insensitive match.
func (f *Finder) Lookup(id string) (*App, error) {
	if id == "" {
		return nil, ErrNotFound
	}

	for _, dir := range f.AppDirs {
		file, err := f.Fs.Open(filepath.Join(dir, id+".desktop"))
		if err != nil {
			continue
		}
		defer file.Close()

		return Parse(file, id)
	}

	for _, dir := range f.AppDirs {
		entries, err := afero.ReadDir(f.Fs, dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			name, ok := strings.CutSuffix(entry.Name(), ".desktop")
			if !ok || !strings.EqualFold(name, id) {
				continue
			}

			file, err := f.Fs.Open(filepath.Join(dir, entry.Name()))
			if err != nil {
				return nil, err
			}
			defer file.Close()

			return Parse(file, name)
		}
	}

	return nil, fmt.Errorf("%v: %w", id, ErrNotFound)
}

var iconExts = []string{".png", ".jpg", ".webp"}

// Icon returns the path of a raster image for the named icon, or the
// empty string if none was found. Absolute paths are returned as is if
// they exist. Only the hicolor and Adwaita themes and the pixmaps
// directories are searched.
func (f *Finder) Icon(name string) string {
	if name == "" {
		return ""
	}
	if filepath.IsAbs(name) {
		if _, err := f.Fs.Stat(name); err == nil {
			return name
		}
		return ""
	}

	sizes := []int{f.IconSize, 64, 48, 128, 256, 32}
	for _, theme := range []string{"hicolor", "Adwaita"} {
		for _, size := range sizes {
			if size <= 0 {
				continue
			}
			for _, category := range []string{"apps", "devices", "status", "legacy"} {
				dir := filepath.Join("icons", theme, fmt.Sprintf("%vx%v", size, size), category)
				if p := f.find(dir, name); p != "" {
					return p
				}
			}
		}
	}
	return f.find("pixmaps", name)
}

func (f *Finder) find(dir, name string) string {
	for _, data := range f.DataDirs {
		for _, ext := range iconExts {
			p := filepath.Join(data, dir, name+ext)
			if _, err := f.Fs.Stat(p); err == nil {
				return p
			}
		}
	}
	return ""
}

// Command returns the arguments that launch app, with field codes
// removed.
func (app *App) Command() ([]string, error) {
	args, err := splitExec(app.Exec)
	if err != nil {
		return nil, fmt.Errorf("parse Exec of %v: %w", app.ID, err)
	}

	expanded := args[:0]
	for _, arg := range args {
		switch arg {
		case "%f", "%F", "%u", "%U", "%i", "%c", "%k", "%d", "%D", "%n", "%N", "%v", "%m":
			continue
		}
		expanded = append(expanded, strings.ReplaceAll(arg, "%%", "%"))
	}
	if len(expanded) == 0 {
		return nil, fmt.Errorf("%v has no command", app.ID)
	}

	if app.Terminal {
		term := os.Getenv("TERMINAL")
		if term == "" {
			term = "xterm"
		}
		expanded = append([]string{term, "-e"}, expanded...)
	}
	return expanded, nil
}

// splitExec splits an Exec value into arguments using the double-quote
// and backslash quoting of freedesktop desktop entries.
func splitExec(v string) ([]string, error) {
	var args []string
	var cur strings.Builder
	var quoted, escaped, inArg bool

	for _, r := range v {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case quoted && r == '\\':
			escaped = true
		case r == '"':
			quoted = !quoted
			inArg = true
		case !quoted && (r == ' ' || r == '\t'):
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(r)
			inArg = true
		}
	}
	if quoted || escaped {
		return nil, errors.New("unterminated quote")
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args, nil
}

// Launch starts app in its own session. It does not wait for it to
// exit.
func (app *App) Launch() error {
	args, err := app.Command()
	if err != nil {
		return err
	}

	cmd := exec.Command(args[0], args[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	err = cmd.Start()
	if err != nil {
		return fmt.Errorf("launch %v: %w", app.ID, err)
	}
	logger.Info("launched application", "app", app.ID, "pid", cmd.Process.Pid)

	go func() {
		err := cmd.Wait()
		if err != nil {
			logger.Debug("application exited", "app", app.ID, "err", err)
		}
	}()
	return nil
}
