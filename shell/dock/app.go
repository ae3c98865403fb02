package dock

import (
	"deedles.dev/waysmoke/internal/apps"
	"deedles.dev/waysmoke/internal/logger"
	"deedles.dev/waysmoke/shell/style"
	"deedles.dev/waysmoke/toplevel"
	"deedles.dev/waysmoke/ui"
)

const (
	unknownIcon = "application-x-executable"

	// maxToplevelRows is the number of windows that fit in the
	// popover.
	maxToplevelRows = 12
)

// AppDocklet shows an application and lets the user raise its windows
// or launch it.
type AppDocklet struct {
	app  *apps.App
	icon *ui.Image
}

func newAppDocklet(svc *Services, app *apps.App) *AppDocklet {
	return &AppDocklet{
		app:  app,
		icon: resolveIcon(svc, app.ID, app.Icon),
	}
}

// resolveIcon finds the icon of the app with the given ID, preferring
// configured overrides.
func resolveIcon(svc *Services, id, name string) *ui.Image {
	if p := svc.Icons[id]; p != "" {
		return ui.ImageFromPath(p)
	}
	if svc.Apps == nil {
		return nil
	}

	for _, n := range []string{name, unknownIcon} {
		if p := svc.Apps.Icon(n); p != "" {
			return ui.ImageFromPath(p)
		}
	}
	return nil
}

func (a *AppDocklet) ID() string {
	return a.app.ID
}

// windows returns the toplevels that belong to the app.
func (a *AppDocklet) windows(c *Context) []toplevel.Toplevel {
	var tops []toplevel.Toplevel
	for _, top := range c.Toplevels {
		if top.MatchesID(a.ID()) {
			tops = append(tops, top)
		}
	}
	return tops
}

func (a *AppDocklet) Width(c *Context) int {
	return c.iconSize() + AppPadding*2
}

func (a *AppDocklet) Widget(c *Context) ui.Element[DockletMsg] {
	background := style.Dark
	if len(a.windows(c)) > 0 {
		background = style.RunningDark
	}

	size := ui.Px(c.iconSize())
	button := ui.Button[DockletMsg]{
		Content: ui.ImageView[DockletMsg]{Image: a.icon, W: size, H: size},
		Padding: AppPadding,
		OnPress: func() DockletMsg { return DockletMsg{Kind: ActivateApp} },
		Hovered: style.Dock(style.Sel),
	}

	return ui.Container[DockletMsg]{
		Content: ui.Listener[DockletMsg]{
			Content: button,
			OnEnter: func() DockletMsg { return DockletMsg{Kind: Hover} },
		},
		AlignX: ui.Center,
		AlignY: ui.Center,
		Style:  style.Dock(background),
	}
}

func (a *AppDocklet) Popover(c *Context) ui.Element[DockletMsg] {
	windows := a.windows(c)
	if len(windows) > maxToplevelRows {
		windows = windows[:maxToplevelRows]
	}

	buttons := make([]ui.Element[DockletMsg], 0, len(windows))
	for i, top := range windows {
		title := top.Title
		if title == "" {
			title = a.app.Name
		}

		buttons = append(buttons, ui.Button[DockletMsg]{
			Content: ui.Text[DockletMsg]{Content: title, Size: 14, Color: style.Bright},
			Padding: 4,
			W:       ui.Fill,
			OnPress: func() DockletMsg { return DockletMsg{Kind: ActivateToplevel, Toplevel: i} },
			Style:   style.Toplevel,
			Hovered: style.ToplevelHovered,
			Pressed: style.ToplevelPressed,
		})
	}

	return ui.Column[DockletMsg]{
		Children: []ui.Element[DockletMsg]{
			ui.Text[DockletMsg]{
				Content: a.app.Name,
				Size:    16,
				Color:   style.Bright,
				W:       ui.Fill,
				AlignX:  ui.Center,
			},
			ui.Column[DockletMsg]{Children: buttons, Spacing: 2, W: ui.Fill},
		},
		Spacing: DockPadding,
		W:       ui.Px(ToplevelsWidth),
	}
}

func (a *AppDocklet) RetainedIcon() *ui.Image {
	return a.icon
}

func (a *AppDocklet) Update(c *Context, msg DockletMsg) {
	svc := c.Services
	windows := a.windows(c)

	switch msg.Kind {
	case ActivateApp:
		if len(windows) > 0 {
			if svc.Activate != nil {
				svc.Activate(windows[0])
			}
			return
		}

		if svc.Launch == nil {
			return
		}
		err := svc.Launch(a.app)
		if err != nil {
			logger.Error("launch application", "app", a.app, "err", err)
		}

	case ActivateToplevel:
		if msg.Toplevel < 0 || msg.Toplevel >= len(windows) || svc.Activate == nil {
			return
		}
		svc.Activate(windows[msg.Toplevel])
	}
}
