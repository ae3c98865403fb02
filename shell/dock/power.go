package dock

import (
	"strings"

	"deedles.dev/waysmoke/internal/power"
	"deedles.dev/waysmoke/shell/style"
	"deedles.dev/waysmoke/ui"
)

// PowerDocklet shows the battery level.
type PowerDocklet struct {
	svc   *Services
	state power.Snapshot
	gen   uint64
	icon  *ui.Image
}

func newPowerDocklet(svc *Services) *PowerDocklet {
	p := PowerDocklet{svc: svc}
	p.refresh()
	return &p
}

func (p *PowerDocklet) refresh() {
	if p.svc.Power != nil {
		p.state, p.gen = p.svc.Power.State()
	}

	icon := resolveIcon(p.svc, "", strings.TrimSuffix(p.state.IconName(), "-symbolic"))
	if icon != nil && p.icon != nil && icon.Path() == p.icon.Path() {
		return
	}
	p.icon = icon
}

func (p *PowerDocklet) Width(c *Context) int {
	return c.iconSize() + AppPadding*2
}

func (p *PowerDocklet) Widget(c *Context) ui.Element[DockletMsg] {
	size := ui.Px(c.iconSize())
	return ui.Container[DockletMsg]{
		Content: ui.Listener[DockletMsg]{
			Content: ui.ImageView[DockletMsg]{Image: p.icon, W: size, H: size},
			OnEnter: func() DockletMsg { return DockletMsg{Kind: Hover} },
		},
		Padding: AppPadding,
		AlignX:  ui.Center,
		AlignY:  ui.Center,
		Style:   style.Dock(style.Dark),
	}
}

func (p *PowerDocklet) Popover(c *Context) ui.Element[DockletMsg] {
	if p.state.Kind == power.KindNone {
		return nil
	}
	return ui.Text[DockletMsg]{Content: p.state.String(), Size: 14, Color: style.Bright}
}

func (p *PowerDocklet) RetainedIcon() *ui.Image {
	return p.icon
}

func (p *PowerDocklet) Update(c *Context, msg DockletMsg) {}
