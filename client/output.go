package wl

import "deedles.dev/waysmoke/wire"

const (
	OutputInterface = "wl_output"
	outputVersion   = 4
)

type OutputTransform int32

type OutputMode uint32

const (
	OutputModeCurrent   OutputMode = 0x1
	OutputModePreferred OutputMode = 0x2
)

type OutputListener interface {
	Geometry(x, y, physicalWidth, physicalHeight, subpixel int32, make, model string, transform OutputTransform)
	Mode(flags OutputMode, width, height, refresh int32)
	Done()
	Scale(factor int32)
	Name(name string)
	Description(description string)
}

type Output struct {
	Proxy
	Listener OutputListener
}

func BindOutput(client *Client, registry *Registry, name, version uint32) *Output {
	output := Output{Proxy: NewProxy(client, BindVersion(version, outputVersion))}
	registry.Bind(name, OutputInterface, output.version, &output)
	return &output
}

func (out *Output) Interface() string {
	return OutputInterface
}

func (out *Output) MethodName(op uint16) string {
	switch op {
	case 0:
		return "geometry"
	case 1:
		return "mode"
	case 2:
		return "done"
	case 3:
		return "scale"
	case 4:
		return "name"
	case 5:
		return "description"
	}
	return "unknown"
}

func (out *Output) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0:
		x := msg.ReadInt()
		y := msg.ReadInt()
		pw := msg.ReadInt()
		ph := msg.ReadInt()
		subpixel := msg.ReadInt()
		make := msg.ReadString()
		model := msg.ReadString()
		transform := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if out.Listener != nil {
			out.Listener.Geometry(x, y, pw, ph, subpixel, make, model, OutputTransform(transform))
		}

	case 1:
		flags := msg.ReadUint()
		w := msg.ReadInt()
		h := msg.ReadInt()
		refresh := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if out.Listener != nil {
			out.Listener.Mode(OutputMode(flags), w, h, refresh)
		}

	case 2:
		if out.Listener != nil {
			out.Listener.Done()
		}

	case 3:
		factor := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if out.Listener != nil {
			out.Listener.Scale(factor)
		}

	case 4, 5:
		str := msg.ReadString()
		if err := msg.Err(); err != nil {
			return err
		}
		if out.Listener == nil {
			return nil
		}
		if msg.Op() == 4 {
			out.Listener.Name(str)
		} else {
			out.Listener.Description(str)
		}

	default:
		return UnknownEvent(OutputInterface, msg.Op())
	}

	return nil
}

func (out *Output) Release() {
	if out.version >= 3 {
		out.client.Enqueue(NewRequest(out, 0, "release"))
	}
	out.client.Delete(out.id)
}
