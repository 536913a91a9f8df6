// Package console provides the ishell backed operator console for
// poking channels on the transmitter device directly.
package console

import (
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/stagelink/dmxbridge/pkg/dmx"
	"github.com/stagelink/dmxbridge/pkg/wire"
)

// Console keeps a local universe and sends it as one full frame to the
// device after every mutation, the way the bridge daemon would.
type Console struct {
	Interactive bool

	Shell    *ishell.Shell
	out      io.Writer
	universe *dmx.Universe
}

const consoleKey = "$console"

var evalOnly bool

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
}

// New creates a console writing frames to out.
func New(out io.Writer) *Console {
	c := &Console{
		Interactive: !evalOnly,
		Shell:       ishell.New(),
		out:         out,
		universe:    dmx.NewUniverse(),
	}
	c.Shell.Set(consoleKey, c)
	c.Shell.SetPrompt("dmx> ")
	for _, cmd := range commands {
		c.Shell.AddCmd(cmd)
	}
	return c
}

// Run starts the interactive shell, or evaluates the remaining command
// line arguments when -e is set.
func (c *Console) Run() error {
	if c.Interactive {
		c.Shell.Println("dmxctl - type 'help' for commands")
		c.Shell.Run()
		return nil
	}
	return c.Shell.Process(flag.Args()...)
}

func from(ic *ishell.Context) *Console {
	return ic.Get(consoleKey).(*Console)
}

// Set writes one channel and sends the universe.
func (c *Console) Set(channel uint16, value byte) error {
	if err := c.universe.Write(channel, value); err != nil {
		return err
	}
	return c.Send()
}

// SetRange writes a contiguous channel range and sends the universe.
func (c *Console) SetRange(start, end uint16, value byte) error {
	if start > end {
		return fmt.Errorf("range %d..%d is backwards", start, end)
	}
	for ch := start; ch <= end; ch++ {
		if err := c.universe.Write(ch, value); err != nil {
			return err
		}
	}
	return c.Send()
}

// Blackout zeroes every channel and sends the universe.
func (c *Console) Blackout() error {
	c.universe.Blackout()
	return c.Send()
}

// Send transmits the current universe as one full frame.
func (c *Console) Send() error {
	snap := c.universe.Snapshot()
	_, err := wire.Frame{Payload: snap[:]}.WriteTo(c.out)
	return err
}

// Get returns a channel value.
func (c *Console) Get(channel uint16) (byte, error) {
	return c.universe.Get(channel)
}

// NonZero lists channels currently above zero.
func (c *Console) NonZero() []wire.ChannelWrite {
	snap := c.universe.Snapshot()
	var out []wire.ChannelWrite
	for i, v := range snap {
		if v != 0 {
			out = append(out, wire.ChannelWrite{Channel: uint16(i + 1), Value: v})
		}
	}
	return out
}

func parseChannel(s string) (uint16, error) {
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil || n < 1 || n > dmx.MaxChannels {
		return 0, fmt.Errorf("invalid channel %q", s)
	}
	return uint16(n), nil
}

func parseValue(s string) (byte, error) {
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	return byte(n), nil
}

var commands = []*ishell.Cmd{
	{
		Name: "set",
		Help: "set <channel> <value>",
		Func: func(ic *ishell.Context) {
			if len(ic.Args) != 2 {
				ic.Err(fmt.Errorf("usage: set <channel> <value>"))
				return
			}
			ch, err := parseChannel(ic.Args[0])
			if err != nil {
				ic.Err(err)
				return
			}
			v, err := parseValue(ic.Args[1])
			if err != nil {
				ic.Err(err)
				return
			}
			if err := from(ic).Set(ch, v); err != nil {
				ic.Err(err)
			}
		},
	},
	{
		Name: "range",
		Help: "range <start> <end> <value>",
		Func: func(ic *ishell.Context) {
			if len(ic.Args) != 3 {
				ic.Err(fmt.Errorf("usage: range <start> <end> <value>"))
				return
			}
			start, err := parseChannel(ic.Args[0])
			if err != nil {
				ic.Err(err)
				return
			}
			end, err := parseChannel(ic.Args[1])
			if err != nil {
				ic.Err(err)
				return
			}
			v, err := parseValue(ic.Args[2])
			if err != nil {
				ic.Err(err)
				return
			}
			if err := from(ic).SetRange(start, end, v); err != nil {
				ic.Err(err)
			}
		},
	},
	{
		Name: "full",
		Help: "full [channels] - raise the first N channels (default 100) to 255",
		Func: func(ic *ishell.Context) {
			end := uint16(100)
			if len(ic.Args) == 1 {
				ch, err := parseChannel(ic.Args[0])
				if err != nil {
					ic.Err(err)
					return
				}
				end = ch
			}
			if err := from(ic).SetRange(1, end, 0xff); err != nil {
				ic.Err(err)
			}
		},
	},
	{
		Name: "blackout",
		Help: "set all channels to zero",
		Func: func(ic *ishell.Context) {
			if err := from(ic).Blackout(); err != nil {
				ic.Err(err)
			}
		},
	},
	{
		Name: "show",
		Help: "list nonzero channels",
		Func: func(ic *ishell.Context) {
			live := from(ic).NonZero()
			if len(live) == 0 {
				ic.Println("all channels at zero")
				return
			}
			for _, w := range live {
				ic.Printf("%3d = %d\n", w.Channel, w.Value)
			}
		},
	},
	{
		Name: "send",
		Help: "re-send the current universe",
		Func: func(ic *ishell.Context) {
			if err := from(ic).Send(); err != nil {
				ic.Err(err)
			}
		},
	},
}
