package output

import (
	"bytes"
	"io"
	"os"

	"golang.org/x/term"
)

// Action is what a keypress asks the station to do
type Action int

const (
	ActionNone Action = iota
	ActionCapture
	ActionSwitch
	ActionClose
	ActionQuit
)

func (a Action) String() string {
	switch a {
	case ActionCapture:
		return "capture"
	case ActionSwitch:
		return "switch"
	case ActionClose:
		return "close"
	case ActionQuit:
		return "quit"
	default:
		return "none"
	}
}

// KeyHelp is printed when the interactive loop starts
const KeyHelp = "[*] Space/Enter: capture   s: switch camera   c: close results   q: quit"

// ActionForKey maps a single byte read from a raw terminal to an action.
func ActionForKey(key byte) Action {
	switch key {
	case ' ', '\r', '\n':
		return ActionCapture
	case 's', 'S':
		return ActionSwitch
	case 'c', 'C', 0x1b:
		return ActionClose
	case 'q', 'Q', 0x03, 0x04:
		return ActionQuit
	default:
		return ActionNone
	}
}

// ReadActions reads single keypresses from in and sends the mapped actions
// on the returned channel. When in is a terminal it is put in raw mode and
// cleanup restores it. The channel is closed on EOF, read error or after
// ActionQuit.
func ReadActions(in *os.File) (actions <-chan Action, cleanup func(), err error) {
	fd := int(in.Fd())
	cleanup = func() {}

	if term.IsTerminal(fd) {
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = func() {
			_ = term.Restore(fd, oldState)
		}
	}

	ch := make(chan Action)
	go func() {
		defer close(ch)
		buf := make([]byte, 1)
		for {
			n, err := in.Read(buf)
			if err != nil {
				return
			}
			if n == 0 {
				continue
			}
			a := ActionForKey(buf[0])
			if a == ActionNone {
				continue
			}
			ch <- a
			if a == ActionQuit {
				return
			}
		}
	}()
	return ch, cleanup, nil
}

// RawWriter translates \n to \r\n so output lines up while the terminal is
// in raw mode.
type RawWriter struct {
	W io.Writer
}

func (r RawWriter) Write(p []byte) (int, error) {
	if bytes.IndexByte(p, '\n') < 0 {
		return r.W.Write(p)
	}
	out := bytes.ReplaceAll(p, []byte("\r\n"), []byte("\n"))
	out = bytes.ReplaceAll(out, []byte("\n"), []byte("\r\n"))
	if _, err := r.W.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}
