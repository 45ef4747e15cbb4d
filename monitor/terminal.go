package monitor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"golang.org/x/term"
)

// Serve reads commands from in until quit, end of input or ctx is done. A terminal gets
// line editing and history; anything else is read line by line.
// Ctrl-C interrupts a running simulation without leaving the monitor.
func (m *Monitor) Serve(ctx context.Context, in io.Reader) error {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return m.serveTerminal(ctx, f)
	}
	return m.serveLines(ctx, in)
}

func (m *Monitor) serveTerminal(ctx context.Context, f *os.File) error {
	fd := int(f.Fd())
	rw := struct {
		io.Reader
		io.Writer
	}{f, m.out}
	t := term.NewTerminal(rw, Prompt)

	for ctx.Err() == nil {
		// Raw mode only while editing, so Ctrl-C reaches the signal handler during commands.
		state, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("terminal: %w", err)
		}
		line, err := t.ReadLine()
		_ = term.Restore(fd, state)
		if errors.Is(err, io.EOF) {
			m.printf("\n")
			return nil
		}
		if err != nil {
			return fmt.Errorf("terminal: %w", err)
		}

		if m.dispatch(ctx, line) {
			return nil
		}
	}
	return ctx.Err()
}

func (m *Monitor) serveLines(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	for ctx.Err() == nil {
		m.printf("%s", Prompt)
		if !sc.Scan() {
			m.printf("\n")
			return sc.Err()
		}

		if m.dispatch(ctx, sc.Text()) {
			return nil
		}
	}
	return ctx.Err()
}

// dispatch runs one line and reports whether the monitor should exit.
func (m *Monitor) dispatch(ctx context.Context, line string) bool {
	cctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	err := m.Execute(cctx, line)
	stop()

	if errors.Is(err, ErrQuit) {
		return true
	}
	if err != nil {
		m.printf("Error: %s\n", err)
	}
	return false
}
