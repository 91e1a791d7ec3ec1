// Package console drives the widget from a line-oriented terminal session.
//
// Each plain line is typed into the search field and Enter is pressed.
// Lines starting with ':' are commands:
//
//	:add [city]  type city (if given) then click "add to favorites"
//	:fav N       click the N-th favorite (1-based); fills the input only
//	:go          press Enter on the current input
//	:list        re-render the widget
//	:quit        leave
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"weather-widget/render"
	"weather-widget/widget"
)

// Screen serializes renders coming from the input loop and from search
// completions. A State older than the last one drawn is skipped.
type Screen struct {
	mu    sync.Mutex
	out   io.Writer
	now   func() time.Time
	drawn uint64
}

// NewScreen creates a screen writing to out
func NewScreen(out io.Writer) *Screen {
	return &Screen{out: out, now: time.Now}
}

// Render writes the view of s
func (sc *Screen) Render(s widget.State) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if s.Revision < sc.drawn {
		return
	}
	sc.drawn = s.Revision
	_ = render.WriteText(sc.out, render.Build(s, sc.now()))
	fmt.Fprintln(sc.out)
}

// Printf writes a status line
func (sc *Screen) Printf(format string, args ...any) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	fmt.Fprintf(sc.out, format, args...)
}

// Run reads commands from in until EOF, ":quit" or ctx is done. w should have
// been created with widget.WithOnChange(screen.Render) for completions to show.
// Lines are read on their own goroutine so that a canceled ctx ends Run while
// a read is blocked; that goroutine exits once in returns.
func Run(ctx context.Context, w *widget.Widget, screen *Screen, in io.Reader) error {
	screen.Render(w.Snapshot())

	lines := make(chan string)
	var readErr error
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr = scanner.Err()
	}()

	for {
		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			w.Wait()
			return ctx.Err()
		case line, ok = <-lines:
		}

		if !ok {
			w.Wait()
			if readErr != nil {
				return fmt.Errorf("reading input: %w", readErr)
			}
			return ctx.Err()
		}
		if ctx.Err() != nil {
			w.Wait()
			return ctx.Err()
		}

		if !strings.HasPrefix(line, ":") {
			w.Type(line)
			w.PressKey(ctx, widget.KeyEnter)
			continue
		}

		cmd, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
		arg = strings.TrimSpace(arg)
		switch cmd {
		case "add":
			if arg != "" {
				w.Type(arg)
			}
			if err := w.ClickAddFavorite(ctx); err != nil {
				screen.Printf("favoris non enregistrés: %v\n", err)
			}
		case "fav":
			n, err := strconv.Atoi(arg)
			if err != nil || !w.ClickFavorite(n-1) {
				screen.Printf("favori inconnu: %q\n", arg)
			}
		case "go":
			w.PressKey(ctx, widget.KeyEnter)
		case "list":
			screen.Render(w.Snapshot())
		case "quit", "q":
			w.Wait()
			return nil
		default:
			screen.Printf("commande inconnue: %q\n", cmd)
		}
	}
}
