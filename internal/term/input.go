package term

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/lxing/wheel/internal/wheel"
)

// QuitMember ends party selection when typed at the party prompt.
const QuitMember = 0

type line struct {
	text string
	err  error
}

// Input reads answers one line at a time. End of input closes the party
// and answers every question with no, so a piped session runs to completion.
type Input struct {
	r   io.Reader
	out io.Writer

	once      sync.Once
	closeOnce sync.Once
	lines     chan line
	done      chan struct{}
}

func NewInput(r io.Reader, out io.Writer) *Input {
	return &Input{r: r, out: out, lines: make(chan line, 1), done: make(chan struct{})}
}

// Close stops the reader goroutine once its pending read returns. Lines
// read after Close are discarded.
func (in *Input) Close() {
	in.closeOnce.Do(func() { close(in.done) })
}

func (in *Input) start() {
	go func() {
		defer close(in.lines)
		sc := bufio.NewScanner(in.r)
		for sc.Scan() {
			if !in.send(line{text: sc.Text()}) {
				return
			}
		}
		if err := sc.Err(); err != nil {
			in.send(line{err: err})
		}
	}()
}

func (in *Input) send(l line) bool {
	select {
	case in.lines <- l:
		return true
	case <-in.done:
		return false
	}
}

func (in *Input) readLine(ctx context.Context) (string, error) {
	in.once.Do(in.start)
	select {
	case <-in.done:
		return "", io.EOF
	case <-ctx.Done():
		return "", ctx.Err()
	case l, ok := <-in.lines:
		if !ok {
			return "", io.EOF
		}
		return strings.TrimSpace(l.text), l.err
	}
}

func (in *Input) NextToggle(ctx context.Context) (int, bool, error) {
	for {
		fmt.Fprintf(in.out, "Who do you want to add or remove from the party (%d to quit): ", QuitMember)
		raw, err := in.readLine(ctx)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(in.out)
			return 0, true, nil
		}
		if err != nil {
			return 0, false, err
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			fmt.Fprintln(in.out, "Enter a player number.")
			continue
		}
		if n == QuitMember {
			return 0, true, nil
		}
		return n, false, nil
	}
}

func (in *Input) Confirm(ctx context.Context, kind wheel.ConfirmKind) (bool, error) {
	for {
		fmt.Fprintf(in.out, "%s (y or n): ", question(kind))
		raw, err := in.readLine(ctx)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(in.out)
			return false, nil
		}
		if err != nil {
			return false, err
		}
		switch strings.ToLower(raw) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}

func question(kind wheel.ConfirmKind) string {
	switch kind {
	case wheel.ConfirmSpinAgain:
		return "Spin for game?"
	case wheel.ConfirmIncludePending:
		return "Include games that need updates or downloads?"
	case wheel.ConfirmReroll:
		return "Remove and reroll?"
	default:
		return kind.String()
	}
}
