package term

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/lxing/wheel/internal/wheel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputNextToggle(t *testing.T) {
	var out bytes.Buffer
	in := NewInput(strings.NewReader("2\nabc\n7\n0\n"), &out)
	ctx := context.Background()

	member, done, err := in.NextToggle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, member)
	assert.False(t, done)

	member, done, err = in.NextToggle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, member, "non-numeric lines are re-prompted")
	assert.False(t, done)

	_, done, err = in.NextToggle(ctx)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Contains(t, out.String(), "(0 to quit)")
	assert.Contains(t, out.String(), "Enter a player number.")
}

func TestInputConfirm(t *testing.T) {
	var out bytes.Buffer
	in := NewInput(strings.NewReader("maybe\nY\nn\n"), &out)
	ctx := context.Background()

	yes, err := in.Confirm(ctx, wheel.ConfirmReroll)
	require.NoError(t, err)
	assert.True(t, yes)

	yes, err = in.Confirm(ctx, wheel.ConfirmIncludePending)
	require.NoError(t, err)
	assert.False(t, yes)

	assert.Equal(t, 2, strings.Count(out.String(), "Remove and reroll? (y or n): "))
	assert.Contains(t, out.String(), "Include games that need updates or downloads?")
}

func TestInputEndOfInputAnswersNo(t *testing.T) {
	in := NewInput(strings.NewReader(""), io.Discard)
	ctx := context.Background()

	_, done, err := in.NextToggle(ctx)
	require.NoError(t, err)
	assert.True(t, done)

	yes, err := in.Confirm(ctx, wheel.ConfirmSpinAgain)
	require.NoError(t, err)
	assert.False(t, yes)
}

func TestInputHonorsContext(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	in := NewInput(pr, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := in.Confirm(ctx, wheel.ConfirmSpinAgain)
	require.ErrorIs(t, err, context.Canceled)
}

func TestInputCloseStopsReader(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	in := NewInput(pr, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := in.Confirm(ctx, wheel.ConfirmSpinAgain)
	require.ErrorIs(t, err, context.Canceled)

	// Nobody is reading answers anymore, so the reader fills its buffer and
	// waits. The pipe stays open.
	_, err = pw.Write([]byte(strings.Repeat("y\n", 20)))
	require.NoError(t, err)

	in.Close()
	require.Eventually(t, func() bool {
		for {
			select {
			case _, ok := <-in.lines:
				if !ok {
					return true
				}
			default:
				return false
			}
		}
	}, time.Second, 5*time.Millisecond, "reader goroutine should exit after Close")

	_, err = in.Confirm(context.Background(), wheel.ConfirmSpinAgain)
	require.NoError(t, err)
}

func TestTerminalSession(t *testing.T) {
	cat, err := wheel.NewCatalogue([]string{"Ann", "Bo"}, []wheel.ItemRecord{
		{Name: "Chess", Codes: "yy"},
		{Name: "Golf", Codes: "yd"},
	})
	require.NoError(t, err)

	// Spin once, add both players, skip pending games, then quit.
	script := "y\n1\n2\n0\nn\nn\n"
	var out bytes.Buffer
	s := &wheel.Session{
		Source:   sourceFunc(func(context.Context) (*wheel.Catalogue, error) { return cat, nil }),
		Input:    NewInput(strings.NewReader(script), &out),
		Renderer: NewRenderer(&out, 0),
		NewSpinner: func() (wheel.Spinner, error) {
			return wheel.NewSeededSpinner(7), nil
		},
	}
	var results []wheel.Result
	s.OnResult = func(res wheel.Result) {
		results = append(results, res)
	}

	require.NoError(t, s.Run(context.Background()))
	require.Len(t, results, 1)
	assert.Equal(t, "Chess", results[0].Pick)
	assert.Contains(t, out.String(), "Play Chess!")
}

type sourceFunc func(context.Context) (*wheel.Catalogue, error)

func (f sourceFunc) Load(ctx context.Context) (*wheel.Catalogue, error) {
	return f(ctx)
}
