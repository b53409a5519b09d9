// Package term plays the wheel on a plain terminal: a line-based input
// source and a renderer that paces spin frames.
package term

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/lxing/wheel/internal/wheel"
)

const frameWidth = wheel.MaxItemNameLen + 6

type styles struct {
	title    lipgloss.Style
	warn     lipgloss.Style
	dim      lipgloss.Style
	selected lipgloss.Style
	frame    lipgloss.Style
	final    lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		warn:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		dim:      r.NewStyle().Faint(true),
		selected: r.NewStyle().Bold(true).Foreground(lipgloss.Color("226")),
		frame: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(frameWidth).
			Align(lipgloss.Center),
		final: r.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("212")).
			Width(frameWidth).
			Align(lipgloss.Center).
			Bold(true),
	}
}

// Renderer writes display events to a terminal. Spin frames are held for
// FrameDelay each.
type Renderer struct {
	w          io.Writer
	st         styles
	FrameDelay time.Duration
	Sleep      func(time.Duration)
}

func NewRenderer(w io.Writer, frameDelay time.Duration) *Renderer {
	return &Renderer{
		w:          w,
		st:         newStyles(w),
		FrameDelay: frameDelay,
		Sleep:      time.Sleep,
	}
}

// Banner prints the program greeting and the flashing warning.
func (r *Renderer) Banner() {
	fmt.Fprintln(r.w, r.st.title.Render("Wheel"))
	fmt.Fprintln(r.w, "This program picks a game to play.")
	fmt.Fprintln(r.w, r.st.warn.Render("!! FLASH WARNING !!"))
	fmt.Fprintln(r.w, "Do not use this program if you are sensitive to flashing.")
	fmt.Fprintln(r.w)
}

func (r *Renderer) Farewell() {
	fmt.Fprintln(r.w, "Thank you for using wheel. Have a nice day! :>")
}

func (r *Renderer) Render(ev wheel.Event) {
	switch ev := ev.(type) {
	case wheel.ShowRoster:
		r.roster(ev.Members)
	case wheel.ShowParty:
		fmt.Fprintf(r.w, "Party (%d): %s\n", len(ev.Active), strings.Join(ev.Active, " "))
	case wheel.ShowRejected:
		fmt.Fprintln(r.w, r.st.warn.Render(fmt.Sprintf("!! PLAYER %d NOT IN LIST !!", ev.Member)))
	case wheel.ShowPrompt:
		// The input source prints the question itself.
	case wheel.ShowFilteredCount:
		label := "ready to play"
		if ev.IncludePending {
			label = "playable after updates or downloads"
		}
		fmt.Fprintf(r.w, "%d games %s\n", ev.Count, label)
	case wheel.ShowSpinFrame:
		fmt.Fprintln(r.w, r.st.frame.Render(r.window(ev.Window)))
		fmt.Fprintln(r.w, r.st.dim.Render(fmt.Sprintf("spin %d/%d", ev.Frame, ev.Total)))
		if r.FrameDelay > 0 && r.Sleep != nil {
			r.Sleep(r.FrameDelay)
		}
	case wheel.ShowSelection:
		fmt.Fprintln(r.w, r.st.frame.Render(r.window(ev.Window)))
		fmt.Fprintf(r.w, "%d games left on the wheel\n", ev.Remaining)
	case wheel.ShowRemoved:
		fmt.Fprintf(r.w, "Removed %s, %d left\n", ev.Name, ev.Remaining)
	case wheel.ShowFinal:
		fmt.Fprintln(r.w, r.st.final.Render("Play "+ev.Window.Selected+"!"))
	case wheel.ShowEmptyResult:
		fmt.Fprintln(r.w, r.st.warn.Render(emptyMessage(ev.Reason)))
	}
}

func (r *Renderer) roster(members []string) {
	fmt.Fprintln(r.w, r.st.title.Render("Players:"))
	if len(members) == 0 {
		fmt.Fprintln(r.w, "   Empty!")
		return
	}
	for i, name := range members {
		fmt.Fprintf(r.w, "  %d. %s\n", i+1, name)
	}
}

func (r *Renderer) window(w wheel.Window) string {
	return lipgloss.JoinVertical(lipgloss.Center,
		r.st.dim.Render(w.Previous),
		r.st.selected.Render("> "+w.Selected+" <"),
		r.st.dim.Render(w.Next),
	)
}

func emptyMessage(reason wheel.EmptyReason) string {
	switch reason {
	case wheel.ReasonNoData:
		return "No file or list to load games from"
	case wheel.ReasonNoParty:
		return "No members in the party"
	case wheel.ReasonNoEligibleItems:
		return "No games in this list"
	default:
		return string(reason)
	}
}
