package sink

import (
	"clinic-desk/domain"
	"clinic-desk/domain/event"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/time/rate"
)

// Board is the waiting-room screen.
// It prints the rooms with their occupants, then the waiting list, after every status change.
type Board struct {
	mu      sync.Mutex
	out     io.Writer
	colours bool
	limiter *rate.Limiter
}

type BoardOption func(*Board)

func WithColours(enabled bool) BoardOption {
	return func(b *Board) { b.colours = enabled }
}

// WithMaxRefreshRate caps how many screens per second are printed.
// Snapshots arriving above that rate are skipped, the next one shows the current state anyway.
func WithMaxRefreshRate(perSecond float64) BoardOption {
	return func(b *Board) {
		if perSecond > 0 {
			b.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

func NewBoard(out io.Writer, opts ...BoardOption) *Board {
	b := &Board{
		out:     out,
		limiter: rate.NewLimiter(rate.Inf, 0),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Board) Consume(_ context.Context, e event.DeskEvent) error {
	evt, ok := e.(event.StatusChanged)
	if !ok {
		return nil
	}
	if !b.limiter.Allow() {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.render(evt.Snapshot)
}

func (b *Board) render(snapshot domain.StatusSnapshot) error {
	var sb strings.Builder
	sb.WriteString(b.paint(color.FgGreen, fmt.Sprintf("%s  %s", snapshot.Department, snapshot.At.Format("15:04:05.000"))))
	sb.WriteString("\n")

	table := tablewriter.NewWriter(&sb)
	table.SetHeader([]string{"Room", "In treatment", "Free"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for _, room := range snapshot.Rooms {
		table.Append([]string{
			b.paint(color.FgCyan, room.Name),
			fmt.Sprintf("[%s]", strings.Join(domain.PatientNames(room.Occupants), ", ")),
			strconv.Itoa(room.Capacity - len(room.Occupants)),
		})
	}
	table.Render()

	sb.WriteString(b.paint(color.FgYellow, fmt.Sprintf("Waiting (%d): [%s]",
		len(snapshot.Waiting),
		strings.Join(domain.PatientNames(snapshot.Waiting), ", "),
	)))
	sb.WriteString("\n\n")

	_, err := io.WriteString(b.out, sb.String())
	return err
}

func (b *Board) paint(c color.Color, s string) string {
	if !b.colours {
		return s
	}
	return c.Render(s)
}
