// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package progress reports per-item progress of the scrape and parse loops.
package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
)

// Reporter receives progress updates from a sequential loop. Start is
// called once with the number of items, Step once per item, Done at the end.
type Reporter interface {
	Start(total int)
	Step(message string)
	Done()
}

// Nop discards all updates.
type Nop struct{}

func (Nop) Start(int)   {}
func (Nop) Step(string) {}
func (Nop) Done()       {}

// Lines writes a status line every Every steps, and on the last step.
type Lines struct {
	W     io.Writer
	Every int

	total int
	n     int
}

func (l *Lines) Start(total int) {
	l.total = total
	l.n = 0
}

func (l *Lines) Step(message string) {
	l.n++
	every := l.Every
	if every <= 0 {
		every = 100
	}
	if l.n%every == 0 || l.n == l.total {
		fmt.Fprintf(l.W, "[%d/%d] %s\n", l.n, l.total, message)
	}
}

func (l *Lines) Done() {}

// Bar renders a terminal progress bar.
type Bar struct {
	pw      progress.Writer
	label   string
	tracker *progress.Tracker
}

// NewBar returns a Bar that renders to w. label prefixes the bar until the
// first Step message replaces it.
func NewBar(w io.Writer, label string) *Bar {
	pw := progress.NewWriter()
	pw.SetOutputWriter(w)
	pw.SetAutoStop(false)
	pw.SetTrackerLength(30)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.SetStyle(progress.StyleDefault)
	pw.Style().Visibility.ETA = true
	pw.Style().Visibility.Percentage = true
	return &Bar{pw: pw, label: label}
}

func (b *Bar) Start(total int) {
	b.tracker = &progress.Tracker{
		Message: b.label,
		Total:   int64(total),
		Units:   progress.UnitsDefault,
	}
	b.pw.AppendTracker(b.tracker)
	go b.pw.Render()
	for !b.pw.IsRenderInProgress() {
		time.Sleep(time.Millisecond)
	}
}

func (b *Bar) Step(message string) {
	if b.tracker == nil {
		return
	}
	b.tracker.UpdateMessage(message)
	b.tracker.Increment(1)
}

// Done marks the bar complete and waits for the final render.
func (b *Bar) Done() {
	if b.tracker == nil {
		return
	}
	b.tracker.MarkAsDone()
	b.pw.Stop()
	for b.pw.IsRenderInProgress() {
		time.Sleep(10 * time.Millisecond)
	}
}
