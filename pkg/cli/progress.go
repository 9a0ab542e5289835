package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressReporter reports progress for long-running operations.
type ProgressReporter interface {
	Start(total int64)
	Update(current int64)
	Finish()
	Error(err error)
}

// barWidth is the number of cells of the progress bar.
const barWidth = 30

// BarProgress redraws a single progress line in place.
type BarProgress struct {
	mu      sync.Mutex
	w       io.Writer
	label   string
	total   int64
	done    int64
	started time.Time
}

// NewProgressReporter returns a BarProgress labelled for document
// ingestion. A nil w writes to stderr.
func NewProgressReporter(w io.Writer) ProgressReporter {
	if w == nil {
		w = os.Stderr
	}
	return &BarProgress{w: w, label: "documents"}
}

func (p *BarProgress) Start(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total, p.done, p.started = total, 0, time.Now()
	p.draw()
}

func (p *BarProgress) Update(current int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done = current
	p.draw()
}

func (p *BarProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done = p.total
	p.draw()
	if p.total > 0 {
		fmt.Fprintln(p.w)
	}
}

func (p *BarProgress) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "\n✗ Error: %v\n", err)
}

func (p *BarProgress) draw() {
	if p.total <= 0 {
		return
	}
	filled := int(p.done * barWidth / p.total)
	fmt.Fprintf(p.w, "\r[%s%s] %d/%d %s (%3.0f%%) %s",
		strings.Repeat("#", filled), strings.Repeat(".", barWidth-filled),
		p.done, p.total, p.label,
		float64(p.done)*100/float64(p.total),
		time.Since(p.started).Round(time.Millisecond))
}

// ProgressFunc adapts r to the per-document callback of the ingestion
// pipeline. The first call starts the reporter and the last one finishes it.
func ProgressFunc(r ProgressReporter) func(done, total int) {
	return func(done, total int) {
		if done == 1 {
			r.Start(int64(total))
		}
		r.Update(int64(done))
		if done == total {
			r.Finish()
		}
	}
}
