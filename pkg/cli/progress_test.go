package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

type recordingProgress struct {
	events []string
}

func (r *recordingProgress) Start(total int64)    { r.events = append(r.events, "start") }
func (r *recordingProgress) Update(current int64) { r.events = append(r.events, "update") }
func (r *recordingProgress) Finish()              { r.events = append(r.events, "finish") }
func (r *recordingProgress) Error(err error)      { r.events = append(r.events, "error") }

func TestSimpleProgress(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(4)
	progress.Update(2)
	progress.Finish()

	output := buf.String()
	if !strings.Contains(output, "2/4 documents") {
		t.Errorf("output missing intermediate progress: %q", output)
	}
	if !strings.Contains(output, "4/4 documents (100%)") {
		t.Errorf("output missing completion: %q", output)
	}
}

func TestSimpleProgressZeroTotal(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(0)
	progress.Update(0)
	progress.Finish()

	if buf.Len() != 0 {
		t.Errorf("zero total rendered a bar: %q", buf.String())
	}
}

func TestSimpleProgressError(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(1)
	progress.Error(errors.New("source directory vanished"))

	if !strings.Contains(buf.String(), "source directory vanished") {
		t.Errorf("output = %q, want error message", buf.String())
	}
}

func TestProgressFunc(t *testing.T) {
	rec := &recordingProgress{}
	fn := ProgressFunc(rec)

	for i := 1; i <= 3; i++ {
		fn(i, 3)
	}

	want := []string{"start", "update", "update", "update", "finish"}
	if strings.Join(rec.events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", rec.events, want)
	}
}
