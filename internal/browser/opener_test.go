package browser

import (
	"errors"
	"testing"
)

func TestSystemRejectsEmptyURL(t *testing.T) {
	if err := (System{}).Open("  ", ""); err == nil {
		t.Error("expected error for empty url")
	}
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	if err := r.Open("https://github.com", "firefox"); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if len(r.Opened) != 1 || r.Opened[0] != (Launch{URL: "https://github.com", Browser: "firefox"}) {
		t.Errorf("Opened = %+v", r.Opened)
	}

	r.Err = errors.New("no display")
	if err := r.Open("https://github.com", ""); !errors.Is(err, r.Err) {
		t.Errorf("Open() error = %v, want %v", err, r.Err)
	}
	if len(r.Opened) != 1 {
		t.Errorf("failed launch should not be recorded")
	}
}
