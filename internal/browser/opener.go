package browser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/skratchdot/open-golang/open"
)

// Opener hands a URL to a browser. Implementations must not block until
// the browser exits.
type Opener interface {
	Open(url, browser string) error
}

// System opens URLs with the platform launcher (xdg-open, open, start).
type System struct{}

// Open starts url in browser, or in the system default when browser is empty.
func (System) Open(url, browser string) error {
	if strings.TrimSpace(url) == "" {
		return errors.New("cannot open an empty url")
	}

	var err error
	if browser = strings.TrimSpace(browser); browser != "" {
		err = open.StartWith(url, browser)
	} else {
		err = open.Start(url)
	}
	if err != nil {
		return fmt.Errorf("failed to launch browser for %s: %w", url, err)
	}
	return nil
}

// Recorder remembers opened URLs instead of launching anything.
// Used by tests.
type Recorder struct {
	Opened []Launch
	Err    error // returned by Open when set
}

// Launch is one call recorded by Recorder.
type Launch struct {
	URL     string
	Browser string
}

func (r *Recorder) Open(url, browser string) error {
	if r.Err != nil {
		return r.Err
	}
	r.Opened = append(r.Opened, Launch{URL: url, Browser: browser})
	return nil
}
