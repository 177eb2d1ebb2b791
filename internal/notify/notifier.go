// Package notify sends fire-and-forget HTTP notifications for control
// events. The primary use case is ntfy.sh, but any HTTP webhook works.
package notify

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mars1523/marsctl/internal/control"
)

// Notifier posts plain-text HTTP notifications for selected control events.
type Notifier struct {
	url      string
	title    string
	onSwitch bool
	onError  bool
	onStop   bool
	client   *http.Client
}

// New creates a Notifier. projectName is used as the X-Title header; if
// empty, "marsctl" is used instead.
func New(notifURL, projectName string, onSwitch, onError, onStop bool) *Notifier {
	title := "marsctl"
	if projectName != "" {
		title = projectName
	}
	return &Notifier{
		url:      notifURL,
		title:    title,
		onSwitch: onSwitch,
		onError:  onError,
		onStop:   onStop,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Hook fires asynchronous POSTs for events that match the configured
// notification flags. Wire it into the event fan-out.
func (n *Notifier) Hook(e control.Event) {
	switch e.Kind {
	case control.EventModeEnter:
		if n.onSwitch {
			go n.post(switchMessage(e))
		}
	case control.EventError:
		if n.onError {
			go n.post(e.Message)
		}
	case control.EventDone, control.EventStopped:
		if n.onStop {
			go n.post(e.Message)
		}
	}
}

// switchMessage renders a mode-enter event as a one-line notification.
func switchMessage(e control.Event) string {
	if e.FromMode == "" {
		return fmt.Sprintf("control mode: %s", e.Mode)
	}
	return fmt.Sprintf("control mode: %s (was %s)", e.Mode, e.FromMode)
}

// post sends a plain-text POST to the configured URL. Errors are silently
// discarded so notification failures never interrupt the control loop.
func (n *Notifier) post(message string) {
	req, err := http.NewRequest(http.MethodPost, n.url, strings.NewReader(message))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("X-Title", n.title)
	resp, err := n.client.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}
