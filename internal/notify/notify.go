/*
Package notify carries the short feedback messages (toasts) that follow a
user action, and pushes them to connected clients over a websocket.
*/
package notify

import "time"

// Type is the severity of a toast.
type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeInfo    Type = "info"
)

// DismissAfter is how long a client keeps a toast on screen.
const DismissAfter = 5 * time.Second

// Toast is a dismissible notification.
type Toast struct {
	Message        string `json:"message"`
	Type           Type   `json:"type"`
	DismissAfterMs int64  `json:"dismissAfterMs"`
}

func newToast(t Type, msg string) Toast {
	return Toast{Message: msg, Type: t, DismissAfterMs: DismissAfter.Milliseconds()}
}

func Success(msg string) Toast { return newToast(TypeSuccess, msg) }
func Error(msg string) Toast   { return newToast(TypeError, msg) }
func Info(msg string) Toast    { return newToast(TypeInfo, msg) }

// Discard drops every toast.
type Discard struct{}

func (Discard) Notify(string, Toast) {}
