// Package notification delivers rendered trigger notifications to presentation sinks.
package notification

import "time"

// Payload is a rendered notification handed to a presentation sink
type Payload struct {
	ID        string
	Header    string
	Body      string
	AvatarURL string
	// Link is the client route of the message that fired the notification
	Link string
	// Timeout is how long a toast stays visible, zero meaning until dismissed
	Timeout time.Duration
	// Urgent asks the sink for a desktop style alert instead of a toast
	Urgent bool
	Time   time.Time
	// OnActivate runs when the user activates the notification, if the sink supports it
	OnActivate func()
}

// Notifier is a presentation sink.
type Notifier interface {
	Send(payload Payload) error
}

// NotifierFunc adapts a function to the Notifier interface
type NotifierFunc func(Payload) error

// Send calls f(payload)
func (f NotifierFunc) Send(payload Payload) error {
	return f(payload)
}
