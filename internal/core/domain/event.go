package domain

import "time"

type EventKind string

const (
	KindTriggered EventKind = "triggered"
	KindRecovered EventKind = "recovered"
)

// NotificationEvent is emitted when a signal crosses a trigger or recovery
// edge; it is delivered once and not persisted.
type NotificationEvent struct {
	Kind    EventKind
	Signal  Signal
	Title   string
	Message string
	At      time.Time
}
