package models

import "time"

// Message kinds as they travel on the wire. Status entries are produced by
// the server only (join/leave notices); clients post message or
// private_message.
const (
	KindStatus  = "status"
	KindMessage = "message"
	KindPrivate = "private_message"
)

// Broadcast is the reserved name that addresses the whole room. It cannot be
// registered as a participant name.
const Broadcast = "Todos"

// Message is a single board entry. Time is the wall-clock stamp shown to
// clients; CreatedAt is the server-assigned instant used for ordering.
type Message struct {
	ID        string    `bson:"id" json:"id"`
	From      string    `bson:"from" json:"from"`
	To        string    `bson:"to" json:"to"`
	Text      string    `bson:"text" json:"text"`
	Kind      string    `bson:"kind" json:"kind"`
	Time      string    `bson:"time" json:"time"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// VisibleTo reports whether viewer may read m. Status and public messages are
// visible to everyone, as is anything sent from the broadcast name; a private
// message is visible only to its two endpoints.
func (m *Message) VisibleTo(viewer string) bool {
	switch m.Kind {
	case KindStatus, KindMessage:
		return true
	}
	if m.From == Broadcast {
		return true
	}
	return m.From == viewer || m.To == viewer
}
