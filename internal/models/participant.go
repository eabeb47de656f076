package models

import "time"

// Participant is a registered room member. The name doubles as the key;
// there is no account record behind it.
type Participant struct {
	Name     string    `bson:"name" json:"name"`
	JoinedAt time.Time `bson:"joinedAt" json:"joinedAt"`
	LastSeen time.Time `bson:"lastSeen" json:"lastSeen"`
}
