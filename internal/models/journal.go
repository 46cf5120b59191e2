package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mood classifies how the author felt when writing an entry.
type Mood string

const (
	MoodHappy   Mood = "happy"
	MoodSad     Mood = "sad"
	MoodNeutral Mood = "neutral"
	MoodExcited Mood = "excited"
	MoodAnxious Mood = "anxious"
	MoodAngry   Mood = "angry"
	MoodOther   Mood = "other"
)

// Moods lists every accepted mood value.
var Moods = []Mood{MoodHappy, MoodSad, MoodNeutral, MoodExcited, MoodAnxious, MoodAngry, MoodOther}

// Valid reports whether m is one of the accepted mood values.
func (m Mood) Valid() bool {
	for _, v := range Moods {
		if m == v {
			return true
		}
	}
	return false
}

// JournalEntry is one private journal record. UserID is set once at creation
// from the authenticated session and never changes afterwards.
type JournalEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title     string             `bson:"title" json:"title"`
	Content   string             `bson:"content" json:"content"`
	Mood      Mood               `bson:"mood" json:"mood"`
	Tags      []string           `bson:"tags" json:"tags"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
	UserID    string             `bson:"user_id" json:"userId"`
}
