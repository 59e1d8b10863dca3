package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is a text entry owned by exactly one user. The owner is fixed at
// creation and posts are never edited.
type Post struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OwnerID   primitive.ObjectID `json:"userid" bson:"userid"`
	Title     string             `json:"title" bson:"title"`
	Content   string             `json:"content" bson:"content"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}
