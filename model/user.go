package model

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrUnknownProvider is returned for provider names the app has no field for.
var ErrUnknownProvider = errors.New("unknown identity provider")

// Provider names a third-party identity provider.
type Provider string

// Supported providers.
const (
	ProviderGoogle   Provider = "google"
	ProviderFacebook Provider = "facebook"
)

// Providers lists every provider a User can carry an id for.
var Providers = []Provider{ProviderGoogle, ProviderFacebook}

// Field is the bson field holding the provider's subject id.
func (p Provider) Field() (string, error) {
	switch p {
	case ProviderGoogle:
		return "googleId", nil
	case ProviderFacebook:
		return "facebookId", nil
	}
	return "", ErrUnknownProvider
}

// User contains data for tracking users. Each login flow reaches a user by
// exactly one of Username, GoogleID or FacebookID; accounts are never merged.
type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Username     string             `json:"username,omitempty" bson:"username,omitempty"`
	PasswordHash string             `json:"-" bson:"passwordHash,omitempty"`
	GoogleID     string             `json:"googleId,omitempty" bson:"googleId,omitempty"`
	FacebookID   string             `json:"facebookId,omitempty" bson:"facebookId,omitempty"`
}

// ProviderID returns the subject id stored for p, or "" if none.
func (u *User) ProviderID(p Provider) string {
	switch p {
	case ProviderGoogle:
		return u.GoogleID
	case ProviderFacebook:
		return u.FacebookID
	}
	return ""
}

// SetProviderID stores the subject id for p.
func (u *User) SetProviderID(p Provider, subject string) error {
	switch p {
	case ProviderGoogle:
		u.GoogleID = subject
	case ProviderFacebook:
		u.FacebookID = subject
	default:
		return ErrUnknownProvider
	}
	return nil
}
