package schema

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// Collection names one of the persisted record sets. The value doubles as
// the store key.
type Collection string

const (
	Influencers    Collection = "influencers"
	Collaborations Collection = "collaborations"
)

// MetadataKey is the store key holding SyncMetadata.
const MetadataKey = "syncMetadata"

// Collections lists every persisted collection in refresh order.
var Collections = []Collection{Influencers, Collaborations}

// IsValid reports whether c is a persisted collection.
func (c Collection) IsValid() bool {
	return c == Influencers || c == Collaborations
}

// ParseCollection resolves a collection name.
func ParseCollection(name string) (Collection, error) {
	c := Collection(name)
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCollection, name)
	}
	return c, nil
}

// Record is the set of types stored in a collection.
type Record interface {
	Influencer | Collaboration
}

// CollectionOf returns the collection records of type T are stored in.
func CollectionOf[T Record]() Collection {
	var zero T
	switch any(zero).(type) {
	case Influencer:
		return Influencers
	default:
		return Collaborations
	}
}

// SyncMetadata records when the local store was last reconciled and which
// device owns it.
type SyncMetadata struct {
	// LastSync is in epoch milliseconds.
	LastSync int64  `json:"lastSync"`
	DeviceID string `json:"deviceId"`
}

// NewID returns a fresh record identifier. IDs are UUIDv7, so they sort
// roughly by creation time.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NewDeviceID returns a random device identifier of the form device_<hex>.
func NewDeviceID() string {
	var b [12]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "device_" + uuid.NewString()
	}
	return "device_" + hex.EncodeToString(b[:])
}
