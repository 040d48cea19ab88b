package services

import (
	"strings"

	"github.com/google/uuid"

	"github.com/bobby-s-dev/trip-planner/internal/models"
)

// OwnerKey is an owner identifier normalized at the boundary. Structured keys
// are store-generated UUIDs; anything else is an opaque external identifier.
type OwnerKey struct {
	raw        string
	structured bool
}

// ParseOwnerKey normalizes raw. It returns false when no owner was given.
func ParseOwnerKey(raw string) (OwnerKey, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return OwnerKey{}, false
	}
	_, err := uuid.Parse(raw)
	return OwnerKey{raw: raw, structured: err == nil}, true
}

func (k OwnerKey) String() string { return k.raw }

// Structured reports whether the key has the store's identifier shape.
func (k OwnerKey) Structured() bool { return k.structured }

// ExpenseQuery returns the expense selection for this owner given the owner's
// trips. Structured owners match expenses through their trips; opaque owners
// match on the expense's own owner field.
func (k OwnerKey) ExpenseQuery(trips []models.TripRecord) models.ExpenseQuery {
	if !k.structured {
		return models.ExpenseQuery{OwnerID: k.raw}
	}
	ids := make([]string, 0, len(trips))
	for _, t := range trips {
		ids = append(ids, t.ID)
	}
	return models.ExpenseQuery{TripIDs: ids}
}
