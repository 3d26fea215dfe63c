package domain

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle position of a load.
type Status string

const (
	StatusStandBy   Status = "stand-by"
	StatusActive    Status = "active"
	StatusInTransit Status = "in-transit"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusStandBy, StatusActive, StatusInTransit, StatusDelivered, StatusCancelled}

// ParseStatus accepts the canonical spelling as well as "stand by" / "in_transit" variants.
func ParseStatus(value string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.NewReplacer("_", "-", " ", "-").Replace(normalized)
	status := Status(normalized)
	if !status.Valid() {
		return "", Validation("status", "unknown load status "+value)
	}
	return status, nil
}

func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Load represents a shipment job posted by a shipper.
type Load struct {
	ID               string    `json:"id" bson:"_id"`
	ShipperID        string    `json:"shipper_id" bson:"shipper_id"`
	Origin           string    `json:"origin" bson:"origin"`
	Destination      string    `json:"destination" bson:"destination"`
	MaterialType     string    `json:"material_type" bson:"material_type"`
	Weight           float64   `json:"weight" bson:"weight"`
	Description      string    `json:"order_description,omitempty" bson:"description,omitempty"`
	Status           Status    `json:"status" bson:"status"`
	AssignedLoaderID *string   `json:"assigned_loader_id" bson:"assigned_loader_id"`
	PostedAt         time.Time `json:"posted_at" bson:"posted_at"`
	StatusChangedAt  time.Time `json:"status_changed_at" bson:"status_changed_at"`
}

// LoadDraft is the shipper-provided part of a load.
type LoadDraft struct {
	Origin       string
	Destination  string
	MaterialType string
	Weight       float64
	Description  string
}

// NewLoad builds an unsaved load owned by shipperID from a draft.
func NewLoad(draft LoadDraft, shipperID string) *Load {
	return &Load{
		ShipperID:    shipperID,
		Origin:       strings.TrimSpace(draft.Origin),
		Destination:  strings.TrimSpace(draft.Destination),
		MaterialType: strings.TrimSpace(draft.MaterialType),
		Weight:       draft.Weight,
		Description:  strings.TrimSpace(draft.Description),
	}
}

// Validate checks the invariants every stored load must satisfy.
func (l *Load) Validate() error {
	if l == nil {
		return ErrInvalidPayload
	}
	if l.ShipperID == "" {
		return Validation("shipper_id", "shipper is required")
	}
	if strings.TrimSpace(l.Origin) == "" {
		return Validation("origin", "origin is required")
	}
	if strings.TrimSpace(l.Destination) == "" {
		return Validation("destination", "destination is required")
	}
	if strings.TrimSpace(l.MaterialType) == "" {
		return Validation("material_type", "material type is required")
	}
	if !(l.Weight > 0) || math.IsInf(l.Weight, 0) {
		return Validation("weight", "weight must be a positive number")
	}
	return nil
}

// PrepareForCreate validates the load and stamps the fields the store owns:
// identifier, initial status and timestamps.
func (l *Load) PrepareForCreate(now time.Time) error {
	if err := l.Validate(); err != nil {
		return err
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if now.IsZero() {
		now = time.Now()
	}
	now = Stamp(now)
	l.Status = StatusStandBy
	l.AssignedLoaderID = nil
	l.PostedAt = now
	l.StatusChangedAt = now
	return nil
}

// Stamp normalizes a timestamp to UTC millisecond precision, the finest
// resolution every store driver round-trips.
func Stamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// AssignedTo returns the assigned loader id or "".
func (l *Load) AssignedTo() string {
	if l == nil || l.AssignedLoaderID == nil {
		return ""
	}
	return *l.AssignedLoaderID
}

// Apply mutates the load according to a committed status change. The
// assignment survives a cancel so the former loader can still list the load.
func (l *Load) Apply(change StatusChange) {
	l.Status = change.To
	l.StatusChangedAt = Stamp(change.At)
	if change.LoaderID != "" {
		loader := change.LoaderID
		l.AssignedLoaderID = &loader
	}
}

// Clone returns a deep copy safe to hand out of a store.
func (l *Load) Clone() *Load {
	if l == nil {
		return nil
	}
	c := *l
	if l.AssignedLoaderID != nil {
		loader := *l.AssignedLoaderID
		c.AssignedLoaderID = &loader
	}
	return &c
}

// VisibleTo reports whether the caller may read this load: its shipper, its
// assigned loader, or any loader while the load is still on the board.
func (l *Load) VisibleTo(caller Caller) bool {
	if l == nil {
		return false
	}
	switch caller.Role {
	case RoleShipper:
		return l.ShipperID == caller.UserID
	case RoleLoader:
		return l.Status == StatusStandBy || l.AssignedTo() == caller.UserID
	default:
		return false
	}
}
