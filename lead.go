package leadsapi

import (
	"context"
	"fmt"
	"time"
)

// ServiceType is one of the fixed set of services a lead can register
// interest in.
type ServiceType string

const (
	ServiceDelivery ServiceType = "DELIVERY"
	ServicePickup   ServiceType = "PICKUP"
	ServicePayment  ServiceType = "PAYMENT"
)

// ParseServiceType maps a raw string from the transport boundary to a
// ServiceType. Unknown values fail before reaching the service layer.
func ParseServiceType(s string) (ServiceType, error) {
	switch ServiceType(s) {
	case ServiceDelivery, ServicePickup, ServicePayment:
		return ServiceType(s), nil
	}
	return "", &ValidationError{Reason: fmt.Sprintf("invalid service type: %s", s)}
}

// ServiceSelection is one requested service attached to a Lead. It is owned
// by its parent lead and removed with it (cascade at the storage layer).
type ServiceSelection struct {
	ID          string      `db:"id" json:"id"`
	ServiceType ServiceType `db:"service_type" json:"serviceType"`
	CreatedAt   time.Time   `db:"created_at" json:"createdAt"`
}

// Lead is a registered expression of interest.
type Lead struct {
	ID        string             `db:"id" json:"id"`
	Name      string             `db:"name" json:"name"`
	Email     string             `db:"email" json:"email"`
	Mobile    string             `db:"mobile" json:"mobile"`
	Postcode  string             `db:"postcode" json:"postcode"`
	CreatedAt time.Time          `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `db:"updated_at" json:"updatedAt"`
	Services  []ServiceSelection `json:"services"`
}

// CreateLeadInput is the candidate data for a new lead, as submitted at the
// boundary and as normalized by ValidateCreateInput.
type CreateLeadInput struct {
	Name     string
	Email    string
	Mobile   string
	Postcode string
	Services []ServiceType
}

// GetLeadsOptions controls paging and ordering of lead listings. A Limit of
// zero or less means no limit. Zero values for OrderBy/OrderDirection fall
// back to createdAt desc at the storage layer.
type GetLeadsOptions struct {
	Limit          int
	Offset         int
	OrderBy        string
	OrderDirection string
}

// Sortable lead fields and directions accepted by GetLeadsOptions.
const (
	OrderByCreatedAt = "createdAt"
	OrderByUpdatedAt = "updatedAt"
	OrderByName      = "name"
	OrderByEmail     = "email"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// LeadStorer is the persistence boundary for leads. It owns no business
// rules. FindByID and FindByEmail return (nil, nil) when no lead exists.
type LeadStorer interface {
	Create(ctx context.Context, input CreateLeadInput) (*Lead, error)
	FindByID(ctx context.Context, id string) (*Lead, error)
	FindByEmail(ctx context.Context, email string) (*Lead, error)
	FindAll(ctx context.Context, opts GetLeadsOptions) ([]Lead, error)
	Count(ctx context.Context) (int64, error)
}
