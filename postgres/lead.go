package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	leadsapi "github.com/phbpx/leads-api"
)

// lib/pq errorCodeNames
// https://github.com/lib/pq/blob/master/error.go#L178
const uniqueViolation = "23505"

// orderColumns whitelists the sortable fields so the order clause is never
// built from raw request input.
var orderColumns = map[string]string{
	leadsapi.OrderByCreatedAt: "created_at",
	leadsapi.OrderByUpdatedAt: "updated_at",
	leadsapi.OrderByName:      "name",
	leadsapi.OrderByEmail:     "email",
}

// LeadStore is the sole point of contact with the leads tables. It applies
// no business rules; storage faults propagate untranslated, except the
// unique-violation on email which becomes a DuplicateEmailError so both
// sides of the create race surface the same condition.
type LeadStore struct {
	db *sqlx.DB
}

func NewLeadStore(db *sqlx.DB) *LeadStore {
	return &LeadStore{
		db: db,
	}
}

// Create inserts one lead row plus one lead_services row per requested
// service type, in a single transaction.
func (s *LeadStore) Create(ctx context.Context, input leadsapi.CreateLeadInput) (*leadsapi.Lead, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	lead := leadsapi.Lead{
		ID:        uuid.NewString(),
		Name:      input.Name,
		Email:     input.Email,
		Mobile:    input.Mobile,
		Postcode:  input.Postcode,
		CreatedAt: now,
		UpdatedAt: now,
	}

	const insertLead = `
	INSERT INTO leads (
		id, name, email, mobile, postcode, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7
	)`

	_, err = tx.ExecContext(ctx, insertLead,
		lead.ID,
		lead.Name,
		lead.Email,
		lead.Mobile,
		lead.Postcode,
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	if err != nil {
		tx.Rollback()
		if pqerr, ok := err.(*pq.Error); ok && pqerr.Code == uniqueViolation {
			return nil, &leadsapi.DuplicateEmailError{Email: input.Email}
		}
		return nil, err
	}

	const insertService = `
	INSERT INTO lead_services (
		id, lead_id, service_type, created_at
	) VALUES (
		$1, $2, $3, $4
	)`

	for _, serviceType := range input.Services {
		selection := leadsapi.ServiceSelection{
			ID:          uuid.NewString(),
			ServiceType: serviceType,
			CreatedAt:   time.Now().UTC(),
		}
		if _, err := tx.ExecContext(ctx, insertService,
			selection.ID,
			lead.ID,
			selection.ServiceType,
			selection.CreatedAt,
		); err != nil {
			tx.Rollback()
			return nil, err
		}
		lead.Services = append(lead.Services, selection)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &lead, nil
}

// FindByID returns the lead with its services ordered by created_at
// ascending, or (nil, nil) if no such lead exists.
func (s *LeadStore) FindByID(ctx context.Context, id string) (*leadsapi.Lead, error) {
	const q = `
	SELECT
		id, name, email, mobile, postcode, created_at, updated_at
	FROM leads
	WHERE id = $1`

	var lead leadsapi.Lead
	if err := s.db.GetContext(ctx, &lead, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	services, err := s.servicesFor(ctx, []string{lead.ID})
	if err != nil {
		return nil, err
	}
	lead.Services = services[lead.ID]

	return &lead, nil
}

// FindByEmail looks a lead up by email, case-insensitively. Callers pass a
// lower-cased email by convention; the query re-lowercases anyway.
func (s *LeadStore) FindByEmail(ctx context.Context, email string) (*leadsapi.Lead, error) {
	const q = `
	SELECT
		id, name, email, mobile, postcode, created_at, updated_at
	FROM leads
	WHERE email = LOWER($1)`

	var lead leadsapi.Lead
	if err := s.db.GetContext(ctx, &lead, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	services, err := s.servicesFor(ctx, []string{lead.ID})
	if err != nil {
		return nil, err
	}
	lead.Services = services[lead.ID]

	return &lead, nil
}

// FindAll returns one page of leads with their services. The offset always
// applies (default 0); the limit applies only when positive.
func (s *LeadStore) FindAll(ctx context.Context, opts leadsapi.GetLeadsOptions) ([]leadsapi.Lead, error) {
	column, direction, err := orderClause(opts)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
	SELECT
		id, name, email, mobile, postcode, created_at, updated_at
	FROM leads
	ORDER BY %s %s
	OFFSET $1`, column, direction)

	args := []interface{}{opts.Offset}
	if opts.Limit > 0 {
		q += " LIMIT $2"
		args = append(args, opts.Limit)
	}

	var leads []leadsapi.Lead
	if err := s.db.SelectContext(ctx, &leads, q, args...); err != nil {
		return nil, err
	}
	if len(leads) == 0 {
		return []leadsapi.Lead{}, nil
	}

	ids := make([]string, len(leads))
	for i, lead := range leads {
		ids[i] = lead.ID
	}

	services, err := s.servicesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range leads {
		leads[i].Services = services[leads[i].ID]
	}

	return leads, nil
}

// Count returns the total lead row count.
func (s *LeadStore) Count(ctx context.Context) (int64, error) {
	const q = `SELECT COUNT(*) FROM leads`

	var count int64
	if err := s.db.GetContext(ctx, &count, q); err != nil {
		return 0, err
	}
	return count, nil
}

// servicesFor loads the service selections for the given lead ids, ordered
// by created_at ascending (selection order), grouped per lead.
func (s *LeadStore) servicesFor(ctx context.Context, leadIDs []string) (map[string][]leadsapi.ServiceSelection, error) {
	const q = `
	SELECT
		id, lead_id, service_type, created_at
	FROM lead_services
	WHERE lead_id = ANY($1::uuid[])
	ORDER BY created_at ASC`

	var rows []struct {
		ID          string               `db:"id"`
		LeadID      string               `db:"lead_id"`
		ServiceType leadsapi.ServiceType `db:"service_type"`
		CreatedAt   time.Time            `db:"created_at"`
	}
	if err := s.db.SelectContext(ctx, &rows, q, pq.Array(leadIDs)); err != nil {
		return nil, err
	}

	services := make(map[string][]leadsapi.ServiceSelection, len(leadIDs))
	for _, row := range rows {
		services[row.LeadID] = append(services[row.LeadID], leadsapi.ServiceSelection{
			ID:          row.ID,
			ServiceType: row.ServiceType,
			CreatedAt:   row.CreatedAt,
		})
	}
	return services, nil
}

func orderClause(opts leadsapi.GetLeadsOptions) (column, direction string, err error) {
	orderBy := opts.OrderBy
	if orderBy == "" {
		orderBy = leadsapi.OrderByCreatedAt
	}
	column, ok := orderColumns[orderBy]
	if !ok {
		return "", "", fmt.Errorf("unsupported order field: %s", opts.OrderBy)
	}

	switch opts.OrderDirection {
	case "":
		direction = "DESC"
	case leadsapi.OrderAsc:
		direction = "ASC"
	case leadsapi.OrderDesc:
		direction = "DESC"
	default:
		return "", "", fmt.Errorf("unsupported order direction: %s", opts.OrderDirection)
	}

	return column, direction, nil
}
