package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Achyut2001/Data-provider-Service/internal/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// PropertyRepository stores listings in the properties table.
type PropertyRepository struct {
	db DBTX
}

var _ core.PropertyRepository = (*PropertyRepository)(nil)

const propertyColumns = `property_title, description, property_type, address_line1, city, state,
	country, pincode, latitude, longitude, host_id, host_name, host_contact, host_email,
	base_price, currency, amenities, property_url, status, created_at, updated_at`

const propertyUpdates = `
	property_title = EXCLUDED.property_title,
	description    = EXCLUDED.description,
	property_type  = EXCLUDED.property_type,
	address_line1  = EXCLUDED.address_line1,
	city           = EXCLUDED.city,
	state          = EXCLUDED.state,
	country        = EXCLUDED.country,
	pincode        = EXCLUDED.pincode,
	latitude       = EXCLUDED.latitude,
	longitude      = EXCLUDED.longitude,
	host_id        = EXCLUDED.host_id,
	host_name      = EXCLUDED.host_name,
	host_contact   = EXCLUDED.host_contact,
	host_email     = EXCLUDED.host_email,
	base_price     = EXCLUDED.base_price,
	currency       = EXCLUDED.currency,
	amenities      = EXCLUDED.amenities,
	property_url   = EXCLUDED.property_url,
	status         = EXCLUDED.status,
	updated_at     = EXCLUDED.updated_at`

var (
	insertProperty = `INSERT INTO properties (` + propertyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING property_id`

	upsertProperty = `INSERT INTO properties (property_id, ` + propertyColumns + `)
		VALUES ($22, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT (property_id) DO UPDATE SET` + propertyUpdates + `
		RETURNING property_id`

	syncPropertySequence = `SELECT setval(pg_get_serial_sequence('properties', 'property_id'),
		GREATEST((SELECT MAX(property_id) FROM properties), 1))`
)

func propertyArgs(p *core.Property) []any {
	amenities := p.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	args := []any{
		text(p.Title), text(p.Description), text(p.PropertyType), text(p.AddressLine1),
		text(p.City), text(p.State), text(p.Country), text(p.Pincode),
		p.Latitude, p.Longitude, p.HostID, text(p.HostName), text(p.HostContact), text(p.HostEmail),
		p.BasePrice, text(p.Currency), amenities, text(p.PropertyURL), p.Status,
		p.CreatedAt, p.UpdatedAt,
	}
	if p.ID != nil {
		args = append(args, *p.ID)
	}
	return args
}

func propertyQuery(p *core.Property) string {
	if p.ID != nil {
		return upsertProperty
	}
	return insertProperty
}

// Save inserts or updates a single property and records its id.
func (r *PropertyRepository) Save(ctx context.Context, p *core.Property) error {
	return r.SaveAll(ctx, []*core.Property{p})
}

// SaveAll writes all properties in one batch. Properties with a pre-assigned
// id are upserted; the others receive ids from the table's sequence.
func (r *PropertyRepository) SaveAll(ctx context.Context, props []*core.Property) error {
	if len(props) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	explicitIDs := false
	for _, p := range props {
		batch.Queue(propertyQuery(p), propertyArgs(p)...)
		explicitIDs = explicitIDs || p.ID != nil
	}
	if explicitIDs {
		batch.Queue(syncPropertySequence)
	}

	br := r.db.SendBatch(ctx, batch)
	for i, p := range props {
		var id int64
		if err := br.QueryRow().Scan(&id); err != nil {
			br.Close()
			return fmt.Errorf("failed to save property %d of %d: %w", i+1, len(props), err)
		}
		p.ID = &id
	}
	if explicitIDs {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to sync property id sequence: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to save properties: %w", err)
	}
	return nil
}

// FindByID returns core.ErrPropertyNotFound for an unknown id.
func (r *PropertyRepository) FindByID(ctx context.Context, id int64) (*core.Property, error) {
	row := r.db.QueryRow(ctx,
		`SELECT property_id, `+propertyColumns+` FROM properties WHERE property_id = $1`, id)
	p, err := scanProperty(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrPropertyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	return p, nil
}

// FindByStatus returns the properties with the given status, ordered by id.
func (r *PropertyRepository) FindByStatus(ctx context.Context, status string) ([]*core.Property, error) {
	rows, err := r.db.Query(ctx,
		`SELECT property_id, `+propertyColumns+` FROM properties WHERE status = $1 ORDER BY property_id`, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	defer rows.Close()

	props := []*core.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		props = append(props, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return props, nil
}

func scanProperty(row pgx.Row) (*core.Property, error) {
	var (
		p  core.Property
		id int64
		t  [13]pgtype.Text
	)
	err := row.Scan(
		&id,
		&t[0], &t[1], &t[2], &t[3], &t[4], &t[5], &t[6], &t[7],
		&p.Latitude, &p.Longitude, &p.HostID, &t[8], &t[9], &t[10],
		&p.BasePrice, &t[11], &p.Amenities, &t[12], &p.Status,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.ID = &id
	p.Title, p.Description, p.PropertyType, p.AddressLine1 = t[0].String, t[1].String, t[2].String, t[3].String
	p.City, p.State, p.Country, p.Pincode = t[4].String, t[5].String, t[6].String, t[7].String
	p.HostName, p.HostContact, p.HostEmail = t[8].String, t[9].String, t[10].String
	p.Currency, p.PropertyURL = t[11].String, t[12].String
	if p.Amenities == nil {
		p.Amenities = []string{}
	}
	return &p, nil
}
