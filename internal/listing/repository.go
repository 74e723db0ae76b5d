// AngelaMos | 2026
// repository.go

package listing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/casannunci/backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, l *Listing) error
	GetByID(ctx context.Context, id string) (*Listing, error)
	Update(ctx context.Context, l *Listing) error
	Delete(ctx context.Context, id string) error
	Approve(
		ctx context.Context,
		id string,
		publishedAt, expiresAt time.Time,
	) error
	Reject(ctx context.Context, id string) error
	IncrementView(ctx context.Context, id string) error
	List(ctx context.Context, params ListParams) ([]Listing, int, error)
	CountByStatus(ctx context.Context) (StatusCounts, error)
	MarkExpired(ctx context.Context, now time.Time) (int64, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const listingColumns = `id, owner_id, title, description, type, category,
       price, location, city, province, address, images, surface, rooms,
       bathrooms, floor, energy_class, features, status, views,
       created_at, updated_at, published_at, expires_at`

func (r *repository) Create(ctx context.Context, l *Listing) error {
	query := `
		INSERT INTO listings (
			id, owner_id, title, description, type, category, price,
			location, city, province, address, images, surface, rooms,
			bathrooms, floor, energy_class, features, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19
		)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		l.ID,
		l.OwnerID,
		l.Title,
		l.Description,
		l.Type,
		l.Category,
		l.Price,
		l.Location,
		l.City,
		l.Province,
		l.Address,
		l.Images,
		l.Surface,
		l.Rooms,
		l.Bathrooms,
		l.Floor,
		l.EnergyClass,
		l.Features,
		l.Status,
	).Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create listing: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Listing, error) {
	query := `SELECT ` + listingColumns + `
		FROM listings
		WHERE id = $1`

	var l Listing
	err := r.db.GetContext(ctx, &l, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get listing: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}

	return &l, nil
}

func (r *repository) Update(ctx context.Context, l *Listing) error {
	query := `
		UPDATE listings
		SET title = $2, description = $3, type = $4, category = $5,
		    price = $6, location = $7, city = $8, province = $9,
		    address = $10, images = $11, surface = $12, rooms = $13,
		    bathrooms = $14, floor = $15, energy_class = $16,
		    features = $17, status = $18, published_at = $19,
		    expires_at = $20, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		l.ID,
		l.Title,
		l.Description,
		l.Type,
		l.Category,
		l.Price,
		l.Location,
		l.City,
		l.Province,
		l.Address,
		l.Images,
		l.Surface,
		l.Rooms,
		l.Bathrooms,
		l.Floor,
		l.EnergyClass,
		l.Features,
		l.Status,
		l.PublishedAt,
		l.ExpiresAt,
	).Scan(&l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update listing: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}

	return nil
}

// Delete removes the listing and its favorites in one transaction. The FK
// on favorites cascades too, the explicit delete keeps the intent visible
// and the row counts honest.
func (r *repository) Delete(ctx context.Context, id string) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM favorites WHERE listing_id = $1`, id,
		); err != nil {
			return fmt.Errorf("delete listing favorites: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			`DELETE FROM listings WHERE id = $1`, id,
		)
		if err != nil {
			return fmt.Errorf("delete listing: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete listing: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("delete listing: %w", core.ErrNotFound)
		}

		return nil
	})
}

// Approve flips in_attesa to pubblicato and stamps the publish window in the
// same statement. A zero row count means the listing either vanished or is
// not awaiting review; a follow-up read tells the two apart.
func (r *repository) Approve(
	ctx context.Context,
	id string,
	publishedAt, expiresAt time.Time,
) error {
	query := `
		UPDATE listings
		SET status = $2, published_at = $3, expires_at = $4,
		    updated_at = NOW()
		WHERE id = $1 AND status = $5`

	result, err := r.db.ExecContext(ctx, query,
		id, StatusPubblicato, publishedAt, expiresAt, StatusInAttesa,
	)
	if err != nil {
		return fmt.Errorf("approve listing: %w", err)
	}

	return r.checkTransition(ctx, result, id, "approve listing")
}

func (r *repository) Reject(ctx context.Context, id string) error {
	query := `
		UPDATE listings
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3`

	result, err := r.db.ExecContext(ctx, query,
		id, StatusRifiutato, StatusInAttesa,
	)
	if err != nil {
		return fmt.Errorf("reject listing: %w", err)
	}

	return r.checkTransition(ctx, result, id, "reject listing")
}

func (r *repository) checkTransition(
	ctx context.Context,
	result sql.Result,
	id, op string,
) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows > 0 {
		return nil
	}

	var exists bool
	err = r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM listings WHERE id = $1)`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return fmt.Errorf("%s: %w", op, core.ErrConflict)
}

func (r *repository) IncrementView(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE listings SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment view: %w", err)
	}
	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]Listing, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(title ILIKE $%d OR description ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+core.EscapeLike(params.Search)+"%")
		argIdx++
	}

	if params.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argIdx))
		args = append(args, params.Type)
		argIdx++
	}

	if params.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIdx))
		args = append(args, params.Category)
		argIdx++
	}

	if params.City != "" {
		conditions = append(conditions, fmt.Sprintf("city ILIKE $%d", argIdx))
		args = append(args, "%"+core.EscapeLike(params.City)+"%")
		argIdx++
	}

	if params.Province != "" {
		conditions = append(conditions, fmt.Sprintf("province = $%d", argIdx))
		args = append(args, params.Province)
		argIdx++
	}

	if params.MinPrice != nil {
		conditions = append(conditions, fmt.Sprintf("price >= $%d", argIdx))
		args = append(args, *params.MinPrice)
		argIdx++
	}

	if params.MaxPrice != nil {
		conditions = append(conditions, fmt.Sprintf("price <= $%d", argIdx))
		args = append(args, *params.MaxPrice)
		argIdx++
	}

	if params.OwnerID != "" {
		conditions = append(conditions, fmt.Sprintf("owner_id = $%d", argIdx))
		args = append(args, params.OwnerID)
		argIdx++
	}

	if !params.AnyStatus {
		if params.Status != "" {
			conditions = append(conditions,
				fmt.Sprintf("status = $%d", argIdx))
			args = append(args, params.Status)
			argIdx++
		}
		if params.OnlyLive {
			conditions = append(conditions, fmt.Sprintf(
				"status = $%d AND (expires_at IS NULL OR expires_at > NOW())",
				argIdx))
			args = append(args, StatusPubblicato)
			argIdx++
		}
	}

	whereClause := "TRUE"
	if len(conditions) > 0 {
		whereClause = strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM listings WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count listings: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM listings
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		listingColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var listings []Listing
	if err := r.db.SelectContext(ctx, &listings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list listings: %w", err)
	}

	return listings, total, nil
}

func (r *repository) CountByStatus(ctx context.Context) (StatusCounts, error) {
	query := `
		SELECT status, COUNT(*) AS n
		FROM listings
		GROUP BY status`

	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return StatusCounts{}, fmt.Errorf("count listings by status: %w", err)
	}
	defer rows.Close()

	var counts StatusCounts
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return StatusCounts{}, fmt.Errorf(
				"count listings by status: %w", err)
		}

		switch status {
		case StatusBozza:
			counts.Bozza = n
		case StatusInAttesa:
			counts.InAttesa = n
		case StatusPubblicato:
			counts.Pubblicato = n
		case StatusScaduto:
			counts.Scaduto = n
		case StatusRifiutato:
			counts.Rifiutato = n
		}
		counts.Total += n
	}
	if err := rows.Err(); err != nil {
		return StatusCounts{}, fmt.Errorf("count listings by status: %w", err)
	}

	return counts, nil
}

// MarkExpired sweeps published listings past their expiry into scaduto. The
// guard on expires_at makes the sweep idempotent.
func (r *repository) MarkExpired(
	ctx context.Context,
	now time.Time,
) (int64, error) {
	query := `
		UPDATE listings
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND expires_at IS NOT NULL AND expires_at < $3`

	result, err := r.db.ExecContext(ctx, query,
		StatusScaduto, StatusPubblicato, now)
	if err != nil {
		return 0, fmt.Errorf("mark expired listings: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark expired listings: %w", err)
	}

	return rows, nil
}
