// AngelaMos | 2026
// repository.go

package rolerequest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/casannunci/backend/internal/account"
	"github.com/casannunci/backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, req *RoleRequest) error
	GetByID(ctx context.Context, id string) (*RoleRequest, error)
	HasPending(ctx context.Context, userID string) (bool, error)
	Approve(ctx context.Context, id, reviewerID string) error
	Reject(ctx context.Context, id, reviewerID, notes string) error
	UpdateNotes(ctx context.Context, id, notes string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params ListParams) ([]RoleRequest, int, error)
	ListByUser(ctx context.Context, userID string) ([]RoleRequest, error)
	CountPending(ctx context.Context) (int, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const requestColumns = `id, user_id, requested_role, status, reason,
       admin_notes, reviewed_by, reviewed_at, created_at, updated_at`

func (r *repository) Create(ctx context.Context, req *RoleRequest) error {
	query := `
		INSERT INTO role_requests (
			id, user_id, requested_role, status, reason
		) VALUES (
			$1, $2, $3, $4, $5
		)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		req.ID,
		req.UserID,
		req.RequestedRole,
		req.Status,
		req.Reason,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		// Partial unique index on (user_id) WHERE status = 'in_attesa'
		// backstops the one-pending-request rule under races.
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("create role request: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create role request: %w", err)
	}

	return nil
}

func (r *repository) GetByID(
	ctx context.Context,
	id string,
) (*RoleRequest, error) {
	query := `SELECT ` + requestColumns + `
		FROM role_requests
		WHERE id = $1`

	var req RoleRequest
	err := r.db.GetContext(ctx, &req, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get role request: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get role request: %w", err)
	}

	return &req, nil
}

func (r *repository) HasPending(
	ctx context.Context,
	userID string,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM role_requests
			WHERE user_id = $1 AND status = $2
		)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, userID, StatusInAttesa)
	if err != nil {
		return false, fmt.Errorf("check pending role request: %w", err)
	}

	return exists, nil
}

// Approve stamps the request and upgrades the user's role in one
// transaction. The status guard on the request row is the linearization
// point: two concurrent approvals can both read in_attesa, only one update
// sticks, and the loser rolls back without touching the user.
func (r *repository) Approve(ctx context.Context, id, reviewerID string) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			UPDATE role_requests
			SET status = $2, reviewed_by = $3, reviewed_at = NOW(),
			    updated_at = NOW()
			WHERE id = $1 AND status = $4
			RETURNING user_id`

		var userID string
		err := tx.QueryRowxContext(ctx, query,
			id, StatusApprovato, reviewerID, StatusInAttesa,
		).Scan(&userID)
		if errors.Is(err, sql.ErrNoRows) {
			return r.transitionError(ctx, id, "approve role request")
		}
		if err != nil {
			return fmt.Errorf("approve role request: %w", err)
		}

		if err := account.UpdateRoleTx(ctx, tx, userID, RequestedRole); err != nil {
			return fmt.Errorf("approve role request: %w", err)
		}

		return nil
	})
}

func (r *repository) Reject(
	ctx context.Context,
	id, reviewerID, notes string,
) error {
	query := `
		UPDATE role_requests
		SET status = $2, admin_notes = $3, reviewed_by = $4,
		    reviewed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = $5`

	result, err := r.db.ExecContext(ctx, query,
		id, StatusRifiutato, notes, reviewerID, StatusInAttesa)
	if err != nil {
		return fmt.Errorf("reject role request: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reject role request: %w", err)
	}
	if rows == 0 {
		return r.transitionError(ctx, id, "reject role request")
	}

	return nil
}

func (r *repository) transitionError(
	ctx context.Context,
	id, op string,
) error {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM role_requests WHERE id = $1)`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	return fmt.Errorf("%s: already reviewed: %w", op, core.ErrConflict)
}

func (r *repository) UpdateNotes(ctx context.Context, id, notes string) error {
	query := `
		UPDATE role_requests
		SET admin_notes = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, notes)
	if err != nil {
		return fmt.Errorf("update role request notes: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update role request notes: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update role request notes: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM role_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete role request: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete role request: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete role request: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]RoleRequest, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	if params.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, params.Status)
		argIdx++
	}

	whereClause := "TRUE"
	if len(conditions) > 0 {
		whereClause = strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM role_requests WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count role requests: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM role_requests
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		requestColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var requests []RoleRequest
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list role requests: %w", err)
	}

	return requests, total, nil
}

func (r *repository) ListByUser(
	ctx context.Context,
	userID string,
) ([]RoleRequest, error) {
	query := `SELECT ` + requestColumns + `
		FROM role_requests
		WHERE user_id = $1
		ORDER BY created_at DESC`

	var requests []RoleRequest
	if err := r.db.SelectContext(ctx, &requests, query, userID); err != nil {
		return nil, fmt.Errorf("list user role requests: %w", err)
	}

	return requests, nil
}

func (r *repository) CountPending(ctx context.Context) (int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM role_requests WHERE status = $1`,
		StatusInAttesa)
	if err != nil {
		return 0, fmt.Errorf("count pending role requests: %w", err)
	}
	return total, nil
}
