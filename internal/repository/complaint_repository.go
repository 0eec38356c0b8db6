package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-kit/complaint-service/internal/domain"
)

// ComplaintFilter captures staff search parameters.
type ComplaintFilter struct {
	StudentID   *string
	AssignedTo  *string
	Statuses    []domain.ComplaintStatus
	Categories  []domain.ComplaintCategory
	Priorities  []domain.ComplaintPriority
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// ComplaintRepository encapsulates complaint persistence. Mutating methods
// take the enclosing transaction so the complaint row, its audit entry, and
// any sibling rows commit together; GetForUpdate locks the aggregate row for
// the duration of that transaction.
type ComplaintRepository interface {
	Create(ctx context.Context, tx pgx.Tx, complaint *domain.Complaint) error
	Update(ctx context.Context, tx pgx.Tx, complaint *domain.Complaint) error
	GetByID(ctx context.Context, id string) (*domain.Complaint, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Complaint, error)
	ListWithFilter(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error)
}

type complaintRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintRepository instantiates repository.
func NewComplaintRepository(pool *pgxpool.Pool) ComplaintRepository {
	return &complaintRepository{pool: pool}
}

const complaintColumns = `id, student_id, assigned_to, title, description, category, priority, status,
               is_anonymous, is_draft, tags, escalation_level,
               created_at, updated_at, opened_at, resolved_at, escalated_at`

func (r *complaintRepository) Create(ctx context.Context, tx pgx.Tx, complaint *domain.Complaint) error {
	const query = `
        INSERT INTO complaints (student_id, assigned_to, title, description, category, priority, status, is_anonymous, is_draft, tags, escalation_level)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`
	return tx.QueryRow(ctx, query,
		complaint.StudentID,
		complaint.AssignedTo,
		complaint.Title,
		complaint.Description,
		complaint.Category,
		complaint.Priority,
		complaint.Status,
		complaint.IsAnonymous,
		complaint.IsDraft,
		complaint.Tags,
		complaint.EscalationLevel,
	).Scan(&complaint.ID, &complaint.CreatedAt, &complaint.UpdatedAt)
}

func (r *complaintRepository) Update(ctx context.Context, tx pgx.Tx, complaint *domain.Complaint) error {
	const query = `
        UPDATE complaints SET assigned_to=$1, title=$2, description=$3, category=$4, priority=$5,
            status=$6, is_anonymous=$7, is_draft=$8, tags=$9, escalation_level=$10,
            opened_at=$11, resolved_at=$12, escalated_at=$13, updated_at=NOW()
        WHERE id=$14`
	cmd, err := tx.Exec(ctx, query,
		complaint.AssignedTo,
		complaint.Title,
		complaint.Description,
		complaint.Category,
		complaint.Priority,
		complaint.Status,
		complaint.IsAnonymous,
		complaint.IsDraft,
		complaint.Tags,
		complaint.EscalationLevel,
		complaint.OpenedAt,
		complaint.ResolvedAt,
		complaint.EscalatedAt,
		complaint.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id=$1`
	return scanComplaintRow(r.pool.QueryRow(ctx, query, id))
}

func (r *complaintRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id=$1 FOR UPDATE`
	return scanComplaintRow(tx.QueryRow(ctx, query, id))
}

func scanComplaintRow(row pgx.Row) (*domain.Complaint, error) {
	var complaint domain.Complaint
	if err := row.Scan(
		&complaint.ID,
		&complaint.StudentID,
		&complaint.AssignedTo,
		&complaint.Title,
		&complaint.Description,
		&complaint.Category,
		&complaint.Priority,
		&complaint.Status,
		&complaint.IsAnonymous,
		&complaint.IsDraft,
		&complaint.Tags,
		&complaint.EscalationLevel,
		&complaint.CreatedAt,
		&complaint.UpdatedAt,
		&complaint.OpenedAt,
		&complaint.ResolvedAt,
		&complaint.EscalatedAt,
	); err != nil {
		return nil, err
	}
	return &complaint, nil
}

func (r *complaintRepository) ListWithFilter(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error) {
	base := `SELECT ` + complaintColumns + ` FROM complaints`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.StudentID != nil {
		args = append(args, *filter.StudentID)
		clauses = append(clauses, fmt.Sprintf("student_id=$%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Categories) > 0 {
		placeholders := make([]string, len(filter.Categories))
		for i, cat := range filter.Categories {
			args = append(args, cat)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("category IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Complaint
	for rows.Next() {
		var complaint domain.Complaint
		if err := rows.Scan(
			&complaint.ID,
			&complaint.StudentID,
			&complaint.AssignedTo,
			&complaint.Title,
			&complaint.Description,
			&complaint.Category,
			&complaint.Priority,
			&complaint.Status,
			&complaint.IsAnonymous,
			&complaint.IsDraft,
			&complaint.Tags,
			&complaint.EscalationLevel,
			&complaint.CreatedAt,
			&complaint.UpdatedAt,
			&complaint.OpenedAt,
			&complaint.ResolvedAt,
			&complaint.EscalatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, complaint)
	}
	return result, rows.Err()
}
