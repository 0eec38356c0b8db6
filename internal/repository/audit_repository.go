package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-kit/complaint-service/internal/domain"
)

// AuditLogRepository stores immutable audit entries. The table is insert-only;
// there is deliberately no update or delete. Create takes the mutation's
// transaction so the entry commits atomically with the change it records.
type AuditLogRepository interface {
	Create(ctx context.Context, tx pgx.Tx, entry *domain.AuditEntry) error
	ListByComplaint(ctx context.Context, complaintID string) ([]domain.AuditEntry, error)
}

type auditLogRepository struct {
	pool *pgxpool.Pool
}

// NewAuditLogRepository builds repository.
func NewAuditLogRepository(pool *pgxpool.Pool) AuditLogRepository {
	return &auditLogRepository{pool: pool}
}

func (r *auditLogRepository) Create(ctx context.Context, tx pgx.Tx, entry *domain.AuditEntry) error {
	const query = `
        INSERT INTO complaint_audit_log (complaint_id, action, actor_type, actor_id, old_value, new_value, details)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, seq, created_at`
	return tx.QueryRow(ctx, query,
		entry.ComplaintID,
		entry.Action,
		entry.ActorType,
		entry.ActorID,
		entry.OldValue,
		entry.NewValue,
		entry.Details,
	).Scan(&entry.ID, &entry.Seq, &entry.CreatedAt)
}

func (r *auditLogRepository) ListByComplaint(ctx context.Context, complaintID string) ([]domain.AuditEntry, error) {
	const query = `
        SELECT id, seq, complaint_id, action, actor_type, actor_id, old_value, new_value, details, created_at
        FROM complaint_audit_log WHERE complaint_id=$1 ORDER BY created_at ASC, seq ASC`
	rows, err := r.pool.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.Seq,
			&entry.ComplaintID,
			&entry.Action,
			&entry.ActorType,
			&entry.ActorID,
			&entry.OldValue,
			&entry.NewValue,
			&entry.Details,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
