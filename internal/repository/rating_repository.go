package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-kit/complaint-service/internal/domain"
)

// RatingRepository stores satisfaction ratings. Insert-only; the table
// carries a unique constraint on (complaint_id, student_id) backing the
// one-rating-per-student rule.
type RatingRepository interface {
	Create(ctx context.Context, tx pgx.Tx, rating *domain.Rating) error
	GetByComplaintAndStudent(ctx context.Context, complaintID, studentID string) (*domain.Rating, error)
	ListByComplaint(ctx context.Context, complaintID string) ([]domain.Rating, error)
}

type ratingRepository struct {
	pool *pgxpool.Pool
}

// NewRatingRepository builds repository.
func NewRatingRepository(pool *pgxpool.Pool) RatingRepository {
	return &ratingRepository{pool: pool}
}

func (r *ratingRepository) Create(ctx context.Context, tx pgx.Tx, rating *domain.Rating) error {
	const query = `
        INSERT INTO complaint_ratings (complaint_id, student_id, value, feedback)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return tx.QueryRow(ctx, query,
		rating.ComplaintID,
		rating.StudentID,
		rating.Value,
		rating.Feedback,
	).Scan(&rating.ID, &rating.CreatedAt)
}

func (r *ratingRepository) GetByComplaintAndStudent(ctx context.Context, complaintID, studentID string) (*domain.Rating, error) {
	const query = `
        SELECT id, complaint_id, student_id, value, feedback, created_at
        FROM complaint_ratings WHERE complaint_id=$1 AND student_id=$2`
	var rating domain.Rating
	if err := r.pool.QueryRow(ctx, query, complaintID, studentID).Scan(
		&rating.ID,
		&rating.ComplaintID,
		&rating.StudentID,
		&rating.Value,
		&rating.Feedback,
		&rating.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *ratingRepository) ListByComplaint(ctx context.Context, complaintID string) ([]domain.Rating, error) {
	const query = `
        SELECT id, complaint_id, student_id, value, feedback, created_at
        FROM complaint_ratings WHERE complaint_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Rating
	for rows.Next() {
		var rating domain.Rating
		if err := rows.Scan(
			&rating.ID,
			&rating.ComplaintID,
			&rating.StudentID,
			&rating.Value,
			&rating.Feedback,
			&rating.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, rating)
	}
	return result, rows.Err()
}
