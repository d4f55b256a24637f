package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/hirewise/interview-assistant/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CandidateRepository handles candidate registry data access.
type CandidateRepository struct {
	pool *pgxpool.Pool
}

// NewCandidateRepository creates a new CandidateRepository.
func NewCandidateRepository(pool *pgxpool.Pool) *CandidateRepository {
	return &CandidateRepository{pool: pool}
}

// Create inserts a new candidate with creation-time defaults.
func (r *CandidateRepository) Create(ctx context.Context, c *model.Candidate) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO candidates (id, name, email, phone, resume_path, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		c.ID, c.Name, c.Email, c.Phone, c.ResumePath, model.CandidateStatusInProgress,
	).Scan(&c.CreatedAt)
}

// GetByID retrieves a single candidate.
func (r *CandidateRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Candidate, error) {
	c := &model.Candidate{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, phone, resume_path, status, final_score, summary, created_at
		 FROM candidates
		 WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.ResumePath, &c.Status, &c.FinalScore, &c.Summary, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List retrieves candidates ordered by most recent first, optionally filtered
// by a case-insensitive search on name or email.
func (r *CandidateRepository) List(ctx context.Context, search string) ([]model.Candidate, error) {
	query := `SELECT id, name, email, phone, resume_path, status, final_score, summary, created_at
	          FROM candidates`
	args := []any{}
	if search != "" {
		query += ` WHERE name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%'`
		args = append(args, search)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []model.Candidate
	for rows.Next() {
		var c model.Candidate
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.ResumePath, &c.Status, &c.FinalScore, &c.Summary, &c.CreatedAt); err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// UpdateProjection writes the terminal (status, score, summary) projection of
// the latest persisted session state onto the registry row.
func (r *CandidateRepository) UpdateProjection(ctx context.Context, p *model.ProjectionUpdate) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE candidates
		 SET status = $1, final_score = $2, summary = $3
		 WHERE id = $4`,
		p.Status, p.FinalScore, p.Summary, p.CandidateID)
	return err
}

// DeleteAll removes every candidate. Used by the interviewer reset action.
func (r *CandidateRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM candidates`)
	return err
}
