package model

import (
	"time"

	"github.com/google/uuid"
)

// CandidateStatus enumerates interview progress states.
type CandidateStatus string

const (
	CandidateStatusInProgress CandidateStatus = "IN_PROGRESS"
	CandidateStatusCompleted  CandidateStatus = "COMPLETED"
)

// Candidate is the registry row for one interviewee. Score and summary are a
// projection of the latest persisted session state.
type Candidate struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Phone      string          `json:"phone"`
	ResumePath string          `json:"resume_path,omitempty"`
	Status     CandidateStatus `json:"status"`
	FinalScore *int            `json:"final_score,omitempty"`
	Summary    string          `json:"summary,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// RegisterCandidateRequest is the payload for manually adding a candidate
// without a resume upload.
type RegisterCandidateRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=200"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone" binding:"omitempty,max=30"`
}

// ProjectionUpdate is the payload queued for the projection worker after a
// session mutation. It mirrors the terminal columns of the candidates table.
type ProjectionUpdate struct {
	CandidateID uuid.UUID       `json:"candidate_id"`
	Status      CandidateStatus `json:"status"`
	FinalScore  *int            `json:"final_score,omitempty"`
	Summary     string          `json:"summary,omitempty"`
}
