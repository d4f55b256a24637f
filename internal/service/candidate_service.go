package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hirewise/interview-assistant/internal/config"
	"github.com/hirewise/interview-assistant/internal/model"
	"github.com/hirewise/interview-assistant/internal/repository"
	"github.com/hirewise/interview-assistant/internal/resume"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// Upload validation errors.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrCandidateNotFound   = errors.New("candidate not found")
)

// CandidateService owns the candidate registry: registration (manual or via
// resume upload), the interviewer's read-only projections, and full teardown.
type CandidateService struct {
	cfg           *config.Config
	candidateRepo *repository.CandidateRepository
	snapshotRepo  *repository.SnapshotRepository
	log           zerolog.Logger
}

// NewCandidateService creates a new CandidateService.
func NewCandidateService(
	cfg *config.Config,
	candidateRepo *repository.CandidateRepository,
	snapshotRepo *repository.SnapshotRepository,
	log zerolog.Logger,
) *CandidateService {
	return &CandidateService{
		cfg:           cfg,
		candidateRepo: candidateRepo,
		snapshotRepo:  snapshotRepo,
		log:           log.With().Str("component", "candidate_service").Logger(),
	}
}

// RegisterFromResume saves the uploaded PDF, extracts contact fields from its
// text, and creates the candidate with session defaults. Fields that cannot
// be extracted stay empty rather than failing the upload.
func (s *CandidateService) RegisterFromResume(ctx context.Context, data []byte, header *multipart.FileHeader) (*model.Candidate, error) {
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, ErrFileTooLarge
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		return nil, ErrUnsupportedFileType
	}

	text, err := resume.ExtractText(data)
	if err != nil {
		return nil, fmt.Errorf("extract resume text: %w", err)
	}
	contact := resume.ExtractContact(text)

	path, err := s.saveUpload(data, header.Filename)
	if err != nil {
		return nil, fmt.Errorf("save resume: %w", err)
	}

	candidate := &model.Candidate{
		ID:         uuid.New(),
		Name:       contact.Name,
		Email:      contact.Email,
		Phone:      contact.Phone,
		ResumePath: path,
		Status:     model.CandidateStatusInProgress,
	}
	if err := s.candidateRepo.Create(ctx, candidate); err != nil {
		return nil, fmt.Errorf("create candidate: %w", err)
	}
	return candidate, nil
}

// Register adds a candidate without a resume.
func (s *CandidateService) Register(ctx context.Context, req *model.RegisterCandidateRequest) (*model.Candidate, error) {
	candidate := &model.Candidate{
		ID:     uuid.New(),
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Status: model.CandidateStatusInProgress,
	}
	if err := s.candidateRepo.Create(ctx, candidate); err != nil {
		return nil, fmt.Errorf("create candidate: %w", err)
	}
	return candidate, nil
}

// Get retrieves a single candidate row.
func (s *CandidateService) Get(ctx context.Context, id uuid.UUID) (*model.Candidate, error) {
	c, err := s.candidateRepo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCandidateNotFound
	}
	return c, err
}

// List returns candidates for the dashboard, newest first, optionally
// filtered by a search string over name and email.
func (s *CandidateService) List(ctx context.Context, search string) ([]model.Candidate, error) {
	return s.candidateRepo.List(ctx, search)
}

// CandidateDetail combines the registry projection with the answer
// transcript from the latest persisted snapshot.
type CandidateDetail struct {
	model.Candidate
	Answers []model.AnswerRecord `json:"answers"`
}

// Detail returns a candidate with their full transcript.
func (s *CandidateService) Detail(ctx context.Context, id uuid.UUID) (*CandidateDetail, error) {
	candidate, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &CandidateDetail{Candidate: *candidate, Answers: []model.AnswerRecord{}}

	snap, err := s.snapshotRepo.Get(ctx, id)
	if err != nil {
		// The projection is still useful without the transcript.
		s.log.Warn().Err(err).Str("candidate_id", id.String()).Msg("snapshot lookup failed for detail view")
		return detail, nil
	}
	if snap != nil {
		detail.Answers = snap.Answers
	}
	return detail, nil
}

// ResetAll clears every candidate row and every durable snapshot. Live
// sessions must be invalidated by the caller before or after; the order does
// not matter because an invalidated controller stops persisting.
func (s *CandidateService) ResetAll(ctx context.Context) error {
	if err := s.candidateRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("delete candidates: %w", err)
	}
	if err := s.snapshotRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("delete snapshots: %w", err)
	}
	return nil
}

// ResumeText re-extracts the stored resume's text for question generation.
// Returns "" when the candidate has no stored resume.
func (s *CandidateService) ResumeText(ctx context.Context, id uuid.UUID) (string, error) {
	candidate, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if candidate.ResumePath == "" {
		return "", nil
	}

	data, err := os.ReadFile(candidate.ResumePath)
	if err != nil {
		return "", fmt.Errorf("read stored resume: %w", err)
	}
	text, err := resume.ExtractText(data)
	if err != nil {
		return "", fmt.Errorf("extract stored resume: %w", err)
	}
	return text, nil
}

func (s *CandidateService) saveUpload(data []byte, original string) (string, error) {
	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(original))
	path := filepath.Join(s.cfg.UploadDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
