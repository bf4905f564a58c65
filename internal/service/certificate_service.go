package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/chumcred/academy-lmp-api/internal/models"
	"github.com/chumcred/academy-lmp-api/pkg/config"
	appErrors "github.com/chumcred/academy-lmp-api/pkg/errors"
)

type certificateSubmissionReader interface {
	ListByUser(ctx context.Context, userID string) ([]models.SubmissionDetail, error)
}

type certificateUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type certificateRenderer interface {
	Render(studentName, certificateID string) ([]byte, error)
}

// Certificate bundles a rendered document with its identity.
type Certificate struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	PDF      []byte `json:"-"`
}

// CertificateService computes certificate eligibility and produces the
// certificate document for eligible students.
type CertificateService struct {
	submissions certificateSubmissionReader
	users       certificateUserReader
	renderer    certificateRenderer
	cfg         config.CertificatesConfig
	logger      *zap.Logger
}

// NewCertificateService constructs CertificateService.
func NewCertificateService(submissions certificateSubmissionReader, users certificateUserReader, renderer certificateRenderer, cfg config.CertificatesConfig, logger *zap.Logger) *CertificateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProgramWeeks <= 0 {
		cfg.ProgramWeeks = 6
	}
	if cfg.PassingGrade <= 0 {
		cfg.PassingGrade = 60.0
	}
	return &CertificateService{submissions: submissions, users: users, renderer: renderer, cfg: cfg, logger: logger}
}

// Eligibility derives the certificate-eligibility fact on demand. The
// required week count is fixed program-length policy, deliberately not
// derived from the live module table.
func (s *CertificateService) Eligibility(ctx context.Context, userID string) (*models.Eligibility, error) {
	details, err := s.submissions.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submissions")
	}

	required := s.cfg.ProgramWeeks
	weeks := make(map[int]struct{}, required)
	var grades []float64
	for _, d := range details {
		weeks[d.WeekNumber] = struct{}{}
		if d.Grade != nil {
			grades = append(grades, *d.Grade)
		}
	}

	result := &models.Eligibility{
		SubmittedWeeks: len(weeks),
		GradedWeeks:    len(grades),
		RequiredWeeks:  required,
	}

	// Two independent gates: every week attempted, and every week graded.
	if len(weeks) < required {
		return result, nil
	}
	if len(grades) < required {
		return result, nil
	}

	var sum float64
	for _, g := range grades {
		sum += g
	}
	avg := sum / float64(len(grades))

	result.AverageGrade = avg
	result.Eligible = avg >= s.cfg.PassingGrade
	return result, nil
}

// Certificate renders a completion certificate for an eligible student.
// The id format is <org-prefix>-<userID>-<YYYYMMDD>.
func (s *CertificateService) Certificate(ctx context.Context, userID string) (*Certificate, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	eligibility, err := s.Eligibility(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !eligibility.Eligible {
		return nil, appErrors.Clone(appErrors.ErrNotEligible, "complete and pass all weekly assignments first")
	}

	certID := fmt.Sprintf("%s-%s-%s", s.cfg.OrgPrefix, user.ID, time.Now().Format("20060102"))
	pdf, err := s.renderer.Render(user.FullName, certID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render certificate")
	}

	return &Certificate{
		ID:       certID,
		FileName: fmt.Sprintf("Certificate_%s.pdf", user.ID),
		PDF:      pdf,
	}, nil
}
