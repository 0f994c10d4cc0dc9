// internal/service/signup/service.go
package signup

import (
	"context"
	"errors"
	"strings"

	"mobility-service/internal/domain/signup"
	xerrors "mobility-service/internal/pkg/errors"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, s *signup.Signup) error
	GetByID(ctx context.Context, id string) (*signup.Signup, error)
	GetByEmail(ctx context.Context, email string) (*signup.Signup, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

type Service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create registers a company. Signing up again with a known email returns
// the existing record, so the wizard can always bootstrap from an email.
func (s *Service) Create(ctx context.Context, req *signup.CreateSignupRequest) (*signup.Signup, error) {
	existing, err := s.repo.GetByEmail(ctx, req.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, xerrors.ErrNotFound) {
		return nil, err
	}

	sg := &signup.Signup{
		ID:              ulid.Make().String(),
		FullName:        req.FullName,
		Email:           strings.ToLower(req.Email),
		CompanyName:     req.CompanyName,
		CompanyNumber:   req.CompanyNumber,
		SocialSecretary: req.SocialSecretary,
		Status:          "active",
	}

	if err := s.repo.Create(ctx, sg); err != nil {
		return nil, err
	}

	s.logger.Info("signup created", zap.String("signup_id", sg.ID))
	return sg, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*signup.Signup, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*signup.Signup, error) {
	return s.repo.GetByEmail(ctx, email)
}
