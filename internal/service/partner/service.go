// internal/service/partner/service.go
package partner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mobility-service/internal/domain/partner"
	"mobility-service/internal/domain/signup"
	xerrors "mobility-service/internal/pkg/errors"
	"mobility-service/internal/pkg/partnerauth"
	"mobility-service/internal/pkg/token"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Repository interface {
	Create(ctx context.Context, p *partner.SocialSecretary) error
	GetByEmail(ctx context.Context, email string) (*partner.SocialSecretary, error)
	GetByID(ctx context.Context, id string) (*partner.SocialSecretary, error)
	GetByCode(ctx context.Context, code string) (*partner.SocialSecretary, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Statistics(ctx context.Context, code string) (*partner.Statistics, error)
	SessionsBySignup(ctx context.Context, signupID string) ([]partner.SessionSummary, error)
}

type SignupRepository interface {
	ListBySocialSecretary(ctx context.Context, code string) ([]signup.Signup, error)
}

type Service struct {
	repo       Repository
	signups    SignupRepository
	tokens     *token.Manager
	tokenStore *partnerauth.Store
	limiter    *partnerauth.RateLimiter
	logger     *zap.Logger
}

func NewService(
	repo Repository,
	signups SignupRepository,
	tokens *token.Manager,
	tokenStore *partnerauth.Store,
	limiter *partnerauth.RateLimiter,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:       repo,
		signups:    signups,
		tokens:     tokens,
		tokenStore: tokenStore,
		limiter:    limiter,
		logger:     logger,
	}
}

func (s *Service) Create(ctx context.Context, req *partner.CreateRequest) (*partner.SocialSecretary, error) {
	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: email already registered", xerrors.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	p := &partner.SocialSecretary{
		ID:                  ulid.Make().String(),
		Name:                req.Name,
		Email:               strings.ToLower(req.Email),
		SocialSecretaryCode: req.SocialSecretaryCode,
		PhoneCountryCode:    req.PhoneCountryCode,
		PhoneNumber:         req.PhoneNumber,
		Address:             req.Address,
		Website:             req.Website,
		Description:         req.Description,
		PasswordHash:        string(hash),
		IsActive:            true,
		Role:                "partner",
		Notes:               req.Notes,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("partner created", zap.String("partner_id", p.ID), zap.String("code", p.SocialSecretaryCode))
	return p, nil
}

// Authenticate verifies credentials and issues a token that stays valid
// until logout or expiry. Failed attempts are rate limited per client.
func (s *Service) Authenticate(ctx context.Context, clientIP string, req *partner.AuthenticateRequest) (*partner.AuthenticateResponse, error) {
	allowed, remaining, err := s.limiter.CheckLoginAttempt(ctx, clientIP, req.Email)
	if err != nil {
		s.logger.Warn("rate limiter unavailable", zap.Error(err))
	} else if !allowed {
		s.logger.Warn("login rate limited", zap.String("email", req.Email), zap.Int64("remaining", remaining))
		return nil, fmt.Errorf("%w: too many login attempts", xerrors.ErrRateLimited)
	}

	p, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", xerrors.ErrUnauthorized)
		}
		return nil, err
	}
	if !p.IsActive {
		return nil, fmt.Errorf("%w: account disabled", xerrors.ErrForbidden)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", xerrors.ErrUnauthorized)
	}

	tok, err := s.tokens.Generate(p.ID, p.SocialSecretaryCode, p.Email, p.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	if err := s.tokenStore.Save(ctx, p.ID, tok, s.tokens.TTL()); err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}

	if err := s.limiter.ResetLoginAttempts(ctx, clientIP, req.Email); err != nil {
		s.logger.Warn("failed to reset login attempts", zap.Error(err))
	}

	s.logger.Info("partner authenticated", zap.String("partner_id", p.ID))
	return &partner.AuthenticateResponse{Token: tok, Partner: p}, nil
}

// Logout revokes the active token for the partner the token belongs to.
func (s *Service) Logout(ctx context.Context, tok string) error {
	claims, err := s.tokens.Verify(tok)
	if err != nil {
		return fmt.Errorf("%w: invalid token", xerrors.ErrUnauthorized)
	}
	return s.tokenStore.Revoke(ctx, claims.PartnerID)
}

func (s *Service) GetProfile(ctx context.Context, id string) (*partner.SocialSecretary, error) {
	return s.repo.GetByID(ctx, id)
}

// Companies builds the partner dashboard: each attached company with its
// sessions and per-status counts.
func (s *Service) Companies(ctx context.Context, code string) (*partner.CompaniesResponse, error) {
	signups, err := s.signups.ListBySocialSecretary(ctx, code)
	if err != nil {
		return nil, err
	}

	resp := &partner.CompaniesResponse{Companies: []partner.CompanyWithSessions{}}
	for _, sg := range signups {
		sessions, err := s.repo.SessionsBySignup(ctx, sg.ID)
		if err != nil {
			return nil, err
		}

		company := partner.CompanyWithSessions{
			Signup: partner.CompanySummary{
				SignupID:      sg.ID,
				FullName:      sg.FullName,
				Email:         sg.Email,
				CompanyName:   sg.CompanyName,
				CompanyNumber: sg.CompanyNumber,
				Status:        sg.Status,
				CreatedAt:     sg.CreatedAt,
			},
			Sessions:      sessions,
			TotalSessions: len(sessions),
		}
		for _, sess := range sessions {
			switch sess.Status {
			case "submitted", "under_review":
				company.PendingSessions++
			case "draft", "in_progress":
				company.InProgressSessions++
			case "approved", "completed":
				company.CompletedSessions++
			}
		}

		resp.Companies = append(resp.Companies, company)
		resp.TotalSessions += company.TotalSessions
	}
	resp.TotalCompanies = len(resp.Companies)

	return resp, nil
}

func (s *Service) Statistics(ctx context.Context, code string) (*partner.Statistics, error) {
	return s.repo.Statistics(ctx, code)
}
