// internal/service/profile/profile_service.go
package profile

import (
	"context"

	domain "vitrina-service/internal/domain/profile"

	"go.uber.org/zap"
)

// ProfileService is the thin CRUD layer over the profile directory. The
// full profile data (photos, descriptions, verification) lives in the main
// site; this service only keeps the base ranking inputs current.
type ProfileService struct {
	repo   domain.Repository
	logger *zap.Logger
}

func NewProfileService(repo domain.Repository, logger *zap.Logger) *ProfileService {
	return &ProfileService{repo: repo, logger: logger}
}

func (s *ProfileService) CreateProfile(ctx context.Context, req *domain.CreateProfileRequest) (*domain.Profile, error) {
	p := &domain.Profile{
		DisplayName: req.DisplayName,
		BaseScore:   req.BaseScore,
		BaseTier:    req.BaseTier,
		Active:      req.Active,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("profile created", zap.Int64("profile_id", p.ID))
	return p, nil
}

func (s *ProfileService) GetProfile(ctx context.Context, id int64) (*domain.Profile, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ProfileService) UpdateProfile(ctx context.Context, id int64, req *domain.UpdateProfileRequest) (*domain.Profile, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		p.DisplayName = *req.DisplayName
	}
	if req.BaseScore != nil {
		p.BaseScore = *req.BaseScore
	}
	if req.BaseTier != nil {
		p.BaseTier = *req.BaseTier
	}
	if req.Active != nil {
		p.Active = *req.Active
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *ProfileService) DeleteProfile(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("profile deleted", zap.Int64("profile_id", id))
	return nil
}
