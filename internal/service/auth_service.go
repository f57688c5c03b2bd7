package service

import (
	"fmt"
	"strings"

	"catalog-annotations/internal/domain"
)

type authService struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

func NewAuthService(
	supabaseClient domain.SupabaseClient,
	logger domain.Logger,
) *authService {
	return &authService{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// ValidateToken validates a token and returns the owner it belongs to
func (s *authService) ValidateToken(token string) (*domain.SupabaseUser, error) {
	user, err := s.supabaseClient.ValidateToken(token)
	if err != nil {
		s.logger.Error("Failed to validate token with Supabase", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if user == nil || user.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return user, nil
}

// devAuthService accepts "dev-<owner>" bearer tokens. It backs STORE_DRIVER=memory
// when no Supabase project is configured and must never face real traffic.
type devAuthService struct {
	logger domain.Logger
}

func NewDevAuthService(logger domain.Logger) *devAuthService {
	logger.Warn("Development auth enabled: bearer tokens are not verified")
	return &devAuthService{logger: logger}
}

func (s *devAuthService) ValidateToken(token string) (*domain.SupabaseUser, error) {
	owner, ok := strings.CutPrefix(token, "dev-")
	if !ok || owner == "" {
		return nil, fmt.Errorf("invalid token: %w", domain.ErrInvalidToken)
	}
	return &domain.SupabaseUser{ID: owner}, nil
}
