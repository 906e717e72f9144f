package service

import (
	"context"
	"errors"
	"time"

	"cajachica/internal/model"
	"cajachica/internal/repository"
	"cajachica/pkg/apperror"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expires_at"`
	User      *UserSummary `json:"user"`
}

type MeResponse struct {
	UserSummary
	Tier       string       `json:"tier"`
	Position   string       `json:"position"`
	Area       *AreaSummary `json:"area,omitempty"`
	AreaLeadID *string      `json:"area_lead_id"`
}

// TokenIssuer signs access tokens for authenticated users
type TokenIssuer interface {
	Generate(userID uuid.UUID, role model.RoleName) (token string, expiresAt time.Time, err error)
}

type AuthService interface {
	Login(ctx context.Context, in LoginInput) (*LoginResponse, error)
	Me(ctx context.Context, actor Actor) (*MeResponse, error)
}

type authService struct {
	users  repository.UserRepository
	tokens TokenIssuer
}

func NewAuthService(users repository.UserRepository, tokens TokenIssuer) AuthService {
	return &authService{users: users, tokens: tokens}
}

func (s *authService) Login(ctx context.Context, in LoginInput) (*LoginResponse, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Unauthenticated("invalid email or password")
		}
		return nil, internalErr("failed to load user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, apperror.Unauthenticated("invalid email or password")
	}

	token, expiresAt, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return nil, apperror.Internal("failed to generate token", err)
	}
	return &LoginResponse{Token: token, ExpiresAt: formatTime(expiresAt), User: toUserSummary(user)}, nil
}

func (s *authService) Me(ctx context.Context, actor Actor) (*MeResponse, error) {
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, translateRepoErr(err, "user not found", "failed to load user")
	}
	return &MeResponse{
		UserSummary: *toUserSummary(user),
		Tier:        user.Role.Tier().String(),
		Position:    user.Position,
		Area:        toAreaSummary(user.Area),
		AreaLeadID:  uuidPtrString(user.AreaLeadID),
	}, nil
}

// HashPassword bcrypt-hashes a plain password for storage
func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
