package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/syncroom/server/internal/repository/credential"
	"github.com/syncroom/server/internal/repository/token"
)

var (
	ErrUsernameTaken     = errors.New("username already exists")
	ErrAdminLimitReached = errors.New("maximum admin accounts reached")
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrInvalidToken      = errors.New("invalid token")
)

type iCredentialRepo interface {
	CreateUser(context.Context, *credential.CreateUserParams) error
	GetUser(ctx context.Context, username string) (credential.User, error)
	CountAdmins(context.Context) (int, error)
}

type iTokenRepo interface {
	SetConnectToken(ctx context.Context, tokenId, username string) error
	ConsumeConnectToken(ctx context.Context, tokenId string) (string, error)
}

type Config struct {
	Secret      string
	TokenTTL    time.Duration
	AdminsLimit int
}

type service struct {
	credentialRepo iCredentialRepo
	tokenRepo      iTokenRepo
	secret         []byte
	tokenTTL       time.Duration
	adminsLimit    int
}

func NewService(credentialRepo iCredentialRepo, tokenRepo iTokenRepo, cfg *Config) *service {
	return &service{
		credentialRepo: credentialRepo,
		tokenRepo:      tokenRepo,
		secret:         []byte(cfg.Secret),
		tokenTTL:       cfg.TokenTTL,
		adminsLimit:    cfg.AdminsLimit,
	}
}

type RegisterParams struct {
	Username string
	Password string
	IsAdmin  bool
}

func (s service) Register(ctx context.Context, params *RegisterParams) error {
	if params.IsAdmin {
		adminCount, err := s.credentialRepo.CountAdmins(ctx)
		if err != nil {
			return fmt.Errorf("failed to count admins: %w", err)
		}

		if adminCount >= s.adminsLimit {
			return ErrAdminLimitReached
		}
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.credentialRepo.CreateUser(ctx, &credential.CreateUserParams{
		Username:     params.Username,
		PasswordHash: string(passwordHash),
		IsAdmin:      params.IsAdmin,
	}); err != nil {
		if errors.Is(err, credential.ErrAlreadyExists) {
			return ErrUsernameTaken
		}

		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

type LoginParams struct {
	Username string
	Password string
}

type LoginResponse struct {
	Token   string
	IsAdmin bool
}

func (s service) Login(ctx context.Context, params *LoginParams) (LoginResponse, error) {
	user, err := s.credentialRepo.GetUser(ctx, params.Username)
	if err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			return LoginResponse{}, ErrInvalidCredential
		}

		return LoginResponse{}, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(params.Password)); err != nil {
		return LoginResponse{}, ErrInvalidCredential
	}

	tokenId := uuid.NewString()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"jti":      tokenId,
		"username": user.Username,
		"is_admin": user.IsAdmin,
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
	}).SignedString(s.secret)
	if err != nil {
		return LoginResponse{}, fmt.Errorf("failed to sign token: %w", err)
	}

	if err := s.tokenRepo.SetConnectToken(ctx, tokenId, user.Username); err != nil {
		return LoginResponse{}, fmt.Errorf("failed to store connect token: %w", err)
	}

	return LoginResponse{Token: signed, IsAdmin: user.IsAdmin}, nil
}

type Claims struct {
	Username string
	IsAdmin  bool
}

// VerifyToken checks the token's signature and expiry, then consumes its
// server-side session, so one issued token admits exactly one connection.
func (s service) VerifyToken(ctx context.Context, tokenString string) (Claims, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	tokenId, _ := claims["jti"].(string)
	username, _ := claims["username"].(string)
	isAdmin, _ := claims["is_admin"].(bool)
	if tokenId == "" || username == "" {
		return Claims{}, ErrInvalidToken
	}

	stored, err := s.tokenRepo.ConsumeConnectToken(ctx, tokenId)
	if err != nil {
		if errors.Is(err, token.ErrNotFound) {
			return Claims{}, ErrInvalidToken
		}

		return Claims{}, fmt.Errorf("failed to consume connect token: %w", err)
	}

	if stored != username {
		return Claims{}, ErrInvalidToken
	}

	return Claims{Username: username, IsAdmin: isAdmin}, nil
}
