package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/crypto/bcrypt"

	"github.com/venuebook/venuebook/internal/domain"
	"github.com/venuebook/venuebook/internal/dto"
	"github.com/venuebook/venuebook/internal/repository"
	"github.com/venuebook/venuebook/pkg/telemetry"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// AuthService manages accounts, sessions and password recovery
type AuthService interface {
	Signup(ctx context.Context, req *dto.SignupRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	GoogleLogin(ctx context.Context, req *dto.GoogleLoginRequest) (*dto.AuthResponse, error)
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	VerifyToken(tokenString string) (*domain.Principal, error)
	Authenticate(ctx context.Context, tokenString string) (*domain.Principal, error)
}

// AuthServiceConfig holds auth tunables
type AuthServiceConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	ResetTokenTTL time.Duration
	AppURL        string
}

type authService struct {
	users       repository.UserRepository
	resetTokens repository.ResetTokenRepository
	mailer      Mailer
	google      GoogleVerifier
	cfg         AuthServiceConfig
}

var _ AuthService = (*authService)(nil)

// NewAuthService creates a new auth service. A nil google verifier disables
// Google sign-in; the endpoint then reports the capability as unavailable.
func NewAuthService(
	users repository.UserRepository,
	resetTokens repository.ResetTokenRepository,
	mailer Mailer,
	google GoogleVerifier,
	cfg AuthServiceConfig,
) AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 72 * time.Hour
	}
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = time.Hour
	}
	if mailer == nil {
		mailer = NewLogMailer()
	}
	return &authService{
		users:       users,
		resetTokens: resetTokens,
		mailer:      mailer,
		google:      google,
		cfg:         cfg,
	}
}

// Signup registers a password account and issues a session token
func (s *authService) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.AuthResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.signup")
	defer span.End()

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !emailPattern.MatchString(email) {
		return nil, domain.NewValidationError("Valid email is required.")
	}
	if len(req.Password) < 6 {
		return nil, domain.NewValidationError("Password must be at least 6 characters.")
	}
	if req.IsVenueOwner == nil {
		return nil, domain.NewValidationError("Field 'is_venue_owner' is required (true/false).")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:            uuid.New().String(),
		Email:         email,
		FullName:      strings.TrimSpace(req.FullName),
		ContactNumber: strings.TrimSpace(req.ContactNumber),
		PasswordHash:  string(hash),
		IsVenueOwner:  *req.IsVenueOwner,
		Role:          domain.RoleFor(*req.IsVenueOwner),
		AuthProvider:  domain.AuthProviderPassword,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.authResponse(user)
}

// Login verifies credentials and issues a session token
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.login")
	defer span.End()

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, domain.NewValidationError("Email and password are required.")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.HasPassword() {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return s.authResponse(user)
}

// GoogleLogin verifies a Google ID token, creating an account on first
// sign-in. An existing account asking for the owner capability is promoted.
func (s *authService) GoogleLogin(ctx context.Context, req *dto.GoogleLoginRequest) (*dto.AuthResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.google_login")
	defer span.End()

	if s.google == nil {
		return nil, fmt.Errorf("%w: google sign-in is not configured", domain.ErrServiceUnavailable)
	}
	if req.IDToken == "" {
		return nil, domain.NewValidationError("Missing 'id_token'.")
	}

	claims, err := s.google.Verify(ctx, req.IDToken)
	if err != nil {
		return nil, err
	}
	if !claims.EmailVerified {
		return nil, fmt.Errorf("%w: google email not verified", domain.ErrTokenInvalid)
	}

	email := strings.ToLower(claims.Email)
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		now := time.Now().UTC()
		user = &domain.User{
			ID:            uuid.New().String(),
			Email:         email,
			FullName:      claims.Name,
			ContactNumber: strings.TrimSpace(req.ContactNumber),
			IsVenueOwner:  req.IsVenueOwner,
			Role:          domain.RoleFor(req.IsVenueOwner),
			AuthProvider:  domain.AuthProviderGoogle,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.users.Create(ctx, user); err != nil {
			// A concurrent first sign-in may have won the insert race
			if !errors.Is(err, domain.ErrEmailTaken) {
				return nil, err
			}
			if user, err = s.users.GetByEmail(ctx, email); err != nil {
				return nil, err
			}
			if user == nil {
				return nil, domain.ErrUserNotFound
			}
		}
	}

	if req.IsVenueOwner && !user.IsVenueOwner {
		if err := s.users.PromoteToOwner(ctx, user.ID); err != nil {
			return nil, err
		}
		user.IsVenueOwner = true
		user.Role = domain.RoleOwner
	}
	return s.authResponse(user)
}

// GetProfile fetches the caller's account
func (s *authService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.get_profile",
		attribute.String("user.id", userID),
	)
	defer span.End()

	return s.users.GetByID(ctx, userID)
}

// ForgotPassword issues a reset token and mails a link. The response is
// uniform whether or not the email exists, so accounts cannot be enumerated.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.forgot_password")
	defer span.End()

	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return domain.NewValidationError("Valid email is required.")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	token, err := generateResetToken()
	if err != nil {
		return err
	}
	if err := s.resetTokens.Save(ctx, token, user.ID, s.cfg.ResetTokenTTL); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(s.cfg.AppURL, "/"), token)
	minutes := int(s.cfg.ResetTokenTTL.Minutes())
	html := fmt.Sprintf(`<p>We received a request to reset your password.</p>
<p><a href="%s">Click here to reset your password</a></p>
<p>This link expires in %d minutes.</p>`, link, minutes)

	return s.mailer.Send(ctx, user.Email, "Reset your password", html, "Reset link: "+link)
}

// ResetPassword redeems a reset token and replaces the account password
func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.reset_password")
	defer span.End()

	if token == "" || len(newPassword) < 6 {
		return domain.NewValidationError("Token and a new password (min 6 chars) are required.")
	}

	userID, err := s.resetTokens.Consume(ctx, token)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, userID, string(hash))
}

// VerifyToken parses a session token into the caller's principal
func (s *authService) VerifyToken(tokenString string) (*domain.Principal, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrTokenInvalid
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, domain.ErrTokenInvalid
	}
	email, _ := claims["email"].(string)
	isOwner, _ := claims["is_venue_owner"].(bool)

	return &domain.Principal{
		UserID:       sub,
		Email:        email,
		IsVenueOwner: isOwner,
	}, nil
}

// Authenticate verifies a session token and reloads the account so the
// principal reflects the current owner flag, not the one minted into the
// token.
func (s *authService) Authenticate(ctx context.Context, tokenString string) (*domain.Principal, error) {
	principal, err := s.VerifyToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}

	return &domain.Principal{
		UserID:       user.ID,
		Email:        user.Email,
		IsVenueOwner: user.IsVenueOwner,
	}, nil
}

func (s *authService) authResponse(user *domain.User) (*dto.AuthResponse, error) {
	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{Token: token, Profile: dto.ProfileFromUser(user)}, nil
}

func (s *authService) issueToken(user *domain.User) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":            user.ID,
		"email":          user.Email,
		"is_venue_owner": user.IsVenueOwner,
		"iat":            now.Unix(),
		"exp":            now.Add(s.cfg.TokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func generateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
