package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"packtrail/internal/middleware"
	"packtrail/internal/models"
	"packtrail/internal/repository"
	"packtrail/internal/validation"
	"packtrail/internal/weight"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration, login, email verification and password
// resets.
type AuthService struct {
	userRepo  repository.UserRepository
	mailer    Mailer
	jwtSecret string
}

// RegisterInput carries the fields of a signup request.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// UpdateUserInput carries the optional fields of a profile update. Empty
// fields are left unchanged.
type UpdateUserInput struct {
	Username     string
	Email        string
	WeightUnit   string
	DistanceUnit string
}

// AuthResult is a signed token plus the authenticated user.
type AuthResult struct {
	Token string
	User  *models.User
}

// NewAuthService returns a new AuthService.
func NewAuthService(userRepo repository.UserRepository, mailer Mailer, jwtSecret string) *AuthService {
	return &AuthService{userRepo: userRepo, mailer: mailer, jwtSecret: jwtSecret}
}

// Register creates a user with a hashed password and mails a verification link.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if existing, err := s.userRepo.GetByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewValidationError("Email already registered")
	}
	if existing, err := s.userRepo.GetByUsername(ctx, in.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewValidationError("Username already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:    in.Username,
		Email:       strings.ToLower(in.Email),
		Password:    string(hashed),
		WeightUnit:  models.UnitPound,
		VerifyToken: uuid.NewString(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	// Mail failures do not fail the signup; the link can be re-requested.
	_ = s.mailer.SendVerification(ctx, user.Email, user.VerifyToken)

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Login authenticates by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}
	// Same error for unknown email and wrong password.
	if user == nil {
		return nil, models.NewNotAuthenticatedError()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewNotAuthenticatedError()
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// IssueToken signs an access token for the user.
func (s *AuthService) IssueToken(userID uint) (string, error) {
	if s.jwtSecret == "" {
		return "", models.NewInternalError(fmt.Errorf("JWT secret not configured"))
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": middleware.TokenIssuer,
		"aud": middleware.TokenAudience,
		"exp": now.Add(middleware.TokenTTL).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": fmt.Sprintf("%d-%s", now.Unix(), uuid.NewString()[:8]),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return signed, nil
}

// VerifyEmail marks the account behind the token as verified.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	user, err := s.userRepo.GetByVerifyToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewValidationError("Invalid or already used verification token")
	}

	user.Verified = true
	user.VerifyToken = ""
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// RequestPasswordReset issues a reset token and mails it. Unknown emails
// succeed silently so the endpoint cannot be used to enumerate accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	expiry := time.Now().Add(time.Hour)
	user.ResetToken = uuid.NewString()
	user.ResetExpiry = &expiry
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	return s.mailer.SendPasswordReset(ctx, user.Email, user.ResetToken)
}

// ResetPassword sets a new password for the account behind a live reset token.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := validation.ValidatePassword(newPassword); err != nil {
		return models.NewValidationError(err.Error())
	}

	user, err := s.userRepo.GetByResetToken(ctx, token)
	if err != nil {
		return err
	}
	if user == nil {
		return models.NewValidationError("Invalid or expired reset token")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}

	user.Password = string(hashed)
	user.ResetToken = ""
	user.ResetExpiry = nil
	return s.userRepo.Update(ctx, user)
}

// EmailExists reports whether an account uses the given email.
func (s *AuthService) EmailExists(ctx context.Context, email string) (bool, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return false, err
	}
	return user != nil, nil
}

// GetUser fetches a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// UpdateUser applies a partial profile update.
func (s *AuthService) UpdateUser(ctx context.Context, userID uint, in UpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Username != "" {
		if err := validation.ValidateUsername(in.Username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Username = in.Username
	}
	if in.Email != "" {
		if err := validation.ValidateEmail(in.Email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		newEmail := strings.ToLower(in.Email)
		if newEmail != user.Email {
			user.Email = newEmail
			// An address change needs re-verification.
			user.Verified = false
			user.VerifyToken = uuid.NewString()
			_ = s.mailer.SendVerification(ctx, user.Email, user.VerifyToken)
		}
	}
	if in.WeightUnit != "" {
		if !weight.Valid(weight.Unit(in.WeightUnit)) {
			return nil, models.NewValidationError("Unknown weight unit")
		}
		user.WeightUnit = in.WeightUnit
	}
	if in.DistanceUnit != "" {
		if in.DistanceUnit != models.DistanceMiles && in.DistanceUnit != models.DistanceKilometers {
			return nil, models.NewValidationError("Unknown distance unit")
		}
		user.DistanceUnit = in.DistanceUnit
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
