package service

import (
	"context"
	"testing"

	"checkpos/internal/domain"
	"checkpos/internal/repository"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"golang.org/x/crypto/bcrypt"
)

// Mock repositories for testing
type mockUserRepository struct {
	users  map[string]*domain.User
	nextID int64
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.nextID++
	user.ID = m.nextID
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

type mockRefreshTokenRepository struct {
	tokens map[string]*domain.RefreshToken
	nextID int64
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{
		tokens: make(map[string]*domain.RefreshToken),
	}
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	m.nextID++
	token.ID = m.nextID
	m.tokens[token.Token] = token
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if refreshToken.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	return refreshToken, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return repository.ErrRefreshTokenNotFound
	}
	refreshToken.Revoked = true
	return nil
}

func TestProperty_RegistrationCreatesHashedPasswords(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("passwords are hashed with bcrypt and not stored as plaintext", prop.ForAll(
		func(email string, password string, firstName string, lastName string) bool {
			userRepo := newMockUserRepository()
			refreshTokenRepo := newMockRefreshTokenRepository()
			service := NewUserService(userRepo, refreshTokenRepo, "test-secret")
			ctx := context.Background()

			user, err := service.Register(ctx, email, password, firstName, lastName)
			if err != nil {
				// If registration fails, skip this test case
				return true
			}

			// Verify password is hashed (not equal to plaintext)
			if user.PasswordHash == password {
				t.Logf("FAIL: Password stored as plaintext for email %s", email)
				return false
			}

			// Verify password hash is a valid bcrypt hash
			err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
			if err != nil {
				t.Logf("FAIL: Password hash is not a valid bcrypt hash or doesn't match: %v", err)
				return false
			}

			storedUser, err := userRepo.FindByEmail(ctx, email)
			if err != nil {
				t.Logf("FAIL: Could not find stored user: %v", err)
				return false
			}

			if storedUser.PasswordHash != user.PasswordHash {
				t.Logf("FAIL: Stored password hash doesn't match returned password hash")
				return false
			}

			if storedUser.PasswordHash == password {
				t.Logf("FAIL: Stored password is plaintext")
				return false
			}

			return true
		},
		// Generate valid email addresses
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		// Generate passwords with at least 8 characters
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
		// Generate first names
		gen.RegexMatch(`[A-Z][a-z]{2,15}`),
		// Generate last names
		gen.RegexMatch(`[A-Z][a-z]{2,15}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_JWTTokensContainRequiredClaims(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("access tokens contain user ID and role claims", prop.ForAll(
		func(email string, password string, firstName string, lastName string, role string) bool {
			userRepo := newMockUserRepository()
			refreshTokenRepo := newMockRefreshTokenRepository()
			service := NewUserService(userRepo, refreshTokenRepo, "test-secret-key")
			ctx := context.Background()

			user, err := service.Register(ctx, email, password, firstName, lastName)
			if err != nil {
				return true // Skip if registration fails
			}

			// Override role for testing
			user.Role = role
			userRepo.users[email] = user

			accessToken, _, _, err := service.Login(ctx, email, password)
			if err != nil {
				t.Logf("FAIL: Login failed: %v", err)
				return false
			}

			claims, err := service.ValidateToken(accessToken)
			if err != nil {
				t.Logf("FAIL: Token validation failed: %v", err)
				return false
			}

			if claims.UserID != user.ID {
				t.Logf("FAIL: User ID claim mismatch. Expected %d, got %d", user.ID, claims.UserID)
				return false
			}

			if claims.Role != role {
				t.Logf("FAIL: Role claim mismatch. Expected %s, got %s", role, claims.Role)
				return false
			}

			if claims.ExpiresAt == nil {
				t.Logf("FAIL: Token missing expiration claim")
				return false
			}

			if claims.IssuedAt == nil {
				t.Logf("FAIL: Token missing issued at claim")
				return false
			}

			return true
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
		gen.RegexMatch(`[A-Z][a-z]{2,15}`),
		gen.RegexMatch(`[A-Z][a-z]{2,15}`),
		gen.OneConstOf("user", "admin"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_TokenRefreshRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("valid refresh token returns new valid access token", prop.ForAll(
		func(email string, password string, firstName string, lastName string) bool {
			userRepo := newMockUserRepository()
			refreshTokenRepo := newMockRefreshTokenRepository()
			service := NewUserService(userRepo, refreshTokenRepo, "test-secret-key")
			ctx := context.Background()

			_, err := service.Register(ctx, email, password, firstName, lastName)
			if err != nil {
				return true // Skip if registration fails
			}

			_, refreshToken, user, err := service.Login(ctx, email, password)
			if err != nil {
				t.Logf("FAIL: Login failed: %v", err)
				return false
			}

			newAccessToken, err := service.RefreshToken(ctx, refreshToken)
			if err != nil {
				t.Logf("FAIL: Token refresh failed: %v", err)
				return false
			}

			claims, err := service.ValidateToken(newAccessToken)
			if err != nil {
				t.Logf("FAIL: New access token is invalid: %v", err)
				return false
			}

			if claims.UserID != user.ID {
				t.Logf("FAIL: New token carries wrong user ID")
				return false
			}

			return true
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
		gen.RegexMatch(`[A-Z][a-z]{2,15}`),
		gen.RegexMatch(`[A-Z][a-z]{2,15}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestLogout_RevokesRefreshToken(t *testing.T) {
	userRepo := newMockUserRepository()
	refreshTokenRepo := newMockRefreshTokenRepository()
	service := NewUserService(userRepo, refreshTokenRepo, "test-secret-key")
	ctx := context.Background()

	_, err := service.Register(ctx, "cashier@example.com", "password123", "Terry", "Hill")
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	_, refreshToken, _, err := service.Login(ctx, "cashier@example.com", "password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := service.Logout(ctx, refreshToken); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	if _, err := service.RefreshToken(ctx, refreshToken); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken after logout, got %v", err)
	}

	// Logging out twice is a no-op
	if err := service.Logout(ctx, "no-such-token"); err != nil {
		t.Fatalf("logout of unknown token should succeed, got %v", err)
	}
}
