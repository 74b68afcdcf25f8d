package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pkordes/car-rental/internal/domain"
	"github.com/pkordes/car-rental/internal/repo"
)

const (
	minUsernameLen = 3
	minPasswordLen = 6
)

// AuthConfig holds the session and hashing parameters of an AuthService.
type AuthConfig struct {
	// Secret is the HMAC key for session tokens.
	Secret     []byte
	SessionTTL time.Duration
	BcryptCost int
}

// AuthResult is a user together with a freshly issued session token.
type AuthResult struct {
	User      domain.User
	Token     string
	ExpiresAt time.Time
}

// AuthService hashes and verifies passwords and manages sessions.
//
// A session is a server-side record; the token handed to the client is an
// HS256 JWT whose jti is the session id. Deleting the record revokes the
// token even before it expires.
type AuthService struct {
	store     repo.Store
	cfg       AuthConfig
	log       *slog.Logger
	check     *checker
	dummyHash []byte
	now       func() time.Time
}

// NewAuthService constructs an AuthService. It fails when the secret is
// empty or the bcrypt cost is out of range.
func NewAuthService(store repo.Store, cfg AuthConfig, log *slog.Logger) (*AuthService, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("service.NewAuthService: empty session secret")
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("service.NewAuthService: bcrypt cost %d out of range", cfg.BcryptCost)
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("service.NewAuthService: session ttl must be positive")
	}

	// Compared against on unknown usernames so both login failures cost one
	// bcrypt verification.
	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("service.NewAuthService: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}

	return &AuthService{
		store:     store,
		cfg:       cfg,
		log:       log,
		check:     newChecker(time.Now),
		dummyHash: dummy,
		now:       time.Now,
	}, nil
}

// Signup creates a customer account and opens a session for it.
// Returns domain.ErrUsernameTaken when the username is taken.
func (s *AuthService) Signup(ctx context.Context, in domain.Credentials) (AuthResult, error) {
	if err := s.checkCredentials(in); err != nil {
		return AuthResult{}, fmt.Errorf("service.AuthService.Signup: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cfg.BcryptCost)
	if err != nil {
		return AuthResult{}, fmt.Errorf("service.AuthService.Signup: hash: %w", err)
	}

	var res AuthResult
	err = s.store.InTx(ctx, func(tx repo.Store) error {
		u, err := tx.Users().Create(ctx, domain.User{
			ID:           "user-" + uuid.NewString(),
			Username:     in.Username,
			PasswordHash: string(hash),
			Role:         domain.RoleCustomer,
		})
		if err != nil {
			return err
		}
		res, err = s.openSession(ctx, tx, u)
		return err
	})
	if err != nil {
		return AuthResult{}, fmt.Errorf("service.AuthService.Signup: %w", err)
	}
	return res, nil
}

// Login verifies the credentials and opens a session.
// Any failure to match returns domain.ErrUnauthenticated, whether the
// username is unknown or the password is wrong.
func (s *AuthService) Login(ctx context.Context, in domain.Credentials) (AuthResult, error) {
	if err := s.check.check(in); err != nil {
		return AuthResult{}, fmt.Errorf("service.AuthService.Login: %w", err)
	}

	u, err := s.store.Users().GetByUsername(ctx, in.Username)
	if errors.Is(err, domain.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(in.Password))
		return AuthResult{}, fmt.Errorf("service.AuthService.Login: %w", domain.ErrUnauthenticated)
	}
	if err != nil {
		return AuthResult{}, fmt.Errorf("service.AuthService.Login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return AuthResult{}, fmt.Errorf("service.AuthService.Login: %w", domain.ErrUnauthenticated)
	}

	res, err := s.openSession(ctx, s.store, u)
	if err != nil {
		return AuthResult{}, fmt.Errorf("service.AuthService.Login: %w", err)
	}
	return res, nil
}

// Logout deletes the session behind token. Unknown, expired or malformed
// tokens are ignored so logging out is always safe to repeat.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.parse(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil
	}
	if _, err := s.store.Sessions().Delete(ctx, claims.ID); err != nil {
		return fmt.Errorf("service.AuthService.Logout: %w", err)
	}
	return nil
}

// ResolveSession returns the user bound to token.
// Returns domain.ErrUnauthenticated for a bad signature, an expired or
// revoked session, or a user that no longer exists.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (domain.User, error) {
	claims, err := s.parse(token, jwt.WithExpirationRequired())
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.ResolveSession: %w: %v", domain.ErrUnauthenticated, err)
	}

	sess, err := s.store.Sessions().GetByID(ctx, claims.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, fmt.Errorf("service.AuthService.ResolveSession: %w", domain.ErrUnauthenticated)
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.ResolveSession: %w", err)
	}
	if sess.Expired(s.now()) || sess.UserID != claims.Subject {
		return domain.User{}, fmt.Errorf("service.AuthService.ResolveSession: %w", domain.ErrUnauthenticated)
	}

	u, err := s.store.Users().GetByID(ctx, sess.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, fmt.Errorf("service.AuthService.ResolveSession: %w", domain.ErrUnauthenticated)
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.ResolveSession: %w", err)
	}
	return u, nil
}

// EnsureAdmin creates an admin account unless one with that username
// already exists. It never promotes an existing customer; that case returns
// domain.ErrConflict. The bool result reports whether a user was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) (domain.User, bool, error) {
	in := domain.Credentials{Username: username, Password: password}
	if err := s.checkCredentials(in); err != nil {
		return domain.User{}, false, fmt.Errorf("service.AuthService.EnsureAdmin: %w", err)
	}

	existing, err := s.store.Users().GetByUsername(ctx, username)
	switch {
	case err == nil && existing.IsAdmin():
		return existing, false, nil
	case err == nil:
		return domain.User{}, false, fmt.Errorf("service.AuthService.EnsureAdmin: %q is not an admin: %w", username, domain.ErrConflict)
	case !errors.Is(err, domain.ErrNotFound):
		return domain.User{}, false, fmt.Errorf("service.AuthService.EnsureAdmin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return domain.User{}, false, fmt.Errorf("service.AuthService.EnsureAdmin: hash: %w", err)
	}
	u, err := s.store.Users().Create(ctx, domain.User{
		ID:           "user-" + uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	})
	if err != nil {
		return domain.User{}, false, fmt.Errorf("service.AuthService.EnsureAdmin: %w", err)
	}
	s.log.InfoContext(ctx, "admin account created", "username", username, "user_id", u.ID)
	return u, true, nil
}

// PurgeExpiredSessions deletes sessions past their expiry.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int, error) {
	n, err := s.store.Sessions().DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("service.AuthService.PurgeExpiredSessions: %w", err)
	}
	return n, nil
}

// openSession stores a session for u and signs its token.
func (s *AuthService) openSession(ctx context.Context, store repo.Store, u domain.User) (AuthResult, error) {
	now := s.now().UTC()
	sess, err := store.Sessions().Create(ctx, domain.Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	})
	if err != nil {
		return AuthResult{}, fmt.Errorf("create session: %w", err)
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        sess.ID,
		Subject:   u.ID,
		IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
	}).SignedString(s.cfg.Secret)
	if err != nil {
		return AuthResult{}, fmt.Errorf("sign session token: %w", err)
	}

	return AuthResult{User: u, Token: token, ExpiresAt: sess.ExpiresAt}, nil
}

func (s *AuthService) parse(token string, opts ...jwt.ParserOption) (*jwt.RegisteredClaims, error) {
	opts = append(opts, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(s.now))
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.cfg.Secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return nil, errors.New("token has no session id")
	}
	return claims, nil
}

// checkCredentials applies the signup rules on top of the required checks.
func (s *AuthService) checkCredentials(in domain.Credentials) error {
	err := s.check.check(in)
	var extra domain.ValidationError
	if in.Username != "" && utf8.RuneCountInString(in.Username) < minUsernameLen {
		extra.Fields = append(extra.Fields, domain.FieldError{
			Field: "username", Rule: "min", Param: "3",
			Message: "username must be at least 3 characters",
		})
	}
	if in.Password != "" && utf8.RuneCountInString(in.Password) < minPasswordLen {
		extra.Fields = append(extra.Fields, domain.FieldError{
			Field: "password", Rule: "min", Param: "6",
			Message: "password must be at least 6 characters",
		})
	}
	if len(extra.Fields) == 0 {
		return err
	}
	return merge(err, &extra)
}
