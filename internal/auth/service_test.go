package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/wanderlust-backend/internal/users"
	pkgAuth "github.com/angelmondragon/wanderlust-backend/pkg/auth"
	"github.com/angelmondragon/wanderlust-backend/pkg/config"
	"github.com/angelmondragon/wanderlust-backend/pkg/db/dbtest"
	"github.com/angelmondragon/wanderlust-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/wanderlust-backend/pkg/errors"
	"github.com/angelmondragon/wanderlust-backend/pkg/security"
)

var (
	testJWT = config.JWTConfig{
		Secret:            "secret",
		Issuer:            "wanderlust",
		ExpirationMinutes: 30,
		SessionTTLMinutes: 60,
	}
	fastArgon = config.PasswordConfig{ArgonMemoryKB: 8, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 8, ArgonKeyLen: 16}
)

type stubUserRepo struct {
	user     *models.User
	findErr  error
	rehashed string
}

func (s *stubUserRepo) Create(context.Context, users.CreateUserDTO) (*models.User, error) {
	return nil, errors.New("not implemented")
}

func (s *stubUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.user == nil || s.user.Username != username {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s *stubUserRepo) UpdatePasswordHash(_ context.Context, _ uuid.UUID, hash string) error {
	s.rehashed = hash
	return nil
}

type stubSessionManager struct {
	created []uuid.UUID
	revoked []string
}

func (s *stubSessionManager) Create(_ context.Context, userID uuid.UUID) (string, error) {
	s.created = append(s.created, userID)
	return "sess-" + userID.String()[:8], nil
}

func (s *stubSessionManager) Revoke(_ context.Context, sessionID string) error {
	s.revoked = append(s.revoked, sessionID)
	return nil
}

func mustHashPassword(t *testing.T, password string, cfg config.PasswordConfig) string {
	t.Helper()
	hash, err := security.HashPassword(password, cfg)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func TestServiceLoginIssuesTokenBoundToSession(t *testing.T) {
	user := &models.User{ID: uuid.New(), Username: "wanderer", Email: "w@example.com", PasswordHash: mustHashPassword(t, "s3cret!", fastArgon)}
	sessions := &stubSessionManager{}
	svc, err := NewService(ServiceParams{UserRepo: &stubUserRepo{user: user}, SessionManager: sessions, JWTConfig: testJWT, PasswordConfig: fastArgon})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	sess, err := svc.Login(context.Background(), LoginRequest{Username: " wanderer ", Password: "s3cret!"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := pkgAuth.ParseAccessToken(testJWT, sess.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != user.ID || claims.Username != "wanderer" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.ID != sess.SessionID || len(sessions.created) != 1 {
		t.Fatalf("token jti must name the stored session")
	}
	if sess.User == nil || sess.User.Username != "wanderer" {
		t.Fatalf("expected user dto, got %+v", sess.User)
	}
}

func TestServiceLoginRejectsBadCredentials(t *testing.T) {
	user := &models.User{ID: uuid.New(), Username: "wanderer", PasswordHash: mustHashPassword(t, "s3cret!", fastArgon)}
	svc, err := NewService(ServiceParams{UserRepo: &stubUserRepo{user: user}, SessionManager: &stubSessionManager{}, JWTConfig: testJWT, PasswordConfig: fastArgon})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	cases := []LoginRequest{
		{Username: "wanderer", Password: "wrong"},
		{Username: "stranger", Password: "s3cret!"},
		{Username: "", Password: "s3cret!"},
	}
	for _, req := range cases {
		_, err := svc.Login(context.Background(), req)
		if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
			t.Fatalf("%+v: expected unauthorized, got %v", req, err)
		}
		if pkgerrors.As(err).Message() != invalidCredentialsMessage {
			t.Fatalf("login failures must not reveal which field was wrong")
		}
	}
}

func TestServiceLoginRehashesWeakHash(t *testing.T) {
	user := &models.User{ID: uuid.New(), Username: "wanderer", PasswordHash: mustHashPassword(t, "s3cret!", fastArgon)}
	repo := &stubUserRepo{user: user}
	stronger := fastArgon
	stronger.ArgonTime = 2
	svc, err := NewService(ServiceParams{UserRepo: repo, SessionManager: &stubSessionManager{}, JWTConfig: testJWT, PasswordConfig: stronger})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	if _, err := svc.Login(context.Background(), LoginRequest{Username: "wanderer", Password: "s3cret!"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if repo.rehashed == "" || security.NeedsRehash(repo.rehashed, stronger) {
		t.Fatalf("expected the hash to be upgraded, got %q", repo.rehashed)
	}
}

func TestServiceSignupCreatesUserAndSession(t *testing.T) {
	repo := users.NewRepository(dbtest.Open(t))
	sessions := &stubSessionManager{}
	svc, err := NewService(ServiceParams{UserRepo: repo, SessionManager: sessions, JWTConfig: testJWT, PasswordConfig: fastArgon})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	ctx := context.Background()

	sess, err := svc.Signup(ctx, SignupRequest{Username: "host", Email: "Host@Example.com", Password: "pa55word"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if sess.AccessToken == "" || sess.User.Email != "host@example.com" {
		t.Fatalf("unexpected session %+v", sess)
	}

	stored, err := repo.FindByUsername(ctx, "host")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if ok, _ := security.VerifyPassword("pa55word", stored.PasswordHash); !ok {
		t.Fatalf("stored hash must verify")
	}

	_, err = svc.Signup(ctx, SignupRequest{Username: "host", Email: "other@example.com", Password: "pa55word"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) || pkgerrors.As(err).Message() != usernameTakenMessage {
		t.Fatalf("expected username conflict, got %v", err)
	}
	_, err = svc.Signup(ctx, SignupRequest{Username: "guest", Email: "host@example.com", Password: "pa55word"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) || pkgerrors.As(err).Message() != emailTakenMessage {
		t.Fatalf("expected email conflict, got %v", err)
	}
}

func TestServiceLogoutRevokesSession(t *testing.T) {
	sessions := &stubSessionManager{}
	svc, err := NewService(ServiceParams{UserRepo: &stubUserRepo{}, SessionManager: sessions, JWTConfig: testJWT})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	if err := svc.Logout(context.Background(), ""); err != nil {
		t.Fatalf("logout without session: %v", err)
	}
	if err := svc.Logout(context.Background(), "sess-1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "sess-1" {
		t.Fatalf("unexpected revocations %v", sessions.revoked)
	}
}
