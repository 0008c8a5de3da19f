package application

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow-app/taskflow/internal/domain/entity"
	repo "github.com/taskflow-app/taskflow/internal/domain/repository"
	"github.com/taskflow-app/taskflow/pkg/helpers"
)

// mockUserRepo is an in-memory UserRepository for testing.
type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User // id -> user
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*entity.User)}
}

func (m *mockUserRepo) Create(ctx context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == strings.ToLower(u.Email) {
			return repo.ErrDuplicateEmail
		}
	}
	u.ID = uuid.NewString()
	u.Email = strings.ToLower(u.Email)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func newAuthService() (*AuthService, *mockUserRepo) {
	users := newMockUserRepo()
	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	return NewAuthService(users, jwt, nil), users
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuthService()

	res, err := svc.Register(ctx, "Alice", "A@X.com", "pw123456")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.NotEmpty(t, res.Token)
	assert.NotEmpty(t, res.User.ID)
	assert.Equal(t, "a@x.com", res.User.Email, "email is normalized to lower case")

	stored, err := users.GetByID(ctx, res.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "pw123456", stored.Password, "password must not be stored in clear")
	assert.True(t, helpers.CompareHashAndPassword(stored.Password, "pw123456"))
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService()

	_, err := svc.Register(ctx, "Alice", "a@x.com", "pw123456")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Other Alice", "A@X.COM", "different")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService()

	_, err := svc.Register(ctx, "Alice", "a@x.com", "pw123456")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "valid credentials", email: "a@x.com", password: "pw123456"},
		{name: "case-insensitive email", email: "A@X.com", password: "pw123456"},
		{name: "wrong password", email: "a@x.com", password: "nope1234", wantErr: ErrInvalidCredentials},
		{name: "unknown email", email: "b@x.com", password: "pw123456", wantErr: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Login(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, res.Token)
		})
	}
}

func TestAuthService_Resolve(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService()

	res, err := svc.Register(ctx, "Alice", "a@x.com", "pw123456")
	require.NoError(t, err)

	uid, err := svc.Resolve(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, uid)

	_, err = svc.Resolve("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Token signed with a different secret fails the signature check.
	other := helpers.NewJWTManager("other-secret", time.Hour)
	forged, _, err := other.GenerateToken(res.User.ID)
	require.NoError(t, err)
	_, err = svc.Resolve(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_Resolve_Expired(t *testing.T) {
	ctx := context.Background()
	users := newMockUserRepo()
	jwt := helpers.NewJWTManager("test-secret", -time.Minute)
	svc := NewAuthService(users, jwt, nil)

	res, err := svc.Register(ctx, "Alice", "a@x.com", "pw123456")
	require.NoError(t, err)

	_, err = svc.Resolve(res.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
