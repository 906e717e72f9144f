package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"cajachica/internal/model"
	"cajachica/internal/repository"
	"cajachica/internal/testutil"
	"cajachica/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTokenIssuer struct {
	mock.Mock
}

func (m *mockTokenIssuer) Generate(userID uuid.UUID, role model.RoleName) (string, time.Time, error) {
	args := m.Called(userID, role)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func TestLogin(t *testing.T) {
	db := testutil.NewDB(t)
	users := repository.NewUserRepository(db)
	area := testutil.CreateArea(t, db, "Finanzas")

	hashed, err := HashPassword("secreto123")
	require.NoError(t, err)
	user := &model.User{
		Name:     "Ana",
		LastName: "Pérez",
		Email:    "ana@cajachica.test",
		Password: hashed,
		Role:     model.RoleAreaHead,
		Position: "Jefa de Finanzas",
		AreaID:   &area.ID,
	}
	require.NoError(t, users.Create(context.Background(), user))

	expires := time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)
	tokens := new(mockTokenIssuer)
	tokens.On("Generate", user.ID, model.RoleAreaHead).Return("signed.jwt", expires, nil).Once()
	svc := NewAuthService(users, tokens)

	t.Run("valid credentials", func(t *testing.T) {
		resp, err := svc.Login(context.Background(), LoginInput{Email: user.Email, Password: "secreto123"})
		require.NoError(t, err)
		assert.Equal(t, "signed.jwt", resp.Token)
		assert.Equal(t, "2026-03-03T10:00:00Z", resp.ExpiresAt)
		assert.Equal(t, user.ID.String(), resp.User.ID)
		tokens.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), LoginInput{Email: user.Email, Password: "otra"})
		require.ErrorIs(t, err, apperror.ErrUnauthenticated)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(context.Background(), LoginInput{Email: "nadie@cajachica.test", Password: "x"})
		require.ErrorIs(t, err, apperror.ErrUnauthenticated)
	})

	t.Run("malformed email", func(t *testing.T) {
		_, err := svc.Login(context.Background(), LoginInput{Email: "ana", Password: "x"})
		require.ErrorIs(t, err, apperror.ErrValidation)
		assert.Contains(t, apperror.FieldsOf(err), "email")
	})

	t.Run("me", func(t *testing.T) {
		me, err := svc.Me(context.Background(), Actor{ID: user.ID, Role: user.Role})
		require.NoError(t, err)
		assert.Equal(t, "area", me.Tier)
		assert.Equal(t, "Jefa de Finanzas", me.Position)
		require.NotNil(t, me.Area)
		assert.Equal(t, "Finanzas", me.Area.Name)

		_, err = svc.Me(context.Background(), Actor{ID: uuid.New()})
		require.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestLoginTokenFailure(t *testing.T) {
	db := testutil.NewDB(t)
	users := repository.NewUserRepository(db)
	hashed, err := HashPassword("secreto123")
	require.NoError(t, err)
	user := &model.User{Name: "Sofia", LastName: "Ruiz", Email: "sofia@cajachica.test", Password: hashed, Role: model.RoleSuperAdmin}
	require.NoError(t, users.Create(context.Background(), user))

	tokens := new(mockTokenIssuer)
	tokens.On("Generate", mock.Anything, mock.Anything).Return("", time.Time{}, errors.New("no key"))

	_, err = NewAuthService(users, tokens).Login(context.Background(), LoginInput{Email: user.Email, Password: "secreto123"})
	require.ErrorIs(t, err, apperror.ErrInternal)
}

func TestAreaServiceList(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateArea(t, db, "Operaciones")
	testutil.CreateArea(t, db, "Logística")

	areas, err := NewAreaService(repository.NewAreaRepository(db), 0).List(context.Background())
	require.NoError(t, err)
	require.Len(t, areas, 2)
}

func TestAreaServiceListCached(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateArea(t, db, "Operaciones")
	ctx := context.Background()

	cached := NewAreaService(repository.NewAreaRepository(db), time.Minute)
	uncached := NewAreaService(repository.NewAreaRepository(db), 0)

	areas, err := cached.List(ctx)
	require.NoError(t, err)
	require.Len(t, areas, 1)

	testutil.CreateArea(t, db, "Voluntariado")

	areas, err = cached.List(ctx)
	require.NoError(t, err)
	assert.Len(t, areas, 1, "served from cache")

	areas, err = uncached.List(ctx)
	require.NoError(t, err)
	assert.Len(t, areas, 2)
}
