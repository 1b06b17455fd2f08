package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adultcare-api/internal/domain"
	"adultcare-api/internal/feature/user"
	"adultcare-api/internal/repo"
	"adultcare-api/internal/testkit"
	"adultcare-api/pkg/utils"
)

func newService(t *testing.T) (*UserService, *repo.UserRepo) {
	r := repo.NewUserRepo(testkit.NewDB(t))
	return NewUserService(r, nil), r
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("ExplicitRole", func(t *testing.T) {
		svc, _ := newService(t)
		u, err := svc.Register(ctx, RegisterInput{
			Email: "a@x.com", Username: "a", Password: "p1", RePassword: "p1", Role: "caregiver",
		})
		require.NoError(t, err)
		assert.Equal(t, "caregiver", u.Role)
		assert.NotZero(t, u.ID)
		assert.True(t, utils.CheckPassword("p1", u.PasswordHash))
	})

	t.Run("DefaultRoleFamily", func(t *testing.T) {
		svc, _ := newService(t)
		u, err := svc.Register(ctx, RegisterInput{Email: "b@x.com", Username: "b", Password: "p", RePassword: "p"})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleFamily, u.Role)
		assert.True(t, u.IsActive)
		assert.False(t, u.IsStaff)
	})

	t.Run("PasswordMismatchCreatesNothing", func(t *testing.T) {
		svc, r := newService(t)
		_, err := svc.Register(ctx, RegisterInput{Email: "a@x.com", Username: "a", Password: "p1", RePassword: "p2"})
		assert.ErrorIs(t, err, domain.ErrPasswordMismatch)

		_, err = r.FindByEmail(ctx, "a@x.com")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("UnknownRoleRejected", func(t *testing.T) {
		svc, r := newService(t)
		_, err := svc.Register(ctx, RegisterInput{
			Email: "r@x.com", Username: "r", Password: "p", RePassword: "p", Role: "superhero",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidRole)

		_, err = r.FindByEmail(ctx, "r@x.com")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		svc, _ := newService(t)
		in := RegisterInput{Email: "dup@X.com", Username: "d", Password: "p", RePassword: "p"}
		_, err := svc.Register(ctx, in)
		require.NoError(t, err)
		in.Email = "dup@x.COM"
		_, err = svc.Register(ctx, in)
		assert.ErrorIs(t, err, domain.ErrEmailTaken)
	})
}

func TestEnsureSuperuser_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc, r := newService(t)

	created, err := svc.EnsureSuperuser(ctx, "admin@example.com", "admin", "admin123")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureSuperuser(ctx, "admin@example.com", "admin", "other")
	require.NoError(t, err)
	assert.False(t, created)

	u, err := r.FindByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, u.Role)
	assert.True(t, u.IsStaff)
	assert.True(t, u.IsSuperuser)
	assert.True(t, utils.CheckPassword("admin123", u.PasswordHash))

	_, total, err := svc.List(ctx, "", 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, r := newService(t)
	u, err := svc.Register(ctx, RegisterInput{Email: "c@x.com", Username: "c", Password: "pw", RePassword: "pw"})
	require.NoError(t, err)

	got, err := svc.Authenticate(ctx, "c@X.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	stored, err := r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLogin)

	_, err = svc.Authenticate(ctx, "c@x.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nobody@x.com", "pw")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthenticate_Inactive(t *testing.T) {
	ctx := context.Background()
	db := testkit.NewDB(t)
	svc := NewUserService(repo.NewUserRepo(db), nil)
	u, err := svc.Register(ctx, RegisterInput{Email: "i@x.com", Username: "i", Password: "pw", RePassword: "pw"})
	require.NoError(t, err)
	require.NoError(t, db.Model(&user.UserModel{}).Where("id = ?", u.ID).Update("is_active", false).Error)

	_, err = svc.Authenticate(ctx, "i@x.com", "pw")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestDeleteUser_CascadesAndNulls(t *testing.T) {
	ctx := context.Background()
	db := testkit.NewDB(t)
	svc := NewUserService(repo.NewUserRepo(db), nil)
	u, err := svc.Register(ctx, RegisterInput{Email: "f@x.com", Username: "f", Password: "pw", RePassword: "pw"})
	require.NoError(t, err)

	fb := user.FeedbackModel{UserID: &u.ID, Rating: 4}
	require.NoError(t, db.Create(&fb).Error)

	require.NoError(t, svc.Delete(ctx, u.ID))
	assert.ErrorIs(t, svc.Delete(ctx, u.ID), domain.ErrUserNotFound)

	var got user.FeedbackModel
	require.NoError(t, db.First(&got, fb.ID).Error)
	assert.Nil(t, got.UserID)
	assert.Equal(t, 4, got.Rating)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "John.Doe@example.com", NormalizeEmail(" John.Doe@EXAMPLE.com "))
	assert.Equal(t, "no-at", NormalizeEmail("no-at"))
}
