package service

import (
	"context"
	"testing"

	"contenthub/internal/model"
	"contenthub/internal/repository"
	"contenthub/pkg/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userFixture struct {
	svc       UserService
	admin     AdminService
	repo      repository.UserRepository
	blacklist *memoryBlacklist
	jwt       *token.JWTManager
}

func newUserFixture(t *testing.T) userFixture {
	repo := repository.NewUserRepository(newTestDB(t))
	blacklist := newMemoryBlacklist()
	jwt := token.NewJWTManager("test-secret", 1, 7)
	return userFixture{
		svc:       NewUserService(repo, blacklist, jwt),
		admin:     NewAdminService(repo),
		repo:      repo,
		blacklist: blacklist,
		jwt:       jwt,
	}
}

func (f userFixture) callerFor(u *model.User) Caller {
	return Caller{Authenticated: true, UserID: u.ID, Email: u.Email, Role: u.Role}
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)

	require.NoError(t, f.svc.EnsureAdmin(ctx, "Root@Example.com ", "root", "secret"))
	require.NoError(t, f.svc.EnsureAdmin(ctx, "root@example.com", "root", "other"))

	u, err := f.repo.FindByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)

	_, _, err = f.svc.Login(ctx, "root@example.com", "secret")
	assert.NoError(t, err)
}

func TestLoginAndTokenLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)
	require.NoError(t, f.svc.EnsureAdmin(ctx, "root@example.com", "root", "secret"))

	_, _, err := f.svc.Login(ctx, "root@example.com", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, _, err = f.svc.Login(ctx, "nobody@example.com", "secret")
	assert.ErrorIs(t, err, ErrUnauthorized)

	access, refresh, err := f.svc.Login(ctx, "ROOT@example.com", "secret")
	require.NoError(t, err)

	// an access token cannot be used to refresh
	_, _, err = f.svc.RefreshToken(ctx, access)
	assert.ErrorIs(t, err, ErrUnauthorized)

	newAccess, newRefresh, err := f.svc.RefreshToken(ctx, refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, newAccess)
	assert.NotEmpty(t, newRefresh)

	// the rotated refresh token is revoked
	_, _, err = f.svc.RefreshToken(ctx, refresh)
	assert.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, f.svc.Logout(ctx, newAccess))
	revoked, _ := f.blacklist.IsRevoked(ctx, newAccess)
	assert.True(t, revoked)

	assert.ErrorIs(t, f.svc.Logout(ctx, "garbage"), ErrUnauthorized)
}

func TestCreateAccountRequiresAdmin(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)
	in := CreateAccountInput{Name: "editor", Email: "ed@example.com", Password: "pass", ConfirmPassword: "pass", Role: model.RoleEditor}

	_, err := f.svc.CreateAccount(ctx, editor, in)
	assert.ErrorIs(t, err, ErrForbidden)

	u, err := f.svc.CreateAccount(ctx, admin, in)
	require.NoError(t, err)
	assert.Equal(t, model.RoleEditor, u.Role)
	assert.NotEqual(t, "pass", u.Password)

	_, err = f.svc.CreateAccount(ctx, admin, in)
	assert.ErrorIs(t, err, ErrConflict)

	in.Email = "other@example.com"
	in.ConfirmPassword = "nope"
	_, err = f.svc.CreateAccount(ctx, admin, in)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSelfServiceAccountChanges(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)
	u, err := f.svc.CreateAccount(ctx, admin, CreateAccountInput{
		Name: "member", Email: "m@example.com", Password: "pass", ConfirmPassword: "pass",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, u.Role)
	caller := f.callerFor(u)

	updated, err := f.svc.UpdateProfile(ctx, caller, UpdateProfileInput{Email: "New@Example.com", Name: "renamed"})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", updated.Email)

	require.ErrorIs(t, f.svc.UpdatePassword(ctx, caller, UpdatePasswordInput{Password: "abc", ConfirmPassword: "abc"}), ErrInvalidInput)
	require.NoError(t, f.svc.UpdatePassword(ctx, caller, UpdatePasswordInput{Password: "better", ConfirmPassword: "better"}))
	_, _, err = f.svc.Login(ctx, "new@example.com", "better")
	require.NoError(t, err)

	profile, err := f.svc.GetProfile(ctx, caller)
	require.NoError(t, err)
	assert.Equal(t, "renamed", profile.Name)

	require.NoError(t, f.svc.DeleteAccount(ctx, caller))
	_, err = f.svc.GetProfile(ctx, caller)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdminListUsersAndSetRole(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)
	require.NoError(t, f.svc.EnsureAdmin(ctx, "root@example.com", "root", "secret"))
	root, err := f.repo.FindByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	rootCaller := f.callerFor(root)

	for _, email := range []string{"a@example.com", "b@example.com"} {
		_, err := f.svc.CreateAccount(ctx, rootCaller, CreateAccountInput{
			Name: "someone", Email: email, Password: "pass", ConfirmPassword: "pass",
		})
		require.NoError(t, err)
	}

	page, err := f.admin.ListUsers(ctx, rootCaller, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Content, 2)

	_, err = f.admin.ListUsers(ctx, member, 1, 2)
	assert.ErrorIs(t, err, ErrForbidden)

	b, err := f.repo.FindByEmail(ctx, "b@example.com")
	require.NoError(t, err)
	updated, err := f.admin.SetRole(ctx, rootCaller, b.ID, model.RoleEditor)
	require.NoError(t, err)
	assert.Equal(t, model.RoleEditor, updated.Role)

	_, err = f.admin.SetRole(ctx, rootCaller, b.ID, model.Role("ROOT"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.admin.SetRole(ctx, rootCaller, root.ID, model.RoleUser)
	assert.ErrorIs(t, err, ErrForbidden)
}
