package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/durusapp/durus/core"
	"github.com/durusapp/durus/core/user"
	inmemdb "github.com/durusapp/durus/storage/database/inmem"
)

func newSvc() user.ServiceInterface {
	return user.NewService(inmemdb.NewUserRepository(inmemdb.NewDB()))
}

func createUser(t *testing.T, svc user.ServiceInterface, uname, email, role string) user.User {
	t.Helper()
	usr, err := svc.Create(context.Background(), user.NewUser{
		Name:            uname,
		Username:        uname,
		Email:           email,
		Role:            role,
		Password:        "s3cr3tpwd",
		PasswordConfirm: "s3cr3tpwd",
	})
	require.NoError(t, err)
	return usr
}

func TestCreate(t *testing.T) {
	svc := newSvc()
	usr := createUser(t, svc, "nana", "nana@test.dz", user.RoleSecretary)

	assert.NotEmpty(t, usr.ID)
	assert.True(t, usr.IsActive)
	assert.Equal(t, user.RoleSecretary, usr.Role)
	assert.NoError(t, usr.CheckPassword("s3cr3tpwd"))
	assert.Error(t, usr.CheckPassword("wrong"))

	// duplicate username
	_, err := svc.Create(context.Background(), user.NewUser{
		Name: "Other", Username: "nana", Role: user.RoleAdmin,
		Password: "s3cr3tpwd", PasswordConfirm: "s3cr3tpwd",
	})
	require.Error(t, err)
	assert.IsType(t, &core.ValidationError{}, err)

	// duplicate email
	_, err = svc.Create(context.Background(), user.NewUser{
		Name: "Other", Username: "other", Email: "nana@test.dz", Role: user.RoleAdmin,
		Password: "s3cr3tpwd", PasswordConfirm: "s3cr3tpwd",
	})
	require.Error(t, err)
	assert.IsType(t, &core.ValidationError{}, err)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := newSvc()
	usr := createUser(t, svc, "nana", "nana@test.dz", user.RoleAdmin)

	got, err := svc.Authenticate(ctx, "nana", "s3cr3tpwd")
	require.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)
	assert.False(t, got.LastLogin.IsZero())

	_, err = svc.Authenticate(ctx, "nana", "wrong")
	assert.Error(t, err)

	_, err = svc.Authenticate(ctx, "ghost", "s3cr3tpwd")
	assert.Equal(t, user.ErrNotFound, err)

	// deactivated accounts cannot log in
	inactive := false
	_, err = svc.Update(ctx, usr.ID, user.UpdateUser{IsActive: &inactive})
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, "nana", "s3cr3tpwd")
	assert.Equal(t, user.ErrNotFound, err)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc := newSvc()
	usr := createUser(t, svc, "nana", "nana@test.dz", user.RoleSecretary)
	other := createUser(t, svc, "momo", "momo@test.dz", user.RoleTeacher)

	// partial update keeps unset fields
	got, err := svc.Update(ctx, usr.ID, user.UpdateUser{Name: "Nana B."})
	require.NoError(t, err)
	assert.Equal(t, "Nana B.", got.Name)
	assert.Equal(t, "nana", got.Username)
	assert.Equal(t, user.RoleSecretary, got.Role)

	// cannot steal another user's username
	_, err = svc.Update(ctx, usr.ID, user.UpdateUser{Username: other.Username})
	require.Error(t, err)
	assert.IsType(t, &core.ValidationError{}, err)

	// role change
	got, err = svc.Update(ctx, usr.ID, user.UpdateUser{Role: user.RoleAccountant})
	require.NoError(t, err)
	assert.Equal(t, user.RoleAccountant, got.Role)
}

func TestSetPassword(t *testing.T) {
	ctx := context.Background()
	svc := newSvc()
	usr := createUser(t, svc, "nana", "", user.RoleAdmin)

	_, err := svc.SetPassword(ctx, usr, "an0therpwd")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "nana", "an0therpwd")
	assert.NoError(t, err)
	_, err = svc.Authenticate(ctx, "nana", "s3cr3tpwd")
	assert.Error(t, err)
}

func TestFilter(t *testing.T) {
	ctx := context.Background()
	svc := newSvc()
	createUser(t, svc, "nana", "nana@test.dz", user.RoleSecretary)
	createUser(t, svc, "momo", "momo@test.dz", user.RoleAccountant)

	users, err := svc.Filter(ctx, user.QueryFilter{Role: user.RoleAccountant})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "momo", users[0].Username)

	users, err = svc.Filter(ctx, user.QueryFilter{Search: "NAN"})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "nana", users[0].Username)

	users, err = svc.Filter(ctx, user.QueryFilter{})
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
