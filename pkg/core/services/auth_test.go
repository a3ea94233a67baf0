package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gymflex/gymflex-cli/pkg/clients/apiclient"
	"github.com/gymflex/gymflex-cli/pkg/core/model"
)

func TestLogin_CachesCurrentUser(t *testing.T) {
	api := &mockAuthClient{user: staffUser()}
	cache := &mockUserCache{}

	user, err := Login(context.Background(), api, cache, zap.NewNop(), "  coach ", "pw")
	require.NoError(t, err)

	assert.Equal(t, "coach", user.Username)
	assert.Equal(t, []string{"coach"}, api.logins, "username is trimmed")
	require.Len(t, cache.saved, 1)
	assert.True(t, cache.saved[0].IsStaff)
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name     string
		api      *mockAuthClient
		username string
		password string
		errMsg   string
	}{
		{"missing username", &mockAuthClient{}, " ", "pw", "username is required"},
		{"missing password", &mockAuthClient{}, "sam", "", "password is required"},
		{"bad credentials", &mockAuthClient{loginErr: errors.New("No active account found")}, "sam", "pw", "login failed"},
		{"profile fetch fails", &mockAuthClient{userErr: errors.New("timeout")}, "sam", "pw", "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := &mockUserCache{}

			_, err := Login(context.Background(), tt.api, cache, zap.NewNop(), tt.username, tt.password)

			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Empty(t, cache.saved)
		})
	}
}

func TestRegister(t *testing.T) {
	api := &mockAuthClient{}

	require.NoError(t, Register(context.Background(), api, zap.NewNop(), "NewUser", "pw"))
	assert.Equal(t, []string{"NewUser"}, api.registered)

	api.registerErr = errors.New("A user with that username already exists.")
	err := Register(context.Background(), api, zap.NewNop(), "NewUser", "pw")
	assert.Error(t, err)
}

func TestLogout_ClearsEverything(t *testing.T) {
	api := &mockAuthClient{}
	cache := &mockUserCache{user: memberUser()}

	require.NoError(t, Logout(api, cache, zap.NewNop()))

	assert.True(t, api.loggedOut)
	assert.True(t, cache.cleared)
	assert.Nil(t, cache.user)
}

func TestWhoAmI(t *testing.T) {
	t.Run("uses cache", func(t *testing.T) {
		api := &mockAuthClient{userErr: errors.New("should not be called")}
		cache := &mockUserCache{user: memberUser()}

		user, err := WhoAmI(context.Background(), api, cache, zap.NewNop(), false)
		require.NoError(t, err)
		assert.Equal(t, "sam", user.Username)
	})

	t.Run("refresh fetches and caches", func(t *testing.T) {
		fresh := &model.CurrentUser{ID: 2, Username: "sam", IsStaff: true}
		api := &mockAuthClient{user: fresh}
		cache := &mockUserCache{user: memberUser()}

		user, err := WhoAmI(context.Background(), api, cache, zap.NewNop(), true)
		require.NoError(t, err)
		assert.True(t, user.IsStaff)
		assert.Equal(t, fresh, cache.user)
	})

	t.Run("unauthorized clears local state", func(t *testing.T) {
		api := &mockAuthClient{userErr: fmt.Errorf("failed to fetch current user: %w", apiclient.ErrUnauthorized)}
		cache := &mockUserCache{}

		_, err := WhoAmI(context.Background(), api, cache, zap.NewNop(), false)

		assert.ErrorIs(t, err, apiclient.ErrUnauthorized)
		assert.True(t, cache.cleared)
	})
}
