package userservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sushihentaime/bloghub/internal/common"
)

const testPassword = "TestPassword123!"

func setupTestEnvironment(t *testing.T) (*UserService, *sql.DB, *common.MockMessageProducer, func() error) {
	db := common.TestDB("file://../../migrations", t)
	mb := &common.MockMessageProducer{}
	c := common.NewCache(time.Minute, 2*time.Minute)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s := NewUserService(db, mb, c, NewTokenManager(testSecret, "", time.Hour), logger)

	cleanup := func() error {
		_, err := db.Exec("DELETE FROM users")
		mb.Messages = nil
		c.Flush()
		return err
	}

	return s, db, mb, cleanup
}

func TestUserService(t *testing.T) {
	s, db, mb, cleanup := setupTestEnvironment(t)

	t.Run("sign up", func(t *testing.T) {
		t.Cleanup(func() { assert.NoError(t, cleanup()) })

		testCases := []struct {
			name     string
			userName string
			email    string
			password string
			field    string
		}{
			{name: "valid", userName: "Jane", email: "  Jane@Example.com ", password: testPassword},
			{name: "empty name", userName: "", email: "a@example.com", password: testPassword, field: "name"},
			{name: "bad email", userName: "Jane", email: "nope", password: testPassword, field: "email"},
			{name: "weak password", userName: "Jane", email: "b@example.com", password: "password", field: "password"},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				u, err := s.SignUp(ctx, tc.userName, tc.email, tc.password)
				if tc.field != "" {
					var verr common.ValidationError
					require.ErrorAs(t, err, &verr)
					assert.Contains(t, verr.Errors, tc.field)
					return
				}

				require.NoError(t, err)
				assert.Equal(t, "jane@example.com", u.Email)
				assert.NotEmpty(t, u.ID)

				var stored []byte
				err = db.QueryRow("SELECT password FROM users WHERE id = $1", u.ID).Scan(&stored)
				require.NoError(t, err)
				assert.NotEqual(t, []byte(tc.password), stored)

				msgs := mb.Published(common.UserCreatedKey)
				require.Len(t, msgs, 1)
				var event common.UserCreatedEvent
				require.NoError(t, json.Unmarshal(msgs[0].Body, &event))
				assert.Equal(t, "jane@example.com", event.Email)
			})
		}

		_, err := s.SignUp(context.Background(), "Other", "JANE@example.com", testPassword)
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("sign up survives broker failure", func(t *testing.T) {
		t.Cleanup(func() {
			mb.Err = nil
			assert.NoError(t, cleanup())
		})

		mb.Err = errors.New("broker down")
		u, err := s.SignUp(context.Background(), "Jane", "jane@example.com", testPassword)
		require.NoError(t, err)
		assert.NotNil(t, u)
	})

	t.Run("sign in", func(t *testing.T) {
		t.Cleanup(func() { assert.NoError(t, cleanup()) })

		_, err := s.SignUp(context.Background(), "Jane", "jane@example.com", testPassword)
		require.NoError(t, err)

		testCases := []struct {
			name     string
			email    string
			password string
			err      error
		}{
			{name: "valid", email: "JANE@example.com", password: testPassword},
			{name: "wrong password", email: "jane@example.com", password: "WrongPassword1!", err: ErrInvalidCredentials},
			{name: "unknown email", email: "who@example.com", password: testPassword, err: ErrInvalidCredentials},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				u, token, err := s.SignIn(context.Background(), tc.email, tc.password)
				if tc.err != nil {
					assert.ErrorIs(t, err, tc.err)
					return
				}

				require.NoError(t, err)
				assert.Equal(t, "jane@example.com", u.Email)
				assert.NotEmpty(t, token.Plain)
			})
		}

		_, _, err = s.SignIn(context.Background(), "", "")
		var verr common.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("authenticate and logout", func(t *testing.T) {
		t.Cleanup(func() { assert.NoError(t, cleanup()) })

		created, err := s.SignUp(context.Background(), "Jane", "jane@example.com", testPassword)
		require.NoError(t, err)

		_, token, err := s.SignIn(context.Background(), "jane@example.com", testPassword)
		require.NoError(t, err)

		u, claims, err := s.Authenticate(context.Background(), token.Plain)
		require.NoError(t, err)
		assert.Equal(t, created.ID, u.ID)
		assert.False(t, u.IsAnonymous())

		_, _, err = s.Authenticate(context.Background(), "garbage")
		assert.ErrorIs(t, err, common.ErrUnauthorized)

		require.NoError(t, s.Logout(context.Background(), claims))
		_, _, err = s.Authenticate(context.Background(), token.Plain)
		assert.ErrorIs(t, err, common.ErrUnauthorized)

		_, second, err := s.SignIn(context.Background(), "jane@example.com", testPassword)
		require.NoError(t, err)
		_, _, err = s.Authenticate(context.Background(), second.Plain)
		require.NoError(t, err)

		_, err = db.Exec("DELETE FROM users WHERE id = $1", created.ID)
		require.NoError(t, err)
		_, _, err = s.Authenticate(context.Background(), second.Plain)
		assert.ErrorIs(t, err, common.ErrUnauthorized)
	})
}

func TestAnonymousUser(t *testing.T) {
	assert.True(t, AnonymousUser.IsAnonymous())

	u := &User{Name: "Jane"}
	assert.False(t, u.IsAnonymous())
}
