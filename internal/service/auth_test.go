package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vybr/booking-api/internal/domain"
	"github.com/vybr/booking-api/internal/repository"
)

type fakeAuthUserRepo struct {
	usersByEmail map[string]domain.User
	nextID       uint
}

func newFakeAuthUserRepo() *fakeAuthUserRepo {
	return &fakeAuthUserRepo{usersByEmail: make(map[string]domain.User)}
}

func (f *fakeAuthUserRepo) Create(_ context.Context, user domain.User) (domain.User, error) {
	f.nextID++
	user.ID = f.nextID
	f.usersByEmail[user.Email] = user
	return user, nil
}

func (f *fakeAuthUserRepo) FindByEmail(_ context.Context, email string) (domain.User, error) {
	user, ok := f.usersByEmail[email]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func TestSignup_HashesPassword(t *testing.T) {
	repo := newFakeAuthUserRepo()
	svc := NewAuthService(repo)

	created, err := svc.Signup(context.Background(), domain.User{
		Email:    "ana@example.com",
		Password: "hunter2abc",
		Name:     "Ana",
		Country:  "Singapore",
	})
	require.NoError(t, err)

	assert.NotEqual(t, "hunter2abc", created.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("hunter2abc")))
}

func TestSignup_DuplicateEmail(t *testing.T) {
	repo := newFakeAuthUserRepo()
	svc := NewAuthService(repo)

	_, err := svc.Signup(context.Background(), domain.User{Email: "ana@example.com", Password: "hunter2abc"})
	require.NoError(t, err)

	_, err = svc.Signup(context.Background(), domain.User{Email: "ana@example.com", Password: "hunter2abc"})
	assert.ErrorIs(t, err, ErrUserEmailExists)
}

func TestLogin(t *testing.T) {
	repo := newFakeAuthUserRepo()
	svc := NewAuthService(repo)

	_, err := svc.Signup(context.Background(), domain.User{Email: "ana@example.com", Password: "hunter2abc"})
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		user, err := svc.Login(context.Background(), "ana@example.com", "hunter2abc")
		require.NoError(t, err)
		assert.Equal(t, "ana@example.com", user.Email)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "nobody@example.com", "hunter2abc")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "ana@example.com", "wrong")
		assert.ErrorIs(t, err, ErrWrongPassword)
	})
}
