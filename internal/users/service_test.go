package users

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/halcyon-edu/campus/internal/shared"
)

type userStore struct {
	users  map[string]User
	hashes map[string]string
}

func newUserStore() *userStore {
	return &userStore{users: make(map[string]User), hashes: make(map[string]string)}
}

func (s *userStore) Create(ctx context.Context, u User, passwordHash string) (User, error) {
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return User{}, fmt.Errorf("%w: email %s", shared.ErrDuplicate, u.Email)
		}
	}
	s.users[u.ID] = u
	s.hashes[u.ID] = passwordHash
	return u, nil
}

func (s *userStore) Get(ctx context.Context, id string) (User, error) {
	u, ok := s.users[id]
	if !ok {
		return User{}, fmt.Errorf("%w: user %s", shared.ErrNotFound, id)
	}
	return u, nil
}

func TestCreateNormalizesEmailAndHashesPassword(t *testing.T) {
	store := newUserStore()
	svc := NewService(store)

	created, err := svc.Create(context.Background(), "  Head@School.EDU ", "Head Teacher", "s3cret-pass", "teacher", "T1")
	require.NoError(t, err)

	assert.Equal(t, "head@school.edu", created.Email)
	assert.Equal(t, "teacher", created.LegacyRole)
	assert.Equal(t, "T1", created.BranchID)

	hash := store.hashes[created.ID]
	require.NotEmpty(t, hash)
	assert.NotContains(t, hash, "s3cret-pass")
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret-pass")))
}

func TestCreateRejectsInvalidEmail(t *testing.T) {
	svc := NewService(newUserStore())

	_, err := svc.Create(context.Background(), "not-an-email", "X", "s3cret-pass", "", "")
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateRejectsShortPassword(t *testing.T) {
	svc := NewService(newUserStore())

	_, err := svc.Create(context.Background(), "a@b.edu", "X", "short", "", "")
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateDuplicateEmail(t *testing.T) {
	svc := NewService(newUserStore())

	_, err := svc.Create(context.Background(), "a@b.edu", "First", "s3cret-pass", "", "")
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "A@B.EDU", "Second", "s3cret-pass", "", "")
	require.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestGetUnknownUser(t *testing.T) {
	svc := NewService(newUserStore())

	_, err := svc.Get(context.Background(), "missing")
	require.ErrorIs(t, err, shared.ErrNotFound)
}
