package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonasBM/procon-itajai-simplificado-api/storage/model"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func createUser(t *testing.T, s *UsersStorage, username, password string) *model.User {
	t.Helper()
	u, err := s.Create(model.AddUser{Username: username, Password: strPtr(password)})
	require.NoError(t, err)
	return u
}

func TestAuthenticate(t *testing.T) {
	s := newTestStorage(t).UsersStorage()
	createUser(t, s, "maria", "segredo123")

	u, err := s.Authenticate("maria", "segredo123")
	require.NoError(t, err)
	assert.Equal(t, "maria", u.Username)

	_, err = s.Authenticate("maria", "errada")
	require.Error(t, err)
	_, err = s.Authenticate("ninguem", "segredo123")
	require.Error(t, err)
}

func TestAuthenticateInactiveUser(t *testing.T) {
	s := newTestStorage(t).UsersStorage()
	u := createUser(t, s, "jose", "senha")
	_, err := s.Update(u.ID, model.AddUser{Username: "jose", IsActive: boolPtr(false)})
	require.NoError(t, err)

	_, err = s.Authenticate("jose", "senha")
	require.Error(t, err)
}

func TestSystemUserCannotAuthenticate(t *testing.T) {
	s := newTestStorage(t).UsersStorage()
	_, err := s.Authenticate(model.SystemUsername, "")
	require.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	s := newTestStorage(t).UsersStorage()
	u := createUser(t, s, "ana", "senha")

	token, err := s.IssueToken(u.ID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := s.UserForToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	require.NoError(t, s.RevokeToken(token))
	_, err = s.UserForToken(token)
	require.Error(t, err)
}

func TestRevokeAllTokens(t *testing.T) {
	s := newTestStorage(t).UsersStorage()
	u := createUser(t, s, "carlos", "senha")

	t1, err := s.IssueToken(u.ID)
	require.NoError(t, err)
	t2, err := s.IssueToken(u.ID)
	require.NoError(t, err)
	require.NotEqual(t, t1, t2)

	require.NoError(t, s.RevokeAllTokens(u.ID))
	_, err = s.UserForToken(t1)
	require.Error(t, err)
	_, err = s.UserForToken(t2)
	require.Error(t, err)
}

func TestChangePassword(t *testing.T) {
	s := newTestStorage(t).UsersStorage()
	u := createUser(t, s, "paula", "antiga")

	err := s.ChangePassword(u.ID, "errada", "nova")
	var invalid model.InvalidRequestError
	require.ErrorAs(t, err, &invalid)

	require.NoError(t, s.ChangePassword(u.ID, "antiga", "nova"))
	_, err = s.Authenticate("paula", "antiga")
	require.Error(t, err)
	_, err = s.Authenticate("paula", "nova")
	require.NoError(t, err)
}

func TestListHidesSystemAndSuperusers(t *testing.T) {
	s := newTestStorage(t).UsersStorage()
	createUser(t, s, "comum", "senha")
	_, err := s.Create(
		model.AddUser{Username: "chefe", Password: strPtr("senha"), IsSuperuser: boolPtr(true)},
	)
	require.NoError(t, err)

	visible, err := s.List(false)
	require.NoError(t, err)
	names := make([]string, len(visible))
	for i, u := range visible {
		names[i] = u.Username
	}
	assert.Equal(t, []string{"comum"}, names)

	all, err := s.List(true)
	require.NoError(t, err)
	assert.Len(t, all, 2, "the sentinel account stays hidden even for superusers")
}

func TestCreateDuplicateUsername(t *testing.T) {
	s := newTestStorage(t).UsersStorage()
	createUser(t, s, "duplicado", "senha")

	_, err := s.Create(model.AddUser{Username: "duplicado", Password: strPtr("outra")})
	var exists model.AlreadyExistsError
	require.ErrorAs(t, err, &exists)
}

func TestProfileUpsertOnUpdate(t *testing.T) {
	s := newTestStorage(t).UsersStorage()
	u := createUser(t, s, "fiscal", "senha")

	updated, err := s.Update(
		u.ID, model.AddUser{Username: "fiscal", Profile: &model.Profile{Matricula: "12345"}},
	)
	require.NoError(t, err)
	require.NotNil(t, updated.Profile)
	assert.Equal(t, "12345", updated.Profile.Matricula)

	updated, err = s.Update(
		u.ID, model.AddUser{Username: "fiscal", Profile: &model.Profile{Matricula: "67890"}},
	)
	require.NoError(t, err)
	require.NotNil(t, updated.Profile)
	assert.Equal(t, "67890", updated.Profile.Matricula)
}
