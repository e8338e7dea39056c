package restapi

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonasBM/procon-itajai-simplificado-api/storage"
	"github.com/JonasBM/procon-itajai-simplificado-api/storage/model"
)

type testEnv struct {
	app        *fiber.App
	store      *storage.Storage
	userToken  string
	staffToken string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewStorage(
		storage.Config{
			Driver:   storage.DriverSQLite,
			DataDir:  dir,
			MediaDir: filepath.Join(dir, "media"),
		},
	)
	require.NoError(t, err)

	app := fiber.New()
	Register(
		app.Group("/api"), store.Backends(), store.Blobs(), Bridge{
			Export:  func(w io.Writer) error { _, err := w.Write([]byte("xlsx")); return err },
			Import:  func(r io.Reader) error { return nil },
			Archive: func(caseID uint) ([]byte, error) { return []byte("zip"), nil },
		},
	)

	users := store.UsersStorage()
	pw := "senha123"
	staff := true
	regular, err := users.Create(model.AddUser{Username: "comum", Password: &pw})
	require.NoError(t, err)
	staffUser, err := users.Create(model.AddUser{Username: "chefe", Password: &pw, IsStaff: &staff})
	require.NoError(t, err)

	userToken, err := users.IssueToken(regular.ID)
	require.NoError(t, err)
	staffToken, err := users.IssueToken(staffUser.ID)
	require.NoError(t, err)

	return &testEnv{app: app, store: store, userToken: userToken, staffToken: staffToken}
}

func (e *testEnv) request(t *testing.T, method, target, token string, body io.Reader) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func TestRequestsWithoutTokenAreRejected(t *testing.T) {
	e := newTestEnv(t)
	for _, target := range []string{"/api/processo/", "/api/tipodesituacao/", "/api/userprofile/"} {
		resp := e.request(t, http.MethodGet, target, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, target)
	}
	resp := e.request(t, http.MethodGet, "/api/processo/", "token-invalido", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginIssuesUsableToken(t *testing.T) {
	e := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.Header.Set(
		"Authorization",
		"Basic "+base64.StdEncoding.EncodeToString([]byte("comum:senha123")),
	)
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Token string `json:"token"`
	}
	decodeJSON(t, resp, &body)
	require.NotEmpty(t, body.Token)

	resp = e.request(t, http.MethodGet, "/api/processo/", body.Token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	e := newTestEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.Header.Set(
		"Authorization",
		"Basic "+base64.StdEncoding.EncodeToString([]byte("comum:errada")),
	)
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutRevokesToken(t *testing.T) {
	e := newTestEnv(t)
	resp := e.request(t, http.MethodPost, "/api/auth/logout", e.userToken, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = e.request(t, http.MethodGet, "/api/processo/", e.userToken, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCasePaginationShape(t *testing.T) {
	e := newTestEnv(t)
	cases := e.store.CasesStorage()
	for i := 0; i < 7; i++ {
		_, err := cases.Create(model.AddCase{Identificacao: fmt.Sprintf("%04d/2026", i)})
		require.NoError(t, err)
	}

	resp := e.request(t, http.MethodGet, "/api/processo/?page=1", e.userToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Count    int64        `json:"count"`
		NumPages int          `json:"num_pages"`
		Next     *string      `json:"next"`
		Previous *string      `json:"previous"`
		Results  []model.Case `json:"results"`
	}
	decodeJSON(t, resp, &body)
	assert.Equal(t, int64(7), body.Count)
	assert.Equal(t, 2, body.NumPages, "default page size is 5")
	assert.Len(t, body.Results, 5)
	require.NotNil(t, body.Next)
	assert.Contains(t, *body.Next, "page=2")
	assert.Nil(t, body.Previous)

	resp = e.request(t, http.MethodGet, "/api/processo/?page=3", e.userToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "past the last page")
}

func TestCommentUpdateIsRejected(t *testing.T) {
	e := newTestEnv(t)
	resp := e.request(
		t, http.MethodPut, "/api/comentario/1", e.userToken,
		strings.NewReader(`{"comentario":"editado"}`),
	)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestStatusEventUpdateIsRejected(t *testing.T) {
	e := newTestEnv(t)
	resp := e.request(t, http.MethodPut, "/api/situacao/1", e.userToken, strings.NewReader(`{}`))
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestReorderEndpointValidation(t *testing.T) {
	e := newTestEnv(t)
	types := e.store.StatusTypesStorage()
	var created []model.StatusType
	for i := 1; i <= 3; i++ {
		st, err := types.Create(model.AddStatusType{Nome: fmt.Sprintf("T%d", i), Ordem: uint(i)})
		require.NoError(t, err)
		created = append(created, *st)
	}

	// missing parameters
	resp := e.request(t, http.MethodGet, "/api/changetipodesituacaoordem", e.staffToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// non-numeric parameter
	resp = e.request(
		t, http.MethodGet,
		"/api/changetipodesituacaoordem?tipo_de_situacao_id=x&ordem_anterior=1&ordem_nova=2",
		e.staffToken, nil,
	)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// non-staff caller
	resp = e.request(
		t, http.MethodGet,
		fmt.Sprintf("/api/changetipodesituacaoordem?tipo_de_situacao_id=%d&ordem_anterior=1&ordem_nova=3", created[0].ID),
		e.userToken, nil,
	)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// unknown id
	resp = e.request(
		t, http.MethodGet,
		"/api/changetipodesituacaoordem?tipo_de_situacao_id=999&ordem_anterior=1&ordem_nova=3",
		e.staffToken, nil,
	)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// the happy path returns the full reordered collection
	resp = e.request(
		t, http.MethodGet,
		fmt.Sprintf("/api/changetipodesituacaoordem?tipo_de_situacao_id=%d&ordem_anterior=1&ordem_nova=3", created[0].ID),
		e.staffToken, nil,
	)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var items []model.StatusType
	decodeJSON(t, resp, &items)
	require.Len(t, items, 3)
	assert.Equal(t, "T2", items[0].Nome)
	assert.Equal(t, "T1", items[2].Nome)
}

func TestStatusTypeMutationRequiresStaff(t *testing.T) {
	e := newTestEnv(t)
	resp := e.request(
		t, http.MethodPost, "/api/tipodesituacao/", e.userToken,
		strings.NewReader(`{"nome":"Novo","ordem":1}`),
	)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = e.request(
		t, http.MethodPost, "/api/tipodesituacao/", e.staffToken,
		strings.NewReader(`{"nome":"Novo","ordem":1}`),
	)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestBulkEndpointsRequireStaff(t *testing.T) {
	e := newTestEnv(t)
	resp := e.request(t, http.MethodGet, "/api/download_todos_processos", e.userToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = e.request(t, http.MethodGet, "/api/download_todos_processos", e.staffToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
}

func TestDownloadCaseDocumentsRequiresCaseParam(t *testing.T) {
	e := newTestEnv(t)
	resp := e.request(t, http.MethodGet, "/api/download_documentos_do_processo", e.userToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = e.request(t, http.MethodGet, "/api/download_documentos_do_processo?processo_id=1", e.userToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/zip", resp.Header.Get("Content-Type"))
}

func TestMediaUnknownPathIs404(t *testing.T) {
	e := newTestEnv(t)
	resp := e.request(
		t, http.MethodGet, "/api/media/documentos/processo_1/2026-01-01-00-00-00_x.pdf",
		e.userToken, nil,
	)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUserProfileVisibilityPerRole(t *testing.T) {
	e := newTestEnv(t)

	var asUser []fullUserDTO
	resp := e.request(t, http.MethodGet, "/api/userprofile/", e.userToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &asUser)
	require.Len(t, asUser, 1, "non-staff only sees itself")
	assert.Equal(t, "comum", asUser[0].Username)

	var asStaff []fullUserDTO
	resp = e.request(t, http.MethodGet, "/api/userprofile/", e.staffToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &asStaff)
	assert.Len(t, asStaff, 2, "staff sees the non-superuser accounts")
}

func TestNonStaffCannotEscalateItself(t *testing.T) {
	e := newTestEnv(t)
	regular, err := e.store.UsersStorage().GetByUsername("comum")
	require.NoError(t, err)

	resp := e.request(
		t, http.MethodPut, fmt.Sprintf("/api/userprofile/%d", regular.ID), e.userToken,
		strings.NewReader(`{"username":"comum","first_name":"Nome","is_staff":true,"is_superuser":true}`),
	)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got, err := e.store.UsersStorage().Get(regular.ID)
	require.NoError(t, err)
	assert.False(t, got.IsStaff)
	assert.False(t, got.IsSuperuser)
	assert.Equal(t, "Nome", got.FirstName)
}
