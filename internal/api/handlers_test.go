package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrylevesque/deviceadmin/internal/admin"
	"github.com/harrylevesque/deviceadmin/internal/models"
)

type brokenStore struct{}

func (brokenStore) Contains(context.Context, string) (bool, error) {
	return false, errors.New("disk gone")
}
func (brokenStore) Add(context.Context, models.AdminEntry) error { return errors.New("disk gone") }
func (brokenStore) List(context.Context) ([]models.AdminEntry, error) {
	return nil, errors.New("disk gone")
}

func setupServer(t *testing.T, store admin.Store) *httptest.Server {
	t.Helper()
	auth := admin.NewAuthority(admin.StaticSource("d--test"), store)
	srv := httptest.NewServer(NewRouter(NewHandler(auth, nil)))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path string) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), method, srv.URL+path, nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealth(t *testing.T) {
	srv := setupServer(t, admin.NewMemoryStore())
	resp := do(t, srv, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetDeviceID(t *testing.T) {
	srv := setupServer(t, admin.NewMemoryStore())

	resp := do(t, srv, http.MethodGet, "/deviceid")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "d--test", decode[DeviceIDResponse](t, resp).DeviceID)
}

func TestGrantFlow(t *testing.T) {
	srv := setupServer(t, admin.NewMemoryStore())

	status := decode[AdminStatusResponse](t, do(t, srv, http.MethodGet, "/admin"))
	assert.False(t, status.Admin)

	resp := do(t, srv, http.MethodPost, "/admin/grant")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[AdminStatusResponse](t, resp).Admin)

	// second grant is a no-op
	resp = do(t, srv, http.MethodPost, "/admin/grant")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	status = decode[AdminStatusResponse](t, do(t, srv, http.MethodGet, "/admin"))
	assert.Equal(t, "d--test", status.DeviceID)
	assert.True(t, status.Admin)

	list := decode[AdminListResponse](t, do(t, srv, http.MethodGet, "/admin/list"))
	require.Len(t, list.Admins, 1)
	assert.Equal(t, "d--test", list.Admins[0].DeviceID)
}

func TestListEmptyIsArray(t *testing.T) {
	srv := setupServer(t, admin.NewMemoryStore())

	resp := do(t, srv, http.MethodGet, "/admin/list")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw := decode[map[string]json.RawMessage](t, resp)
	assert.JSONEq(t, `[]`, string(raw["admins"]))
}

func TestGrantMethodNotAllowed(t *testing.T) {
	srv := setupServer(t, admin.NewMemoryStore())
	resp := do(t, srv, http.MethodGet, "/admin/grant")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestBrokenStore(t *testing.T) {
	srv := setupServer(t, brokenStore{})

	status := decode[AdminStatusResponse](t, do(t, srv, http.MethodGet, "/admin"))
	assert.False(t, status.Admin, "store failure must fail closed")

	resp := do(t, srv, http.MethodPost, "/admin/grant")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	body := decode[ErrorResponse](t, resp)
	assert.Equal(t, 503, body.Code)
	assert.NotContains(t, body.Error, "disk gone")

	resp = do(t, srv, http.MethodGet, "/admin/list")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
