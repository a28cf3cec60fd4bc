package registry

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exusiai.dev/gateway-admin/internal/app/appconfig"
	"exusiai.dev/gateway-admin/internal/pkg/gwerr"
)

type fakeStore struct {
	mu       sync.Mutex
	keys     map[string]*Key
	keyrings map[string]*Keyring
	apis     map[string]*API
	reads    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		keys:     map[string]*Key{},
		keyrings: map[string]*Keyring{},
		apis:     map[string]*API{},
	}
}

func lookup[T any](s *fakeStore, m map[string]*T, id string) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	v, ok := m[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	cp := *v
	return &cp, nil
}

func (s *fakeStore) GetKey(_ context.Context, id string) (*Key, error) {
	return lookup(s, s.keys, id)
}

func (s *fakeStore) GetKeys(_ context.Context, ids []string) ([]*Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*Key{}
	for _, id := range ids {
		if k, ok := s.keys[id]; ok {
			out = append(out, k)
		}
	}
	return out, nil
}

func (s *fakeStore) GetKeyring(_ context.Context, id string) (*Keyring, error) {
	kr, err := lookup(s, s.keyrings, id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kr.KeyIDs = []string{}
	for _, k := range s.keys {
		if k.KeyringID == id {
			kr.KeyIDs = append(kr.KeyIDs, k.ID)
		}
	}
	return kr, nil
}

func (s *fakeStore) GetAPI(_ context.Context, id string) (*API, error) {
	return lookup(s, s.apis, id)
}

func (s *fakeStore) SaveKey(_ context.Context, key *Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key.ID] = key
	return nil
}

func (s *fakeStore) SaveKeyring(_ context.Context, keyring *Keyring) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keyrings[keyring.ID] = keyring
	return nil
}

func (s *fakeStore) SaveAPI(_ context.Context, api *API) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apis[api.ID] = api
	return nil
}

func (s *fakeStore) Ping(context.Context) error { return nil }

func newTestService(store Store) *Service {
	conf := &appconfig.Config{ConfigSpec: appconfig.ConfigSpec{RegistryCacheTTL: time.Minute}}
	svc := NewService(store, conf)
	svc.now = func() time.Time { return time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestCreateAndGetKey(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	key, err := svc.CreateKey(ctx, &CreateKeyRequest{Name: "ci"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key.ID, "key_"))
	assert.Len(t, key.Token, tokenLength)
	assert.Equal(t, time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC), key.CreatedAt)

	got, err := svc.GetKey(ctx, key.ID)
	require.NoError(t, err)
	assert.Equal(t, key.Name, got.Name)

	reads := store.reads
	_, err = svc.GetKey(ctx, key.ID)
	require.NoError(t, err)
	assert.Equal(t, reads, store.reads, "second lookup should be served from cache")
}

func TestGetMissingIsNotFound(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.GetAPI(context.Background(), "api_missing")
	require.Error(t, err)
	assert.True(t, gwerr.IsCode(err, gwerr.CodeNotFound))
	assert.Contains(t, err.Error(), `api "api_missing" not found`)
}

func TestCreateKeyInUnknownKeyring(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	_, err := svc.CreateKey(context.Background(), &CreateKeyRequest{Name: "ci", KeyringID: "keyring_nope"})
	assert.True(t, gwerr.IsCode(err, gwerr.CodeNotFound))
	assert.Empty(t, store.keys)
}

func TestResolveKeyring(t *testing.T) {
	svc := newTestService(newFakeStore())
	ctx := context.Background()

	kr, err := svc.CreateKeyring(ctx, &CreateKeyringRequest{Name: "team"})
	require.NoError(t, err)

	// warm the keyring cache before a member is added
	_, err = svc.GetKeyring(ctx, kr.ID)
	require.NoError(t, err)

	key, err := svc.CreateKey(ctx, &CreateKeyRequest{Name: "ci", KeyringID: kr.ID})
	require.NoError(t, err)

	resolved, err := svc.ResolveKeyring(ctx, kr.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{key.ID}, resolved.KeyIDs)
	require.Len(t, resolved.Keys, 1)
	assert.Equal(t, key.ID, resolved.Keys[0].ID)
}

func TestAPIDetails(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	api, err := svc.CreateAPI(context.Background(), &CreateAPIRequest{Name: "billing", Upstream: "https://billing.internal"})
	require.NoError(t, err)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			if gwerr.IsCode(err, gwerr.CodeNotFound) {
				return ctx.SendStatus(fiber.StatusNotFound)
			}
			return ctx.SendStatus(fiber.StatusInternalServerError)
		},
	})
	handler := func(ctx *fiber.Ctx) error {
		if a := APIFromCtx(ctx); a != nil {
			return ctx.SendString(a.Name)
		}
		return ctx.SendString("none")
	}
	app.Get("/required/:apiId", svc.APIDetails(true), handler)
	app.Get("/optional/:apiId", svc.APIDetails(false), handler)

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/required/" + api.ID, fiber.StatusOK, "billing"},
		{"/required/api_missing", fiber.StatusNotFound, ""},
		{"/optional/api_missing", fiber.StatusOK, "none"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, tt.path, nil))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.body != "" {
				buf := new(strings.Builder)
				_, _ = io.Copy(buf, resp.Body)
				assert.Equal(t, tt.body, buf.String())
			}
		})
	}
}
