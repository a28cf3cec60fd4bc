package registry

import (
	"context"
	"strings"
	"time"

	"github.com/dchest/uniuri"
	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"

	"exusiai.dev/gateway-admin/internal/app/appconfig"
	"exusiai.dev/gateway-admin/internal/pkg/cache"
	"exusiai.dev/gateway-admin/internal/pkg/gwerr"
)

const tokenLength = 40

type Service struct {
	store Store
	now   func() time.Time

	keys     *cache.Local[*Key]
	keyrings *cache.Local[*Keyring]
	apis     *cache.Local[*API]
}

func NewService(store Store, conf *appconfig.Config) *Service {
	return &Service{
		store:    store,
		now:      time.Now,
		keys:     cache.NewLocal[*Key]("registry#key", conf.RegistryCacheTTL),
		keyrings: cache.NewLocal[*Keyring]("registry#keyring", conf.RegistryCacheTTL),
		apis:     cache.NewLocal[*API]("registry#api", conf.RegistryCacheTTL),
	}
}

func newID(prefix string) string {
	return prefix + "_" + strings.ToLower(ulid.Make().String())
}

func notFound(kind Kind, id string, err error) error {
	if errors.Is(err, ErrRecordNotFound) {
		return gwerr.ErrNotFound.Msg("%s %q not found", strings.TrimSuffix(string(kind), "s"), id)
	}
	return err
}

func (s *Service) GetKey(ctx context.Context, id string) (*Key, error) {
	key, err := s.keys.MutexGetSet(id, func() (*Key, error) {
		return s.store.GetKey(ctx, id)
	})
	return key, notFound(KindKey, id, err)
}

func (s *Service) GetKeyring(ctx context.Context, id string) (*Keyring, error) {
	keyring, err := s.keyrings.MutexGetSet(id, func() (*Keyring, error) {
		return s.store.GetKeyring(ctx, id)
	})
	return keyring, notFound(KindKeyring, id, err)
}

func (s *Service) GetAPI(ctx context.Context, id string) (*API, error) {
	api, err := s.apis.MutexGetSet(id, func() (*API, error) {
		return s.store.GetAPI(ctx, id)
	})
	return api, notFound(KindAPI, id, err)
}

// ResolveKeyring loads a keyring together with the records of its member keys.
func (s *Service) ResolveKeyring(ctx context.Context, id string) (*ResolvedKeyring, error) {
	keyring, err := s.GetKeyring(ctx, id)
	if err != nil {
		return nil, err
	}
	keys, err := s.store.GetKeys(ctx, keyring.KeyIDs)
	if err != nil {
		return nil, err
	}
	return &ResolvedKeyring{Keyring: keyring, Keys: keys}, nil
}

func (s *Service) CreateKey(ctx context.Context, req *CreateKeyRequest) (*Key, error) {
	if req.KeyringID != "" {
		if _, err := s.GetKeyring(ctx, req.KeyringID); err != nil {
			return nil, err
		}
	}

	key := &Key{
		ID:        newID("key"),
		Name:      req.Name,
		Token:     uniuri.NewLen(tokenLength),
		KeyringID: req.KeyringID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.SaveKey(ctx, key); err != nil {
		return nil, err
	}
	if req.KeyringID != "" {
		// membership changed
		s.keyrings.Delete(req.KeyringID)
	}
	return key, nil
}

func (s *Service) CreateKeyring(ctx context.Context, req *CreateKeyringRequest) (*Keyring, error) {
	keyring := &Keyring{
		ID:        newID("keyring"),
		Name:      req.Name,
		KeyIDs:    []string{},
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.SaveKeyring(ctx, keyring); err != nil {
		return nil, err
	}
	return keyring, nil
}

func (s *Service) CreateAPI(ctx context.Context, req *CreateAPIRequest) (*API, error) {
	api := &API{
		ID:        newID("api"),
		Name:      req.Name,
		Upstream:  req.Upstream,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.SaveAPI(ctx, api); err != nil {
		return nil, err
	}
	return api, nil
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
