package registry

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

const keyPrefix = "registry"

// ErrRecordNotFound is returned by a Store when no record exists for an id.
var ErrRecordNotFound = errors.New("registry: record not found")

// Store persists registry records.
type Store interface {
	GetKey(ctx context.Context, id string) (*Key, error)
	GetKeys(ctx context.Context, ids []string) ([]*Key, error)
	GetKeyring(ctx context.Context, id string) (*Keyring, error)
	GetAPI(ctx context.Context, id string) (*API, error)

	SaveKey(ctx context.Context, key *Key) error
	SaveKeyring(ctx context.Context, keyring *Keyring) error
	SaveAPI(ctx context.Context, api *API) error

	Ping(ctx context.Context) error
}

// Repo is the redis backed Store. Records are msgpack blobs under registry:<kind>:<id>;
// keyring membership is the set registry:keyrings:<id>:keys.
type Repo struct {
	client *redis.Client
}

var _ Store = (*Repo)(nil)

func NewRepo(client *redis.Client) *Repo {
	return &Repo{client: client}
}

func recordKey(kind Kind, id string) string {
	return strings.Join([]string{keyPrefix, string(kind), id}, ":")
}

func membersKey(keyringID string) string {
	return recordKey(KindKeyring, keyringID) + ":keys"
}

func get[T any](ctx context.Context, client redis.Cmdable, key string) (*T, error) {
	b, err := client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrRecordNotFound
	} else if err != nil {
		return nil, errors.Wrapf(err, "registry: get %s", key)
	}

	var v T
	if err := msgpack.Unmarshal(b, &v); err != nil {
		return nil, errors.Wrapf(err, "registry: decode %s", key)
	}
	return &v, nil
}

func (r *Repo) GetKey(ctx context.Context, id string) (*Key, error) {
	return get[Key](ctx, r.client, recordKey(KindKey, id))
}

// GetKeys returns the keys that exist among ids, in the order of ids.
func (r *Repo) GetKeys(ctx context.Context, ids []string) ([]*Key, error) {
	if len(ids) == 0 {
		return []*Key{}, nil
	}

	cmds := make([]*redis.StringCmd, len(ids))
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.Get(ctx, recordKey(KindKey, id))
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, errors.Wrap(err, "registry: get keys")
	}

	keys := make([]*Key, 0, len(ids))
	for i, cmd := range cmds {
		b, err := cmd.Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		} else if err != nil {
			return nil, errors.Wrapf(err, "registry: get key %s", ids[i])
		}
		var k Key
		if err := msgpack.Unmarshal(b, &k); err != nil {
			return nil, errors.Wrapf(err, "registry: decode key %s", ids[i])
		}
		keys = append(keys, &k)
	}
	return keys, nil
}

func (r *Repo) GetKeyring(ctx context.Context, id string) (*Keyring, error) {
	keyring, err := get[Keyring](ctx, r.client, recordKey(KindKeyring, id))
	if err != nil {
		return nil, err
	}

	members, err := r.client.SMembers(ctx, membersKey(id)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "registry: members of keyring %s", id)
	}
	sort.Strings(members)
	keyring.KeyIDs = members
	return keyring, nil
}

func (r *Repo) GetAPI(ctx context.Context, id string) (*API, error) {
	return get[API](ctx, r.client, recordKey(KindAPI, id))
}

func (r *Repo) SaveKey(ctx context.Context, key *Key) error {
	b, err := msgpack.Marshal(key)
	if err != nil {
		return errors.Wrap(err, "registry: encode key")
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, recordKey(KindKey, key.ID), b, 0)
		if key.KeyringID != "" {
			pipe.SAdd(ctx, membersKey(key.KeyringID), key.ID)
		}
		return nil
	})
	return errors.Wrapf(err, "registry: save key %s", key.ID)
}

func (r *Repo) SaveKeyring(ctx context.Context, keyring *Keyring) error {
	return r.save(ctx, recordKey(KindKeyring, keyring.ID), keyring)
}

func (r *Repo) SaveAPI(ctx context.Context, api *API) error {
	return r.save(ctx, recordKey(KindAPI, api.ID), api)
}

func (r *Repo) save(ctx context.Context, key string, v any) error {
	b, err := msgpack.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "registry: encode %s", key)
	}
	return errors.Wrapf(r.client.Set(ctx, key, b, 0).Err(), "registry: save %s", key)
}

func (r *Repo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
