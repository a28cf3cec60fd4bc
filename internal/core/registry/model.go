package registry

import "time"

type Kind string

const (
	KindKey     Kind = "keys"
	KindKeyring Kind = "keyrings"
	KindAPI     Kind = "apis"
)

type Key struct {
	ID        string    `msgpack:"id" json:"id"`
	Name      string    `msgpack:"name" json:"name"`
	Token     string    `msgpack:"token" json:"token"`
	KeyringID string    `msgpack:"keyringId,omitempty" json:"keyringId,omitempty"`
	CreatedAt time.Time `msgpack:"createdAt" json:"createdAt"`
}

type Keyring struct {
	ID        string    `msgpack:"id" json:"id"`
	Name      string    `msgpack:"name" json:"name"`
	KeyIDs    []string  `msgpack:"-" json:"keyIds"`
	CreatedAt time.Time `msgpack:"createdAt" json:"createdAt"`
}

// ResolvedKeyring is a Keyring with its member keys loaded as full records.
type ResolvedKeyring struct {
	*Keyring
	Keys []*Key `json:"keys"`
}

type API struct {
	ID        string    `msgpack:"id" json:"id"`
	Name      string    `msgpack:"name" json:"name"`
	Upstream  string    `msgpack:"upstream" json:"upstream"`
	CreatedAt time.Time `msgpack:"createdAt" json:"createdAt"`
}

type CreateKeyRequest struct {
	Name      string `json:"name" validate:"required,max=128"`
	KeyringID string `json:"keyringId" validate:"omitempty,max=64"`
}

type CreateKeyringRequest struct {
	Name string `json:"name" validate:"required,max=128"`
}

type CreateAPIRequest struct {
	Name     string `json:"name" validate:"required,max=128"`
	Upstream string `json:"upstream" validate:"required,url"`
}
