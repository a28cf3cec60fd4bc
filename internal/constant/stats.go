package constant

const (
	// ResolveQueryKey, when present on a stats request, embeds the entity record in the response.
	ResolveQueryKey = "resolve"

	IdempotencyStoragePrefix = "idempotency"
)
