// File: utils/constants.go
package utils

// Context keys set by middleware.
const (
	CtxSessionID = "sessionID"
	CtxIdentity  = "identity"
)

// CatalogCachePrefix is the prefix used for Redis catalog cache keys.
const CatalogCachePrefix = "catalog:"
