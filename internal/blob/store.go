// Package blob abstracts the object store the pipeline writes archive
// artifacts to. Writes overwrite by name; the pipeline never reads back.
package blob

import (
	"context"
	"strings"
)

// Store is the minimal object-store surface the pipeline needs.
type Store interface {
	// Put writes data under container/name, overwriting any existing object.
	Put(ctx context.Context, container, name string, data []byte, contentType string) error
	// BaseURL is the account URL that object URLs are built from.
	BaseURL() string
}

// ObjectURL builds the public URL of an object from the store's account URL.
func ObjectURL(baseURL, container, name string) string {
	return strings.TrimRight(baseURL, "/") + "/" + container + "/" + name
}
