package types

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

const (
	UUID_PREFIX_SUBSCRIPTION = "sub"
	UUID_PREFIX_REQUEST      = "req"
)

// GenerateUUID returns a lowercase ULID, sortable by creation time.
func GenerateUUID() string {
	return strings.ToLower(ulid.Make().String())
}

// GenerateUUIDWithPrefix returns prefix_<ulid>.
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

// IsValidUserID reports whether id is a Supabase auth user id.
func IsValidUserID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
