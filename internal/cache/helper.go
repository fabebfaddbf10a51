package cache

import (
	"encoding/json"
)

// UnmarshalCacheValue returns a cached value as *T. The in-memory cache hands
// back the stored pointer; Redis hands back the JSON string written by Set.
func UnmarshalCacheValue[T any](value interface{}) (*T, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case *T:
		return v, true
	case string:
		var result T
		if err := json.Unmarshal([]byte(v), &result); err != nil {
			return nil, false
		}
		return &result, true
	default:
		return nil, false
	}
}
