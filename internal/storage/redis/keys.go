package redis

import "fmt"

const defaultKeyPrefix = "partyroom"

// userKey returns the Redis key for a wallet record
func (s *Storage) userKey(identity string) string {
	prefix := s.cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return fmt.Sprintf("%s:user:%s", prefix, identity)
}
