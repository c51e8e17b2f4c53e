package job

import (
	"fmt"
	"hash/fnv"
)

// DocumentKey derives the executor key for a document id so all async writes
// touching one document land on the same shard, in submission order.
func DocumentKey(id int64) string {
	return fmt.Sprintf("document/%d", id)
}

// SessionKey derives the executor key for a chat session id.
func SessionKey(sessionID string) string {
	return "session/" + sessionID
}

// ShardLabel hashes an executor key to a stable small cardinality metric
// label (0-31).
func ShardLabel(key string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return fmt.Sprintf("%d", h.Sum32()%32)
}
