package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/ingrain/core"
)

// Key prefixes for different data types
const (
	jobRecordPrefix    = "jobrec"
	jobCreatedPrefix   = "jobcre"
	jobClaimPrefix     = "jobclm"
	collectionPrefix   = "collec"
	vectorRecordPrefix = "vecrec"
)

// makeJobKey generates a key for a job record by ID.
func makeJobKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", jobRecordPrefix, id))
}

// makeJobCreatedKey generates a composite key for the creation-order index.
// Format: prefix:timestamp:id. Timestamps are written BigEndian so that
// lexicographic iteration yields oldest-first FIFO order.
func makeJobCreatedKey(createdAt time.Time, id string) []byte {
	prefix := jobCreatedPrefix + ":"
	buf := make([]byte, len(prefix)+8+len(id))
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(createdAt.UnixMicro()))
	offset += 8
	copy(buf[offset:], id)
	return buf
}

// makeJobClaimKey generates a key recording when a job was claimed.
// Format: prefix:id, value: claim timestamp.
func makeJobClaimKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", jobClaimPrefix, id))
}

// makeCollectionKey generates a key for a registered collection name.
func makeCollectionKey(name string) []byte {
	return []byte(fmt.Sprintf("%s:%s", collectionPrefix, name))
}

// makeVectorKey generates a key for a vector record, scoped by collection
// so that queries can iterate one collection's prefix only.
// Format: prefix:collection:id.
func makeVectorKey(collection string, id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", vectorRecordPrefix, collection, id))
}

// makeVectorCollectionPrefix generates the iteration prefix for one
// collection's vectors.
func makeVectorCollectionPrefix(collection string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", vectorRecordPrefix, collection))
}
