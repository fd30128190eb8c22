package sync

import (
	"encoding/binary"
	"fmt"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/spaolacci/murmur3"
)

// ring is a consistent hash ring over the partitions [0, partitions)
type ring struct {
	hashRing *treemap.Map

	// minPartition caches the value of the min entry in hashRing, since
	// treemap.Map.Min() is O(log n).
	minPartition int
}

// newRing returns a new consistent hash ring where each partition has
// replicationFactor entries in the ring
func newRing(partitions, replicationFactor uint) *ring {
	hashRing := treemap.NewWith(utils.Int64Comparator)
	for partition := 0; partition < int(partitions); partition++ {
		keyHash, _ := murmur3.Sum128([]byte(fmt.Sprintf("partition%d", partition)))

		var keyHashBytes [8]byte
		binary.LittleEndian.PutUint64(keyHashBytes[:], keyHash)

		for i := 0; i < int(replicationFactor); i++ {
			var indexBytes [4]byte
			binary.LittleEndian.PutUint32(indexBytes[:], uint32(i))

			hasher := murmur3.New128()
			hasher.Write(keyHashBytes[:])
			hasher.Write(indexBytes[:])
			hash, _ := hasher.Sum128()

			hashRing.Put(int64(hash), partition)
		}
	}

	r := &ring{hashRing: hashRing}
	if _, min := hashRing.Min(); min != nil {
		r.minPartition = min.(int)
	}
	return r
}

// shard consistently hashes the key and returns its partition
func (r *ring) shard(key []byte) int {
	raw, _ := murmur3.Sum128(key)
	if _, partition := r.hashRing.Ceiling(int64(raw)); partition != nil {
		return partition.(int)
	}
	return r.minPartition
}
