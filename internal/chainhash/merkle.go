package chainhash

// MerkleRoot computes the binary Merkle tree commitment over an ordered list
// of leaf hashes, duplicating the last leaf of a level whenever that level
// has an odd number of nodes. An empty list commits to Sum(nil), matching
// original_source/src/blockchain/block.rs's sha256_hash("") resolution
// rather than the all-zero sentinel.
func MerkleRoot(leaves []Hash) Hash {
	if len(leaves) == 0 {
		return Sum(nil)
	}

	level := make([]Hash, len(leaves))
	copy(level, leaves)

	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}
		next := make([]Hash, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			var buf [HashSize * 2]byte
			copy(buf[:HashSize], level[i][:])
			copy(buf[HashSize:], level[i+1][:])
			next = append(next, Sum(buf[:]))
		}
		level = next
	}
	return level[0]
}
