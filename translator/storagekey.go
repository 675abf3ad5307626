package translator

// DeriveStorageKey computes the raw storage key for a pallet entry:
//
//  1. Twox128(pallet) ‖ Twox128(entry) is the key prefix.
//  2. For a Map entry, each hasher/key-bytes pair in order contributes
//     hash(key, hasher).
//  3. If fewer key fragments are supplied than the entry declares hashers,
//     only the supplied fragments are applied (remaining hashers ignored);
//     this yields a valid prefix key, intentionally allowing prefix reads
//     not advertised at the JSON-RPC layer.
func DeriveStorageKey(palletName, entryName string, entry StorageEntry, keys [][]byte) []byte {
	prefix := append(HashKey([]byte(palletName), Twox128), HashKey([]byte(entryName), Twox128)...)

	if entry.Kind == EntryPlain {
		return prefix
	}

	out := prefix
	n := len(keys)
	if len(entry.Hashers) < n {
		n = len(entry.Hashers)
	}
	for i := 0; i < n; i++ {
		out = append(out, HashKey(keys[i], entry.Hashers[i])...)
	}
	return out
}
