package value

import (
	"fmt"
	"hash/fnv"
	"sort"
)

// HashKey implements spec §4.2's hashing rule: raw hash XOR capability
// hash, so two values differing only in provenance are distinct keys in a
// Dict or Set.
func HashKey(v Value) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%T:%v", v.Raw(), v.Raw())
	rawHash := h.Sum64()

	capHash := capabilitiesHash(v)
	return fmt.Sprintf("%x", rawHash^capHash)
}

func capabilitiesHash(v Value) uint64 {
	h := fnv.New64a()
	caps := v.Capabilities()
	sources := caps.Sources.Items()
	keys := make([]string, len(sources))
	for i, s := range sources {
		keys[i] = s.Key()
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprint(h, k)
	}
	if caps.Readers.IsPublic() {
		fmt.Fprint(h, "public")
	} else {
		ids := caps.Readers.IDs()
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Fprint(h, id)
		}
	}
	return h.Sum64()
}
