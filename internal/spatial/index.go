// Package spatial implements the generic 16x16 chunked hash index described
// in spec §4.2 (component C2): O(1) insert/remove, O(k) radius query,
// shared by the entity index and the vegetation index alike. The teacher
// repo keeps a dense 2D grid (world.Grid) rebuilt every tick; that doesn't
// scale to sparse worlds with far-flung agents, so this index is built
// fresh from the pack's chunking idiom rather than adapted from the
// teacher's grid.
package spatial

import "github.com/GoCodeAlone/ecotick/internal/geom"

type entry[K comparable] struct {
	key K
	pos geom.Position
}

// Index is a chunked hash from world position to a bag of keys. K is
// typically an entity identity or, for the vegetation index, the cell's own
// Position (key ≡ pos per spec §4.2).
type Index[K comparable] struct {
	chunks map[geom.ChunkCoord][]entry[K]
	// pos tracks the last known position per key so update/remove don't
	// require the caller to remember which chunk a key lives in.
	pos map[K]geom.Position
}

// New returns an empty Index.
func New[K comparable]() *Index[K] {
	return &Index[K]{
		chunks: make(map[geom.ChunkCoord][]entry[K]),
		pos:    make(map[K]geom.Position),
	}
}

// Insert adds key at pos. Invariant (spec §4.2a): every Insert of a key
// already present must be preceded by a Remove; Insert does not itself
// deduplicate.
func (idx *Index[K]) Insert(key K, pos geom.Position) {
	c := pos.Chunk()
	idx.chunks[c] = append(idx.chunks[c], entry[K]{key: key, pos: pos})
	idx.pos[key] = pos
}

// Remove deletes key from pos. Removing an absent key is a silent no-op
// (spec §4.2 failure model), keeping call sites simple.
func (idx *Index[K]) Remove(key K, pos geom.Position) {
	c := pos.Chunk()
	bucket := idx.chunks[c]
	for i, e := range bucket {
		if e.key == key {
			bucket[i] = bucket[len(bucket)-1]
			bucket = bucket[:len(bucket)-1]
			break
		}
	}
	if len(bucket) == 0 {
		delete(idx.chunks, c)
	} else {
		idx.chunks[c] = bucket
	}
	delete(idx.pos, key)
}

// Update moves key from oldPos to newPos. If key was absent at oldPos this
// degrades to Insert(key, newPos), per spec §4.2 failure model.
func (idx *Index[K]) Update(key K, oldPos, newPos geom.Position) {
	if oldPos.Equal(newPos) {
		// still re-register pos in case the key was never tracked
		if _, ok := idx.pos[key]; !ok {
			idx.Insert(key, newPos)
		}
		return
	}
	if _, ok := idx.pos[key]; ok {
		idx.Remove(key, oldPos)
	}
	idx.Insert(key, newPos)
}

// Contains reports whether key is currently indexed at pos.
func (idx *Index[K]) Contains(key K, pos geom.Position) bool {
	p, ok := idx.pos[key]
	return ok && p.Equal(pos)
}

// PositionOf returns the last known position of key, if tracked.
func (idx *Index[K]) PositionOf(key K) (geom.Position, bool) {
	p, ok := idx.pos[key]
	return p, ok
}

// Clear empties the index entirely.
func (idx *Index[K]) Clear() {
	idx.chunks = make(map[geom.ChunkCoord][]entry[K])
	idx.pos = make(map[K]geom.Position)
}

// Len returns the number of indexed keys.
func (idx *Index[K]) Len() int { return len(idx.pos) }

// QueryRadius visits ceil(radius/16)+1 chunks on each axis around the query
// chunk and yields the keys within the given Euclidean radius of center, via
// a visitor callback so callers never allocate a result slice they don't
// need.
func (idx *Index[K]) QueryRadius(center geom.Position, radius float64, visit func(key K, pos geom.Position)) {
	if radius < 0 {
		return
	}
	centerChunk := center.Chunk()
	reach := geom.ChunkRadius(radius)
	radiusSq := radius * radius

	for dy := -reach; dy <= reach; dy++ {
		for dx := -reach; dx <= reach; dx++ {
			c := geom.ChunkCoord{X: centerChunk.X + dx, Y: centerChunk.Y + dy}
			bucket, ok := idx.chunks[c]
			if !ok {
				continue
			}
			for _, e := range bucket {
				ddx := float64(e.pos.X - center.X)
				ddy := float64(e.pos.Y - center.Y)
				if ddx*ddx+ddy*ddy <= radiusSq {
					visit(e.key, e.pos)
				}
			}
		}
	}
}

// CollectRadius is a convenience wrapper over QueryRadius that allocates and
// returns the matching keys.
func (idx *Index[K]) CollectRadius(center geom.Position, radius float64) []K {
	var out []K
	idx.QueryRadius(center, radius, func(key K, _ geom.Position) {
		out = append(out, key)
	})
	return out
}

// ChunkCount returns the number of non-empty chunks, useful for tests that
// assert empty chunks are eagerly evicted.
func (idx *Index[K]) ChunkCount() int { return len(idx.chunks) }
