package vegetation

import "github.com/GoCodeAlone/ecotick/internal/geom"

// Chunks returns the distinct chunk coordinates that currently hold at
// least one live cell. Used by the Chunk LOD Manager (C4) to know which
// chunks need classification.
func (g *Grid) Chunks() []geom.ChunkCoord {
	seen := make(map[geom.ChunkCoord]bool)
	var out []geom.ChunkCoord
	for pos := range g.cells {
		c := pos.Chunk()
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// ChunkMaxBiomass sums MaxBiomass across a chunk's live cells, needed
// alongside CollapseChunk's biomass sum so the LOD manager can apply
// logistic growth to a Cold-tier aggregate.
func (g *Grid) ChunkMaxBiomass(chunk geom.ChunkCoord) float64 {
	var total float64
	base := geom.Position{X: chunk.X * geom.ChunkSize, Y: chunk.Y * geom.ChunkSize}
	for dy := int32(0); dy < geom.ChunkSize; dy++ {
		for dx := int32(0); dx < geom.ChunkSize; dx++ {
			if c, ok := g.cells[base.Add(dx, dy)]; ok {
				total += c.MaxBiomass
			}
		}
	}
	return total
}

// RestartChunkGrowth schedules a fresh Regrow event for every live cell in
// chunk, one tick out. Called by the LOD manager after reinflating a chunk
// back to Hot/Warm so growth resumes without waiting for a stale event.
func (g *Grid) RestartChunkGrowth(currentTick uint64, chunk geom.ChunkCoord) {
	base := geom.Position{X: chunk.X * geom.ChunkSize, Y: chunk.Y * geom.ChunkSize}
	for dy := int32(0); dy < geom.ChunkSize; dy++ {
		for dx := int32(0); dx < geom.ChunkSize; dx++ {
			p := base.Add(dx, dy)
			if _, ok := g.cells[p]; ok {
				g.sched.ScheduleRegrow(p, currentTick+1)
			}
		}
	}
}
