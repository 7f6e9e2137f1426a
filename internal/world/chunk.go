package world

import "github.com/google/uuid"

// ChunkSize is the edge length of a chunk column in blocks.
const ChunkSize = 16

// ChunkPos addresses a chunk column on the X/Z plane.
type ChunkPos struct {
	X int
	Z int
}

// ChunkOf returns the chunk column holding block p.
func ChunkOf(p BlockPos) ChunkPos {
	return ChunkPos{X: floorDiv(p.X, ChunkSize), Z: floorDiv(p.Z, ChunkSize)}
}

// Chunk holds the blocks and fixtures of one chunk column.
type Chunk struct {
	Pos        ChunkPos
	Signs      map[BlockPos]*Sign
	Containers map[BlockPos]*Chest
	Fixtures   map[uuid.UUID]*Frame
}

// NewChunk creates an empty chunk at pos
func NewChunk(pos ChunkPos) *Chunk {
	return &Chunk{
		Pos:        pos,
		Signs:      make(map[BlockPos]*Sign),
		Containers: make(map[BlockPos]*Chest),
		Fixtures:   make(map[uuid.UUID]*Frame),
	}
}

// Empty reports whether the chunk holds nothing.
func (c *Chunk) Empty() bool {
	return len(c.Signs) == 0 && len(c.Containers) == 0 && len(c.Fixtures) == 0
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
