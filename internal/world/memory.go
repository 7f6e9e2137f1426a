package world

import (
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/gravitas-games/signshop/internal/inventory"
)

// Sign is a text block.
type Sign struct {
	Pos   BlockPos
	Lines []string
}

// Chest is a container block backed by an inventory grid.
type Chest struct {
	*inventory.Grid
	pos BlockPos
}

// Position returns the block position of the chest.
func (c *Chest) Position() BlockPos { return c.pos }

// Frame is an in-memory display fixture.
type Frame struct {
	mu    sync.RWMutex
	id    uuid.UUID
	pos   Vec3
	item  *inventory.Stack
	alive bool
}

// ID returns the persistent identity of the frame.
func (f *Frame) ID() uuid.UUID { return f.id }

// Position returns where the frame hangs.
func (f *Frame) Position() Vec3 { return f.pos }

// Item returns a copy of the displayed stack.
func (f *Frame) Item() *inventory.Stack {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.item == nil {
		return nil
	}
	st := f.item.Copy()
	return &st
}

// Alive reports whether the frame is still part of the world.
func (f *Frame) Alive() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.alive
}

func (f *Frame) setItem(st *inventory.Stack) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if st == nil || st.Empty() {
		f.item = nil
		return
	}
	cp := st.Copy()
	f.item = &cp
}

func (f *Frame) kill() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alive = false
}

// Memory is an in-process World organised in chunk columns.
type Memory struct {
	mu     sync.RWMutex
	chunks map[ChunkPos]*Chunk
	frames map[uuid.UUID]*Frame
}

// NewMemory creates an empty world.
func NewMemory() *Memory {
	return &Memory{
		chunks: make(map[ChunkPos]*Chunk),
		frames: make(map[uuid.UUID]*Frame),
	}
}

func (m *Memory) chunkAt(pos BlockPos, create bool) *Chunk {
	cp := ChunkOf(pos)
	c, ok := m.chunks[cp]
	if !ok && create {
		c = NewChunk(cp)
		m.chunks[cp] = c
	}
	return c
}

// PlaceSign puts a sign with the given lines at pos, replacing any sign there.
func (m *Memory) PlaceSign(pos BlockPos, lines ...string) *Sign {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &Sign{Pos: pos, Lines: append([]string(nil), lines...)}
	m.chunkAt(pos, true).Signs[pos] = s
	return s
}

// SetSignLines rewrites the text of an existing sign.
func (m *Memory) SetSignLines(pos BlockPos, lines ...string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.chunkAt(pos, false)
	if c == nil {
		return false
	}
	s, ok := c.Signs[pos]
	if !ok {
		return false
	}
	s.Lines = append([]string(nil), lines...)
	return true
}

// PlaceChest puts an empty container at pos.
func (m *Memory) PlaceChest(pos BlockPos, size, limit int) *Chest {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := &Chest{Grid: inventory.NewGrid("chest@"+pos.Key(), "", size, limit), pos: pos}
	m.chunkAt(pos, true).Containers[pos] = ch
	return ch
}

// PlaceFrame hangs a new fixture at pos displaying item (may be nil).
func (m *Memory) PlaceFrame(pos Vec3, item *inventory.Stack) *Frame {
	return m.placeFrame(uuid.New(), pos, item)
}

func (m *Memory) placeFrame(id uuid.UUID, pos Vec3, item *inventory.Stack) *Frame {
	f := &Frame{id: id, pos: pos, alive: true}
	f.setItem(item)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames[id] = f
	m.chunkAt(pos.Block(), true).Fixtures[id] = f
	return f
}

// Frame looks up a live fixture by id.
func (m *Memory) Frame(id uuid.UUID) (*Frame, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.frames[id]
	return f, ok
}

// SetFrameItem changes what a fixture displays.
func (m *Memory) SetFrameItem(id uuid.UUID, item *inventory.Stack) bool {
	f, ok := m.Frame(id)
	if !ok {
		return false
	}
	f.setItem(item)
	return true
}

// AttackFrame applies a hit to a fixture: a displayed item pops out and is
// returned, an empty fixture is removed.
func (m *Memory) AttackFrame(id uuid.UUID) (*inventory.Stack, bool) {
	f, ok := m.Frame(id)
	if !ok {
		return nil, false
	}
	if item := f.Item(); item != nil {
		f.setItem(nil)
		return item, true
	}
	m.RemoveFrame(id)
	return nil, true
}

// RemoveFrame takes a fixture out of the world.
func (m *Memory) RemoveFrame(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.frames[id]
	if !ok {
		return false
	}
	delete(m.frames, id)
	if c := m.chunkAt(f.pos.Block(), false); c != nil {
		delete(c.Fixtures, id)
		m.dropIfEmpty(c)
	}
	f.kill()
	return true
}

// BreakBlock removes the sign or container at pos.
func (m *Memory) BreakBlock(pos BlockPos) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.chunkAt(pos, false)
	if c == nil {
		return false
	}
	_, sign := c.Signs[pos]
	_, chest := c.Containers[pos]
	delete(c.Signs, pos)
	delete(c.Containers, pos)
	m.dropIfEmpty(c)
	return sign || chest
}

func (m *Memory) dropIfEmpty(c *Chunk) {
	if c.Empty() {
		delete(m.chunks, c.Pos)
	}
}

// IsSign reports whether pos holds a sign.
func (m *Memory) IsSign(pos BlockPos) bool {
	_, ok := m.SignLines(pos)
	return ok
}

// SignLines returns a copy of the sign text at pos.
func (m *Memory) SignLines(pos BlockPos) ([]string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c := m.chunkAt(pos, false)
	if c == nil {
		return nil, false
	}
	s, ok := c.Signs[pos]
	if !ok {
		return nil, false
	}
	return append([]string(nil), s.Lines...), true
}

// ContainerAt returns the container at pos.
func (m *Memory) ContainerAt(pos BlockPos) (Container, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c := m.chunkAt(pos, false)
	if c == nil {
		return nil, false
	}
	ch, ok := c.Containers[pos]
	if !ok {
		return nil, false
	}
	return ch, true
}

// FixturesWithin returns the live fixtures inside box ordered by id.
func (m *Memory) FixturesWithin(box Box) []Fixture {
	m.mu.RLock()
	defer m.mu.RUnlock()

	minChunk := ChunkOf(box.Min.Block())
	maxChunk := ChunkOf(box.Max.Block())
	var found []*Frame
	for cx := minChunk.X; cx <= maxChunk.X; cx++ {
		for cz := minChunk.Z; cz <= maxChunk.Z; cz++ {
			c, ok := m.chunks[ChunkPos{X: cx, Z: cz}]
			if !ok {
				continue
			}
			for _, f := range c.Fixtures {
				if f.Alive() && box.Contains(f.pos) {
					found = append(found, f)
				}
			}
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].id.String() < found[j].id.String() })
	out := make([]Fixture, len(found))
	for i, f := range found {
		out[i] = f
	}
	return out
}

// ChunkCount returns the number of non-empty chunk columns.
func (m *Memory) ChunkCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks)
}

// Nearest returns the fixture in fs closest to point, or nil.
func Nearest(fs []Fixture, point Vec3) Fixture {
	var best Fixture
	bestDist := math.Inf(1)
	for _, f := range fs {
		if d := f.Position().DistanceSq(point); d < bestDist {
			best, bestDist = f, d
		}
	}
	return best
}
