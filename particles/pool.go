// Package particles implements the pooled rain, fire and splash simulation
// and flattens it into per-instance records for GPU upload.
//
// All particle memory lives in one fixed arena owned by a Pool. Lists are
// index chains through that arena: one unsorted free list and three active
// lists (general, rain, fire) kept in non-increasing Z order. Moving a
// particle between lists relinks a single index; nothing is allocated once
// the pool exists.
package particles

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Index addresses a slot in the pool arena.
type Index int32

// Nil terminates a list.
const Nil Index = -1

// List identifies one of the four chains a slot can belong to.
type List uint8

const (
	ListFree List = iota
	ListGeneral
	ListRain
	ListFire
	numLists
)

// listDetached tags a slot that has been acquired but not yet inserted.
const listDetached List = 0xFF

var listNames = [...]string{"free", "general", "rain", "fire"}

func (l List) String() string {
	if int(l) < len(listNames) {
		return listNames[l]
	}
	if l == listDetached {
		return "detached"
	}
	return fmt.Sprintf("list(%d)", uint8(l))
}

// Particle is one arena record.
type Particle struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
	Alpha    float32 // transient, never uploaded
	Velocity mgl32.Vec3

	// Life is the remaining lifetime in seconds; below zero means expired.
	// Rain keeps a constant zero and recycles on position instead.
	Life float32

	next  Index
	owner List
}

// Pool is the fixed-capacity arena plus the four list heads.
type Pool struct {
	slots []Particle
	heads [numLists]Index
}

// NewPool allocates capacity slots and chains them all onto the free list
// in ascending index order.
func NewPool(capacity int) (*Pool, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	p := &Pool{slots: make([]Particle, capacity)}
	p.Reset()
	return p, nil
}

// Reset returns every slot to the free list and empties the active lists.
func (p *Pool) Reset() {
	for i := range p.slots {
		p.slots[i] = Particle{next: Index(i + 1), owner: ListFree}
	}
	p.slots[len(p.slots)-1].next = Nil
	for l := range p.heads {
		p.heads[l] = Nil
	}
	p.heads[ListFree] = 0
}

// Capacity returns the number of slots.
func (p *Pool) Capacity() int { return len(p.slots) }

// At returns the record stored in slot i.
func (p *Pool) At(i Index) *Particle { return &p.slots[i] }

// Head returns the first slot of list l, or Nil.
func (p *Pool) Head(l List) Index { return p.heads[l] }

// Next returns the slot following i on its list, or Nil.
func (p *Pool) Next(i Index) Index { return p.slots[i].next }

// Owner returns the list slot i currently belongs to.
func (p *Pool) Owner(i Index) List { return p.slots[i].owner }

// Len walks list l and counts its slots.
func (p *Pool) Len(l List) int {
	n := 0
	for i := p.heads[l]; i != Nil; i = p.slots[i].next {
		n++
	}
	return n
}

// Acquire pops the free-list head. The second result is false when the pool
// is exhausted; callers stop spawning for the frame.
func (p *Pool) Acquire() (Index, bool) {
	i := p.heads[ListFree]
	if i == Nil {
		return Nil, false
	}
	n := &p.slots[i]
	p.heads[ListFree] = n.next
	n.next = Nil
	n.owner = listDetached
	return i, true
}

// Release pushes slot i onto the free-list head. The slot must already be
// unlinked from its active list and must not be released twice.
func (p *Pool) Release(i Index) {
	n := &p.slots[i]
	n.next = p.heads[ListFree]
	n.owner = ListFree
	p.heads[ListFree] = i
}

// Each calls fn for every slot of list l in list order.
func (p *Pool) Each(l List, fn func(i Index, pt *Particle)) {
	for i := p.heads[l]; i != Nil; i = p.slots[i].next {
		fn(i, &p.slots[i])
	}
}

// Validate checks the partition invariant: every slot is reachable from
// exactly one list head, its owner tag matches that list, no chain loops,
// and the list lengths sum to the capacity.
func (p *Pool) Validate() error {
	seen := make([]bool, len(p.slots))
	total := 0
	for l := List(0); l < numLists; l++ {
		steps := 0
		for i := p.heads[l]; i != Nil; i = p.slots[i].next {
			if int(i) < 0 || int(i) >= len(p.slots) {
				return fmt.Errorf("%s list: index %d out of range", l, i)
			}
			if seen[i] {
				return fmt.Errorf("%s list: slot %d reachable twice", l, i)
			}
			seen[i] = true
			if p.slots[i].owner != l {
				return fmt.Errorf("%s list: slot %d tagged %s", l, i, p.slots[i].owner)
			}
			steps++
			if steps > len(p.slots) {
				return fmt.Errorf("%s list: cycle detected", l)
			}
		}
		total += steps
	}
	if total != len(p.slots) {
		return fmt.Errorf("lists hold %d slots, capacity is %d", total, len(p.slots))
	}
	return nil
}
