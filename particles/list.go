package particles

// InsertSorted links a detached slot into active list l, keeping Z
// non-increasing from head to tail. The walk stops before the first node
// with a strictly smaller Z, so equal depths keep their insertion order.
func (p *Pool) InsertSorted(i Index, l List) {
	n := &p.slots[i]
	n.owner = l
	z := n.Position.Z()

	head := p.heads[l]
	if head == Nil || p.slots[head].Position.Z() < z {
		n.next = head
		p.heads[l] = i
		return
	}

	cur := head
	for {
		next := p.slots[cur].next
		if next == Nil || p.slots[next].Position.Z() < z {
			n.next = next
			p.slots[cur].next = i
			return
		}
		cur = next
	}
}

// Sweep walks list l and unlinks every slot for which keep returns false,
// returning it to the free list. keep may mutate the particle in place and
// may spawn into other lists. Returns the number of released slots.
func (p *Pool) Sweep(l List, keep func(i Index, pt *Particle) bool) int {
	removed := 0
	prev := Nil
	i := p.heads[l]
	for i != Nil {
		next := p.slots[i].next
		if keep(i, &p.slots[i]) {
			prev = i
			i = next
			continue
		}
		if prev == Nil {
			p.heads[l] = next
		} else {
			p.slots[prev].next = next
		}
		p.Release(i)
		removed++
		i = next
	}
	return removed
}
