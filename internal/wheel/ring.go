package wheel

import "iter"

// Node addresses one slot in a Ring's arena.
type Node int

// NoNode is returned for walks that start from a node not in the ring.
const NoNode Node = -1

// Ring is a circular singly linked list of item names stored in an arena.
// Removal unlinks a slot by rewriting its predecessor's next index and puts
// the slot on a free list; there are no predecessor links, so callers
// remove the node after an anchor they hold.
//
// A Ring is never empty while in use. Names are copied in, so the ring
// keeps no reference to the catalogue it was built from.
type Ring struct {
	names []string
	next  []Node
	free  []Node
	tail  Node
}

// Build links names in input order. Circularity holds after every insert,
// so a one-name ring points at itself.
func Build(names []string) (*Ring, error) {
	if len(names) == 0 {
		return nil, ErrEmptyInput
	}
	r := &Ring{
		names: make([]string, 0, len(names)),
		next:  make([]Node, 0, len(names)),
		tail:  NoNode,
	}
	for _, name := range names {
		r.insert(name)
	}
	return r, nil
}

func (r *Ring) insert(name string) Node {
	var n Node
	if k := len(r.free); k > 0 {
		n = r.free[k-1]
		r.free = r.free[:k-1]
		r.names[n] = name
	} else {
		n = Node(len(r.names))
		r.names = append(r.names, name)
		r.next = append(r.next, NoNode)
	}
	if r.tail == NoNode {
		r.next[n] = n
	} else {
		r.next[n] = r.next[r.tail]
		r.next[r.tail] = n
	}
	r.tail = n
	return n
}

func (r *Ring) contains(n Node) bool {
	return r != nil && n >= 0 && int(n) < len(r.next) && r.next[n] != NoNode
}

// Tail is the last inserted node that is still linked; its successor is the head.
func (r *Ring) Tail() Node {
	if r == nil {
		return NoNode
	}
	return r.tail
}

// Size counts nodes with one full lap from the tail.
func (r *Ring) Size() int {
	if !r.contains(r.Tail()) {
		return 0
	}
	count := 1
	for n := r.next[r.tail]; n != r.tail; n = r.next[n] {
		count++
	}
	return count
}

func (r *Ring) Name(n Node) string {
	if !r.contains(n) {
		return ""
	}
	return r.names[n]
}

func (r *Ring) Next(n Node) Node {
	if !r.contains(n) {
		return NoNode
	}
	return r.next[n]
}

// Spin follows next links exactly count times from anchor.
func (r *Ring) Spin(anchor Node, count int) Node {
	at := anchor
	for _, n := range r.Walk(anchor, count) {
		at = n
	}
	if !r.contains(at) {
		return NoNode
	}
	return at
}

// Walk yields each node landed on while advancing count steps from anchor.
// It reads the ring lazily and can be ranged over again from the same anchor.
func (r *Ring) Walk(anchor Node, count int) iter.Seq2[int, Node] {
	return func(yield func(int, Node) bool) {
		if !r.contains(anchor) {
			return
		}
		at := anchor
		for step := 1; step <= count; step++ {
			at = r.next[at]
			if !yield(step, at) {
				return
			}
		}
	}
}

// Window names the anchor, its successor and the successor's successor.
func (r *Ring) Window(anchor Node) Window {
	sel := r.Next(anchor)
	return Window{
		Previous: r.Name(anchor),
		Selected: r.Name(sel),
		Next:     r.Name(r.Next(sel)),
	}
}

// RemoveAfter unlinks the successor of anchor and frees its slot. It is a
// no-op on a one-node ring. The anchor stays valid and now points at the
// removed node's successor.
func (r *Ring) RemoveAfter(anchor Node) (string, bool) {
	if !r.contains(anchor) {
		return "", false
	}
	victim := r.next[anchor]
	if victim == anchor {
		return "", false
	}
	r.next[anchor] = r.next[victim]
	if r.tail == victim {
		r.tail = anchor
	}
	name := r.names[victim]
	r.names[victim] = ""
	r.next[victim] = NoNode
	r.free = append(r.free, victim)
	return name, true
}

// Release drops every slot. The ring is unusable afterwards.
func (r *Ring) Release() {
	if r == nil {
		return
	}
	r.names = nil
	r.next = nil
	r.free = nil
	r.tail = NoNode
}
