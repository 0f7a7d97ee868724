// Package animation turns input events into the cat's visual state.
package animation

// Side is the paw an input is animated with.
type Side int

const (
	Left Side = iota
	Right
)

// String returns the string representation of the side.
func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

func (s Side) other() Side {
	if s == Left {
		return Right
	}
	return Left
}

// PawTracker hands out paws round-robin and remembers the choice per input
// identifier, so the same key always animates the same paw.
type PawTracker struct {
	assignments map[string]Side
	next        Side
}

// NewPawTracker returns an empty tracker whose first assignment is Left.
func NewPawTracker() *PawTracker {
	return &PawTracker{
		assignments: make(map[string]Side),
		next:        Left,
	}
}

// Assign returns the paw for id, allocating the next one on first sight.
func (p *PawTracker) Assign(id string) Side {
	if side, ok := p.assignments[id]; ok {
		return side
	}
	side := p.next
	p.assignments[id] = side
	p.next = side.other()
	return side
}

// Reset forgets every assignment and restarts at Left.
func (p *PawTracker) Reset() {
	p.assignments = make(map[string]Side)
	p.next = Left
}
