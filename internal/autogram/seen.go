package autogram

// SeenSet records every count vector proposed during a search. Vectors compare by content and
// position; each count must be spellable, so one byte per slot is enough for the key.
type SeenSet struct {
	keys map[string]struct{}
	buf  []byte
}

// NewSeenSet returns an empty set.
func NewSeenSet() *SeenSet {
	return &SeenSet{keys: map[string]struct{}{}}
}

// Add inserts v and reports whether it was absent.
func (s *SeenSet) Add(v []int) bool {
	key := s.key(v)
	if _, ok := s.keys[key]; ok {
		return false
	}
	s.keys[key] = struct{}{}
	return true
}

// Contains reports whether v was added before.
func (s *SeenSet) Contains(v []int) bool {
	// The map index with a converted []byte does not allocate.
	_, ok := s.keys[string(s.encode(v))]
	return ok
}

// Len returns the number of distinct vectors.
func (s *SeenSet) Len() int {
	return len(s.keys)
}

func (s *SeenSet) key(v []int) string {
	return string(s.encode(v))
}

func (s *SeenSet) encode(v []int) []byte {
	s.buf = s.buf[:0]
	for _, c := range v {
		s.buf = append(s.buf, byte(c))
	}
	return s.buf
}
