package cache

// lruSet is one associative set ordered from most to least recently used.
// Tags are distinct and len(tags) never exceeds ways.
type lruSet struct {
	tags []uint32
	ways int
}

func newLRUSet(ways int) lruSet {
	return lruSet{tags: make([]uint32, 0, ways), ways: ways}
}

// find returns the position of tag, or -1.
func (s *lruSet) find(tag uint32) int {
	for i, t := range s.tags {
		if t == tag {
			return i
		}
	}
	return -1
}

// touch moves the entry at pos to the MRU position.
func (s *lruSet) touch(pos int) {
	if pos == 0 {
		return
	}
	tag := s.tags[pos]
	copy(s.tags[1:pos+1], s.tags[:pos])
	s.tags[0] = tag
}

// insert puts tag at the MRU position, dropping the LRU entry when the
// set is full. It reports whether an entry was evicted.
func (s *lruSet) insert(tag uint32) bool {
	evicted := false
	if len(s.tags) == s.ways {
		s.tags = s.tags[:len(s.tags)-1]
		evicted = true
	}
	s.tags = append(s.tags, 0)
	copy(s.tags[1:], s.tags[:len(s.tags)-1])
	s.tags[0] = tag
	return evicted
}

// lookup probes the set for tag. A hit refreshes the entry. A miss
// installs it when allocate is set. The second result reports an
// eviction.
func (s *lruSet) lookup(tag uint32, allocate bool) (hit, evicted bool) {
	if pos := s.find(tag); pos >= 0 {
		s.touch(pos)
		return true, false
	}
	if !allocate {
		return false, false
	}
	return false, s.insert(tag)
}

// snapshot returns a copy of the tags, MRU first.
func (s *lruSet) snapshot() []uint32 {
	out := make([]uint32, len(s.tags))
	copy(out, s.tags)
	return out
}
