package editor

import "github.com/oklog/ulid/v2"

// idSource hands out shape ids from the millisecond clock, bumped so that
// ids never repeat or go backwards within a session.
type idSource struct {
	last int64
	now  func() uint64
}

func newIDSource() *idSource {
	return &idSource{now: ulid.Now}
}

func (s *idSource) next() int64 {
	id := int64(s.now())
	if id <= s.last {
		id = s.last + 1
	}
	s.last = id
	return id
}

// observe moves the source past ids already present in a loaded drawing.
func (s *idSource) observe(list []int64) {
	for _, id := range list {
		if id > s.last {
			s.last = id
		}
	}
}
