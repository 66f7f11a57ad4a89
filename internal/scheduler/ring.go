package scheduler

// makeActive inserts h right after the current ring box.
func (s *Scheduler) makeActive(h Handle) {
	rec := s.records[h]
	invariant(rec.next == NoHandle && rec.prev == NoHandle, "box %q is already in the ring", rec.id)

	if s.current == NoHandle {
		s.current = h
		rec.next, rec.prev = h, h
		return
	}
	cur := s.records[s.current]
	rec.prev = s.current
	rec.next = cur.next
	s.records[rec.prev].next = h
	s.records[rec.next].prev = h
}

func (s *Scheduler) makeInactive(h Handle) {
	rec := s.records[h]
	invariant(rec.next != NoHandle && rec.prev != NoHandle, "box %q is not in the ring", rec.id)

	if rec.next == h {
		s.current = NoHandle
	} else {
		if s.current == h {
			s.current = rec.next
		}
		s.records[rec.next].prev = rec.prev
		s.records[rec.prev].next = rec.next
	}
	rec.next, rec.prev = NoHandle, NoHandle
}
