package scheduler

// deferredSet is an insertion-ordered set of ids.
type deferredSet struct {
	order []string
	seen  map[string]struct{}
}

func (d *deferredSet) add(id string) {
	if d.seen == nil {
		d.seen = map[string]struct{}{}
	}
	if _, ok := d.seen[id]; ok {
		return
	}
	d.seen[id] = struct{}{}
	d.order = append(d.order, id)
}

func (d *deferredSet) remove(id string) {
	if _, ok := d.seen[id]; !ok {
		return
	}
	delete(d.seen, id)
	for i, v := range d.order {
		if v == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			return
		}
	}
}

func (d *deferredSet) take() []string {
	out := d.order
	d.order = nil
	clear(d.seen)
	return out
}

func (d *deferredSet) len() int { return len(d.order) }

// DeferRefresh records that the box should be redrawn at the next flush.
func (s *Scheduler) DeferRefresh(boxID string) { s.refresh.add(boxID) }

// DeferWireFlash records that the wire should be animated at the next flush.
func (s *Scheduler) DeferWireFlash(wireID string) { s.flashes.add(wireID) }

// FlushDeferred delivers every deferred notification, each id once.
func (s *Scheduler) FlushDeferred() {
	if s.refresh.len() == 0 && s.flashes.len() == 0 {
		return
	}
	s.stats.UIFlushes++
	for _, id := range s.refresh.take() {
		s.shell.RefreshBox(id)
	}
	for _, id := range s.flashes.take() {
		s.shell.FlashWireActivity(id)
	}
}
