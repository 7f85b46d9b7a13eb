package registry

// Subscribe returns a channel that receives a snapshot after every mutation
// plus a cancel func. Delivery never blocks: a slow observer only sees the
// latest snapshot.
func (r *Registry) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	r.subMu.Lock()
	id := r.nextSubID
	r.nextSubID++
	r.subscribers[id] = ch
	r.subMu.Unlock()

	cancel := func() {
		r.subMu.Lock()
		if existing, ok := r.subscribers[id]; ok {
			delete(r.subscribers, id)
			close(existing)
		}
		r.subMu.Unlock()
	}
	return ch, cancel
}

func (r *Registry) publish(snap Snapshot) {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	// Concurrent mutators may publish out of order.
	if snap.Revision <= r.published {
		return
	}
	r.published = snap.Revision
	for _, ch := range r.subscribers {
		select {
		case ch <- snap:
			continue
		default:
		}
		// Drop the stale snapshot and replace it.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
