package renderer

// Signal is a handle to GPU work that completes asynchronously.
type Signal interface {
	// Ready polls the signal without blocking. An error means the device can
	// no longer report completion.
	Ready() (bool, error)
	// Release frees the resources tied to the signal. It must only be called
	// once Ready reported true or the device is idle.
	Release()
}

type nowSignal struct{}

func (nowSignal) Ready() (bool, error) { return true, nil }
func (nowSignal) Release()             {}

// Now returns a signal that is already complete.
func Now() Signal {
	return nowSignal{}
}

// IsNow reports whether s carries no pending work.
func IsNow(s Signal) bool {
	if s == nil {
		return true
	}
	_, ok := s.(nowSignal)
	return ok
}

type joinedSignal struct {
	parts []Signal
}

// Join returns a signal that completes when all of the given signals have
// completed. Completed sentinels are dropped.
func Join(signals ...Signal) Signal {
	parts := make([]Signal, 0, len(signals))
	for _, s := range signals {
		if IsNow(s) {
			continue
		}
		parts = append(parts, s)
	}
	switch len(parts) {
	case 0:
		return Now()
	case 1:
		return parts[0]
	}
	return &joinedSignal{parts: parts}
}

func (j *joinedSignal) Ready() (bool, error) {
	for _, s := range j.parts {
		ok, err := s.Ready()
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (j *joinedSignal) Release() {
	for _, s := range j.parts {
		s.Release()
	}
	j.parts = nil
}

// Flatten expands joined signals into their leaves, skipping completed
// sentinels.
func Flatten(s Signal) []Signal {
	if IsNow(s) {
		return nil
	}
	j, ok := s.(*joinedSignal)
	if !ok {
		return []Signal{s}
	}
	var out []Signal
	for _, p := range j.parts {
		out = append(out, Flatten(p)...)
	}
	return out
}
