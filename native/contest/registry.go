package contest

// Initialize creates the registry counter with a contest count of zero. It
// may run only once.
func (e *Engine) Initialize() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	counter, ok, err := e.state.ContestCounterGet()
	if err != nil {
		return err
	}
	if ok && counter.Initialized {
		return ErrAlreadyInitialized
	}
	if err := e.state.ContestCounterPut(&Counter{Initialized: true, ContestCount: 0}); err != nil {
		return err
	}
	e.emit(NewRegistryInitializedEvent())
	return nil
}

// Initialized reports whether the registry counter exists.
func (e *Engine) Initialized() (bool, error) {
	if e == nil || e.state == nil {
		return false, errNilState
	}
	counter, ok, err := e.state.ContestCounterGet()
	if err != nil {
		return false, err
	}
	return ok && counter.Initialized, nil
}

// ContestCount returns the number of contests launched so far.
func (e *Engine) ContestCount() (uint64, error) {
	counter, err := e.loadCounter()
	if err != nil {
		return 0, err
	}
	return counter.ContestCount, nil
}

func (e *Engine) loadCounter() (*Counter, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	counter, ok, err := e.state.ContestCounterGet()
	if err != nil {
		return nil, err
	}
	if !ok || !counter.Initialized {
		return nil, ErrNotInitialized
	}
	return counter, nil
}

// nextContestID returns the current count as the new id and persists the
// incremented counter.
func (e *Engine) nextContestID(counter *Counter) (uint64, error) {
	if counter == nil || !counter.Initialized {
		return 0, ErrNotInitialized
	}
	if counter.ContestCount == ^uint64(0) {
		return 0, ErrArithmeticOverflow
	}
	id := counter.ContestCount
	next := &Counter{Initialized: true, ContestCount: id + 1}
	if err := e.state.ContestCounterPut(next); err != nil {
		return 0, err
	}
	return id, nil
}
