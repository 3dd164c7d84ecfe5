package kernel

// installSingletons allocates the eight fixed-behavior core values of
// spec.md §3.1. Each is an Actor value whose address is fixed for the
// lifetime of the Runtime; dispatch.go's singletonBehavior recognizes them
// by identity before falling through to ordinary ProcID/delegation lookup.
func (rt *Runtime) installSingletons() error {
	mk := func() (Value, error) {
		return rt.heap.actorCreate(MkInt(0), MkInt(0))
	}
	var err error
	if rt.singles.Undef, err = mk(); err != nil {
		return err
	}
	if rt.singles.Unit, err = mk(); err != nil {
		return err
	}
	if rt.singles.True, err = mk(); err != nil {
		return err
	}
	if rt.singles.False, err = mk(); err != nil {
		return err
	}
	if rt.singles.Nil, err = mk(); err != nil {
		return err
	}
	if rt.singles.Fail, err = mk(); err != nil {
		return err
	}
	if rt.singles.Sink, err = mk(); err != nil {
		return err
	}
	if rt.singles.Ignore, err = mk(); err != nil {
		return err
	}
	return nil
}
