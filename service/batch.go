package service

import "golang.org/x/sync/errgroup"

// runAll runs fns concurrently and waits for all of them, returning the first error.
// The group has no derived context, so a failing write does not cancel its siblings.
func runAll(fns ...func() error) error {
	var g errgroup.Group
	for _, fn := range fns {
		g.Go(fn)
	}
	return g.Wait()
}
