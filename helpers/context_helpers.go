package helpers

import "context"

// IgnoreContext runs fn unless ctx is already done. fn itself is not interruptible.
func IgnoreContext(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn()
}
