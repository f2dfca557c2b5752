package run

import "fmt"

//WithError runs fn and converts any panic escaping it into an ordinary error.
func WithError(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			if perr, ok := p.(error); ok {
				err = perr
			} else {
				err = fmt.Errorf("panic: %v", p)
			}
		}
	}()

	return fn()
}
