package plot

import "fmt"

// Activation is the explicit stack of instances currently executing a
// lifecycle callback. It belongs to one telling and is only touched while the
// telling holds its lock.
type Activation struct {
	stack []*Instance
}

// Current returns the innermost executing instance, or nil outside any callback.
func (a *Activation) Current() *Instance {
	if len(a.stack) == 0 {
		return nil
	}
	return a.stack[len(a.stack)-1]
}

// Depth returns the number of nested activations.
func (a *Activation) Depth() int {
	return len(a.stack)
}

// Run makes in current for the duration of fn. The stack is restored on every
// exit path and a panic in fn is returned as an error.
func (a *Activation) Run(in *Instance, fn func() error) (err error) {
	a.stack = append(a.stack, in)
	defer func() {
		a.stack[len(a.stack)-1] = nil
		a.stack = a.stack[:len(a.stack)-1]
	}()
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()
	return fn()
}

type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprint(e.value)
}
