package listener

import "fmt"

// ListenerError attributes a failure to a named listener.
type ListenerError struct {
	Name string
	Err  error
}

func (e *ListenerError) Error() string {
	return fmt.Sprintf("listener %s: %v", e.Name, e.Err)
}

func (e *ListenerError) Unwrap() error {
	return e.Err
}
