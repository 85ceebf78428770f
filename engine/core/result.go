package core

import "fmt"

// Result is the outcome of one collaborator call made at an isolation
// boundary. A failed Result has been logged and the caller keeps going.
type Result struct {
	// Name identifies the collaborator, e.g. "tessellator" or "layer:Placemarks".
	Name string
	Err  error
}

func (r Result) Ok() bool {
	return r.Err == nil
}

func (r Result) String() string {
	if r.Err == nil {
		return r.Name + ": ok"
	}
	return fmt.Sprintf("%s: %v", r.Name, r.Err)
}

// Isolate runs fn and captures its error. A panic raised by fn is turned
// into an error so a misbehaving collaborator cannot take the frame down.
// Failures are logged at error level.
func Isolate(name string, fn func() error) (res Result) {
	res.Name = name
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("panic: %v", r)
		}
		if res.Err != nil {
			LogError("%s failed: %v", name, res.Err)
		}
	}()
	res.Err = fn()
	return res
}
