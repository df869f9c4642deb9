package complete

import "fmt"

// activeQuery tracks one source's participation in the current epoch.
// The engine goroutine owns every field; the source goroutine only
// closes done after delivering (or abandoning) its reply.
type activeQuery struct {
	source   Source
	context  *Context
	done     chan struct{}
	resolved bool
	failed   bool
	result   *Result
}

type reply struct {
	gen    uint64
	idx    int
	result *Result
	err    error
}

// invoke runs a source, converting a panic into an error so one
// misbehaving source cannot take the session down with it.
func invoke(src Source, cx *Context) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("source %s panicked: %v", src.Name(), r)
		}
	}()
	return src.Complete(cx)
}
