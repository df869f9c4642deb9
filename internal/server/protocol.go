package server

// The wire protocol is a stream of msgpack maps in both directions. Every
// request carries an id echoed on its response, and an op selecting the
// action. The server is stateful: the client mirrors its buffer into the
// server with reset and change ops, and the completion menu rides back on
// each response.

// Request is one client frame.
type Request struct {
	ID string `msgpack:"id"`
	// Op is one of reset, change, select, start, state, next, prev,
	// accept, close, ping.
	Op string `msgpack:"op"`

	// Text replaces the whole buffer (reset).
	Text string `msgpack:"text,omitempty"`
	// Cursors are anchor/head pairs in byte offsets; the first is the
	// primary (reset, select).
	Cursors [][2]int `msgpack:"cursors,omitempty"`

	// From, To and Insert describe an edit (change).
	From   int    `msgpack:"from"`
	To     int    `msgpack:"to"`
	Insert string `msgpack:"insert,omitempty"`
}

// MenuOption is one ranked completion on the wire.
type MenuOption struct {
	Label  string `msgpack:"label"`
	Detail string `msgpack:"detail,omitempty"`
	Source string `msgpack:"source,omitempty"`
	From   int    `msgpack:"from"`
	To     int    `msgpack:"to"`
}

// Menu is the open completion state.
type Menu struct {
	From     int          `msgpack:"from"`
	To       int          `msgpack:"to"`
	Options  []MenuOption `msgpack:"options"`
	Selected int          `msgpack:"selected"`
}

// Edit is one applied text change.
type Edit struct {
	From   int    `msgpack:"from"`
	To     int    `msgpack:"to"`
	Insert string `msgpack:"insert"`
}

// Response is one server frame.
type Response struct {
	ID     string `msgpack:"id"`
	Status string `msgpack:"status"`
	Error  string `msgpack:"error,omitempty"`

	// Menu is present whenever a completion session is open.
	Menu *Menu `msgpack:"menu,omitempty"`

	// Edits and Text report the outcome of an accept.
	Edits []Edit `msgpack:"edits,omitempty"`
	Text  string `msgpack:"text,omitempty"`

	// TimeUS is the server-side handling time in microseconds.
	TimeUS int64 `msgpack:"t,omitempty"`
}

const (
	statusOK    = "ok"
	statusError = "error"
	statusReady = "ready"
)
