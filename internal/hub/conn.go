package hub

// Conn is the send capability the hub holds for one live agent connection.
// The transport layer (internal/ws) owns the socket and calls back into the
// hub on message and close; the hub only ever sends and closes.
type Conn interface {
	// Send serializes v as JSON and writes it as one message. It must not
	// block indefinitely; transports enforce their own write deadline.
	Send(v interface{}) error
	// Close tears down the underlying transport. Closing an already-closed
	// connection must be a no-op.
	Close() error
}
