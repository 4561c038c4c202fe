package quotes

import (
	"net"
	"sync/atomic"
)

type writeTrackerKey struct{}

// writeTracker records what reached the socket on behalf of one request.
// Writes only count once the request holds the connection, so TLS handshake
// traffic is not mistaken for the request itself.
type writeTracker struct {
	armed atomic.Bool
	sent  atomic.Int64
	// sentAtFailure is the byte count when the first write failed, -1 while
	// no write has failed.
	sentAtFailure atomic.Int64
}

func newWriteTracker() *writeTracker {
	t := &writeTracker{}
	t.sentAtFailure.Store(-1)
	return t
}

// failure reports whether a request write failed and how many request bytes
// had gone out by then.
func (t *writeTracker) failure() (sent int64, failed bool) {
	sent = t.sentAtFailure.Load()
	return sent, sent >= 0
}

// trackedConn reports every write on the wrapped connection to a tracker.
type trackedConn struct {
	net.Conn
	tracker *writeTracker
}

func (c *trackedConn) Write(p []byte) (int, error) {
	n, err := c.Conn.Write(p)
	if !c.tracker.armed.Load() {
		return n, err
	}
	sent := c.tracker.sent.Add(int64(n))
	if err != nil {
		c.tracker.sentAtFailure.CompareAndSwap(-1, sent)
	}
	return n, err
}
