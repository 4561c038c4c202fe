package quotes

import (
	"context"
	"net"
	"net/http"
	"net/http/httptrace"
	"sync/atomic"
	"time"
)

// HTTPNetwork is the Network backed by net/http. Every request dials its
// own connection, which is wrapped so socket writes can be attributed to the
// request. A failed write with nothing of the request on the wire is a header
// failure; one after part of the request went out is a payload failure.
// Failures before a connection is held, or while reading the response, are
// connection failures.
type HTTPNetwork struct {
	client *http.Client
	dial   func(ctx context.Context, network, addr string) (net.Conn, error)
	link   *linkCache
}

// NewHTTPNetwork creates a transport with the given request timeout. link
// reports whether the host has a usable network link; nil means InterfaceUp.
// The link answer is cached for LinkCheckInterval.
func NewHTTPNetwork(timeout time.Duration, link func() bool) *HTTPNetwork {
	if link == nil {
		link = InterfaceUp
	}

	n := &HTTPNetwork{
		dial: (&net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}).DialContext,
		link: newLinkCache(link, LinkCheckInterval),
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         n.dialTracked,
		TLSHandshakeTimeout: timeout,
		// One request per period; a fresh connection per request keeps the
		// write tracking tied to the request that dialed it.
		DisableKeepAlives: true,
	}
	n.client = &http.Client{Timeout: timeout, Transport: transport}
	return n
}

func (n *HTTPNetwork) dialTracked(ctx context.Context, network, addr string) (net.Conn, error) {
	conn, err := n.dial(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	if tracker, ok := ctx.Value(writeTrackerKey{}).(*writeTracker); ok {
		return &trackedConn{Conn: conn, tracker: tracker}, nil
	}
	return conn, nil
}

func (n *HTTPNetwork) IsConnected() bool {
	return n.link.up()
}

func (n *HTTPNetwork) Get(ctx context.Context, url string, header http.Header) (*Response, error) {
	tracker := newWriteTracker()
	ctx = context.WithValue(ctx, writeTrackerKey{}, tracker)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{Kind: InitRequestFailed, Err: err}
	}
	if header != nil {
		req.Header = header.Clone()
	}

	var gotConn atomic.Bool
	trace := &httptrace.ClientTrace{
		GotConn: func(httptrace.GotConnInfo) {
			gotConn.Store(true)
			tracker.armed.Store(true)
		},
	}
	req = req.WithContext(httptrace.WithClientTrace(req.Context(), trace))

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, &TransportError{Kind: classifyFailure(gotConn.Load(), tracker), Err: err}
	}

	return &Response{StatusCode: resp.StatusCode, Body: resp.Body}, nil
}

func classifyFailure(gotConn bool, tracker *writeTracker) TransportKind {
	if !gotConn {
		return ConnectionFailed
	}
	sent, failed := tracker.failure()
	switch {
	case !failed:
		return ConnectionFailed
	case sent == 0:
		return SendHeaderFailed
	default:
		return SendPayloadFailed
	}
}

// InterfaceUp reports whether any non-loopback interface is up with an
// address assigned.
func InterfaceUp() bool {
	ifaces, err := net.Interfaces()
	if err != nil {
		return false
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err == nil && len(addrs) > 0 {
			return true
		}
	}
	return false
}
