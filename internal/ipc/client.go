package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *Client) call(method string, req, resp any) error {
	return c.client.Call(ServiceName+"."+method, req, resp)
}

// SetVideo delivers a video capture event.
func (c *Client) SetVideo(path string) (*InputResponse, error) {
	var resp InputResponse
	if err := c.call("SetVideo", SetPathRequest{Path: path}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetSubtitle delivers a subtitle capture event.
func (c *Client) SetSubtitle(path string) (*InputResponse, error) {
	var resp InputResponse
	if err := c.call("SetSubtitle", SetPathRequest{Path: path}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetLanguage selects the track language.
func (c *Client) SetLanguage(code string) (*InputResponse, error) {
	var resp InputResponse
	if err := c.call("SetLanguage", SetLanguageRequest{Code: code}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Reset clears the daemon registry.
func (c *Client) Reset() (*InputResponse, error) {
	var resp InputResponse
	if err := c.call("Reset", ResetRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.call("Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Merge triggers a merge. With wait set it blocks until the merge finishes
// or timeout elapses.
func (c *Client) Merge(wait bool, timeout time.Duration) (*MergeResponse, error) {
	var resp MergeResponse
	req := MergeRequest{Wait: wait, TimeoutMillis: timeout.Milliseconds()}
	if err := c.call("Merge", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// History returns merge history optionally filtered by statuses.
func (c *Client) History(limit int, statuses []string) (*HistoryResponse, error) {
	var resp HistoryResponse
	if err := c.call("History", HistoryRequest{Limit: limit, Statuses: statuses}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HistoryClear removes finished merges from history.
func (c *Client) HistoryClear() (*HistoryClearResponse, error) {
	var resp HistoryClearResponse
	if err := c.call("HistoryClear", HistoryClearRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop asks the daemon to shut down.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.call("Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
