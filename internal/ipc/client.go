package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to a running host.
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
		return c.client.Close()
	}
	return nil
}

func (c *Client) call(method string, req, resp any) error {
	return c.client.Call(ServiceName+"."+method, req, resp)
}

// Categories returns the category report.
func (c *Client) Categories() (*CategoryListResponse, error) {
	var resp CategoryListResponse
	if err := c.call("CategoryList", CategoryListRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EnableCategories switches the named categories on.
func (c *Client) EnableCategories(names []string) (*CategoryToggleResponse, error) {
	var resp CategoryToggleResponse
	if err := c.call("CategoryEnable", CategoryToggleRequest{Names: names}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DisableCategories switches the named categories off.
func (c *Client) DisableCategories(names []string) (*CategoryToggleResponse, error) {
	var resp CategoryToggleResponse
	if err := c.call("CategoryDisable", CategoryToggleRequest{Names: names}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RecordStart arms the spatial recorder.
func (c *Client) RecordStart(name string) (*RecordStartResponse, error) {
	var resp RecordStartResponse
	if err := c.call("RecordStart", RecordStartRequest{Name: name}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RecordStop disarms the spatial recorder.
func (c *Client) RecordStop() (*RecordStopResponse, error) {
	var resp RecordStopResponse
	if err := c.call("RecordStop", RecordStopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Emit dispatches an event inside the host.
func (c *Client) Emit(req EmitRequest) (*EmitResponse, error) {
	var resp EmitResponse
	if err := c.call("Emit", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the host status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.call("Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Overlay retrieves the visible overlay lines.
func (c *Client) Overlay() (*OverlayResponse, error) {
	var resp OverlayResponse
	if err := c.call("Overlay", OverlayRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
