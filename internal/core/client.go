package core

import "sync"

// Client is one live connection as seen by the core layer. The transport
// owns the network side and talks to the hub only through the two channels.
type Client struct {
	ID       string
	Commands chan *Command
	Events   chan *Event

	closeOnce sync.Once
}

// NewClient constructs a client with initialized channels.
func NewClient(id string) *Client {
	return &Client{
		ID:       id,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 8),
	}
}

// Close signals the hub that this connection is gone. Safe to call more
// than once; transport layers may deliver duplicate disconnects.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.Commands)
	})
}
