package session

import (
	"fmt"
	"io"

	"github.com/guseggert/ipcexec/frame"
	"github.com/guseggert/ipcexec/transport"
	"go.uber.org/zap"
)

// Client sends one command line to a server and copies the server's response to Stdout.
type Client struct {
	Kind   transport.Kind
	Path   string
	Stdout io.Writer
	Log    *zap.SugaredLogger

	tr *tracker
}

// Run performs the exchange. The command is framed before anything is opened,
// so an oversized command fails without touching the transport.
func (c *Client) Run(line string) (err error) {
	log := c.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	log = log.Named("client")
	c.tr = newTracker(log)
	defer c.tr.to(StateClosed)

	b, err := frame.Encode(line)
	if err != nil {
		return err
	}

	conn, err := transport.Dial(c.Kind, c.Path, transport.WithLogger(log))
	if err != nil {
		return fmt.Errorf("connecting to server: %w", err)
	}
	defer func() {
		closeErr := conn.Close()
		if closeErr != nil && err == nil {
			err = fmt.Errorf("closing connection: %w", closeErr)
		}
	}()
	c.tr.to(StateConnected)

	req, err := conn.Request()
	if err != nil {
		return fmt.Errorf("opening request channel: %w", err)
	}
	err = transport.WriteAll(req, b)
	if err != nil {
		req.Close()
		return fmt.Errorf("sending command: %w", err)
	}
	err = req.Close()
	if err != nil {
		return fmt.Errorf("closing request channel: %w", err)
	}
	log.Debugw("sent command", "Bytes", len(b))
	c.tr.to(StateSent)

	resp, err := conn.Response()
	if err != nil {
		return fmt.Errorf("opening response channel: %w", err)
	}
	defer resp.Close()
	c.tr.to(StateReceiving)

	stdout := c.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	n, err := io.Copy(stdout, resp)
	if err != nil {
		return fmt.Errorf("receiving response: %w", err)
	}
	log.Debugw("received response", "Bytes", n)
	return nil
}

// State returns the state the last Run ended in.
func (c *Client) State() State {
	if c.tr == nil {
		return StateIdle
	}
	return c.tr.state
}
