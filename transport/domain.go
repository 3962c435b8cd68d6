package transport

import (
	"io"
	"net"
	"os"

	"github.com/guseggert/ipcexec/internal/files"
	"go.uber.org/zap"
)

type domainListener struct {
	path string
	log  *zap.SugaredLogger
	l    *net.UnixListener
}

func listenDomain(path string, o options) (*domainListener, error) {
	log := o.log.Named("domain_listener")

	// a socket file left by a crashed run would make bind fail with "address in use"
	err := files.RemoveIfExists(path)
	if err != nil {
		return nil, &Error{Op: "remove", Kind: KindDomain, Path: path, Err: err}
	}

	l, err := net.ListenUnix("unix", &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		return nil, &Error{Op: "listen", Kind: KindDomain, Path: path, Err: err}
	}
	// the listener's path is removed explicitly in Close
	l.SetUnlinkOnClose(false)
	log.Debugw("listening on domain socket", "Path", path)

	return &domainListener{path: path, log: log, l: l}, nil
}

func (l *domainListener) Accept() (ServerConn, error) {
	conn, err := l.l.AcceptUnix()
	if err != nil {
		return nil, &Error{Op: "accept", Kind: KindDomain, Path: l.path, Err: err}
	}
	l.log.Debugw("accepted connection", "Remote", conn.RemoteAddr())
	return &domainServerConn{path: l.path, conn: conn, log: l.log.Named("conn")}, nil
}

func (l *domainListener) Close() error {
	var firstErr error
	err := l.l.Close()
	if err != nil {
		firstErr = &Error{Op: "close", Kind: KindDomain, Path: l.path, Err: err}
	}
	err = files.RemoveIfExists(l.path)
	if err != nil && firstErr == nil {
		firstErr = &Error{Op: "remove", Kind: KindDomain, Path: l.path, Err: err}
	}
	l.log.Debugw("closed domain socket", "Path", l.path)
	return firstErr
}

type domainServerConn struct {
	path string
	log  *zap.SugaredLogger
	conn *net.UnixConn

	resp *os.File
}

func (c *domainServerConn) Request() (io.ReadCloser, error) {
	return &readHalf{conn: c.conn, path: c.path}, nil
}

// Response duplicates the connected descriptor into an *os.File.
// Output is written through the duplicate while the connection stays open.
func (c *domainServerConn) Response() (*os.File, error) {
	f, err := c.conn.File()
	if err != nil {
		return nil, &Error{Op: "dup", Kind: KindDomain, Path: c.path, Err: err}
	}
	c.resp = f
	return f, nil
}

func (c *domainServerConn) Close() error {
	firstErr := closeFiles(KindDomain, c.path, c.resp)
	err := c.conn.Close()
	if err != nil && firstErr == nil {
		firstErr = &Error{Op: "close", Kind: KindDomain, Path: c.path, Err: err}
	}
	return firstErr
}

type domainClientConn struct {
	path string
	conn *net.UnixConn
}

func dialDomain(path string, o options) (*domainClientConn, error) {
	conn, err := net.DialUnix("unix", nil, &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		return nil, &Error{Op: "connect", Kind: KindDomain, Path: path, Err: err}
	}
	o.log.Named("domain_client").Debugw("connected", "Path", path)
	return &domainClientConn{path: path, conn: conn}, nil
}

func (c *domainClientConn) Request() (io.WriteCloser, error) {
	return &writeHalf{conn: c.conn, path: c.path}, nil
}

func (c *domainClientConn) Response() (io.ReadCloser, error) {
	return &readHalf{conn: c.conn, path: c.path}, nil
}

func (c *domainClientConn) Close() error {
	err := c.conn.Close()
	if err != nil {
		return &Error{Op: "close", Kind: KindDomain, Path: c.path, Err: err}
	}
	return nil
}

// readHalf is the receiving direction of a connected socket. Closing it shuts down reads only.
type readHalf struct {
	conn *net.UnixConn
	path string
}

func (h *readHalf) Read(p []byte) (int, error) {
	n, err := h.conn.Read(p)
	if err != nil && err != io.EOF {
		return n, &Error{Op: "read", Kind: KindDomain, Path: h.path, Err: err}
	}
	return n, err
}

func (h *readHalf) Close() error {
	err := h.conn.CloseRead()
	if err != nil {
		return &Error{Op: "shutdown", Kind: KindDomain, Path: h.path, Err: err}
	}
	return nil
}

// writeHalf is the sending direction of a connected socket. Closing it shuts down writes only,
// so the peer sees EOF while the reverse direction stays usable.
type writeHalf struct {
	conn *net.UnixConn
	path string
}

func (h *writeHalf) Write(p []byte) (int, error) {
	n, err := h.conn.Write(p)
	if err != nil {
		return n, &Error{Op: "write", Kind: KindDomain, Path: h.path, Err: err}
	}
	return n, nil
}

func (h *writeHalf) Close() error {
	err := h.conn.CloseWrite()
	if err != nil {
		return &Error{Op: "shutdown", Kind: KindDomain, Path: h.path, Err: err}
	}
	return nil
}
