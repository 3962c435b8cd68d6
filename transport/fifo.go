package transport

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/guseggert/ipcexec/internal/files"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// A FIFO is unidirectional, so an exchange opens the same path twice:
// the client writes then reads, the server reads then writes.
// Each open blocks until the peer opens the opposite direction.

type fifoListener struct {
	path string
	log  *zap.SugaredLogger
}

func listenFIFO(path string, o options) (*fifoListener, error) {
	log := o.log.Named("fifo_listener")
	typ, exists, err := files.TypeOf(path)
	if err != nil {
		return nil, &Error{Op: "stat", Kind: KindFIFO, Path: path, Err: err}
	}
	switch {
	case !exists:
		err := unix.Mkfifo(path, uint32(o.fifoPerm.Perm()))
		if err != nil {
			return nil, &Error{Op: "mkfifo", Kind: KindFIFO, Path: path, Err: err}
		}
		log.Debugw("created FIFO", "Path", path, "Perm", o.fifoPerm.Perm())
	case typ&fs.ModeNamedPipe != 0:
		log.Debugw("reusing existing FIFO", "Path", path)
	default:
		return nil, &Error{
			Op:   "mkfifo",
			Kind: KindFIFO,
			Path: path,
			Err:  fmt.Errorf("path exists and is a %s, not a FIFO", files.TypeName(typ)),
		}
	}
	return &fifoListener{path: path, log: log}, nil
}

func (l *fifoListener) Accept() (ServerConn, error) {
	return &fifoServerConn{path: l.path, log: l.log.Named("conn")}, nil
}

func (l *fifoListener) Close() error {
	err := files.RemoveIfExists(l.path)
	if err != nil {
		return &Error{Op: "remove", Kind: KindFIFO, Path: l.path, Err: err}
	}
	l.log.Debugw("removed FIFO", "Path", l.path)
	return nil
}

type fifoServerConn struct {
	path string
	log  *zap.SugaredLogger

	req  *os.File
	resp *os.File
}

func (c *fifoServerConn) Request() (io.ReadCloser, error) {
	f, err := openFIFO(c.path, os.O_RDONLY)
	if err != nil {
		return nil, err
	}
	c.log.Debug("opened request channel")
	c.req = f
	return &fifoChannel{f: f, path: c.path}, nil
}

func (c *fifoServerConn) Response() (*os.File, error) {
	f, err := openFIFO(c.path, os.O_WRONLY)
	if err != nil {
		return nil, err
	}
	c.log.Debug("opened response channel")
	c.resp = f
	return f, nil
}

func (c *fifoServerConn) Close() error {
	return closeFiles(KindFIFO, c.path, c.req, c.resp)
}

type fifoClientConn struct {
	path string
	log  *zap.SugaredLogger

	req  *os.File
	resp *os.File
}

func dialFIFO(path string, o options) (*fifoClientConn, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, &Error{Op: "dial", Kind: KindFIFO, Path: path, Err: err}
	}
	if fi.Mode().Type()&fs.ModeNamedPipe == 0 {
		return nil, &Error{
			Op:   "dial",
			Kind: KindFIFO,
			Path: path,
			Err:  fmt.Errorf("path is a %s, not a FIFO", files.TypeName(fi.Mode().Type())),
		}
	}
	return &fifoClientConn{path: path, log: o.log.Named("fifo_client")}, nil
}

func (c *fifoClientConn) Request() (io.WriteCloser, error) {
	f, err := openFIFO(c.path, os.O_WRONLY)
	if err != nil {
		return nil, err
	}
	c.log.Debug("opened request channel")
	c.req = f
	return &fifoChannel{f: f, path: c.path}, nil
}

func (c *fifoClientConn) Response() (io.ReadCloser, error) {
	f, err := openFIFO(c.path, os.O_RDONLY)
	if err != nil {
		return nil, err
	}
	c.log.Debug("opened response channel")
	c.resp = f
	return &fifoChannel{f: f, path: c.path}, nil
}

func (c *fifoClientConn) Close() error {
	return closeFiles(KindFIFO, c.path, c.req, c.resp)
}

// fifoChannel is one direction of a FIFO exchange.
type fifoChannel struct {
	f    *os.File
	path string
}

func (c *fifoChannel) Read(p []byte) (int, error) {
	n, err := c.f.Read(p)
	if err != nil && err != io.EOF {
		return n, &Error{Op: "read", Kind: KindFIFO, Path: c.path, Err: err}
	}
	return n, err
}

func (c *fifoChannel) Write(p []byte) (int, error) {
	n, err := c.f.Write(p)
	if err != nil {
		return n, &Error{Op: "write", Kind: KindFIFO, Path: c.path, Err: err}
	}
	return n, nil
}

func (c *fifoChannel) Close() error {
	err := c.f.Close()
	if err != nil && !errors.Is(err, os.ErrClosed) {
		return &Error{Op: "close", Kind: KindFIFO, Path: c.path, Err: err}
	}
	return nil
}

func openFIFO(path string, flag int) (*os.File, error) {
	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, &Error{Op: "open", Kind: KindFIFO, Path: path, Err: err}
	}
	return f, nil
}

// closeFiles closes every handle still open, reporting the first failure.
// Handles already closed by their channel are skipped.
func closeFiles(kind Kind, path string, handles ...*os.File) error {
	var firstErr error
	for _, f := range handles {
		if f == nil {
			continue
		}
		err := f.Close()
		if err != nil && !errors.Is(err, os.ErrClosed) && firstErr == nil {
			firstErr = &Error{Op: "close", Kind: kind, Path: path, Err: err}
		}
	}
	return firstErr
}
