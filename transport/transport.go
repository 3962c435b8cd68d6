package transport

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

// Kind selects the IPC primitive backing an exchange.
type Kind string

const (
	KindFIFO   Kind = "fifo"
	KindDomain Kind = "domain"
)

// ClientConn is the client end of a single request/response exchange.
// Request must be written and closed before Response is opened.
type ClientConn interface {
	Request() (io.WriteCloser, error)
	Response() (io.ReadCloser, error)
	Close() error
}

// ServerConn is the server end of a single request/response exchange.
// The response channel is an *os.File so that a child process can inherit it as stdout.
type ServerConn interface {
	Request() (io.ReadCloser, error)
	Response() (*os.File, error)
	Close() error
}

// Listener owns the filesystem artifact at its path for the lifetime of one server run.
type Listener interface {
	Accept() (ServerConn, error)
	// Close releases the listener and removes the path.
	Close() error
}

type options struct {
	log      *zap.SugaredLogger
	fifoPerm os.FileMode
}

type Option func(o *options)

func WithLogger(l *zap.SugaredLogger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithFIFOPerm sets the permission bits used when the server creates a FIFO.
func WithFIFOPerm(perm os.FileMode) Option {
	return func(o *options) {
		o.fifoPerm = perm
	}
}

func buildOptions(opts []Option) options {
	o := options{
		log:      zap.NewNop().Sugar(),
		fifoPerm: 0o644,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Listen prepares the server side of kind at path.
func Listen(kind Kind, path string, opts ...Option) (Listener, error) {
	o := buildOptions(opts)
	switch kind {
	case KindFIFO:
		return listenFIFO(path, o)
	case KindDomain:
		return listenDomain(path, o)
	}
	return nil, &Error{Op: "listen", Kind: kind, Path: path, Err: fmt.Errorf("unknown IPC kind %q", kind)}
}

// Dial prepares the client side of kind at path.
func Dial(kind Kind, path string, opts ...Option) (ClientConn, error) {
	o := buildOptions(opts)
	switch kind {
	case KindFIFO:
		return dialFIFO(path, o)
	case KindDomain:
		return dialDomain(path, o)
	}
	return nil, &Error{Op: "dial", Kind: kind, Path: path, Err: fmt.Errorf("unknown IPC kind %q", kind)}
}

// ReadExact reads exactly n bytes from r. A single Read may return fewer bytes than asked
// for on either transport, so this keeps reading until n bytes arrive or the peer closes.
func ReadExact(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	read := 0
	for read < n {
		m, err := r.Read(buf[read:])
		read += m
		if read == n {
			break
		}
		if err == io.EOF {
			if read == 0 {
				return nil, &Error{Op: "read", Err: io.EOF}
			}
			return nil, &Error{Op: "read", Err: fmt.Errorf("got %d of %d bytes: %w", read, n, io.ErrUnexpectedEOF)}
		}
		if err != nil {
			return nil, &Error{Op: "read", Err: err}
		}
	}
	return buf, nil
}

// WriteAll writes every byte of b to w.
func WriteAll(w io.Writer, b []byte) error {
	n, err := w.Write(b)
	if err != nil {
		return &Error{Op: "write", Err: err}
	}
	if n != len(b) {
		return &Error{Op: "write", Err: io.ErrShortWrite}
	}
	return nil
}
