package transport

import (
	"bytes"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/sync/errgroup"
)

func TestReadExactShortReads(t *testing.T) {
	r := iotest.OneByteReader(bytes.NewReader([]byte("hello world")))
	b, err := ReadExact(r, 5)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))

	b, err = ReadExact(r, 6)
	require.NoError(t, err)
	assert.Equal(t, " world", string(b))
}

func TestReadExactPeerClosed(t *testing.T) {
	_, err := ReadExact(bytes.NewReader([]byte("abc")), 4)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	var terr *Error
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "read", terr.Op)

	b, err := ReadExact(bytes.NewReader(nil), 0)
	require.NoError(t, err)
	assert.Empty(t, b)
}

func TestReadExactDataWithEOF(t *testing.T) {
	// a reader may return the final bytes together with io.EOF
	b, err := ReadExact(iotest.DataErrReader(bytes.NewReader([]byte("xyz"))), 3)
	require.NoError(t, err)
	assert.Equal(t, "xyz", string(b))
}

type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) { return len(p) / 2, nil }

func TestWriteAllShortWrite(t *testing.T) {
	err := WriteAll(shortWriter{}, []byte("abcd"))
	assert.ErrorIs(t, err, io.ErrShortWrite)
}

func exchange(t *testing.T, kind Kind, path string) {
	log := zaptest.NewLogger(t).Sugar()
	l, err := Listen(kind, path, WithLogger(log))
	require.NoError(t, err)
	defer l.Close()

	var group errgroup.Group
	group.Go(func() error {
		conn, err := l.Accept()
		if err != nil {
			return err
		}
		defer conn.Close()
		req, err := conn.Request()
		if err != nil {
			return err
		}
		b, err := ReadExact(req, 4)
		if err != nil {
			return err
		}
		if err := req.Close(); err != nil {
			return err
		}
		resp, err := conn.Response()
		if err != nil {
			return err
		}
		if err := WriteAll(resp, append([]byte("got "), b...)); err != nil {
			return err
		}
		return resp.Close()
	})

	conn, err := Dial(kind, path, WithLogger(log))
	require.NoError(t, err)
	defer conn.Close()

	req, err := conn.Request()
	require.NoError(t, err)
	require.NoError(t, WriteAll(req, []byte("ping")))
	require.NoError(t, req.Close())

	resp, err := conn.Response()
	require.NoError(t, err)
	out, err := io.ReadAll(resp)
	require.NoError(t, err)
	require.NoError(t, resp.Close())

	require.NoError(t, group.Wait())
	assert.Equal(t, "got ping", string(out))
}

func TestDomainExchange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.sock")
	exchange(t, KindDomain, path)

	_, err := os.Lstat(path)
	assert.True(t, os.IsNotExist(err), "listener close must remove the socket file")
}

func TestFIFOExchange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.fifo")
	exchange(t, KindFIFO, path)

	_, err := os.Lstat(path)
	assert.True(t, os.IsNotExist(err), "listener close must remove the FIFO")
}

func TestFIFOListenReusesExistingFIFO(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.fifo")
	l, err := Listen(KindFIFO, path)
	require.NoError(t, err)

	// a second listener on a live FIFO reuses it rather than failing
	l2, err := Listen(KindFIFO, path)
	require.NoError(t, err)
	require.NoError(t, l2.Close())
	require.NoError(t, l.Close())
}

func TestFIFOListenRejectsRegularFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regular")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))

	_, err := Listen(KindFIFO, path)
	var terr *Error
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, KindFIFO, terr.Kind)
	assert.Contains(t, err.Error(), "regular file")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "data", string(b), "existing file must be left untouched")
}

func TestFIFODialRejectsNonFIFO(t *testing.T) {
	dir := t.TempDir()
	_, err := Dial(KindFIFO, filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(dir, "regular")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	_, err = Dial(KindFIFO, path)
	assert.ErrorContains(t, err, "not a FIFO")
}

func TestDomainListenRemovesStaleSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stale.sock")

	// simulate a crashed run that left its socket file behind
	stale, err := net.ListenUnix("unix", &net.UnixAddr{Name: path, Net: "unix"})
	require.NoError(t, err)
	stale.SetUnlinkOnClose(false)
	require.NoError(t, stale.Close())
	_, err = os.Lstat(path)
	require.NoError(t, err)

	l, err := Listen(KindDomain, path)
	require.NoError(t, err)
	require.NoError(t, l.Close())
}

func TestDomainDialNoServer(t *testing.T) {
	_, err := Dial(KindDomain, filepath.Join(t.TempDir(), "nobody.sock"))
	var terr *Error
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "connect", terr.Op)
}

func TestUnknownKind(t *testing.T) {
	_, err := Listen(Kind("tcp"), "x")
	assert.Error(t, err)
	_, err = Dial(Kind("tcp"), "x")
	assert.Error(t, err)
}
