package session

import (
	"context"
	"fmt"

	"github.com/guseggert/ipcexec/command"
	"github.com/guseggert/ipcexec/frame"
	"github.com/guseggert/ipcexec/transport"
	"go.uber.org/zap"
)

// Server accepts a single exchange, runs the received command and streams its stdout back.
type Server struct {
	Kind          transport.Kind
	Path          string
	Dispatcher    *command.Dispatcher
	ListenOptions []transport.Option
	Log           *zap.SugaredLogger

	tr *tracker
}

func (s *Server) logger() *zap.SugaredLogger {
	if s.Log == nil {
		return zap.NewNop().Sugar().Named("server")
	}
	return s.Log.Named("server")
}

// Listen creates the path for the exchange. The caller owns the returned listener
// and must close it, which removes the path.
func (s *Server) Listen() (transport.Listener, error) {
	opts := append([]transport.Option{transport.WithLogger(s.logger())}, s.ListenOptions...)
	l, err := transport.Listen(s.Kind, s.Path, opts...)
	if err != nil {
		return nil, fmt.Errorf("preparing %s endpoint: %w", s.Kind, err)
	}
	return l, nil
}

// ListenAndServe prepares the path, serves exactly one exchange and removes the path again.
func (s *Server) ListenAndServe(ctx context.Context) (res *command.Result, err error) {
	l, err := s.Listen()
	if err != nil {
		return nil, err
	}
	defer func() {
		closeErr := l.Close()
		if closeErr != nil && err == nil {
			err = fmt.Errorf("closing listener: %w", closeErr)
		}
	}()
	return s.Serve(ctx, l)
}

// Serve accepts one exchange on l and blocks until the command it carries has exited.
func (s *Server) Serve(ctx context.Context, l transport.Listener) (res *command.Result, err error) {
	log := s.logger()
	s.tr = newTracker(log)
	defer s.tr.to(StateClosed)

	if s.Dispatcher == nil {
		return nil, fmt.Errorf("server has no dispatcher")
	}

	conn, err := l.Accept()
	if err != nil {
		return nil, fmt.Errorf("accepting client: %w", err)
	}
	defer func() {
		closeErr := conn.Close()
		if closeErr != nil && err == nil {
			err = fmt.Errorf("closing connection: %w", closeErr)
		}
	}()
	s.tr.to(StateConnected)

	req, err := conn.Request()
	if err != nil {
		return nil, fmt.Errorf("opening request channel: %w", err)
	}
	line, err := frame.Read(req)
	if err != nil {
		req.Close()
		return nil, fmt.Errorf("receiving command: %w", err)
	}
	err = req.Close()
	if err != nil {
		return nil, fmt.Errorf("closing request channel: %w", err)
	}
	log.Infow("received command", "Command", line)
	s.tr.to(StateSent)

	// the response channel is opened even when the command turns out to be unusable,
	// otherwise a FIFO client would block forever waiting for a writer
	resp, err := conn.Response()
	if err != nil {
		return nil, fmt.Errorf("opening response channel: %w", err)
	}
	s.tr.to(StateExecuting)

	res, err = s.Dispatcher.Execute(ctx, line, resp)
	if err != nil {
		if msg := command.Diagnostic(line, err); msg != "" {
			writeErr := transport.WriteAll(resp, []byte(msg))
			if writeErr != nil {
				log.Debugf("error writing diagnostic: %s", writeErr)
			}
		}
		return nil, fmt.Errorf("executing %q: %w", line, err)
	}
	log.Infow("command exited", "Path", res.Path, "ExitCode", res.ExitCode)
	return res, nil
}

// State returns the state the last Serve ended in.
func (s *Server) State() State {
	if s.tr == nil {
		return StateIdle
	}
	return s.tr.state
}
