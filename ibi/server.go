package ibi

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/toranova/id2/transport"
)

// ServerConfig tunes a Server.
type ServerConfig struct {
	// Timeout bounds every protocol step of a session.
	Timeout time.Duration
	// MaxSessions caps concurrent sessions. Zero means no cap.
	MaxSessions int
	// RatePerHost and BurstPerHost limit how often one remote host may start
	// a session. Zero disables the limit.
	RatePerHost  float64
	BurstPerHost int
	// OnResult, if set, is called after every completed session.
	OnResult func(*Result)
	// Metrics, if set, records session outcomes.
	Metrics *Metrics
}

// Server runs one verifier session per accepted connection, each in its own
// goroutine.
type Server struct {
	verifier *Verifier
	listener transport.Listener
	conf     ServerConfig
	limiter  *hostLimiter
	logger   *logrus.Entry
}

// NewServer returns a Server that serves v on ln.
func NewServer(v *Verifier, ln transport.Listener, conf ServerConfig, logger *logrus.Entry) *Server {
	return &Server{
		verifier: v,
		listener: ln,
		conf:     conf,
		limiter:  newHostLimiter(conf.RatePerHost, conf.BurstPerHost, 0),
		logger:   orDiscard(logger).WithField("addr", ln.Addr()),
	}
}

// Serve accepts connections until ctx is done, Close is called or the
// listener fails, then waits for running sessions to finish. Only a listener
// failure is returned as an error.
func (s *Server) Serve(ctx context.Context) error {
	var sessions errgroup.Group
	if s.conf.MaxSessions > 0 {
		sessions.SetLimit(s.conf.MaxSessions)
	}
	s.logger.Info("serving identification sessions")

	var serveErr error
	for {
		conn, err := s.listener.Accept(ctx, 0)
		if err != nil {
			// A closed listener reports ErrPeerClosed.
			if ctx.Err() == nil && !errors.Is(err, transport.ErrPeerClosed) {
				serveErr = errors.Wrap(err, "accept")
				s.logger.WithError(err).Error("listener failed")
			}
			break
		}

		if !s.limiter.allow(conn.RemoteAddr(), time.Now()) {
			s.logger.WithField("remote", conn.RemoteAddr()).Debug("throttled")
			if s.conf.Metrics != nil {
				s.conf.Metrics.throttled.Inc()
			}
			conn.Close()
			continue
		}

		sessions.Go(func() error {
			defer conn.Close()
			s.session(ctx, conn)
			return nil
		})
	}

	sessions.Wait()
	s.logger.Info("stopped serving")
	return serveErr
}

func (s *Server) session(ctx context.Context, conn transport.Conn) {
	m := s.conf.Metrics
	if m != nil {
		m.active.Inc()
		defer m.active.Dec()
	}

	start := time.Now()
	res, err := s.verifier.Verify(ctx, conn, s.conf.Timeout)
	if err != nil {
		s.logger.WithError(err).WithField("remote", conn.RemoteAddr()).Debug("session ended early")
	}

	if m != nil {
		m.sessions.WithLabelValues(res.Outcome.String()).Inc()
		m.duration.Observe(time.Since(start).Seconds())
	}
	if s.conf.OnResult != nil {
		s.conf.OnResult(res)
	}
}

// Close stops the listener. Running sessions are not interrupted; cancel the
// context passed to Serve for that.
func (s *Server) Close() error {
	return s.listener.Close()
}
