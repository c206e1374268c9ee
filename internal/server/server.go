// Package server implements the UDP endpoint for address classification
// queries.
package server

import (
	"net"
	"net/netip"
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"gortc.io/ipsetd/internal/filter"
)

// Server reads classification queries from a packet connection and
// responds with the configured action for each address.
//
// The wire format is plain text: a request datagram carries one IPv4
// address in dotted-quad form, the response is "allow", "deny" or
// "malformed".
type Server struct {
	log     *zap.Logger
	conn    net.PacketConn
	cfg     *config
	metrics metrics
	close   chan struct{}
}

// Options is set of available options for Server.
type Options struct {
	Log            *zap.Logger
	Conn           net.PacketConn
	Rule           *filter.List // Allow-all if nil
	Registry       *prometheus.Registry
	MetricsEnabled bool
	ReusePort      bool
	Workers        int
}

const defaultWorkers = 100

// New initializes and returns new server from options.
func New(o Options) (*Server, error) {
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	if o.Rule == nil {
		o.Rule = filter.NewFilter(filter.Allow)
	}
	if o.Workers <= 0 {
		o.Workers = defaultWorkers
	}
	s := &Server{
		log:     o.Log,
		conn:    o.Conn,
		cfg:     newConfig(o),
		metrics: noopMetrics{},
		close:   make(chan struct{}),
	}
	if o.MetricsEnabled && o.Registry != nil {
		labels := prometheus.Labels{}
		if o.Conn != nil {
			labels["addr"] = o.Conn.LocalAddr().String()
		}
		m := newPromMetrics(labels)
		if err := o.Registry.Register(m); err != nil {
			return nil, errors.Wrap(err, "failed to register metrics")
		}
		s.metrics = m
	}
	return s, nil
}

// setOptions applies the reloadable subset of options.
func (s *Server) setOptions(o Options) {
	s.cfg.SetRule(o.Rule)
	s.log.Info("options updated")
}

var (
	resAllow     = []byte("allow")
	resDeny      = []byte("deny")
	resMalformed = []byte("malformed")
)

// process classifies one request payload and returns the response.
func (s *Server) process(b []byte) []byte {
	s.metrics.incQueries()
	addr, err := netip.ParseAddr(strings.TrimSpace(string(b)))
	if err != nil || !addr.Is4() {
		s.metrics.incMalformed()
		s.log.Debug("malformed query", zap.Int("len", len(b)))
		return resMalformed
	}
	switch s.cfg.Rule().Action(addr) {
	case filter.Deny:
		s.metrics.incDenied()
		s.log.Debug("deny", zap.Stringer("addr", addr))
		return resDeny
	default:
		s.metrics.incAllowed()
		s.log.Debug("allow", zap.Stringer("addr", addr))
		return resAllow
	}
}

// processTask classifies a queued query and writes the response back.
func (s *Server) processTask(t *task) error {
	res := s.process(t.payload)
	_, err := s.conn.WriteTo(res, t.addr)
	return err
}

func (s *Server) serveConn(c net.PacketConn, wp *workerPool, buf []byte) error {
	n, addr, err := c.ReadFrom(buf)
	if err != nil {
		select {
		case <-s.close:
			return errServerClosed
		default:
		}
		s.log.Warn("readFrom failed", zap.Error(err))
		return nil
	}
	// Payload is copied because buf is reused for the next read while
	// a worker still holds the task.
	payload := make([]byte, n)
	copy(payload, buf[:n])
	wp.Serve(&task{payload: payload, addr: addr})
	return nil
}

var errServerClosed = errors.New("server closed")

// Serve reads queries from the connection and dispatches them to a
// worker pool until Close.
func (s *Server) Serve() error {
	wp := &workerPool{
		WorkerFunc:      s.processTask,
		MaxWorkersCount: s.cfg.Workers(),
		Logger:          s.log.Named("pool"),
	}
	wp.Start()
	defer wp.Stop()
	buf := make([]byte, 64)
	for {
		if err := s.serveConn(s.conn, wp, buf); err != nil {
			if err == errServerClosed {
				return nil
			}
			return err
		}
	}
}

// Close stops serving and releases the connection.
func (s *Server) Close() error {
	close(s.close)
	s.log.Info("closing")
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
