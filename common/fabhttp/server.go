/*
Copyright IBM Corp All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package fabhttp

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/hyperledger/fabric-sbt/common/flogging"
)

//go:generate counterfeiter -o ../../core/operations/fakes/logger.go -fake-name Logger . Logger

type Logger interface {
	Warn(args ...interface{})
	Warnf(template string, args ...interface{})
}

type Options struct {
	Logger        Logger
	ListenAddress string
	TLS           TLS
}

type Server struct {
	logger     Logger
	options    Options
	httpServer *http.Server
	router     *mux.Router
	addr       string
}

func NewServer(o Options) *Server {
	logger := o.Logger
	if logger == nil {
		logger = flogging.MustGetLogger("fabhttp")
	}

	server := &Server{
		logger:  logger,
		options: o,
	}

	server.initializeServer()

	return server
}

// Run implements ifrit.Runner.
func (s *Server) Run(signals <-chan os.Signal, ready chan<- struct{}) error {
	err := s.Start()
	if err != nil {
		return err
	}

	close(ready)

	<-signals
	return s.Stop()
}

func (s *Server) Start() error {
	listener, err := s.Listen()
	if err != nil {
		return err
	}
	s.addr = listener.Addr().String()

	go s.httpServer.Serve(listener)

	return nil
}

func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

func (s *Server) initializeServer() {
	s.router = mux.NewRouter()
	s.httpServer = &http.Server{
		Addr: s.options.ListenAddress,
		Handler: handlers.RecoveryHandler(
			handlers.RecoveryLogger(recoveryLogger{s.logger}),
		)(s.router),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}
}

// HandlerChain wraps h with request id tagging and, when secure is set, a
// client certificate requirement.
func (s *Server) HandlerChain(h http.Handler, secure bool) http.Handler {
	if secure {
		return WithRequestID(RequireCert(h))
	}
	return WithRequestID(h)
}

// RegisterHandler registers into the router a handler chain that borrows
// its security properties from the fabhttp.Server. Handlers must be
// registered before Start. If TLS is enabled, secure must be true and the
// handler will require a client certificate.
func (s *Server) RegisterHandler(pattern string, handler http.Handler, secure bool) {
	s.router.Handle(pattern, s.HandlerChain(handler, secure))
}

// RegisterRouter mounts every route of r under prefix.
func (s *Server) RegisterRouter(prefix string, r http.Handler, secure bool) {
	s.router.PathPrefix(prefix).Handler(s.HandlerChain(r, secure))
}

func (s *Server) Listen() (net.Listener, error) {
	listener, err := net.Listen("tcp", s.options.ListenAddress)
	if err != nil {
		return nil, err
	}
	tlsConfig, err := s.options.TLS.Config()
	if err != nil {
		listener.Close()
		return nil, err
	}
	if tlsConfig != nil {
		listener = tls.NewListener(listener, tlsConfig)
	}
	return listener, nil
}

func (s *Server) Addr() string {
	return s.addr
}

func (s *Server) Log(keyvals ...interface{}) error {
	s.logger.Warn(keyvals...)
	return nil
}

type recoveryLogger struct {
	logger Logger
}

func (r recoveryLogger) Println(args ...interface{}) {
	r.logger.Warn(args...)
}
