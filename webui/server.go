// Package webui is the configuration surface served over the access point.
//
// Requests are accepted on the listener's own goroutines but every handler
// only queues a job; jobs run on the caller of Tick, one per tick, so the
// state behind Controls is never touched concurrently.
package webui

import (
	_ "embed"
	"io"
	"net"
	"net/http"
	"sync"

	"github.com/amrikarisma/mazduino-display-speeduino/settings"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

//go:embed index.html
var indexPage []byte

// Controls is the device state the surface reads and changes.
type Controls interface {
	DisplayMode() settings.DisplayMode
	SetDisplayMode(settings.DisplayMode) error
	// ToggleDisplayMode persists the other mode and redraws the affected
	// region at once.
	ToggleDisplayMode() (settings.DisplayMode, error)
	SplashName() string
	NextSplash() (string, error)
	Info() string
}

type Installer interface {
	Install(r io.Reader) error
	Restart() error
}

var errStopped = errors.New("listener stopped")

type job struct {
	run  func()
	done chan struct{}
}

type Server struct {
	addr      string
	controls  Controls
	installer Installer
	router    *gin.Engine
	jobs      chan *job

	mu      sync.Mutex
	srv     *http.Server
	stopped chan struct{}
}

func NewServer(addr string, controls Controls, installer Installer) *Server {
	stopped := make(chan struct{})
	close(stopped)
	s := &Server{
		addr:      addr,
		controls:  controls,
		installer: installer,
		jobs:      make(chan *job, 8),
		stopped:   stopped,
	}
	s.initRouter()
	return s
}

// Router exposes the handlers, e.g. for httptest.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) initRouter() {
	gin.SetMode(gin.ReleaseMode)
	s.router = gin.New()
	s.router.Use(gin.Recovery())

	s.router.GET("/", s.handleRoot)
	s.router.POST("/update", s.handleUpdate)
	s.router.POST("/toggle", s.handleToggle)
	s.router.GET("/splash", s.handleSplashGet)
	s.router.POST("/splash", s.handleSplashNext)
	s.router.GET("/displaymode", s.handleDisplayModeGet)
	s.router.POST("/displaymode", s.handleDisplayModeToggle)
	s.router.GET("/info", s.handleInfo)
}

// Start opens the listener. Requests are queued until Tick runs them.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv != nil {
		return nil
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.Wrapf(err, "unable to listen on %s", s.addr)
	}
	s.stopped = make(chan struct{})
	s.srv = &http.Server{Handler: s.router}
	go func(srv *http.Server) {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.WithField("err", err).Error("web server stopped")
		}
	}(s.srv)
	log.WithField("addr", ln.Addr().String()).Info("web server listening")
	return nil
}

// Stop closes the listener and releases every waiting request with 503.
// Queued jobs are dropped.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv == nil {
		return nil
	}
	close(s.stopped)
	err := s.srv.Close()
	s.srv = nil
	for {
		select {
		case <-s.jobs:
		default:
			return errors.Wrap(err, "unable to close web server")
		}
	}
}

// Tick runs at most one queued request.
func (s *Server) Tick() {
	select {
	case j := <-s.jobs:
		j.run()
		close(j.done)
	default:
	}
}

func (s *Server) stoppedChan() chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// do queues fn and waits for the loop to run it.
func (s *Server) do(c *gin.Context, fn func()) error {
	stopped := s.stoppedChan()
	j := &job{run: fn, done: make(chan struct{})}
	select {
	case s.jobs <- j:
	case <-stopped:
		return errStopped
	case <-c.Request.Context().Done():
		return c.Request.Context().Err()
	}
	select {
	case <-j.done:
		return nil
	case <-stopped:
		return errStopped
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	if err == errStopped {
		c.String(http.StatusServiceUnavailable, "Unavailable")
		return
	}
	log.WithField("err", err).Warn("request failed")
	c.String(http.StatusInternalServerError, err.Error())
}
