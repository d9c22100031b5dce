package webui

import (
	"net/http"
	"strings"

	"github.com/amrikarisma/mazduino-display-speeduino/settings"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	msgUpdateOK     = "Update successful! Display will restart."
	msgUpdateFailed = "Update failed!"
)

func (s *Server) handleRoot(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexPage)
}

// handleUpdate installs the uploaded image and restarts into it.
func (s *Server) handleUpdate(c *gin.Context) {
	fh, err := c.FormFile("firmware")
	if err != nil {
		log.WithField("err", err).Warn("firmware upload without image")
		c.String(http.StatusBadRequest, msgUpdateFailed)
		return
	}
	f, err := fh.Open()
	if err != nil {
		log.WithField("err", err).Warn("unable to open uploaded image")
		c.String(http.StatusInternalServerError, msgUpdateFailed)
		return
	}
	defer f.Close()

	var installErr error
	if err := s.do(c, func() { installErr = s.installer.Install(f) }); err != nil {
		s.fail(c, err)
		return
	}
	if installErr != nil {
		log.WithField("err", installErr).Error("firmware update failed")
		c.String(http.StatusOK, msgUpdateFailed)
		return
	}
	log.WithField("size", fh.Size).Info("firmware installed")
	c.String(http.StatusOK, msgUpdateOK)
	c.Writer.Flush()
	if err := s.installer.Restart(); err != nil {
		log.WithField("err", err).Error("unable to restart")
	}
}

// handleToggle is the legacy on/off switch for the display mode. Bodies
// other than "on" and "off" keep the current mode.
func (s *Server) handleToggle(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	var setErr error
	err = s.do(c, func() {
		switch strings.TrimSpace(string(body)) {
		case "on":
			setErr = s.controls.SetDisplayMode(settings.ShowRefreshRate)
		case "off":
			setErr = s.controls.SetDisplayMode(settings.ShowFuelPressure)
		default:
			setErr = s.controls.SetDisplayMode(s.controls.DisplayMode())
		}
	})
	if err == nil {
		err = setErr
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.String(http.StatusOK, "OK")
}

func (s *Server) handleSplashGet(c *gin.Context) {
	var name string
	if err := s.do(c, func() { name = s.controls.SplashName() }); err != nil {
		s.fail(c, err)
		return
	}
	c.String(http.StatusOK, name)
}

func (s *Server) handleSplashNext(c *gin.Context) {
	var name string
	var nextErr error
	err := s.do(c, func() { name, nextErr = s.controls.NextSplash() })
	if err == nil {
		err = errors.Wrap(nextErr, "unable to select next splash")
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.String(http.StatusOK, name)
}

func (s *Server) handleDisplayModeGet(c *gin.Context) {
	var mode settings.DisplayMode
	if err := s.do(c, func() { mode = s.controls.DisplayMode() }); err != nil {
		s.fail(c, err)
		return
	}
	c.String(http.StatusOK, mode.String())
}

func (s *Server) handleDisplayModeToggle(c *gin.Context) {
	var mode settings.DisplayMode
	var toggleErr error
	err := s.do(c, func() { mode, toggleErr = s.controls.ToggleDisplayMode() })
	if err == nil {
		err = errors.Wrap(toggleErr, "unable to toggle display mode")
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.String(http.StatusOK, mode.String())
}

func (s *Server) handleInfo(c *gin.Context) {
	var info string
	if err := s.do(c, func() { info = s.controls.Info() }); err != nil {
		s.fail(c, err)
		return
	}
	c.String(http.StatusOK, info)
}
