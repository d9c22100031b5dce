// Package hotspot couples the configuration access point to the engine
// state. The radio is powered down while the engine runs or after the last
// peer has been gone for PeerTimeout, and brought back when the engine is
// stopped and a peer is still considered connected.
package hotspot

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	// CheckInterval is how often the scheduler runs Check.
	CheckInterval = time.Second
	PeerTimeout   = 30 * time.Second
	// RunningRPM is the engine speed above which the radio is kept off.
	RunningRPM = 100
)

// APConfig is the identity the access point is brought up with.
type APConfig struct {
	SSID       string
	Passphrase string
	// Address in CIDR notation, used as both gateway and device address.
	Address string
}

// Identity is fixed and not configurable at runtime.
var Identity = APConfig{
	SSID:       "MAZDUINO_Display",
	Passphrase: "12345678",
	Address:    "192.168.1.80/24",
}

type AccessPoint interface {
	StationCount() (int, error)
	Up(APConfig) error
	Down() error
}

// Service is the request listener that only runs while the radio is up.
type Service interface {
	Start() error
	Stop() error
	// Tick performs one bounded unit of work.
	Tick()
}

type State uint8

const (
	Active State = iota
	Inactive
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "inactive"
}

type Controller struct {
	ap    AccessPoint
	svc   Service
	clock clockwork.Clock

	state         State
	stations      int
	peerConnected bool
	lastPeerSeen  time.Time
}

// NewController returns a controller in the Active state with a peer
// assumed connected, matching a radio that is already up at boot.
func NewController(ap AccessPoint, svc Service, clock clockwork.Clock) *Controller {
	return &Controller{
		ap:            ap,
		svc:           svc,
		clock:         clock,
		state:         Active,
		peerConnected: true,
		lastPeerSeen:  clock.Now(),
	}
}

// Start brings the radio and listener up for the initial Active state.
func (c *Controller) Start() error {
	if err := c.ap.Up(Identity); err != nil {
		return errors.Wrap(err, "unable to bring up access point")
	}
	if err := c.svc.Start(); err != nil {
		return errors.Wrap(err, "unable to start listener")
	}
	c.lastPeerSeen = c.clock.Now()
	log.WithField("ssid", Identity.SSID).Info("access point up")
	return nil
}

func (c *Controller) State() State {
	return c.state
}

func (c *Controller) Active() bool {
	return c.state == Active
}

func (c *Controller) PeerConnected() bool {
	return c.peerConnected
}

// Peers is the station count seen by the last Check.
func (c *Controller) Peers() int {
	return c.stations
}

// Check is the periodic housekeeping run. It polls the peer count and
// performs at most one state transition.
func (c *Controller) Check(rpm uint) error {
	// no stations while the radio is down
	n := 0
	if c.state == Active {
		var err error
		if n, err = c.ap.StationCount(); err != nil {
			log.WithField("err", err).Warn("unable to query station count")
			n = 0
		}
	}
	c.stations = n

	now := c.clock.Now()
	if n > 0 {
		c.peerConnected = true
		c.lastPeerSeen = now
	} else if c.peerConnected && now.Sub(c.lastPeerSeen) > PeerTimeout {
		c.peerConnected = false
		log.WithField("silence", now.Sub(c.lastPeerSeen)).Info("no peer connected")
	}

	running := rpm > RunningRPM
	switch {
	case c.state == Active && (running || !c.peerConnected):
		return c.deactivate(running)
	case c.state == Inactive && !running && c.peerConnected:
		return c.activate()
	}
	return nil
}

func (c *Controller) deactivate(running bool) error {
	log.WithFields(log.Fields{
		"engineRunning": running,
		"peerConnected": c.peerConnected,
	}).Info("radio off")

	// Inactive even when a collaborator fails
	c.state = Inactive
	var first error
	if err := c.svc.Stop(); err != nil {
		first = errors.Wrap(err, "unable to stop listener")
	}
	if err := c.ap.Down(); err != nil && first == nil {
		first = errors.Wrap(err, "unable to power down access point")
	}
	return first
}

func (c *Controller) activate() error {
	if err := c.ap.Up(Identity); err != nil {
		return errors.Wrap(err, "unable to bring up access point")
	}
	if err := c.svc.Start(); err != nil {
		if derr := c.ap.Down(); derr != nil {
			log.WithField("err", derr).Warn("unable to power down access point")
		}
		return errors.Wrap(err, "unable to start listener")
	}
	c.state = Active
	log.WithFields(log.Fields{
		"engineRunning": false,
		"peerConnected": c.peerConnected,
	}).Info("radio on")

	// serve a peer that has been waiting for the radio
	c.svc.Tick()
	return nil
}

// Tick performs one unit of network service when the radio is active.
func (c *Controller) Tick() {
	if c.state == Active {
		c.svc.Tick()
	}
}
