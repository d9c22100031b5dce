package hotspot

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const cmdTimeout = 5 * time.Second

var runCmd = func(timeout time.Duration, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	s := strings.TrimSpace(string(out))
	if ctx.Err() == context.DeadlineExceeded {
		return s, errors.Errorf("command timed out: %s %v", name, args)
	}
	if err != nil {
		if s != "" {
			return s, errors.Wrapf(err, "command failed: %s %v: %s", name, args, s)
		}
		return s, errors.Wrapf(err, "command failed: %s %v", name, args)
	}
	return s, nil
}

// Hostapd runs the access point on a Linux wireless interface using ip(8),
// hostapd(8) and hostapd_cli(1).
type Hostapd struct {
	Interface string
	// RunDir holds the generated configuration and pid file.
	RunDir string
}

func (h *Hostapd) confPath() string {
	return filepath.Join(h.RunDir, "hostapd-"+h.Interface+".conf")
}

func (h *Hostapd) pidPath() string {
	return filepath.Join(h.RunDir, "hostapd-"+h.Interface+".pid")
}

func (h *Hostapd) config(cfg APConfig) string {
	return fmt.Sprintf(`interface=%s
driver=nl80211
ssid=%s
hw_mode=g
channel=6
auth_algs=1
wpa=2
wpa_key_mgmt=WPA-PSK
rsn_pairwise=CCMP
wpa_passphrase=%s
ctrl_interface=%s
`, h.Interface, cfg.SSID, cfg.Passphrase, h.RunDir)
}

func (h *Hostapd) Up(cfg APConfig) error {
	if err := os.MkdirAll(h.RunDir, 0755); err != nil {
		return errors.Wrap(err, "unable to create run directory")
	}
	if err := os.WriteFile(h.confPath(), []byte(h.config(cfg)), 0600); err != nil {
		return errors.Wrap(err, "unable to write hostapd configuration")
	}
	steps := [][]string{
		{"ip", "addr", "flush", "dev", h.Interface},
		{"ip", "addr", "add", cfg.Address, "dev", h.Interface},
		{"ip", "link", "set", h.Interface, "up"},
		{"hostapd", "-B", "-P", h.pidPath(), h.confPath()},
	}
	for _, s := range steps {
		if _, err := runCmd(cmdTimeout, s[0], s[1:]...); err != nil {
			return err
		}
	}
	return nil
}

func (h *Hostapd) Down() error {
	_, err := runCmd(cmdTimeout, "hostapd_cli", "-p", h.RunDir, "-i", h.Interface, "terminate")
	if _, lerr := runCmd(cmdTimeout, "ip", "link", "set", h.Interface, "down"); lerr != nil && err == nil {
		err = lerr
	}
	return err
}

// StationCount counts the associated stations reported by list_sta.
func (h *Hostapd) StationCount() (int, error) {
	out, err := runCmd(cmdTimeout, "hostapd_cli", "-p", h.RunDir, "-i", h.Interface, "list_sta")
	if err != nil {
		return 0, err
	}
	n := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.Count(strings.TrimSpace(line), ":") == 5 {
			n++
		}
	}
	return n, nil
}
