// Package firmware replaces the running program image with an uploaded one.
package firmware

import (
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var ErrEmptyImage = errors.New("empty firmware image")

// exec is swapped out in tests.
var exec = syscall.Exec

// Installer stages an image next to Target and renames it into place, so a
// failed transfer leaves the previous image untouched.
type Installer struct {
	Target string
}

func (i *Installer) staging() string {
	return i.Target + ".new"
}

func (i *Installer) Install(r io.Reader) error {
	f, err := os.OpenFile(i.staging(), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0755)
	if err != nil {
		return errors.Wrap(err, "unable to create staging image")
	}
	n, err := io.Copy(f, r)
	if err == nil && n == 0 {
		err = ErrEmptyImage
	}
	if err == nil {
		err = errors.Wrap(f.Sync(), "unable to sync staging image")
	}
	if cerr := f.Close(); err == nil && cerr != nil {
		err = errors.Wrap(cerr, "unable to close staging image")
	}
	if err == nil {
		err = errors.Wrap(os.Chmod(i.staging(), 0755), "unable to mark image executable")
	}
	if err == nil {
		err = errors.Wrap(os.Rename(i.staging(), i.Target), "unable to replace image")
	}
	if err != nil {
		os.Remove(i.staging())
		return err
	}
	syncDir(filepath.Dir(i.Target))
	log.WithFields(log.Fields{"target": i.Target, "bytes": n}).Info("image installed")
	return nil
}

func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	defer d.Close()
	if err := d.Sync(); err != nil {
		log.WithField("err", err).Warn("unable to sync image directory")
	}
}

// Restart replaces the current process with Target, keeping the arguments
// and environment.
func (i *Installer) Restart() error {
	log.WithField("target", i.Target).Info("restarting")
	return errors.Wrap(exec(i.Target, os.Args, os.Environ()), "unable to restart")
}
