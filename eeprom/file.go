package eeprom

import (
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// File keeps the cells in a fixed-size image file. Reads are served from a
// cached copy, writes go straight to disk and are fsynced.
type File struct {
	f     *os.File
	cache []byte
}

func OpenFile(path string, size int) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open eeprom image %s", path)
	}
	cache := make([]byte, size)
	n, err := io.ReadFull(f, cache)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		f.Close()
		return nil, errors.Wrapf(err, "unable to read eeprom image %s", path)
	}
	if n < size {
		log.WithField("path", path).
			WithField("have", n).
			Info("extending eeprom image with erased cells")
		for i := n; i < size; i++ {
			cache[i] = Erased
		}
		if _, err := f.WriteAt(cache[n:], int64(n)); err != nil {
			f.Close()
			return nil, errors.Wrap(err, "unable to extend eeprom image")
		}
		if err := f.Sync(); err != nil {
			f.Close()
			return nil, errors.Wrap(err, "unable to sync eeprom image")
		}
	}
	return &File{f: f, cache: cache}, nil
}

func (e *File) Get(addr int) (byte, error) {
	if err := checkAddr(e, addr); err != nil {
		return 0, err
	}
	return e.cache[addr], nil
}

func (e *File) Put(addr int, v byte) error {
	if err := checkAddr(e, addr); err != nil {
		return err
	}
	if _, err := e.f.WriteAt([]byte{v}, int64(addr)); err != nil {
		return errors.Wrapf(err, "unable to write cell %d", addr)
	}
	if err := e.f.Sync(); err != nil {
		return errors.Wrapf(err, "unable to commit cell %d", addr)
	}
	e.cache[addr] = v
	return nil
}

func (e *File) Size() int {
	return len(e.cache)
}

func (e *File) Close() error {
	return e.f.Close()
}
