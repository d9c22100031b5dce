package mazduino

import (
	"context"

	"github.com/amrikarisma/mazduino-display-speeduino/telemetry"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const channelBufferSize = 1

// ingest collects samples from every source. Sources run on their own
// goroutines; the loop only ever drains their channels without blocking.
type ingest struct {
	sources []Source
	chans   []chan Sample
}

func newIngest(sources ...Source) *ingest {
	in := &ingest{sources: sources}
	for range sources {
		in.chans = append(in.chans, make(chan Sample, channelBufferSize))
	}
	return in
}

func (in *ingest) start(ctx context.Context) {
	for i, src := range in.sources {
		go func(src Source, out chan<- Sample) {
			if err := src.Run(ctx, out); err != nil && err != context.Canceled {
				log.WithField("err", err).Errorf("%s done", src.Name())
			}
		}(src, in.chans[i])
	}
}

// request asks every source for fresh data.
func (in *ingest) request() error {
	var first error
	for _, src := range in.sources {
		if err := src.Request(); err != nil && first == nil {
			first = errors.Wrapf(err, "%s: request failed", src.Name())
		}
	}
	return first
}

// drain applies the pending sample of each source to cur and reports
// whether anything changed. Slow fields are applied only when slow is set.
func (in *ingest) drain(cur *telemetry.Snapshot, slow bool) (changed bool) {
	before := *cur
	for _, ch := range in.chans {
		select {
		case s := <-ch:
			s.applyTo(cur, slow)
		default:
		}
	}
	return *cur != before
}
