package mazduino

import (
	"context"

	"github.com/amrikarisma/mazduino-display-speeduino/lemoncan"
	"github.com/amrikarisma/mazduino-display-speeduino/telemetry"
	"github.com/jd3nn1s/kw1281"
)

type KW1281 interface {
	Close() error
	Start(context.Context, kw1281.Callbacks) error
}

type CANBus interface {
	Close() error
	Start(context.Context, lemoncan.Callbacks) error
	RequestData() error
}

// Source delivers telemetry from outside the loop. Run publishes samples
// with non-blocking sends until ctx is done; Request is called from the
// loop and must not block.
type Source interface {
	Name() string
	Run(ctx context.Context, out chan<- Sample) error
	Request() error
}

// Forwarder receives every rendered snapshot.
type Forwarder interface {
	Forward(*telemetry.Snapshot)
}
