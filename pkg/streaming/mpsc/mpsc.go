package mpsc

import (
	"fmt"
	"sync"

	"github.com/eapache/queue"
	"github.com/sirupsen/logrus"
	"github.com/vnykmshr/flowchan/internal/logging"
	gferrors "github.com/vnykmshr/flowchan/pkg/common/errors"
)

// ErrSenderClosed is the panic value raised by Send and Clone on a Sender
// whose Close has already been called. It wraps errors.ErrClosed.
var ErrSenderClosed = fmt.Errorf("mpsc: use of closed sender: %w", gferrors.ErrClosed)

// shared is the state jointly referenced by every Sender and the Receiver.
// queue and senders, and the counters next to them, are only touched with mu
// held. cond is bound to mu.
type shared struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   *queue.Queue
	senders int

	receiverClosed bool

	// Statistics guarded by mu.
	sent             int64
	lockAcquisitions int64
	swaps            int64
	waits            int64

	name string
	log  logrus.FieldLogger
	inst *instruments
}

// noCopy lets `go vet` flag handles copied by value.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// New creates a channel and returns its first Sender and its only Receiver.
func New[T any]() (*Sender[T], *Receiver[T]) {
	tx, rx, err := NewWithConfig[T](DefaultConfig())
	if err != nil {
		// DefaultConfig always validates.
		panic(err)
	}
	return tx, rx
}

// NewWithConfig creates a channel with the given configuration.
func NewWithConfig[T any](config Config) (*Sender[T], *Receiver[T], error) {
	config = config.withDefaults()
	if err := config.Validate(); err != nil {
		return nil, nil, err
	}

	sh := &shared{
		queue:   queue.New(),
		senders: 1,
		name:    config.Name,
		log:     logging.OrDiscard(config.Logger).WithField("channel", config.Name),
		inst:    newInstruments(config.Name, config.Metrics),
	}
	sh.cond = sync.NewCond(&sh.mu)

	sh.inst.setSenders(1)
	sh.log.Debug("channel created")

	return &Sender[T]{shared: sh}, newReceiver[T](sh), nil
}
