package nvmonitor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	Ns "github.com/kalin91/nvmonitor/server"
)

const stopTimeout = 2 * time.Second

// IngestSupervisor runs every source against the Monitor
// and reports when the producer has gone away
type IngestSupervisor struct {
	Monitor *Ns.Monitor
	Sources []Ns.Source
	WG      sync.WaitGroup

	cancel context.CancelFunc
	done   chan struct{}
	once   *sync.Once
}

func NewIngestSupervisor(m *Ns.Monitor, sources []Ns.Source) *IngestSupervisor {
	return &IngestSupervisor{
		Monitor: m,
		Sources: sources,
		done:    make(chan struct{}),
		once:    &sync.Once{},
	}
}

// Done is closed when a source reaches the end of its input
func (p *IngestSupervisor) Done() <-chan struct{} { return p.done }

// Start the IngestSupervisor
func (p *IngestSupervisor) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)

	for _, src := range p.Sources {
		p.WG.Add(1)
		go func(src Ns.Source) {
			defer p.WG.Done()

			slog.Info("Starting source", slog.String("source", src.Name()))
			err := src.Run(ctx, p.Monitor)
			switch {
			case errors.Is(err, Ns.ErrEndOfInput):
				p.once.Do(func() { close(p.done) })
			case err != nil:
				slog.Error("Source stopped", slog.String("source", src.Name()), slog.Any("Error", err))
			}
		}(src)
	}
}

// Stop the IngestSupervisor.
// A source blocked reading a pipe cannot be interrupted, Stop gives up
// waiting after stopTimeout and reports false.
func (p *IngestSupervisor) Stop() bool {
	if p.cancel == nil {
		return true
	}
	p.cancel()

	stopped := make(chan struct{})
	go func() {
		p.WG.Wait()
		close(stopped)
	}()

	select {
	case <-stopped:
		return true
	case <-time.After(stopTimeout):
		slog.Warn("Sources still running after stop")
		return false
	}
}
