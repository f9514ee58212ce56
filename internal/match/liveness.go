package match

import (
	"time"

	"github.com/rs/zerolog/log"
)

// Liveness periodically probes every online human player and treats a
// failed probe exactly like an explicit disconnect.
type Liveness struct {
	coord    *Coordinator
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func NewLiveness(coord *Coordinator, interval time.Duration) *Liveness {
	if interval <= 0 {
		interval = 20 * time.Second
	}
	return &Liveness{
		coord:    coord,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (l *Liveness) Start() {
	go l.run()
}

// Stop cancels the sweep and waits for an in-flight cycle to complete.
func (l *Liveness) Stop() {
	close(l.stop)
	<-l.done
}

func (l *Liveness) run() {
	defer close(l.done)
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

// sweep works off a snapshot of the registry; a player who went offline
// mid-sweep is simply skipped.
func (l *Liveness) sweep() {
	for _, p := range l.coord.OnlineHumans() {
		if !l.coord.IsOnline(p.Name()) {
			continue
		}
		log.Debug().Str("player", p.Name()).Msg("ping player")
		if err := p.Ping(); err != nil {
			log.Info().Str("player", p.Name()).Err(err).Msg("ping failed")
			l.coord.PlayerDisconnected(p)
		}
	}
}
