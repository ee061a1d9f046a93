package logging

import (
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aleph-committee/aleph-poset/pkg/gomel"
)

type memService struct {
	ticker   <-chan time.Time
	exitChan chan struct{}
	log      zerolog.Logger
	wg       sync.WaitGroup
}

// NewMemoryLogger returns a Service that logs current memory consumption every n seconds. A
// zero interval disables the periodic log; the service is still started and stopped, doing
// nothing in between.
func NewMemoryLogger(n int, log zerolog.Logger) gomel.Service {
	var ticker <-chan time.Time
	if n == 0 {
		ticker = make(<-chan time.Time)
	} else {
		ticker = time.Tick(time.Duration(n) * time.Second)
	}
	return &memService{
		ticker:   ticker,
		exitChan: make(chan struct{}),
		log:      log,
	}
}

func (s *memService) Start() error {
	s.wg.Add(1)
	var stats runtime.MemStats
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-s.exitChan:
				return
			case <-s.ticker:
				runtime.ReadMemStats(&stats)
				s.log.Info().Uint64(Memory, stats.Sys).Uint64(Size, stats.HeapAlloc).Msg(MemoryUsage)
			}
		}
	}()
	s.log.Info().Msg(ServiceStarted)
	return nil
}

func (s *memService) Stop() {
	close(s.exitChan)
	s.wg.Wait()
	s.log.Info().Msg(ServiceStopped)
}
