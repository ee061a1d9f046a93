// Package linear extends the partial order of a dag into a linear order, by repeatedly
// electing a timing unit for each consecutive round and sorting the units it dominates.
package linear

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/aleph-committee/aleph-poset/pkg/gomel"
	"github.com/aleph-committee/aleph-poset/pkg/logging"
)

// Extender watches a dag and, every time it is notified of new units, tries to elect the next
// timing unit. Whenever it succeeds, it sorts that round's units and sends them to output.
type Extender struct {
	ordering     *ordering
	pid          uint16
	output       chan<- []gomel.Unit
	trigger      chan struct{}
	timingRounds chan gomel.TimingRound
	wg           sync.WaitGroup
	log          zerolog.Logger
}

// NewExtender constructs an extender working on the given dag and sending rounds of ordered
// units to the given output channel.
func NewExtender(dag gomel.Dag, rs gomel.RandomSource, pid uint16, output chan<- []gomel.Unit, log zerolog.Logger) *Extender {
	logger := log.With().Int(logging.Service, logging.ExtenderService).Logger()
	ext := &Extender{
		ordering:     newOrdering(dag, rs),
		pid:          pid,
		output:       output,
		trigger:      make(chan struct{}, 1),
		timingRounds: make(chan gomel.TimingRound, 10),
		log:          logger,
	}

	ext.wg.Add(2)
	go ext.timingUnitDecider()
	go ext.roundSorter()

	return ext
}

// Close stops the extender and waits for its goroutines to exit.
func (ext *Extender) Close() {
	close(ext.trigger)
	ext.wg.Wait()
}

// Notify tells the extender to attempt choosing the next timing unit, typically called after
// inserting a new unit into the underlying dag.
func (ext *Extender) Notify() {
	select {
	case ext.trigger <- struct{}{}:
	default:
	}
}

// timingUnitDecider tries to pick the next timing unit whenever notified, draining as many
// consecutive rounds as have become decidable before waiting for the next notification.
func (ext *Extender) timingUnitDecider() {
	defer ext.wg.Done()
	for range ext.trigger {
		round := ext.ordering.NextRound()
		for round != nil {
			ext.timingRounds <- round
			round = ext.ordering.NextRound()
		}
	}
	close(ext.timingRounds)
}

// roundSorter takes each newly elected timing round, computes its linear order, and forwards
// the result to output.
func (ext *Extender) roundSorter() {
	defer ext.wg.Done()
	for round := range ext.timingRounds {
		units := round.OrderedUnits()
		ext.output <- units
		for _, u := range units {
			ext.log.Info().
				Uint16(logging.Creator, u.Creator()).
				Int(logging.Height, u.Height()).
				Msg(logging.UnitOrdered)
			if u.Creator() == ext.pid {
				ext.log.Info().Int(logging.Height, u.Height()).Msg(logging.OwnUnitOrdered)
			}
		}
		ext.log.Info().Int(logging.Size, len(units)).Msg(logging.LinearOrderExtended)
	}
}
