package process

import (
	"sync"
	"time"

	"github.com/aleph-committee/aleph-poset/pkg/gomel"
)

// createPacer sits between whatever feeds pkg/creator.Creator.Work units it has heard about
// (the arbiter's notify fan-out) and the Work loop's own unitBelt. Creator.Work checks for a
// new buildable level on every unitBelt arrival, with no delay of its own; pacing how often it
// gets to look is what keeps a process from attempting, and failing, to build a prime unit on
// every single incoming unit once the committee is large.
//
// The pace is self-adjusting: whenever the locally created unit turns out to be prime, the
// delay between flushes is shortened; whenever it isn't, the delay is lengthened. The factor by
// which it moves is itself adjusted, more aggressively downward than upward, so that it
// converges rather than oscillates. This mirrors the adjusting creator the committee used to
// run as its own standalone ticker loop, just retargeted at pacing unitBelt deliveries instead
// of pacing creation attempts directly.
type createPacer struct {
	in  chan gomel.Unit
	out chan gomel.Unit

	mx           sync.Mutex
	currentDelay time.Duration
	adjustFactor float64
	lastQuicker  bool
	ticker       *time.Ticker

	quit chan struct{}
}

const pacerBufferSize = 1024

func newCreatePacer(initialDelay time.Duration) *createPacer {
	if initialDelay <= 0 {
		initialDelay = time.Millisecond
	}
	return &createPacer{
		in:           make(chan gomel.Unit, pacerBufferSize),
		out:          make(chan gomel.Unit, pacerBufferSize),
		currentDelay: initialDelay,
		adjustFactor: 0.14,
		ticker:       time.NewTicker(initialDelay),
		quit:         make(chan struct{}),
	}
}

// unitBelt is the channel to hand pkg/creator.Creator.Work.
func (p *createPacer) unitBelt() <-chan gomel.Unit {
	return p.out
}

// feed queues u to be delivered to unitBelt at the next tick. A full buffer drops the oldest
// unit rather than blocking the caller, which would otherwise stall the arbiter goroutine that
// is this pacer's only producer.
func (p *createPacer) feed(u gomel.Unit) {
	select {
	case p.in <- u:
	default:
		select {
		case <-p.in:
		default:
		}
		select {
		case p.in <- u:
		default:
		}
	}
}

// wrapSend returns a send callback equivalent to the one given, except that it also observes
// whether the unit Creator just built was prime and adjusts the pace accordingly. Pass the
// result as creator.New's send parameter.
func (p *createPacer) wrapSend(send func(gomel.Unit)) func(gomel.Unit) {
	return func(u gomel.Unit) {
		send(u)
		if gomel.Prime(u) {
			p.quicker()
		} else {
			p.slower()
		}
	}
}

func (p *createPacer) slower() {
	p.mx.Lock()
	defer p.mx.Unlock()
	if !p.lastQuicker {
		p.adjustFactor *= 1.01
	}
	p.lastQuicker = false
	p.currentDelay = time.Duration(float64(p.currentDelay) * (1 + p.adjustFactor))
	p.updateTicker()
}

func (p *createPacer) quicker() {
	p.mx.Lock()
	defer p.mx.Unlock()
	if p.lastQuicker {
		p.adjustFactor *= 0.9
	}
	p.lastQuicker = true
	p.currentDelay = time.Duration(float64(p.currentDelay) / (1 + p.adjustFactor))
	p.updateTicker()
}

// updateTicker must be called with mx held.
func (p *createPacer) updateTicker() {
	if p.currentDelay <= 0 {
		p.currentDelay = time.Millisecond
	}
	p.ticker.Stop()
	p.ticker = time.NewTicker(p.currentDelay)
}

// tickerChan returns the current ticker's channel, re-read under lock since slower/quicker
// replace the ticker from a different goroutine than the one running start's loop.
func (p *createPacer) tickerChan() <-chan time.Time {
	p.mx.Lock()
	defer p.mx.Unlock()
	return p.ticker.C
}

// start runs the flush loop until stop is called.
func (p *createPacer) start() {
	go func() {
		for {
			select {
			case <-p.quit:
				p.mx.Lock()
				p.ticker.Stop()
				p.mx.Unlock()
				close(p.out)
				return
			case <-p.tickerChan():
				p.flush()
			}
		}
	}()
}

func (p *createPacer) flush() {
	for {
		select {
		case u := <-p.in:
			p.out <- u
		default:
			return
		}
	}
}

func (p *createPacer) stop() {
	close(p.quit)
}
