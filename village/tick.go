package village

import (
	"math"
	"sync/atomic"
	"time"
)

const (
	tpsSampleSize       = 20
	tpsWarningThreshold = 0.95
)

// ticker drives the Village tick loop at a fixed rate.
type ticker struct {
	interval time.Duration
}

// tpsGauge stores the most recent ticks-per-second sample of a tick loop.
type tpsGauge struct {
	bits atomic.Uint64
}

func (g *tpsGauge) store(tps float64) { g.bits.Store(math.Float64bits(tps)) }

// Load returns the last sampled ticks-per-second value, or zero before the
// first sample.
func (g *tpsGauge) Load() float64 { return math.Float64frombits(g.bits.Load()) }

// TPS returns the most recently sampled ticks-per-second value of the
// running tick loop.
func (v *Village) TPS() float64 {
	return v.tps.Load()
}

// tickLoop ticks the Village at the configured rate, sampling the achieved
// tick rate and warning once when it falls behind.
func (t ticker) tickLoop(v *Village) {
	tc := time.NewTicker(t.interval)
	defer tc.Stop()

	target := 1 / t.interval.Seconds()
	lastTick := time.Now()
	var (
		durationSum time.Duration
		ticksCount  int
		warned      bool
	)
	for {
		select {
		case <-tc.C:
			tickStart := time.Now()
			duration := tickStart.Sub(lastTick)
			lastTick = tickStart
			if duration > 0 {
				durationSum += duration
				ticksCount++
				if ticksCount >= tpsSampleSize {
					avg := durationSum / time.Duration(ticksCount)
					if avg > 0 {
						rate := 1 / avg.Seconds()
						v.tps.store(rate)
						if rate < target*tpsWarningThreshold {
							if !warned {
								v.log.Warn("Tick rate dropped below target.", "tps", rate, "target", target)
								warned = true
							}
						} else if warned {
							warned = false
						}
					}
					durationSum = 0
					ticksCount = 0
				}
			}
			v.Tick(duration.Seconds())
		case <-v.closing:
			v.running.Done()
			return
		}
	}
}
