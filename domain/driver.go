package domain

import (
	"context"
	"time"

	"github.com/coder/quartz"
)

// Driver plays out the dealer turn one draw at a time, pausing between draws
// so a presentation layer can animate each card. The pacing is cosmetic: a
// zero delay collapses to a tight loop with identical game results.
type Driver struct {
	table *Table
	clock quartz.Clock
	delay time.Duration
}

// NewDriver creates a driver for the table's dealer play.
func NewDriver(table *Table, clock quartz.Clock, delay time.Duration) *Driver {
	return &Driver{
		table: table,
		clock: clock,
		delay: delay,
	}
}

// Run advances the dealer until done, then settles the round. It returns
// early if the context is cancelled between draws.
//
// The table lock is taken per draw and released during the animation waits,
// so commands arriving mid-turn see a consistent table and get the usual
// wrong-phase refusals instead of racing the dealer.
func (d *Driver) Run(ctx context.Context) error {
	d.table.Lock()
	err := d.table.requireRound()
	d.table.Unlock()
	if err != nil {
		return err
	}

	for {
		d.table.Lock()
		round := d.table.Round
		if round == nil || !round.IsInPhase(RoundPhase_DealerTurn) {
			var err error
			if round != nil && round.IsInPhase(RoundPhase_SettlingHands) {
				err = d.table.SettleRound()
			}
			d.table.Unlock()
			return err
		}

		if err := round.DealerStep(); err != nil {
			d.table.Unlock()
			return err
		}
		more := round.IsInPhase(RoundPhase_DealerTurn)
		d.table.Unlock()

		if d.delay > 0 && more {
			if err := d.wait(ctx); err != nil {
				return err
			}
		}
	}
}

func (d *Driver) wait(ctx context.Context) error {
	fired := make(chan struct{})
	timer := d.clock.AfterFunc(d.delay, func() {
		close(fired)
	})
	defer timer.Stop()

	select {
	case <-fired:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
