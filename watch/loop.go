// Copyright (c) 2026 BVK Chaitanya

// Package watch polls the open jobs list to report the progress of selected
// jobs for a fixed duration.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/bvk/hashes/catalog"
	"github.com/bvk/hashes/ctxutil"
	"github.com/bvk/hashes/hashes"
)

// Source is the remote provider of the jobs list.
type Source interface {
	GetJobs(ctx context.Context) ([]*hashes.Job, error)
}

type Options struct {
	// Interval between successive polls.
	Interval time.Duration

	// StopWhenEmpty completes the watch as soon as all tracked jobs have
	// disappeared from the jobs list.
	StopWhenEmpty bool

	// Now and Sleep replace the wall clock when non-nil.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

func (v *Options) setDefaults() {
	if v.Interval == 0 {
		v.Interval = 10 * time.Second
	}
	if v.Now == nil {
		v.Now = time.Now
	}
	if v.Sleep == nil {
		v.Sleep = ctxutil.Sleep
	}
}

// Target is the set of jobs to watch.
type Target struct {
	IDs      []int64
	Start    time.Time
	Duration time.Duration
}

func (t *Target) Check() error {
	if len(t.IDs) == 0 {
		return fmt.Errorf("at least one job id is required: %w", os.ErrInvalid)
	}
	if t.Duration <= 0 {
		return fmt.Errorf("watch duration must be positive: %w", os.ErrInvalid)
	}
	return nil
}

// Tick is the outcome of one poll.
type Tick struct {
	Elapsed time.Duration

	// Matches are the tracked jobs found in the jobs list.
	Matches []*hashes.Job

	// Dropped are the tracked job ids that disappeared in this poll. They are
	// not tracked anymore.
	Dropped []int64

	// Remaining are the job ids still tracked after this poll.
	Remaining []int64

	// Err is non-nil if the jobs list could not be fetched.
	Err error
}

type State int

const (
	Polling State = iota
	Completed
)

type Reason string

const (
	ReasonElapsed     Reason = "elapsed"
	ReasonEmpty       Reason = "empty"
	ReasonInterrupted Reason = "interrupted"
)

type Result struct {
	// Watched holds the job ids requested for the watch.
	Watched []int64

	// Dropped holds all job ids that disappeared during the watch.
	Dropped []int64

	Reason Reason
}

type Loop struct {
	opts Options

	source Source
}

func New(source Source, opts *Options) *Loop {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	return &Loop{opts: *opts, source: source}
}

// Run polls the jobs list till the target duration elapses or the context is
// canceled. Report is invoked with the result of every poll.
func (l *Loop) Run(ctx context.Context, target *Target, report func(*Tick)) (*Result, error) {
	if err := target.Check(); err != nil {
		return nil, err
	}
	start := target.Start
	if start.IsZero() {
		start = l.opts.Now()
	}

	result := &Result{Watched: slices.Clone(target.IDs)}
	tracked := slices.Clone(target.IDs)

	state := Polling
	for state == Polling {
		elapsed := l.opts.Now().Sub(start)
		if elapsed >= target.Duration {
			result.Reason = ReasonElapsed
			state = Completed
			continue
		}

		tick := l.poll(ctx, elapsed, tracked)
		if tick.Err != nil && errors.Is(tick.Err, context.Canceled) {
			result.Reason = ReasonInterrupted
			break
		}
		tracked = tick.Remaining
		result.Dropped = append(result.Dropped, tick.Dropped...)
		if report != nil {
			report(tick)
		}

		if len(tracked) == 0 && l.opts.StopWhenEmpty {
			result.Reason = ReasonEmpty
			state = Completed
			continue
		}

		if err := l.opts.Sleep(ctx, l.opts.Interval); err != nil {
			result.Reason = ReasonInterrupted
			break
		}
	}
	return result, nil
}

func (l *Loop) poll(ctx context.Context, elapsed time.Duration, tracked []int64) *Tick {
	tick := &Tick{Elapsed: elapsed, Remaining: tracked}
	if len(tracked) == 0 {
		return tick
	}
	jobs, err := l.source.GetJobs(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Warn("could not fetch jobs list for watch (ignored)", "err", err)
		}
		tick.Err = err
		return tick
	}
	matched, missing := catalog.FilterJobIDs(jobs, tracked)
	tick.Matches = matched
	tick.Dropped = missing
	tick.Remaining = slices.DeleteFunc(slices.Clone(tracked), func(id int64) bool {
		return slices.Contains(missing, id)
	})
	return tick
}
