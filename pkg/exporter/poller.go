package exporter

import (
	"context"
	"fmt"

	scheduler "github.com/robfig/cron"
	"github.com/sirupsen/logrus"
)

// Poller runs a Runner on a fixed schedule so the registry stays populated
// between scrapes.
type Poller struct {
	logger   logrus.FieldLogger
	runner   Runner
	schedule string

	// holds a token while a poll is in flight
	running chan struct{}
}

// NewPoller validates schedule, which accepts descriptors such as
// "@every 5m" as well as six field cron expressions.
func NewPoller(logger logrus.FieldLogger, runner Runner, schedule string) (*Poller, error) {
	if _, err := scheduler.Parse(schedule); err != nil {
		return nil, fmt.Errorf("invalid poll schedule %q: %w", schedule, err)
	}
	return &Poller{
		logger:   logger.WithField("component", "poller"),
		runner:   runner,
		schedule: schedule,
		running:  make(chan struct{}, 1),
	}, nil
}

// Run blocks until ctx is cancelled. A tick that fires while the previous
// one is still running is skipped.
func (p *Poller) Run(ctx context.Context) error {
	c := scheduler.New()
	err := c.AddFunc(p.schedule, func() { p.poll(ctx) })
	if err != nil {
		return fmt.Errorf("invalid poll schedule %q: %w", p.schedule, err)
	}

	p.logger.Infof("polling on schedule %q", p.schedule)
	c.Start()
	<-ctx.Done()
	c.Stop()
	p.logger.Info("poller stopped")
	return nil
}

// poll runs one cycle unless the previous one has not finished yet. It
// reports whether a cycle was started.
func (p *Poller) poll(ctx context.Context) bool {
	select {
	case p.running <- struct{}{}:
	default:
		p.logger.Warn("previous poll still running, skipping")
		return false
	}
	defer func() { <-p.running }()

	if _, err := p.runner.Run(ctx); err != nil {
		p.logger.WithError(err).Error("scheduled poll failed")
	}
	return true
}
