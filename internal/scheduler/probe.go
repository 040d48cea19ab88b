// Package scheduler runs periodic provider health probes.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/trip-planner/internal/apperr"
)

// Check is one provider probe. Run should perform a cheap real lookup.
type Check struct {
	Provider string
	Run      func(ctx context.Context) error
}

// ProbeStatus is the last known state of one provider.
type ProbeStatus struct {
	Provider    string    `json:"provider"`
	Healthy     bool      `json:"healthy"`
	LastCheck   time.Time `json:"last_check"`
	LastSuccess time.Time `json:"last_success,omitzero"`
	Error       string    `json:"error,omitempty"`
}

// SuccessRecorder is told about every successful probe.
type SuccessRecorder interface {
	SetProbeSuccess(provider string, t time.Time)
}

// ProviderProbe runs its checks on a cron schedule and keeps the latest
// result per provider. Overlapping runs are skipped.
type ProviderProbe struct {
	cron     *cron.Cron
	checks   []Check
	timeout  time.Duration
	recorder SuccessRecorder
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.RWMutex
	status  map[string]ProbeStatus
	running bool
}

// NewProviderProbe validates schedule (standard cron or "@every 15m") and
// registers the checks. Each run gives every check at most timeout.
func NewProviderProbe(schedule string, timeout time.Duration, checks []Check, recorder SuccessRecorder, logger *zap.Logger) (*ProviderProbe, error) {
	p := &ProviderProbe{
		checks:   checks,
		timeout:  timeout,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
		status:   make(map[string]ProbeStatus, len(checks)),
	}

	cl := cronLogger{logger.Sugar()}
	p.cron = cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := p.cron.AddFunc(schedule, func() { p.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("scheduler.NewProviderProbe: invalid schedule %q: %w", schedule, err)
	}
	return p, nil
}

// Start runs the checks once in the background and then on schedule.
func (p *ProviderProbe) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	go p.RunOnce(context.Background())
	p.cron.Start()

	p.logger.Info("Provider probe started",
		zap.Int("checks", len(p.checks)),
		zap.Time("next_run", p.nextRun()))
}

// Stop stops the schedule and waits for a running probe until ctx is done.
func (p *ProviderProbe) Stop(ctx context.Context) {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	p.logger.Info("Stopping provider probe")
	select {
	case <-p.cron.Stop().Done():
	case <-ctx.Done():
		p.logger.Warn("Provider probe did not stop in time")
	}
}

// RunOnce executes every check concurrently and records the results.
func (p *ProviderProbe) RunOnce(ctx context.Context) {
	start := p.now()
	var wg sync.WaitGroup
	for _, check := range p.checks {
		wg.Add(1)
		go func(c Check) {
			defer wg.Done()
			p.runCheck(ctx, c)
		}(check)
	}
	wg.Wait()

	p.logger.Debug("Provider probe completed", zap.Duration("duration", p.now().Sub(start)))
}

func (p *ProviderProbe) runCheck(ctx context.Context, c Check) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	err := c.Run(ctx)
	checkedAt := p.now().UTC()

	p.mu.Lock()
	st := p.status[c.Provider]
	st.Provider = c.Provider
	st.LastCheck = checkedAt
	st.Healthy = err == nil
	st.Error = ""
	if err == nil {
		st.LastSuccess = checkedAt
	} else {
		st.Error = apperr.PublicMessage(err)
	}
	p.status[c.Provider] = st
	p.mu.Unlock()

	if err != nil {
		p.logger.Warn("Provider probe failed",
			zap.String("provider", c.Provider),
			zap.String("kind", string(apperr.KindOf(err))),
			zap.Error(err))
		return
	}
	if p.recorder != nil {
		p.recorder.SetProbeSuccess(c.Provider, checkedAt)
	}
}

// Status returns the latest result per provider, sorted by provider name.
// Providers that were never probed are absent.
func (p *ProviderProbe) Status() []ProbeStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]ProbeStatus, 0, len(p.status))
	for _, st := range p.status {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Provider < out[j].Provider })
	return out
}

func (p *ProviderProbe) nextRun() time.Time {
	entries := p.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
