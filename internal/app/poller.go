// internal/app/poller.go
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"homework_status_bot/internal/domain/failure"
	"homework_status_bot/internal/domain/homework"
	"homework_status_bot/internal/domain/notification"
	"homework_status_bot/internal/infra/scheduler"
)

// failurePrefix starts every error notification sent to the chat.
const failurePrefix = "Сбой в работе программы: "

// Fetcher retrieves the raw status payload for the window starting at fromDate.
type Fetcher interface {
	Fetch(ctx context.Context, fromDate int64) (any, error)
}

// Schedule decides when the next cycle starts. cron.Schedule satisfies it.
type Schedule interface {
	Next(time.Time) time.Time
}

// State is the poller's position in the cycle.
type State string

const (
	StateIdle       State = "IDLE"
	StateFetching   State = "FETCHING"
	StateValidating State = "VALIDATING"
	StateParsing    State = "PARSING"
	StateNotifying  State = "NOTIFYING"
	StateSleeping   State = "SLEEPING"
)

// CycleOutcome summarises one iteration. Err is nil on success and
// otherwise holds a transport, shape or status failure.
type CycleOutcome struct {
	FetchedAt      time.Time
	Items          []homework.Homework
	Err            error
	Sent           int
	Suppressed     int
	DeliveryErrors []error
}

func (o CycleOutcome) Succeeded() bool { return o.Err == nil }

// Poller runs the fetch, validate, parse, detect, notify loop.
// It owns the cursor and the notification records; it is not safe for
// concurrent use.
type Poller struct {
	fetcher  Fetcher
	notifier Notifier
	schedule Schedule
	logger   logrus.FieldLogger
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error

	state   State
	cursor  int64
	records notification.Records
}

type PollerOption func(*Poller)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) PollerOption {
	return func(p *Poller) { p.now = now }
}

// WithSleep replaces the wait between cycles.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) PollerOption {
	return func(p *Poller) { p.sleep = sleep }
}

// WithCursor starts polling from an explicit epoch second instead of now.
func WithCursor(cursor int64) PollerOption {
	return func(p *Poller) { p.cursor = cursor }
}

func NewPoller(f Fetcher, n Notifier, schedule Schedule, logger logrus.FieldLogger, opts ...PollerOption) *Poller {
	p := &Poller{
		fetcher:  f,
		notifier: n,
		schedule: schedule,
		logger:   logger,
		now:      time.Now,
		sleep:    scheduler.Sleep,
		state:    StateIdle,
		cursor:   -1,
		records:  notification.Records{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.cursor < 0 {
		p.cursor = p.now().Unix()
	}
	return p
}

func (p *Poller) Cursor() int64 { return p.cursor }
func (p *Poller) State() State  { return p.state }

// Run polls until ctx is cancelled and then returns ctx.Err().
func (p *Poller) Run(ctx context.Context) error {
	p.logger.WithField("cursor", p.cursor).Info("Homework status poller started")
	for {
		p.RunCycle(ctx)
		if err := ctx.Err(); err != nil {
			p.setState(StateIdle)
			p.logger.Info("Homework status poller stopped")
			return err
		}

		p.setState(StateSleeping)
		now := p.now()
		wait := p.schedule.Next(now).Sub(now)
		p.logger.WithField("wait", wait.String()).Debug("Sleeping until next cycle")
		if err := p.sleep(ctx, wait); err != nil {
			p.setState(StateIdle)
			p.logger.Info("Homework status poller stopped")
			return err
		}
	}
}

// RunCycle performs a single iteration without sleeping.
func (p *Poller) RunCycle(ctx context.Context) CycleOutcome {
	out := CycleOutcome{FetchedAt: p.now()}
	log := p.logger.WithField("cursor", p.cursor)

	p.setState(StateFetching)
	payload, err := p.fetcher.Fetch(ctx, p.cursor)
	if err != nil {
		out.Err = err
		p.reportFailure(ctx, &out)
		return out
	}

	p.setState(StateValidating)
	raws, err := homework.Validate(payload)
	if err != nil {
		out.Err = err
		p.reportFailure(ctx, &out)
		return out
	}

	if len(raws) == 0 {
		log.Debug("No changes in homework statuses")
		p.commit(out.FetchedAt)
		return out
	}

	p.setState(StateParsing)
	var itemErrs []error
	for i, raw := range raws {
		hw, err := homework.Parse(raw)
		if err != nil {
			log.WithError(err).WithField("index", i).Error("Skipping malformed homework")
			itemErrs = append(itemErrs, err)
			continue
		}
		out.Items = append(out.Items, hw)
	}

	p.setState(StateNotifying)
	for _, hw := range out.Items {
		p.deliver(ctx, hw.ID, hw.Message(), &out)
	}

	if len(itemErrs) > 0 {
		// The cursor stays put so the malformed items are fetched again;
		// items already delivered are suppressed by their records.
		out.Err = errors.Join(itemErrs...)
		p.reportFailure(ctx, &out)
		return out
	}

	p.commit(out.FetchedAt)
	return out
}

// RenderFailure is the chat text for a failed cycle.
func RenderFailure(err error) string {
	return fmt.Sprintf("%s%v", failurePrefix, err)
}

func (p *Poller) commit(fetchedAt time.Time) {
	p.cursor = fetchedAt.Unix()
	p.setState(StateIdle)
}

func (p *Poller) reportFailure(ctx context.Context, out *CycleOutcome) {
	defer p.setState(StateIdle)

	log := p.logger.WithError(out.Err).WithFields(logrus.Fields{
		"cursor": p.cursor,
		"kind":   failure.KindOf(out.Err),
	})
	if ctx.Err() != nil {
		log.Debug("Poll cycle interrupted by shutdown")
		return
	}
	log.Error(RenderFailure(out.Err))
	p.deliver(ctx, notification.ErrorKey, RenderFailure(out.Err), out)
}

// deliver sends text when the detector says it is due. The record is only
// committed after a successful send, so the same text is attempted again
// whenever it comes up in a later cycle.
func (p *Poller) deliver(ctx context.Context, key, text string, out *CycleOutcome) {
	due, updated := notification.Detect(key, text, p.records)
	log := p.logger.WithField("key", key)
	if !due {
		out.Suppressed++
		log.Debug("Status unchanged, notification suppressed")
		return
	}

	if err := p.notifier.Notify(ctx, key, text); err != nil {
		out.DeliveryErrors = append(out.DeliveryErrors, err)
		log.WithError(err).WithField("kind", failure.KindOf(err)).Error("Failed to deliver notification")
		return
	}

	p.records = updated
	out.Sent++
	log.Infof("Message %q sent successfully", text)
}

func (p *Poller) setState(s State) {
	if p.state == s {
		return
	}
	p.logger.WithFields(logrus.Fields{"from": p.state, "to": s}).Trace("Poller state change")
	p.state = s
}
