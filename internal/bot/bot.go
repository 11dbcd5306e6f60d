package bot

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/steelproxy/twitta/internal/composer"
	"github.com/steelproxy/twitta/internal/models"
	"github.com/steelproxy/twitta/internal/ratelimit"
	"github.com/steelproxy/twitta/internal/storage"
)

// Pacing and cooldowns
const (
	pageSize = 5

	replyPacingMin = 30 * time.Second // after each successful reply
	replyPacingMax = 63 * time.Second

	cycleWaitMin = 60 * time.Second // between dispatch cycles
	cycleWaitMax = 300 * time.Second

	quotaCooldown = 15 * time.Minute // remote-imposed rate limit
	errorPause    = 60 * time.Second // any other external failure
)

// Client is the X API surface the dispatch loop consumes. All three
// calls may fail with xapi.ErrQuotaExceeded when the remote side
// imposes its own limits.
type Client interface {
	ResolveIdentity(ctx context.Context, username string) (int64, error)
	FetchRecentPosts(ctx context.Context, userID int64, pageSize int) ([]models.Post, error)
	CreateReply(ctx context.Context, text string, inReplyToID string) error
}

// Bot owns one agent run: the dispatch loop, its quota tracker, the
// set of tweets already handled, and the running counters. At most one
// dispatch loop may be active per Bot; the hosting layer enforces this
// with its start/stop latch.
type Bot struct {
	client   Client
	limiter  *ratelimit.Limiter
	composer *composer.Composer
	hooks    Hooks
	counters *Counters
	archive  storage.ArchiveInterface

	runStartedAt time.Time
	replied      map[string]struct{}

	stop atomic.Bool

	now   func() time.Time
	sleep func(time.Duration)
	rng   *rand.Rand
}

// New creates a bot for one agent run. archive may be nil, in which
// case cycle reports are not persisted anywhere.
func New(client Client, limiter *ratelimit.Limiter, comp *composer.Composer, archive storage.ArchiveInterface) *Bot {
	return &Bot{
		client:   client,
		limiter:  limiter,
		composer: comp,
		counters: &Counters{},
		archive:  archive,
		replied:  make(map[string]struct{}),
		now:      time.Now,
		sleep:    time.Sleep,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetHooks registers observer callbacks. Must be called before Run.
func (b *Bot) SetHooks(hooks Hooks) {
	b.hooks = hooks
}

// Counters returns the bot's running totals for snapshot reads.
func (b *Bot) Counters() *Counters {
	return b.counters
}

// RequestStop flips the stop latch. It is honored at the top of the
// next cycle; an in-progress cycle runs to completion.
func (b *Bot) RequestStop() {
	b.stop.Store(true)
}

// Run loops the dispatch cycle forever with a randomized inter-cycle
// delay until the stop latch flips. accounts is re-read at the start of
// every cycle so configuration edits take effect on the next pass.
func (b *Bot) Run(ctx context.Context, accounts func() []models.Account, interactive bool) {
	if b.runStartedAt.IsZero() {
		b.runStartedAt = b.now()
	}
	b.infof("Running in auto-reply mode: %v", !interactive)

	for !b.stop.Load() {
		report := b.RunCycle(ctx, accounts(), interactive)
		b.archiveReport(report)

		wait := b.randomDuration(cycleWaitMin, cycleWaitMax)
		b.infof("Waiting for %v before the next tweet check.", wait)
		b.sleep(wait)
	}

	b.infof("Bot stopped.")
}

func (b *Bot) archiveReport(report *models.Report) {
	if b.archive == nil || len(report.Results) == 0 {
		return
	}

	data, err := report.Marshal()
	if err != nil {
		b.errorf("Failed to marshal cycle report: %v", err)
		return
	}

	filename := fmt.Sprintf("report-%s.json", report.StartedAt.Format("2006-01-02-15-04-05"))
	if err := b.archive.Store(filename, data); err != nil {
		b.errorf("Failed to archive cycle report: %v", err)
	}
}

func (b *Bot) randomDuration(min, max time.Duration) time.Duration {
	return min + time.Duration(b.rng.Int63n(int64(max-min)+1))
}

// infof logs, updates the status message, and mirrors to the observer.
func (b *Bot) infof(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logrus.Info(msg)
	b.counters.setStatus(msg)
	b.hooks.status(msg)
}

func (b *Bot) warnf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logrus.Warn(msg)
	b.counters.setStatus(msg)
	b.hooks.status(msg)
}

// errorf logs, bumps the error counter, and mirrors to the observer.
func (b *Bot) errorf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logrus.Error(msg)
	b.counters.recordError(msg)
	b.hooks.err(msg)
}
