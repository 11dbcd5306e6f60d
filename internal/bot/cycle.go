package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/steelproxy/twitta/internal/models"
	"github.com/steelproxy/twitta/internal/ratelimit"
	"github.com/steelproxy/twitta/internal/xapi"
)

// RunCycle processes every watched account once, in configured order.
// Failures are isolated per account and per tweet; nothing escapes the
// cycle. The returned report covers everything handled this pass.
func (b *Bot) RunCycle(ctx context.Context, accounts []models.Account, interactive bool) *models.Report {
	if b.runStartedAt.IsZero() {
		b.runStartedAt = b.now()
	}

	report := &models.Report{StartedAt: b.now()}

	for _, account := range accounts {
		b.infof("Fetching tweets for @%s...", account.Username)

		if err := b.processAccount(ctx, account, interactive, report); err != nil {
			b.errorf("Error while fetching tweets for @%s: %v Waiting 60 seconds...", account.Username, err)
			b.sleep(errorPause)
		}
	}

	report.FinishedAt = b.now()
	return report
}

// processAccount fetches the account's recent tweets and dispatches
// each one. A returned error means the account is skipped this cycle
// after the standard pause; identity-resolution misses are logged and
// skipped without pausing.
func (b *Bot) processAccount(ctx context.Context, account models.Account, interactive bool, report *models.Report) error {
	b.limiter.Acquire(ratelimit.AppScope)
	userID, err := b.client.ResolveIdentity(ctx, account.Username)
	if errors.Is(err, xapi.ErrNotFound) {
		b.errorf("Fetched user contains no data! Account: %s. Moving to next account...", account.Username)
		return nil
	}
	if err != nil {
		return err
	}

	b.limiter.Acquire(userID)
	posts, err := b.client.FetchRecentPosts(ctx, userID, pageSize)
	if err != nil {
		return err
	}
	// The fetch counts as its own quota event on top of the lookup.
	b.limiter.Acquire(userID)

	b.infof("Tweets fetched...")
	for _, post := range posts {
		b.processPost(ctx, account, post, userID, interactive, report)
	}

	return nil
}

// processPost runs one tweet through compose, approval, and posting.
// Every terminal outcome except a remote quota rejection marks the
// tweet handled so it is never reconsidered in this run.
func (b *Bot) processPost(ctx context.Context, account models.Account, post models.Post, userID int64, interactive bool, report *models.Report) {
	if !post.CreatedAt.After(b.runStartedAt) {
		return
	}
	if _, seen := b.replied[post.ID]; seen {
		return
	}

	b.infof("Tweet replying to: %s", post.Text)

	replyText := b.composer.Compose(ctx, account, post.Text, interactive)
	if replyText == "" {
		b.errorf("No predefined replies available and chatgpt either not working or not selected, unable to post tweet!")
		b.markHandled(post.ID)
		report.Add(account.Username, post.ID, "", models.OutcomeNoContent, "no content available", b.now())
		return
	}

	text := fmt.Sprintf("@%s %s", account.Username, replyText)

	if interactive && !b.composer.ConfirmPost(text) {
		logrus.Info("Skipping tweet...")
		b.markHandled(post.ID)
		report.Add(account.Username, post.ID, text, models.OutcomeDeclined, "operator declined", b.now())
		return
	}

	b.limiter.Acquire(userID)
	b.infof("Posting tweet: %q", text)
	err := b.client.CreateReply(ctx, text, post.ID)

	switch {
	case err == nil:
		b.counters.recordReply(b.now())
		b.markHandled(post.ID)
		report.RepliesPosted++
		report.Add(account.Username, post.ID, text, models.OutcomePosted, "", b.now())

		wait := b.randomDuration(replyPacingMin, replyPacingMax)
		b.infof("Waiting for %v till next reply...", wait)
		b.sleep(wait)

	case errors.Is(err, xapi.ErrQuotaExceeded):
		// Abandoned, deliberately not marked handled: a later cycle may
		// pick the tweet up again if it still passes the recency filter.
		b.errorf("Rate limited while replying to @%s. Waiting %v...", account.Username, quotaCooldown)
		report.Add(account.Username, post.ID, text, models.OutcomeDeferred, "remote rate limit", b.now())
		b.sleep(quotaCooldown)

	default:
		b.errorf("Error while replying to @%s: %v", account.Username, err)
		b.markHandled(post.ID)
		report.Add(account.Username, post.ID, text, models.OutcomeFailed, err.Error(), b.now())
	}
}

// markHandled records the tweet id in the dedup set and mirrors the new
// total to the observer.
func (b *Bot) markHandled(postID string) {
	b.replied[postID] = struct{}{}
	b.hooks.count(len(b.replied))
}
