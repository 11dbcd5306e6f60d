package composer

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/steelproxy/twitta/internal/models"
)

// PlaceholderToken marks where the tweet text is substituted into a
// custom prompt template.
const PlaceholderToken = "{tweet_text}"

// Decision is the operator's verdict on a generated draft
type Decision int

const (
	// Accept posts the draft as-is.
	Accept Decision = iota
	// Reject discards the draft and regenerates with the same prompt.
	Reject
	// Edit supplies a replacement prompt template for regeneration.
	Edit
)

// Approval carries one operator decision; NewTemplate is only set for Edit.
type Approval struct {
	Decision    Decision
	NewTemplate string
}

// Prompter is the human-in-the-loop surface supplied by the hosting
// layer: terminal input in CLI mode, absent in headless mode.
type Prompter interface {
	RequestApproval(draft string) Approval
	RequestPostConfirmation(text string) bool
}

// Generator produces reply text from a prompt. Implementations never
// fail; internal problems surface as a fallback string.
type Generator interface {
	Generate(ctx context.Context, prompt string) string
}

// Composer turns a watched account's reply policy and a source tweet
// into reply text. An empty result signals "nothing to post".
type Composer struct {
	generator Generator
	prompter  Prompter
	rng       *rand.Rand
}

// New creates a composer. prompter may be nil for headless operation.
func New(generator Generator, prompter Prompter) *Composer {
	return &Composer{
		generator: generator,
		prompter:  prompter,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// RenderPrompt substitutes the tweet text into a prompt template.
func RenderPrompt(template, tweetText string) string {
	return strings.ReplaceAll(template, PlaceholderToken, tweetText)
}

// Compose produces the reply text for one tweet under the account's
// policy. Predefined pools yield a uniformly random element (empty pool
// yields ""). Generative accounts render the custom prompt and call the
// backend; in interactive mode the operator approves, rejects, or edits
// the draft until one is accepted. The loop is operator-driven and has
// no iteration cap.
func (c *Composer) Compose(ctx context.Context, account models.Account, tweetText string, interactive bool) string {
	if !account.UseGPT {
		if len(account.PredefinedReplies) == 0 {
			return ""
		}
		return account.PredefinedReplies[c.rng.Intn(len(account.PredefinedReplies))]
	}

	prompt := RenderPrompt(account.CustomPrompt, tweetText)
	if !interactive || c.prompter == nil {
		return c.generator.Generate(ctx, prompt)
	}

	for {
		draft := c.generator.Generate(ctx, prompt)
		approval := c.prompter.RequestApproval(draft)
		switch approval.Decision {
		case Accept:
			return draft
		case Edit:
			// The edited template sticks for subsequent regeneration.
			prompt = RenderPrompt(approval.NewTemplate, tweetText)
		}
	}
}

// ConfirmPost asks the operator whether the final reply should be
// posted. Without a prompter there is nobody to ask, so it consents.
func (c *Composer) ConfirmPost(text string) bool {
	if c.prompter == nil {
		return true
	}
	return c.prompter.RequestPostConfirmation(text)
}
