package models

import (
	"encoding/json"
	"time"
)

// Account represents one watched X/Twitter account the bot replies to
type Account struct {
	Username          string   `json:"username"`
	UseGPT            bool     `json:"use_gpt"`
	CustomPrompt      string   `json:"custom_prompt"`
	PredefinedReplies []string `json:"predefined_replies"`
}

// Post represents a single tweet fetched from the X API
type Post struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Outcome classifies the terminal state of one reply attempt
type Outcome string

const (
	OutcomePosted    Outcome = "posted"     // reply went out
	OutcomeNoContent Outcome = "no_content" // nothing to post for this account/tweet
	OutcomeDeclined  Outcome = "declined"   // operator declined to post
	OutcomeDeferred  Outcome = "deferred"   // remote rate limit, left for a later cycle
	OutcomeFailed    Outcome = "failed"     // posting failed for any other reason
)

// ReplyResult describes how one tweet was handled during a cycle
type ReplyResult struct {
	Account   string    `json:"account"`
	PostID    string    `json:"post_id"`
	Text      string    `json:"text,omitempty"`
	Outcome   Outcome   `json:"outcome"`
	Reason    string    `json:"reason,omitempty"`
	HandledAt time.Time `json:"handled_at"`
}

// Report summarizes one dispatch cycle for archiving and notifications
type Report struct {
	StartedAt     time.Time     `json:"started_at"`
	FinishedAt    time.Time     `json:"finished_at"`
	RepliesPosted int           `json:"replies_posted"`
	Errors        int           `json:"errors"`
	Results       []ReplyResult `json:"results"`
}

// Add appends one handled tweet to the report and keeps the running
// totals consistent.
func (r *Report) Add(account, postID, text string, outcome Outcome, reason string, handledAt time.Time) {
	if outcome == OutcomeNoContent || outcome == OutcomeFailed {
		r.Errors++
	}
	r.Results = append(r.Results, ReplyResult{
		Account:   account,
		PostID:    postID,
		Text:      text,
		Outcome:   outcome,
		Reason:    reason,
		HandledAt: handledAt,
	})
}

// Marshal renders the report for archiving.
func (r *Report) Marshal() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Summary is a point-in-time view of the agent used for status queries
// and periodic digest notifications
type Summary struct {
	GeneratedAt   time.Time `json:"generated_at"`
	Running       bool      `json:"running"`
	Uptime        string    `json:"uptime"`
	ReplyCount    int       `json:"reply_count"`
	LastReply     time.Time `json:"last_reply"`
	ErrorCount    int       `json:"error_count"`
	StatusMessage string    `json:"status_message"`
}
