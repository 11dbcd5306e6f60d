package xapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/steelproxy/twitta/internal/models"
)

const defaultBaseURL = "https://api.twitter.com/2"

var (
	// ErrNotFound is returned when a username does not resolve to a user.
	ErrNotFound = errors.New("xapi: user not found")

	// ErrQuotaExceeded is returned when the remote API reports it is
	// rate limited (HTTP 429), independent of our own limiter.
	ErrQuotaExceeded = errors.New("xapi: rate limit exceeded")
)

// Credentials holds the X API tokens for one application/user pair
type Credentials struct {
	BearerToken       string `json:"bearer_token"`
	ConsumerKey       string `json:"consumer_key"`
	ConsumerSecret    string `json:"consumer_secret"`
	AccessToken       string `json:"access_token"`
	AccessTokenSecret string `json:"access_token_secret"`
}

// Client is an X API v2 client covering the three calls the bot needs:
// user lookup, recent tweets, and posting a reply
type Client struct {
	creds   Credentials
	baseURL string
	client  *resty.Client
}

type userLookupResponse struct {
	Data *struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Username string `json:"username"`
	} `json:"data"`
}

type userTweetsResponse struct {
	Data []struct {
		ID        string `json:"id"`
		Text      string `json:"text"`
		CreatedAt string `json:"created_at"`
	} `json:"data"`
}

type createTweetRequest struct {
	Text  string `json:"text"`
	Reply struct {
		InReplyToTweetID string `json:"in_reply_to_tweet_id"`
	} `json:"reply"`
}

// NewClient creates a new X API client
func NewClient(creds Credentials) *Client {
	return &Client{
		creds:   creds,
		baseURL: defaultBaseURL,
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", "twitta/1.0"),
	}
}

// ResolveIdentity looks up the numeric user id for a username. A
// username that yields no user data maps to ErrNotFound.
func (c *Client) ResolveIdentity(ctx context.Context, username string) (int64, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.creds.BearerToken).
		Get(fmt.Sprintf("%s/users/by/username/%s", c.baseURL, username))

	if err != nil {
		return 0, err
	}

	if err := c.checkStatus(resp); err != nil {
		return 0, err
	}

	var lookup userLookupResponse
	if err := json.Unmarshal(resp.Body(), &lookup); err != nil {
		return 0, fmt.Errorf("failed to parse user lookup response: %w", err)
	}

	if lookup.Data == nil {
		return 0, ErrNotFound
	}

	id, err := strconv.ParseInt(lookup.Data.ID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected user id %q: %w", lookup.Data.ID, err)
	}

	return id, nil
}

// FetchRecentPosts returns the user's most recent tweets, newest first
// as provided by the API. pageSize maps to max_results (the API floor
// is 5, which is also the bot's fixed page size).
func (c *Client) FetchRecentPosts(ctx context.Context, userID int64, pageSize int) ([]models.Post, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.creds.BearerToken).
		SetQueryParam("max_results", strconv.Itoa(pageSize)).
		SetQueryParam("tweet.fields", "created_at,text").
		Get(fmt.Sprintf("%s/users/%d/tweets", c.baseURL, userID))

	if err != nil {
		return nil, err
	}

	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	var tweets userTweetsResponse
	if err := json.Unmarshal(resp.Body(), &tweets); err != nil {
		return nil, fmt.Errorf("failed to parse tweets response: %w", err)
	}

	var posts []models.Post
	for _, tweet := range tweets.Data {
		createdAt, err := time.Parse(time.RFC3339, tweet.CreatedAt)
		if err != nil {
			logrus.Errorf("Failed to parse tweet timestamp: %v", err)
			continue
		}

		posts = append(posts, models.Post{
			ID:        tweet.ID,
			Text:      tweet.Text,
			CreatedAt: createdAt,
		})
	}

	return posts, nil
}

// CreateReply posts text as a reply to the given tweet id.
func (c *Client) CreateReply(ctx context.Context, text string, inReplyToID string) error {
	body := createTweetRequest{Text: text}
	body.Reply.InReplyToTweetID = inReplyToID

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.creds.AccessToken).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(c.baseURL + "/tweets")

	if err != nil {
		return err
	}

	if resp.StatusCode() == 201 {
		return nil
	}

	return c.checkStatus(resp)
}

func (c *Client) checkStatus(resp *resty.Response) error {
	switch {
	case resp.StatusCode() == 200:
		return nil
	case resp.StatusCode() == 429:
		if reset := resp.Header().Get("x-rate-limit-reset"); reset != "" {
			logrus.Infof("X API rate limit will reset at: %s", reset)
		}
		return ErrQuotaExceeded
	case resp.StatusCode() == 404:
		return ErrNotFound
	default:
		return fmt.Errorf("x API returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}
}
