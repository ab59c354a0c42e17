package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const slackAPIBase = "https://slack.com/api"

// maxFileBytes bounds attachment downloads.
const maxFileBytes = 50 << 20

// Slack talks to the Slack Web API with a bot token.
type Slack struct {
	token   string
	baseURL string
	client  *http.Client
	// files never follows redirects: a redirect on a private file URL
	// means the token was not honoured, and following it lands on the
	// login page with status 200.
	files *http.Client
}

// NewSlack builds a Web API client.
func NewSlack(token string) *Slack {
	return &Slack{
		token:   token,
		baseURL: slackAPIBase,
		client:  &http.Client{Timeout: 30 * time.Second},
		files: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type apiResponse struct {
	OK       bool      `json:"ok"`
	Error    string    `json:"error"`
	Messages []Message `json:"messages"`
}

func (s *Slack) PostMessage(ctx context.Context, channel, threadTS, text string) error {
	payload := map[string]string{
		"channel": channel,
		"text":    text,
	}
	if threadTS != "" {
		payload["thread_ts"] = threadTS
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/chat.postMessage", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+s.token)

	var resp apiResponse
	if err := s.do(req, &resp); err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("chat.postMessage: %s", resp.Error)
	}
	return nil
}

func (s *Slack) ThreadReplies(ctx context.Context, channel, threadTS string) ([]Message, error) {
	q := url.Values{}
	q.Set("channel", channel)
	q.Set("ts", threadTS)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.baseURL+"/conversations.replies?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)

	var resp apiResponse
	if err := s.do(req, &resp); err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, fmt.Errorf("conversations.replies: %s", resp.Error)
	}
	return resp.Messages, nil
}

// DownloadFile fetches a private file URL with the bot token. Slack sends
// unauthenticated requests to an HTML login page, sometimes via a redirect
// and sometimes directly with status 200, so both a non-200 status and an
// HTML content type mean the credentials did not take.
func (s *Slack) DownloadFile(ctx context.Context, fileURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.files.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file download: status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); strings.HasPrefix(ct, "text/html") {
		return nil, fmt.Errorf("file download: got HTML instead of file content")
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFileBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxFileBytes {
		return nil, fmt.Errorf("file download: exceeds %d byte limit", int64(maxFileBytes))
	}
	return data, nil
}

func (s *Slack) do(req *http.Request, out *apiResponse) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack api: status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
