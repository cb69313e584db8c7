package apiclient

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type Notification struct {
	Kind      string `json:"kind"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	BookingID string `json:"booking_id,omitempty"`
}

// StreamEvent is one server-sent event from /api/notifications/stream.
// Exactly one of Notification and Badge is set; pings are skipped.
type StreamEvent struct {
	Notification *Notification
	Badge        *int64
}

// StreamNotifications blocks, calling fn for each event until ctx is done
// or the server closes the stream.
func (c *Client) StreamNotifications(ctx context.Context, fn func(StreamEvent)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/notifications/stream", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	if err := c.authorize(ctx, req); err != nil {
		return err
	}

	// The request timeout would cut the stream short.
	streaming := &http.Client{Transport: c.http.Transport}
	resp, err := streaming.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("open stream: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	var event, data string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if err := dispatch(event, data, fn); err != nil {
				return err
			}
			event, data = "", ""
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data += strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return nil
}

func dispatch(event, data string, fn func(StreamEvent)) error {
	switch event {
	case "notification":
		var n Notification
		if err := json.Unmarshal([]byte(data), &n); err != nil {
			return fmt.Errorf("decode notification: %w", err)
		}
		fn(StreamEvent{Notification: &n})
	case "badge":
		var b struct {
			Pending int64 `json:"pending"`
		}
		if err := json.Unmarshal([]byte(data), &b); err != nil {
			return fmt.Errorf("decode badge: %w", err)
		}
		fn(StreamEvent{Badge: &b.Pending})
	}
	return nil
}
