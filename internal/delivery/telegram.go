package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Sender interface {
	Send(ctx context.Context, text string) error
}

type TelegramSender struct {
	token      string
	chatID     string
	parseMode  string
	httpClient *http.Client
}

func NewTelegramSender(token, chatID, parseMode string) *TelegramSender {
	return &TelegramSender{
		token:      token,
		chatID:     chatID,
		parseMode:  parseMode,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
	Parameters  *struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

func (s *TelegramSender) Send(ctx context.Context, text string) error {
	body, err := json.Marshal(sendMessageRequest{
		ChatID:                s.chatID,
		Text:                  text,
		ParseMode:             s.parseMode,
		DisableWebPagePreview: true,
	})
	if err != nil {
		return &SendError{Kind: KindRejected, Err: err}
	}

	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return &SendError{Kind: KindRejected, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		// *url.Error carries the request URL, which contains the bot token.
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return &SendError{Kind: transportKind(err), Err: err}
	}
	defer resp.Body.Close()

	var tr telegramResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		tr.Description = fmt.Sprintf("undecodable response: %v", err)
	}

	if resp.StatusCode == http.StatusOK && tr.OK {
		return nil
	}

	se := &SendError{StatusCode: resp.StatusCode, Description: tr.Description}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		se.Kind = KindRateLimited
		if tr.Parameters != nil {
			se.RetryAfter = time.Duration(tr.Parameters.RetryAfter) * time.Second
		}
	case resp.StatusCode == http.StatusBadRequest && strings.Contains(strings.ToLower(tr.Description), "too long"):
		se.Kind = KindTooLong
	case resp.StatusCode >= http.StatusInternalServerError:
		se.Kind = KindNetwork
	default:
		se.Kind = KindRejected
	}
	return se
}

func transportKind(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}

	return KindNetwork
}
