package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"tgdocs/internal/config"
)

// APIError is a Bot API response with ok=false.
type APIError struct {
	Method      string
	Code        int
	Description string
	// RetryAfter is set when the server asks the client to back off (429).
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram: %s failed: %d %s", e.Method, e.Code, e.Description)
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
	Parameters  *struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

// Bot is a Bot API client. It implements FileGetter and Downloader and is safe
// for concurrent use.
type Bot struct {
	token      string
	apiURL     string
	fileURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

var (
	_ FileGetter = (*Bot)(nil)
	_ Downloader = (*Bot)(nil)
)

// NewBot creates a Bot API client. Requests are traced through otelhttp.
func NewBot(cfg config.TelegramConfig, logger *slog.Logger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("telegram api url is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	fileURL := cfg.FileURL
	if fileURL == "" {
		fileURL = strings.TrimRight(cfg.APIURL, "/") + "/file"
	}
	return &Bot{
		token:   cfg.Token,
		apiURL:  strings.TrimRight(cfg.APIURL, "/"),
		fileURL: strings.TrimRight(fileURL, "/"),
		timeout: time.Duration(cfg.RequestTimeoutSec) * time.Second,
		// No client-wide Timeout: a per-call timeout may exceed the default.
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger.With(slog.String("component", "telegram_bot")),
	}, nil
}

// GetFile calls getFile for fileID. Extra options are sent as form params;
// file_id always wins over an option of the same name.
func (b *Bot) GetFile(ctx context.Context, fileID string, timeout time.Duration, opts ...RequestOption) (*File, error) {
	params := url.Values{}
	for _, opt := range opts {
		opt(params)
	}
	params.Set("file_id", fileID)

	raw, err := b.call(ctx, "getFile", params, timeout)
	if err != nil {
		return nil, err
	}
	f, err := DecodeFile(raw, b)
	if err != nil {
		return nil, fmt.Errorf("decode getFile result: %w", err)
	}
	if f == nil {
		return nil, ErrEmptyResult
	}
	return f, nil
}

// DownloadFile streams the file stored under filePath. The caller must close the reader.
func (b *Bot) DownloadFile(ctx context.Context, filePath string) (io.ReadCloser, error) {
	endpoint := b.fileURL + "/bot" + b.token + "/" + strings.TrimLeft(filePath, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", b.redact(err))
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", b.redact(err))
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("download file: unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func (b *Bot) call(ctx context.Context, method string, params url.Values, timeout time.Duration) (json.RawMessage, error) {
	if timeout <= 0 {
		timeout = b.timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	endpoint := b.apiURL + "/bot" + b.token + "/" + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", method, b.redact(err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", method, b.redact(err))
	}
	defer resp.Body.Close()

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%s: decode response (status %d): %w", method, resp.StatusCode, err)
	}
	b.logger.Debug("bot api call",
		slog.String("method", method),
		slog.Int("status", resp.StatusCode),
		slog.Bool("ok", out.OK),
		slog.Duration("latency", time.Since(start)),
	)

	if !out.OK {
		apiErr := &APIError{Method: method, Code: out.ErrorCode, Description: out.Description}
		if out.Parameters != nil && out.Parameters.RetryAfter > 0 {
			apiErr.RetryAfter = time.Duration(out.Parameters.RetryAfter) * time.Second
		}
		return nil, apiErr
	}
	return out.Result, nil
}

// redact strips the bot token from URLs carried by transport errors.
func (b *Bot) redact(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return &url.Error{Op: ue.Op, URL: strings.ReplaceAll(ue.URL, b.token, "<token>"), Err: ue.Err}
	}
	return err
}
