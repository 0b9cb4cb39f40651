package service

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// ChatService forwards chat-completion requests to a configured upstream
// API using a server-held key. The payload passes through untouched in
// both directions; the service only gates on authentication and
// configuration. No retries: a failed call surfaces once.
type ChatService struct {
	cfg    config.ChatConfig
	client *http.Client
	logger *zap.Logger
}

// ChatReply carries the upstream response verbatim.
type ChatReply struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// NewChatService constructs the proxy.
func NewChatService(cfg config.ChatConfig, logger *zap.Logger) *ChatService {
	return &ChatService{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout()},
		logger: logger,
	}
}

// Enabled reports whether an upstream key is configured.
func (s *ChatService) Enabled() bool {
	return strings.TrimSpace(s.cfg.APIKey) != ""
}

// Forward relays the raw request body to the upstream and returns its
// response as-is, including upstream error statuses.
func (s *ChatService) Forward(ctx context.Context, payload []byte) (*ChatReply, error) {
	if !s.Enabled() {
		return nil, apperrors.NewUpstreamUnavailable("chat upstream", nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.UpstreamURL, bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("chat upstream call failed", zap.Error(err))
		return nil, apperrors.NewUpstreamUnavailable("chat upstream", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewUpstreamUnavailable("chat upstream", err)
	}

	return &ChatReply{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
