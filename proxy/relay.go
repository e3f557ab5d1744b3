package proxy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/chatrelay/pkg/llm"
)

const (
	errMethodNotAllowed = "Method not allowed"
	errInvalidBody      = "Invalid JSON body"
	errMisconfigured    = "Server misconfigured: missing upstream URL or API key"
	errUpstream         = "Error contacting upstream API"
)

// upstreamResult is a fully-read upstream response.
type upstreamResult struct {
	status      int
	contentType string
	body        []byte
}

// handleRelay forwards the request body to the upstream API and relays the
// response back with its status code and content type preserved.
// The body is re-serialized but never inspected or modified.
func (p *Proxy) handleRelay(c *fiber.Ctx) error {
	startTime := time.Now()
	logger := p.logger.With(zap.Any("request_id", c.Locals(requestIDKey)))

	if c.Method() != fiber.MethodPost {
		c.Set(fiber.HeaderAllow, fiber.MethodPost)
		return c.Status(fiber.StatusMethodNotAllowed).JSON(llm.ErrorResponse{Error: errMethodNotAllowed})
	}

	up := p.upstream.Upstream()
	if !up.Configured() {
		logger.Error("upstream is not configured",
			zap.Bool("url_set", up.URL != ""),
			zap.Bool("api_key_set", up.APIKey != ""),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: errMisconfigured})
	}

	var body bytes.Buffer
	if err := json.Compact(&body, c.Body()); err != nil {
		logger.Debug("rejecting invalid request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: errInvalidBody})
	}

	logger.Debug("forwarding request to upstream",
		zap.String("url", up.URL),
		zap.Int("body_size", body.Len()),
	)

	res, err := p.forward(c, up, body.Bytes())
	if err != nil {
		logger.Error("failed to contact upstream",
			zap.String("error", redact(err.Error(), up.APIKey)),
			zap.Duration("duration", time.Since(startTime)),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: errUpstream})
	}

	logger.Info("relayed upstream response",
		zap.Int("status", res.status),
		zap.String("content_type", res.contentType),
		zap.String("body_preview", truncate(redact(string(res.body), up.APIKey), 100)),
		zap.Duration("duration", time.Since(startTime)),
	)

	c.Status(res.status)
	if isJSON(res.contentType) {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	} else if res.contentType != "" {
		c.Set(fiber.HeaderContentType, res.contentType)
	}
	return c.Send(res.body)
}

// forward issues the upstream call and reads the whole response. JSON
// responses are parsed and re-serialized; a body that does not parse is an
// error.
func (p *Proxy) forward(c *fiber.Ctx, up Upstream, body []byte) (*upstreamResult, error) {
	httpReq, err := http.NewRequestWithContext(c.UserContext(), http.MethodPost, up.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+up.APIKey)

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	res := &upstreamResult{
		status:      httpResp.StatusCode,
		contentType: httpResp.Header.Get("Content-Type"),
		body:        respBody,
	}

	if isJSON(res.contentType) {
		var parsed bytes.Buffer
		if err := json.Compact(&parsed, respBody); err != nil {
			return nil, fmt.Errorf("parse JSON response (status %d): %w", httpResp.StatusCode, err)
		}
		res.body = parsed.Bytes()
	}

	return res, nil
}

func isJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "application/json")
}

// redact removes the credential from text bound for the logs.
func redact(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, "[REDACTED]")
}
