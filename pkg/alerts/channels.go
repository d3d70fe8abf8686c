/*
 * Copyright 2025 Candor Operations Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/smtp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/candorops/netsentry/pkg/logger"
	"github.com/candorops/netsentry/pkg/models"
)

const telegramAPIBase = "https://api.telegram.org"

// NewChannels builds the channel registry from config. The dashboard channel
// is always present; transport channels require an enabled config block.
func NewChannels(cfg models.AlertingConfig, log logger.Logger) map[string]Channel {
	channels := map[string]Channel{
		ChannelDashboard: NewDashboardChannel(log),
	}

	for name, cc := range cfg.Channels {
		if !cc.Enabled {
			continue
		}

		switch {
		case name == ChannelEmail:
			channels[name] = NewEmailChannel(cc, log)
		case name == ChannelTelegram:
			channels[name] = NewTelegramChannel(cc, log)
		case cc.APIBaseURL != "":
			channels[name] = NewWebhookChannel(name, cc.APIBaseURL, log)
		default:
			log.Warn().Str("channel", name).Msg("Channel config has no usable transport")
		}
	}

	return channels
}

// DashboardChannel records the alert for UI consumption. The alert row
// itself is the write-through; delivery always succeeds.
type DashboardChannel struct {
	logger zerolog.Logger
}

func NewDashboardChannel(log logger.Logger) *DashboardChannel {
	return &DashboardChannel{logger: log.WithComponent("channel.dashboard")}
}

func (c *DashboardChannel) Name() string { return ChannelDashboard }

func (c *DashboardChannel) Send(_ context.Context, alert *models.Alert) bool {
	c.logger.Info().
		Str("severity", string(alert.Severity)).
		Str("device", alert.DeviceIP).
		Msg(alert.Message)

	return true
}

// EmailChannel delivers alerts over SMTP.
type EmailChannel struct {
	config models.ChannelConfig
	logger zerolog.Logger
}

func NewEmailChannel(cfg models.ChannelConfig, log logger.Logger) *EmailChannel {
	return &EmailChannel{config: cfg, logger: log.WithComponent("channel.email")}
}

func (c *EmailChannel) Name() string { return ChannelEmail }

func (c *EmailChannel) Send(ctx context.Context, alert *models.Alert) bool {
	if c.config.SMTPHost == "" || len(c.config.ToAddresses) == 0 {
		alert.DeliveryError = "email channel not configured"
		return false
	}

	addr := fmt.Sprintf("%s:%d", c.config.SMTPHost, c.config.SMTPPort)
	subject := fmt.Sprintf("[%s] %s on %s", strings.ToUpper(string(alert.Severity)), alert.AlertType, alert.DeviceIP)

	body := strings.Join([]string{
		"From: " + c.config.FromAddress,
		"To: " + strings.Join(c.config.ToAddresses, ", "),
		"Subject: " + subject,
		"",
		alert.Message,
	}, "\r\n")

	var auth smtp.Auth
	if c.config.SMTPUser != "" {
		auth = smtp.PlainAuth("", c.config.SMTPUser, c.config.SMTPPassword, c.config.SMTPHost)
	}

	// net/smtp has no context support; run the send in a goroutine and
	// treat ctx expiry as a delivery failure.
	done := make(chan error, 1)

	go func() {
		done <- smtp.SendMail(addr, auth, c.config.FromAddress, c.config.ToAddresses, []byte(body))
	}()

	select {
	case err := <-done:
		if err != nil {
			c.logger.Warn().Err(err).Str("device", alert.DeviceIP).Msg("Email send failed")
			alert.DeliveryError = err.Error()

			return false
		}

		return true
	case <-ctx.Done():
		c.logger.Warn().Str("device", alert.DeviceIP).Msg("Email send timed out")
		alert.DeliveryError = ctx.Err().Error()

		return false
	}
}

// TelegramChannel delivers alerts through the Telegram bot API.
type TelegramChannel struct {
	config models.ChannelConfig
	base   string
	client *http.Client
	logger zerolog.Logger
}

func NewTelegramChannel(cfg models.ChannelConfig, log logger.Logger) *TelegramChannel {
	base := cfg.APIBaseURL
	if base == "" {
		base = telegramAPIBase
	}

	return &TelegramChannel{
		config: cfg,
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: 30 * time.Second},
		logger: log.WithComponent("channel.telegram"),
	}
}

func (c *TelegramChannel) Name() string { return ChannelTelegram }

func (c *TelegramChannel) Send(ctx context.Context, alert *models.Alert) bool {
	if c.config.BotToken == "" || c.config.ChatID == "" {
		alert.DeliveryError = "telegram channel not configured"
		return false
	}

	payload, err := json.Marshal(map[string]string{
		"chat_id": c.config.ChatID,
		"text":    alert.Message,
	})
	if err != nil {
		alert.DeliveryError = err.Error()
		return false
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.base, c.config.BotToken)

	return c.post(ctx, url, payload, alert)
}

func (c *TelegramChannel) post(ctx context.Context, url string, payload []byte, alert *models.Alert) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		alert.DeliveryError = err.Error()
		return false
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("device", alert.DeviceIP).Msg("Telegram send failed")
		alert.DeliveryError = err.Error()

		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn().Int("status", resp.StatusCode).Str("body", string(snippet)).Msg("Telegram send rejected")
		alert.DeliveryError = fmt.Sprintf("telegram returned %d", resp.StatusCode)

		return false
	}

	return true
}

// WebhookChannel posts the alert as JSON to a configured endpoint. Used for
// SMS gateways and other generic HTTP transports.
type WebhookChannel struct {
	name   string
	url    string
	client *http.Client
	logger zerolog.Logger
}

func NewWebhookChannel(name, url string, log logger.Logger) *WebhookChannel {
	return &WebhookChannel{
		name:   name,
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: log.WithComponent("channel." + name),
	}
}

func (c *WebhookChannel) Name() string { return c.name }

func (c *WebhookChannel) Send(ctx context.Context, alert *models.Alert) bool {
	payload, err := json.Marshal(alert)
	if err != nil {
		alert.DeliveryError = err.Error()
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		alert.DeliveryError = err.Error()
		return false
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("device", alert.DeviceIP).Msg("Webhook send failed")
		alert.DeliveryError = err.Error()

		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		alert.DeliveryError = fmt.Sprintf("webhook returned %d", resp.StatusCode)
		return false
	}

	return true
}
