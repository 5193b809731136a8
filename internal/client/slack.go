// 지원팀 Slack 채널로 문의 티켓 알림을 보내는 클라이언트
//
// 환경변수:
//   - SLACK_BOT_TOKEN: Slack Bot Token (xoxb-...)
//   - SLACK_CHANNEL_ID: Slack 채널 ID (C...)
//   - DASHBOARD_URL: 알림에 붙일 대시보드 링크의 origin (선택)

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/credibilitycrm/gateway/internal/config"
	"github.com/credibilitycrm/gateway/internal/model"
	"github.com/credibilitycrm/gateway/internal/observability"
)

type SlackClient struct {
	botToken     string
	channelID    string
	apiURL       string
	dashboardURL string
	httpClient   *http.Client
}

type SlackMessage struct {
	Channel     string            `json:"channel"`
	Text        string            `json:"text,omitempty"`
	Attachments []SlackAttachment `json:"attachments,omitempty"`
}

type SlackAttachment struct {
	Color  string       `json:"color"`
	Title  string       `json:"title"`
	Text   string       `json:"text"`
	Footer string       `json:"footer,omitempty"`
	Ts     int64        `json:"ts,omitempty"`
	Fields []SlackField `json:"fields,omitempty"`
}

type SlackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"` // true면 한 줄에 2개
}

type SlackResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	TS    string `json:"ts,omitempty"`
}

func NewSlackClient(cfg config.SlackConfig) *SlackClient {
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = "https://slack.com/api"
	}
	return &SlackClient{
		botToken:     cfg.BotToken,
		channelID:    cfg.ChannelID,
		apiURL:       apiURL,
		dashboardURL: cfg.DashboardURL,
		httpClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: observability.Transport(nil),
		},
	}
}

// Bot Token과 Channel ID가 모두 설정되어 있는지 체크
func (c *SlackClient) IsConfigured() bool {
	return c.botToken != "" && c.channelID != ""
}

// SendTicketAlert - 문의 폼으로 생성된 티켓을 채널에 알림
func (c *SlackClient) SendTicketAlert(ctx context.Context, req model.TicketCreateRequest, agent string) error {
	if !c.IsConfigured() {
		return fmt.Errorf("slack bot token or channel ID not configured")
	}

	if agent == "" {
		agent = "unassigned"
	}
	fields := []SlackField{
		{Title: "Tenant", Value: fmt.Sprintf("%d", req.TenantID), Short: true},
		{Title: "Priority", Value: req.Priority, Short: true},
		{Title: "Customer", Value: customerLabel(req), Short: true},
		{Title: "Agent", Value: agent, Short: true},
	}
	if c.dashboardURL != "" {
		fields = append(fields, SlackField{
			Title: "Dashboard",
			Value: fmt.Sprintf("<%s/dashboard/tickets|Open ticket queue>", c.dashboardURL),
		})
	}

	_, err := c.send(ctx, SlackMessage{
		Channel: c.channelID,
		Attachments: []SlackAttachment{
			{
				Color:  colorByPriority(req.Priority),
				Title:  ":envelope_with_arrow: " + req.Title,
				Text:   req.Description,
				Fields: fields,
				Footer: req.Source + " / " + req.Channel,
				Ts:     time.Now().Unix(),
			},
		},
	})
	return err
}

func (c *SlackClient) send(ctx context.Context, msg SlackMessage) (*SlackResponse, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/chat.postMessage", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.botToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var slackResp SlackResponse
	if err := json.Unmarshal(body, &slackResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	// Slack은 실패도 200으로 응답하므로 ok 필드로 판단
	if !slackResp.OK {
		return nil, fmt.Errorf("slack API error: %s", slackResp.Error)
	}
	return &slackResp, nil
}

func customerLabel(req model.TicketCreateRequest) string {
	if req.CustomerEmail != "" && req.CustomerEmail != req.Customer {
		return fmt.Sprintf("%s <%s>", req.Customer, req.CustomerEmail)
	}
	return req.Customer
}

func colorByPriority(priority string) string {
	switch priority {
	case "Urgent", "Critical":
		return "#dc3545" // red
	case "High":
		return "#ffc107" // yellow
	case "Low":
		return "#36a64f" // green
	default:
		return "#17a2b8" // blue
	}
}
