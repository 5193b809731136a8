// 백엔드 API와 HTTP 통신하는 공통 클라이언트 정의
//
// 환경변수:
//   - UPSTREAM_API_URL (또는 NEXT_PUBLIC_API_URL): 백엔드 API origin
//   - UPSTREAM_TIMEOUT: 요청 타임아웃
//
// 모든 호출 결과는 {success, data, error} envelope로 정규화된다.
// 실패 시에도 envelope가 채워지므로 호출자는 success만 보고 분기할 수 있고,
// 실패 종류가 필요하면 errors.As로 *CallError를 꺼내 Kind를 확인한다.

package client

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

	"github.com/credibilitycrm/gateway/internal/config"
	"github.com/credibilitycrm/gateway/internal/model"
	"github.com/credibilitycrm/gateway/internal/observability"
)

type FailureKind int

const (
	// 응답 자체를 받지 못함 (연결 실패, 타임아웃, 취소)
	NetworkFailure FailureKind = iota + 1
	// 2xx가 아닌 응답
	UpstreamError
	// 응답 body가 JSON이 아님
	ParseFailure
)

func (k FailureKind) String() string {
	switch k {
	case NetworkFailure:
		return "network_failure"
	case UpstreamError:
		return "upstream_error"
	case ParseFailure:
		return "parse_failure"
	default:
		return "unknown"
	}
}

// CallError - 실패 종류를 구분하는 에러
type CallError struct {
	Kind   FailureKind
	Status int
	Body   []byte
	Err    error
}

func (e *CallError) Error() string {
	switch e.Kind {
	case UpstreamError:
		return fmt.Sprintf("upstream returned status %d: %v", e.Status, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
}

func (e *CallError) Unwrap() error { return e.Err }

// APIClient 구조체 정의
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// APIClient 객체 생성. tokens가 nil이면 Authorization 헤더를 붙이지 않는다.
func NewAPIClient(cfg config.UpstreamConfig, tokens TokenSource) *APIClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = config.DefaultUpstreamURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if tokens == nil {
		tokens = NoToken{}
	}

	return &APIClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: observability.Transport(nil),
		},
		tokens: tokens,
	}
}

func (c *APIClient) BaseURL() string {
	return c.baseURL
}

// CallOptions - Body가 []byte 또는 json.RawMessage면 그대로, 그 외에는 JSON 직렬화
type CallOptions struct {
	Method  string
	Headers map[string]string
	Body    any
}

// Call - endpoint는 baseURL 뒤에 그대로 붙는다 (예: "/tickets?status=open")
func Call[T any](ctx context.Context, c *APIClient, endpoint string, opts CallOptions) (model.APIResponse[T], error) {
	body, err := encodeBody(opts.Body)
	if err != nil {
		return model.Failure[T](err.Error()), &CallError{Kind: ParseFailure, Err: err}
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return model.Failure[T](err.Error()), &CallError{Kind: NetworkFailure, Err: err}
	}

	// 기본 Content-Type -> 토큰 -> 호출자 헤더 순서 (호출자 헤더가 우선)
	req.Header.Set("Content-Type", "application/json")
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return model.Failure[T](err.Error()), &CallError{Kind: NetworkFailure, Err: err}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.Failure[T](err.Error()), &CallError{Kind: NetworkFailure, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Failure[T](err.Error()), &CallError{Kind: NetworkFailure, Status: resp.StatusCode, Err: err}
	}

	// 상태 코드와 무관하게 body는 항상 JSON으로 해석
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		err = fmt.Errorf("failed to parse response: %w", err)
		return model.Failure[T](err.Error()), &CallError{Kind: ParseFailure, Status: resp.StatusCode, Body: raw, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fmt.Sprintf("HTTP error! status: %d", resp.StatusCode)
		if obj, ok := generic.(map[string]any); ok {
			if e, ok := obj["error"].(string); ok && e != "" {
				msg = e
			}
		}
		return model.Failure[T](msg), &CallError{
			Kind:   UpstreamError,
			Status: resp.StatusCode,
			Body:   raw,
			Err:    fmt.Errorf("%s", msg),
		}
	}

	var out model.APIResponse[T]
	if err := json.Unmarshal(raw, &out); err != nil {
		err = fmt.Errorf("failed to parse response: %w", err)
		return model.Failure[T](err.Error()), &CallError{Kind: ParseFailure, Status: resp.StatusCode, Body: raw, Err: err}
	}
	return out, nil
}

// POST /tickets 티켓 생성
func (c *APIClient) CreateTicket(ctx context.Context, req model.TicketCreateRequest) (model.APIResponse[json.RawMessage], error) {
	return Call[json.RawMessage](ctx, c, "/tickets", CallOptions{Method: http.MethodPost, Body: req})
}

// GET /analytics/tenant-stats
func (c *APIClient) TenantStats(ctx context.Context, rangeKey string) (model.APIResponse[model.Stats], error) {
	return Call[model.Stats](ctx, c, withRange("/analytics/tenant-stats", rangeKey), CallOptions{})
}

// GET /analytics/ticket-stats
func (c *APIClient) TicketStats(ctx context.Context, rangeKey string) (model.APIResponse[model.Stats], error) {
	return Call[model.Stats](ctx, c, withRange("/analytics/ticket-stats", rangeKey), CallOptions{})
}

func withRange(endpoint, rangeKey string) string {
	if rangeKey == "" {
		return endpoint
	}
	return endpoint + "?" + url.Values{"range": {rangeKey}}.Encode()
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	default:
		payload, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		return payload, nil
	}
}
