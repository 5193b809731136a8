// 프록시 라우트용 pass-through 호출
//
// Call과 달리 envelope를 해석하지 않고 상태 코드와 JSON body를 그대로 돌려준다.
// Authorization은 들어온 요청의 값만 전달하며 TokenSource는 사용하지 않는다.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/credibilitycrm/gateway/internal/metrics"
)

type ForwardRequest struct {
	// metrics 라벨 (agents, tenants, tickets, analytics)
	Resource string
	Method   string
	Path     string
	// 인코딩된 query string 그대로 (순서 보존)
	RawQuery      string
	Authorization string
	Body          []byte
}

type ForwardResponse struct {
	Status int
	Body   json.RawMessage
}

// Forward - 실패 시 *CallError (NetworkFailure 또는 ParseFailure)
func (c *APIClient) Forward(ctx context.Context, fr ForwardRequest) (*ForwardResponse, error) {
	target := c.baseURL + fr.Path
	if fr.RawQuery != "" {
		target += "?" + fr.RawQuery
	}

	var body io.Reader
	if len(fr.Body) > 0 {
		body = bytes.NewReader(fr.Body)
	}

	req, err := http.NewRequestWithContext(ctx, fr.Method, target, body)
	if err != nil {
		return nil, &CallError{Kind: NetworkFailure, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if fr.Authorization != "" {
		req.Header.Set("Authorization", fr.Authorization)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveUpstream(fr.Resource, fr.Method, 0, time.Since(start).Seconds())
		return nil, &CallError{Kind: NetworkFailure, Err: err}
	}
	defer resp.Body.Close()
	metrics.ObserveUpstream(fr.Resource, fr.Method, resp.StatusCode, time.Since(start).Seconds())

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &CallError{Kind: NetworkFailure, Status: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	if !json.Valid(raw) {
		return nil, &CallError{
			Kind:   ParseFailure,
			Status: resp.StatusCode,
			Body:   raw,
			Err:    fmt.Errorf("upstream returned non-JSON body"),
		}
	}

	return &ForwardResponse{Status: resp.StatusCode, Body: raw}, nil
}
