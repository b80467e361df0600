package repository

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"exchange-rate-resolver/internal/domain/ports"
	"exchange-rate-resolver/internal/metrics"
	"exchange-rate-resolver/pkg/logger"
)

const (
	outcomeOK       = "ok"
	outcomeNetwork  = "network_error"
	outcomeUpstream = "upstream_error"

	maxResponseBytes = 4 << 20
)

// ExchangeAPI is the HTTP client for the remote rate service.
type ExchangeAPI struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient *http.Client
	log        *logger.Logger
	metrics    *metrics.Metrics
}

func NewExchangeAPI(baseURL, apiKey, userAgent string, timeout time.Duration, log *logger.Logger, m *metrics.Metrics) *ExchangeAPI {
	return &ExchangeAPI{
		baseURL:   baseURL,
		apiKey:    apiKey,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log:     log,
		metrics: m,
	}
}

// Get sends GET baseURL+path with params and returns the parsed JSON body.
// Transport failures wrap ports.ErrNetwork. Non-2xx statuses, invalid JSON and
// error envelopes wrap ports.ErrUpstream.
func (e *ExchangeAPI) Get(ctx context.Context, path string, params url.Values) (gjson.Result, error) {
	endpoint, err := e.endpoint(path, params)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%w: build request url: %v", ports.ErrNetwork, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%w: failed to create request: %v", ports.ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")
	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}

	start := time.Now()

	resp, err := e.httpClient.Do(req)
	if err != nil {
		e.metrics.Upstream(path, outcomeNetwork, time.Since(start))
		e.log.Error("Rate service request failed", "path", path, "error", err)
		return gjson.Result{}, fmt.Errorf("%w: failed to send request: %v", ports.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		e.metrics.Upstream(path, outcomeNetwork, time.Since(start))
		return gjson.Result{}, fmt.Errorf("%w: failed to read response: %v", ports.ErrNetwork, err)
	}

	res, err := decodeBody(resp.StatusCode, body)
	if err != nil {
		e.metrics.Upstream(path, outcomeUpstream, time.Since(start))
		e.log.Warn("Rate service returned an error", "path", path, "status", resp.StatusCode, "error", err)
		return gjson.Result{}, err
	}

	e.metrics.Upstream(path, outcomeOK, time.Since(start))
	e.log.Debug("Rate service request succeeded", "path", path, "took", time.Since(start))
	return res, nil
}

func (e *ExchangeAPI) endpoint(path string, params url.Values) (string, error) {
	endpoint, err := url.JoinPath(e.baseURL, path)
	if err != nil {
		return "", err
	}

	query := url.Values{}
	for k, v := range params {
		query[k] = append([]string(nil), v...)
	}
	if e.apiKey != "" {
		query.Set("access_key", e.apiKey)
	}

	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return endpoint, nil
}

func decodeBody(status int, body []byte) (gjson.Result, error) {
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		if gjson.ValidBytes(body) {
			if msg := errorMessage(gjson.ParseBytes(body)); msg != "" {
				return gjson.Result{}, fmt.Errorf("%w: status %d: %s", ports.ErrUpstream, status, msg)
			}
		}
		return gjson.Result{}, fmt.Errorf("%w: status %d", ports.ErrUpstream, status)
	}

	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("%w: response is not valid JSON", ports.ErrUpstream)
	}

	res := gjson.ParseBytes(body)
	if !res.IsObject() {
		return gjson.Result{}, fmt.Errorf("%w: response is not a JSON object", ports.ErrUpstream)
	}

	success := res.Get("success")
	if res.Get("error").Exists() || (success.Exists() && !success.Bool()) {
		msg := errorMessage(res)
		if msg == "" {
			msg = "service reported failure"
		}
		return gjson.Result{}, fmt.Errorf("%w: %s", ports.ErrUpstream, msg)
	}

	return res, nil
}

// errorMessage reads either {"error":"..."} or {"error":{"code":..,"info":".."}}.
func errorMessage(res gjson.Result) string {
	errVal := res.Get("error")
	if !errVal.Exists() {
		return ""
	}
	if errVal.IsObject() {
		if info := errVal.Get("info"); info.Exists() {
			return info.String()
		}
		if msg := errVal.Get("message"); msg.Exists() {
			return msg.String()
		}
		return errVal.Get("type").String()
	}
	return errVal.String()
}
