package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/neighborwang/roastery/internal/logger"

	"github.com/go-resty/resty/v2"
)

// 上游错误类别
var (
	ErrEndpointMissing = errors.New("upstream endpoint not configured")
	ErrRequestFailed   = errors.New("upstream request failed")
	ErrStatus          = errors.New("upstream status error")
	ErrMarkupResponse  = errors.New("upstream permission/configuration error")
	ErrResponseInvalid = errors.New("upstream response invalid")
	ErrRejected        = errors.New("upstream rejected request")
)

const (
	defaultTimeout      = 30 * time.Second
	defaultRejectReason = "upstream internal error"
)

// Error 上游调用失败详情
type Error struct {
	Kind       error
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.Error()
}

// Unwrap 支持 errors.Is 判断类别
func (e *Error) Unwrap() error {
	return e.Kind
}

// IsConfigError 是否为配置类错误（缺少地址或上游返回登录页）
func IsConfigError(err error) bool {
	return errors.Is(err, ErrEndpointMissing) || errors.Is(err, ErrMarkupResponse)
}

// Config 上游客户端配置
type Config struct {
	Endpoint string
	Timeout  time.Duration
}

// Result 上游结构化响应，Fields 仅在响应为 JSON 对象时有值
type Result struct {
	Raw    json.RawMessage
	Fields map[string]json.RawMessage
}

// OrderID 读取上游生成的订单编号
func (r *Result) OrderID() string {
	if r == nil {
		return ""
	}
	raw, ok := r.Fields["orderId"]
	if !ok {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	return strings.Trim(string(raw), `"`)
}

// Client 上游脚本代理客户端
type Client struct {
	endpoint string
	http     *resty.Client
}

// New 创建上游客户端；endpoint 为空时在调用时返回配置错误
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		endpoint: strings.TrimSpace(cfg.Endpoint),
		http: resty.New().
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
}

// Configured 是否已配置上游地址
func (c *Client) Configured() bool {
	return c != nil && c.endpoint != ""
}

// Fetch 只读查询（菜单、查单），不检查 success 标记
func (c *Client) Fetch(ctx context.Context, action, phone string) (*Result, error) {
	if !c.Configured() {
		logger.Errorw("upstream_endpoint_missing", "action", action)
		return nil, &Error{Kind: ErrEndpointMissing}
	}
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("action", action)
	if phone != "" {
		req.SetQueryParam("phone", phone)
	}
	resp, err := req.Get(c.endpoint)
	result, err := classify(resp, err, false)
	if err != nil {
		logger.Warnw("upstream_fetch_failed", "action", action, "error", err)
		return nil, err
	}
	return result, nil
}

// Submit 提交订单，原样转发 JSON
func (c *Client) Submit(ctx context.Context, payload interface{}) (*Result, error) {
	if !c.Configured() {
		logger.Errorw("upstream_endpoint_missing", "action", "submit")
		return nil, &Error{Kind: ErrEndpointMissing}
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(c.endpoint)
	result, err := classify(resp, err, true)
	if err != nil {
		logger.Warnw("upstream_submit_failed", "error", err)
		return nil, err
	}
	return result, nil
}

// classify 依次判断：传输错误、非 2xx、HTML 页面、JSON 解析、success=false
func classify(resp *resty.Response, reqErr error, checkFlag bool) (*Result, error) {
	if reqErr != nil {
		return nil, &Error{Kind: ErrRequestFailed, Message: fmt.Sprintf("upstream request failed: %v", reqErr)}
	}
	status := resp.StatusCode()
	if status < 200 || status > 299 {
		return nil, &Error{
			Kind:       ErrStatus,
			StatusCode: status,
			Message:    fmt.Sprintf("upstream responded with status %d", status),
		}
	}
	if isMarkup(resp.Header().Get("Content-Type")) {
		return nil, &Error{Kind: ErrMarkupResponse, StatusCode: status}
	}

	body := resp.Body()
	if !json.Valid(body) {
		return nil, &Error{
			Kind:       ErrResponseInvalid,
			StatusCode: status,
			Message:    "upstream response is not valid json",
		}
	}
	var fields map[string]json.RawMessage
	_ = json.Unmarshal(body, &fields)
	result := &Result{Raw: json.RawMessage(body), Fields: fields}
	if checkFlag {
		if reason, rejected := rejection(fields); rejected {
			return nil, &Error{Kind: ErrRejected, StatusCode: status, Message: reason}
		}
	}
	return result, nil
}

func isMarkup(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(contentType)
	}
	return strings.Contains(mediaType, "text/html") || strings.Contains(mediaType, "application/xhtml")
}

func rejection(fields map[string]json.RawMessage) (string, bool) {
	raw, ok := fields["success"]
	if !ok {
		return "", false
	}
	var success bool
	if err := json.Unmarshal(raw, &success); err != nil || success {
		return "", false
	}
	for _, key := range []string{"error", "message"} {
		var text string
		if msg, ok := fields[key]; ok && json.Unmarshal(msg, &text) == nil && strings.TrimSpace(text) != "" {
			return text, true
		}
	}
	return defaultRejectReason, true
}
