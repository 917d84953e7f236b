package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/neighborwang/roastery/internal/upstream"
)

type fakeFetcher struct {
	calls  int
	action string
	phone  string
	body   string
	err    error
}

func (f *fakeFetcher) Fetch(_ context.Context, action, phone string) (*upstream.Result, error) {
	f.calls++
	f.action = action
	f.phone = phone
	if f.err != nil {
		return nil, f.err
	}
	return &upstream.Result{Raw: json.RawMessage(f.body)}, nil
}

func TestTrackRejectsBadPhoneBeforeUpstream(t *testing.T) {
	fetcher := &fakeFetcher{}
	svc := NewOrderTrackingService(fetcher)
	for _, phone := range []string{"", "0812345678", "09123", "09123456789", "09abcdefgh"} {
		if _, err := svc.Track(context.Background(), phone); !errors.Is(err, ErrBuyerPhoneInvalid) {
			t.Fatalf("phone %q: want ErrBuyerPhoneInvalid got %v", phone, err)
		}
	}
	if fetcher.calls != 0 {
		t.Fatalf("upstream must not be called")
	}
}

func TestTrackDecodesOrders(t *testing.T) {
	fetcher := &fakeFetcher{body: `{"found":true,"orders":[
		{"orderId":"NW-1","status":"已出貨","date":"2025-01-02","total":960,"items":"耶加雪菲 x2","trackingNumber":"F123"},
		{"orderId":"NW-2","status":"處理中","date":"2025-01-03","total":610,"items":"曼特寧 x1"}
	]}`}
	svc := NewOrderTrackingService(fetcher)

	result, err := svc.Track(context.Background(), "0912345678")
	if err != nil {
		t.Fatalf("track failed: %v", err)
	}
	if fetcher.action != "checkOrder" || fetcher.phone != "0912345678" {
		t.Fatalf("unexpected upstream call: %s %s", fetcher.action, fetcher.phone)
	}
	if !result.Found || len(result.Orders) != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}
	first := result.Orders[0]
	if !first.Shipped || !strings.HasPrefix(first.TrackingURL, "https://eservice.7-11.com.tw/E-Tracking/search.aspx?") {
		t.Fatalf("unexpected first order: %+v", first)
	}
	parsed, _ := url.Parse(first.TrackingURL)
	if parsed.Query().Get("CRM_PaymentNo") != "F123" || parsed.Query().Get("FLAG") != "12" {
		t.Fatalf("unexpected tracking query: %s", parsed.RawQuery)
	}
	if result.Orders[1].Shipped || result.Orders[1].TrackingURL != "" {
		t.Fatalf("second order should be pending without link: %+v", result.Orders[1])
	}
}

func TestTrackNotFoundUsesMessage(t *testing.T) {
	svc := NewOrderTrackingService(&fakeFetcher{body: `{"found":false,"message":"查無訂單"}`})
	result, err := svc.Track(context.Background(), "0912345678")
	if err != nil {
		t.Fatalf("track failed: %v", err)
	}
	if result.Found || result.Message != "查無訂單" || result.Orders == nil {
		t.Fatalf("unexpected result: %+v", result)
	}

	svc = NewOrderTrackingService(&fakeFetcher{body: `{"found":false}`})
	result, _ = svc.Track(context.Background(), "0912345678")
	if result.Message != defaultNoOrderMessage {
		t.Fatalf("want default message got %q", result.Message)
	}
}

func TestTrackPropagatesUpstreamError(t *testing.T) {
	svc := NewOrderTrackingService(&fakeFetcher{err: &upstream.Error{Kind: upstream.ErrMarkupResponse}})
	if _, err := svc.Track(context.Background(), "0912345678"); !errors.Is(err, upstream.ErrMarkupResponse) {
		t.Fatalf("want markup error got %v", err)
	}
}
