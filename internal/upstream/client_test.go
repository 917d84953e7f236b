package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientMissingEndpointFailsBeforeNetwork(t *testing.T) {
	client := New(Config{Endpoint: "  "})
	if _, err := client.Submit(context.Background(), map[string]string{"a": "b"}); !errors.Is(err, ErrEndpointMissing) {
		t.Fatalf("want ErrEndpointMissing got %v", err)
	}
	if _, err := client.Fetch(context.Background(), "getProducts", ""); !errors.Is(err, ErrEndpointMissing) {
		t.Fatalf("want ErrEndpointMissing got %v", err)
	}
	if !IsConfigError(&Error{Kind: ErrEndpointMissing}) {
		t.Fatalf("missing endpoint should be a config error")
	}
}

func TestClientSubmitSuccess(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("want POST got %s", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"orderId":"NW-001"}`))
	}))
	defer srv.Close()

	result, err := New(Config{Endpoint: srv.URL}).Submit(context.Background(), map[string]interface{}{"totalAmount": 960})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.OrderID() != "NW-001" {
		t.Fatalf("want order id NW-001 got %q", result.OrderID())
	}
	if got["totalAmount"] != float64(960) {
		t.Fatalf("payload not forwarded: %+v", got)
	}
}

func TestClientSubmitForwardsRawBytesVerbatim(t *testing.T) {
	raw := []byte(`{"items":[],"buyer":{"name":"王"}}`)
	var received []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	if _, err := New(Config{Endpoint: srv.URL}).Submit(context.Background(), raw); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if string(received) != string(raw) {
		t.Fatalf("body changed: want %s got %s", raw, received)
	}
}

func TestClientStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(Config{Endpoint: srv.URL}).Submit(context.Background(), map[string]string{})
	var upErr *Error
	if !errors.As(err, &upErr) || !errors.Is(err, ErrStatus) {
		t.Fatalf("want status error got %v", err)
	}
	if upErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("want 502 got %d", upErr.StatusCode)
	}
	if upErr.Error() != "upstream responded with status 502" {
		t.Fatalf("status should be embedded, got %q", upErr.Error())
	}
}

func TestClientMarkupNeverParsed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		// 即使内容是合法 JSON 也按登录页处理
		_, _ = w.Write([]byte(`{"success":true,"orderId":"SHOULD-NOT-PARSE"}`))
	}))
	defer srv.Close()

	client := New(Config{Endpoint: srv.URL})
	result, err := client.Submit(context.Background(), map[string]string{})
	if !errors.Is(err, ErrMarkupResponse) || result != nil {
		t.Fatalf("want markup error and nil result, got result=%v err=%v", result, err)
	}
	if !IsConfigError(err) {
		t.Fatalf("markup response should be a config error")
	}
	if _, err := client.Fetch(context.Background(), "getProducts", ""); !errors.Is(err, ErrMarkupResponse) {
		t.Fatalf("fetch: want markup error got %v", err)
	}
}

func TestClientRejectedCarriesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":false,"error":"庫存不足"}`))
	}))
	defer srv.Close()

	_, err := New(Config{Endpoint: srv.URL}).Submit(context.Background(), map[string]string{})
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("want ErrRejected got %v", err)
	}
	if err.Error() != "庫存不足" {
		t.Fatalf("want embedded message got %q", err.Error())
	}
}

func TestClientRejectedWithoutMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":false}`))
	}))
	defer srv.Close()

	_, err := New(Config{Endpoint: srv.URL}).Submit(context.Background(), map[string]string{})
	if err == nil || err.Error() != defaultRejectReason {
		t.Fatalf("want default reason got %v", err)
	}
}

func TestClientFetchForwardsQueryAndSkipsFlag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("want GET got %s", r.Method)
		}
		if r.URL.Query().Get("action") != "checkOrder" || r.URL.Query().Get("phone") != "0912345678" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":false,"found":false,"message":"查無訂單"}`))
	}))
	defer srv.Close()

	result, err := New(Config{Endpoint: srv.URL}).Fetch(context.Background(), "checkOrder", "0912345678")
	if err != nil {
		t.Fatalf("fetch should pass through structured body, got %v", err)
	}
	if string(result.Raw) != `{"success":false,"found":false,"message":"查無訂單"}` {
		t.Fatalf("raw body changed: %s", string(result.Raw))
	}
}

func TestClientFetchAcceptsArrayBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("phone") {
			t.Errorf("empty phone should be omitted")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"1"}]`))
	}))
	defer srv.Close()

	result, err := New(Config{Endpoint: srv.URL}).Fetch(context.Background(), "getProducts", "")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if result.Fields != nil || string(result.Raw) != `[{"id":"1"}]` {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestClientInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`oops`))
	}))
	defer srv.Close()

	if _, err := New(Config{Endpoint: srv.URL}).Submit(context.Background(), map[string]string{}); !errors.Is(err, ErrResponseInvalid) {
		t.Fatalf("want ErrResponseInvalid got %v", err)
	}
}

func TestClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := New(Config{Endpoint: srv.URL, Timeout: 20 * time.Millisecond}).Submit(context.Background(), map[string]string{})
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("want ErrRequestFailed got %v", err)
	}
}
