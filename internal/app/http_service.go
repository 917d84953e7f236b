package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/neighborwang/roastery/internal/logger"
)

const (
	readHeaderTimeout = 10 * time.Second
	// 提交订单要等待上游脚本，写超时需覆盖上游超时
	writeTimeout = 60 * time.Second
	idleTimeout  = 2 * time.Minute
)

// StorefrontServer 店面 HTTP 服务（页面接口、结帐、代理、门市回调）
type StorefrontServer struct {
	server *http.Server
}

// NewStorefrontServer 创建店面 HTTP 服务
func NewStorefrontServer(addr string, handler http.Handler) *StorefrontServer {
	return &StorefrontServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       idleTimeout,
		},
	}
}

// Name 服务名称
func (s *StorefrontServer) Name() string {
	return "http"
}

// Start 监听端口并服务，端口占用等错误直接返回
func (s *StorefrontServer) Start(ctx context.Context) error {
	if s == nil || s.server == nil {
		return errors.New("storefront server not initialized")
	}
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	logger.Infow("storefront_listening", "addr", listener.Addr().String())
	if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop 等待进行中的请求完成后关闭
func (s *StorefrontServer) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
