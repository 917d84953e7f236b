package response

import "net/http"

// AppError 统一错误包装
// Code 为信封内业务码，HTTPStatus 仅代理边界使用
type AppError struct {
	Code       int
	HTTPStatus int
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WrapError 包装错误（信封响应，HTTP 状态恒为 200）
func WrapError(code int, message string, err error) *AppError {
	return &AppError{
		Code:       code,
		HTTPStatus: http.StatusOK,
		Message:    message,
		Err:        err,
	}
}

// WrapProxyError 包装代理边界错误，业务码与 HTTP 状态一致
func WrapProxyError(httpStatus int, message string, err error) *AppError {
	return &AppError{
		Code:       httpStatus,
		HTTPStatus: httpStatus,
		Message:    message,
		Err:        err,
	}
}
