package service

import "errors"

// 购物车相关错误
var (
	ErrInvalidQuantity     = errors.New("quantity out of range")
	ErrCartNotHydrated     = errors.New("cart not hydrated")
	ErrCartLineNotFound    = errors.New("cart line not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrProductOptionAbsent = errors.New("product option not available")
	ErrGrindInvalid        = errors.New("grind option invalid")
	ErrSessionRequired     = errors.New("session required")
)

// 结帐相关错误
var (
	ErrCartEmpty         = errors.New("cart is empty")
	ErrBuyerNameRequired = errors.New("buyer name required")
	ErrBuyerPhoneInvalid = errors.New("buyer phone invalid")
	ErrStoreRequired     = errors.New("store selection required")
	ErrOrderSubmitFailed = errors.New("order submit failed")
	ErrSnapshotCorrupted = errors.New("snapshot corrupted")
	ErrSessionTokenBad   = errors.New("session token invalid")
	ErrSessionSecretWeak = errors.New("session secret too weak")
)

// 代理相关错误
var (
	ErrProxyActionInvalid = errors.New("proxy action invalid")
	ErrProxyBodyInvalid   = errors.New("proxy body invalid")
)
