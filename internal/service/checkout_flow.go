package service

import "fmt"

// CheckoutState 结帐流程状态
type CheckoutState string

// 结帐状态
const (
	CheckoutStateFilling                CheckoutState = "filling"
	CheckoutStateAwaitingStoreSelection CheckoutState = "awaiting_store_selection"
	CheckoutStateConfirming             CheckoutState = "confirming"
	CheckoutStateSubmitted              CheckoutState = "submitted"
	CheckoutStateFailed                 CheckoutState = "failed"
	CheckoutStateCartEmpty              CheckoutState = "cart_empty"
)

// CheckoutEvent 结帐流程事件
type CheckoutEvent string

// 结帐事件
const (
	CheckoutEventOpenStorePicker CheckoutEvent = "open_store_picker"
	CheckoutEventStoreReturned   CheckoutEvent = "store_returned"
	CheckoutEventSubmit          CheckoutEvent = "submit"
	CheckoutEventCartEmpty       CheckoutEvent = "cart_empty"
	CheckoutEventUpstreamOK      CheckoutEvent = "upstream_ok"
	CheckoutEventUpstreamFailed  CheckoutEvent = "upstream_failed"
	CheckoutEventRetry           CheckoutEvent = "retry"
)

var checkoutTransitions = map[CheckoutState]map[CheckoutEvent]CheckoutState{
	CheckoutStateFilling: {
		CheckoutEventOpenStorePicker: CheckoutStateAwaitingStoreSelection,
		CheckoutEventSubmit:          CheckoutStateConfirming,
		CheckoutEventCartEmpty:       CheckoutStateCartEmpty,
	},
	CheckoutStateAwaitingStoreSelection: {
		CheckoutEventStoreReturned: CheckoutStateFilling,
	},
	CheckoutStateConfirming: {
		CheckoutEventUpstreamOK:     CheckoutStateSubmitted,
		CheckoutEventUpstreamFailed: CheckoutStateFailed,
	},
	// 失败后停留在表单，草稿保留以便重试
	CheckoutStateFailed: {
		CheckoutEventRetry:           CheckoutStateFilling,
		CheckoutEventOpenStorePicker: CheckoutStateAwaitingStoreSelection,
		CheckoutEventSubmit:          CheckoutStateConfirming,
		CheckoutEventCartEmpty:       CheckoutStateCartEmpty,
	},
}

// NextCheckoutState 计算状态迁移，非法迁移返回错误
func NextCheckoutState(from CheckoutState, event CheckoutEvent) (CheckoutState, error) {
	if next, ok := checkoutTransitions[from][event]; ok {
		return next, nil
	}
	return from, fmt.Errorf("checkout transition %s --%s--> not allowed", from, event)
}

// IsTerminal 是否为终止状态
func (s CheckoutState) IsTerminal() bool {
	return s == CheckoutStateSubmitted || s == CheckoutStateCartEmpty
}
