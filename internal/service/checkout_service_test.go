package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/neighborwang/roastery/internal/constants"
	"github.com/neighborwang/roastery/internal/models"
	"github.com/neighborwang/roastery/internal/upstream"
)

type fakeSubmitter struct {
	calls   int
	payload OrderPayload
	result  *upstream.Result
	err     error
}

func (f *fakeSubmitter) Submit(_ context.Context, payload interface{}) (*upstream.Result, error) {
	f.calls++
	if p, ok := payload.(OrderPayload); ok {
		f.payload = p
	}
	return f.result, f.err
}

type fakePicker struct{}

func (fakePicker) PickerURL() (string, error) {
	return "https://emap.example.com/map?url=cb", nil
}

type fakeScheduler struct {
	scheduled []time.Time
}

func (f *fakeScheduler) ScheduleDraftExpiry(_ string, savedAt time.Time) error {
	f.scheduled = append(f.scheduled, savedAt)
	return nil
}

type checkoutFixture struct {
	repo      *memoryBlobRepo
	carts     *CartService
	drafts    *DraftHandoff
	submitter *fakeSubmitter
	scheduler *fakeScheduler
	svc       *CheckoutService
}

func newCheckoutFixture() *checkoutFixture {
	f := &checkoutFixture{
		repo:      newMemoryBlobRepo(),
		submitter: &fakeSubmitter{},
		scheduler: &fakeScheduler{},
	}
	f.carts = newTestCartService(f.repo)
	f.drafts = NewDraftHandoff(f.repo)
	f.svc = NewCheckoutService(f.carts, f.drafts, f.submitter, fakePicker{}, f.scheduler)
	return f
}

func validBuyer() models.CheckoutDraft {
	return models.CheckoutDraft{
		Name:      "王小明",
		Phone:     "0912345678",
		StoreName: "鑫東門",
		StoreID:   "123456",
	}
}

func TestCheckoutSubmitEmptyCartNeverReachesUpstream(t *testing.T) {
	f := newCheckoutFixture()
	result, err := f.svc.Submit(context.Background(), "s1", validBuyer())
	if !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("want ErrCartEmpty got %v", err)
	}
	if result.State != CheckoutStateCartEmpty {
		t.Fatalf("want cart_empty got %s", result.State)
	}
	if f.submitter.calls != 0 {
		t.Fatalf("upstream must not be called, calls=%d", f.submitter.calls)
	}
}

func TestCheckoutSubmitSuccessClearsCartAndDraft(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	f.submitter.result = &upstream.Result{
		Raw:    json.RawMessage(`{"success":true,"orderId":"X"}`),
		Fields: map[string]json.RawMessage{"success": json.RawMessage(`true`), "orderId": json.RawMessage(`"X"`)},
	}

	if _, err := f.carts.AddItem(ctx, "s1", AddCartItemInput{
		CartSelection: CartSelection{ProductID: "1", Variant: constants.VariantBulk200g, Form: constants.FormWholeBean},
		Quantity:      2,
	}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := f.svc.SaveDraft(ctx, "s1", validBuyer()); err != nil {
		t.Fatalf("save draft failed: %v", err)
	}

	result, err := f.svc.Submit(ctx, "s1", validBuyer())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.State != CheckoutStateSubmitted || result.OrderID != "X" {
		t.Fatalf("unexpected result: %+v", result)
	}

	payload := f.submitter.payload
	if len(payload.Items) != 1 || payload.Items[0].Quantity != 2 || payload.Items[0].Price.String() != "450" {
		t.Fatalf("unexpected payload items: %+v", payload.Items)
	}
	if payload.Items[0].Form != constants.FormWholeBean || payload.Items[0].Grind != "" {
		t.Fatalf("unexpected packaging in payload: %+v", payload.Items[0])
	}
	if payload.TotalAmount.String() != "960" {
		t.Fatalf("want total 960 got %s", payload.TotalAmount)
	}
	if payload.Buyer.StoreName != "鑫東門" {
		t.Fatalf("buyer not forwarded: %+v", payload.Buyer)
	}

	summary, _ := f.carts.Get(ctx, "s1")
	if len(summary.Items) != 0 {
		t.Fatalf("cart should be cleared")
	}
	if draft, _ := f.drafts.RestoreDraft(ctx, "s1"); draft != nil {
		t.Fatalf("draft should be discarded")
	}
}

func TestCheckoutSubmitFailureKeepsDraftAndCart(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	f.submitter.err = &upstream.Error{Kind: upstream.ErrRejected, Message: "庫存不足"}
	_, _ = f.carts.AddItem(ctx, "s1", AddCartItemInput{CartSelection: CartSelection{ProductID: "2"}, Quantity: 1})

	result, err := f.svc.Submit(ctx, "s1", validBuyer())
	if !errors.Is(err, ErrOrderSubmitFailed) || !errors.Is(err, upstream.ErrRejected) {
		t.Fatalf("want wrapped upstream rejection got %v", err)
	}
	if result.State != CheckoutStateFailed || result.Error != "庫存不足" {
		t.Fatalf("unexpected result: %+v", result)
	}
	draft, _ := f.drafts.RestoreDraft(ctx, "s1")
	if draft == nil || draft.Name != "王小明" {
		t.Fatalf("draft should survive failure, got %+v", draft)
	}
	summary, _ := f.carts.Get(ctx, "s1")
	if len(summary.Items) != 1 {
		t.Fatalf("cart should survive failure")
	}
}

func TestCheckoutSubmitValidation(t *testing.T) {
	cases := []struct {
		name string
		mut  func(d *models.CheckoutDraft)
		want error
	}{
		{name: "missing name", mut: func(d *models.CheckoutDraft) { d.Name = "  " }, want: ErrBuyerNameRequired},
		{name: "bad phone", mut: func(d *models.CheckoutDraft) { d.Phone = "0812345678" }, want: ErrBuyerPhoneInvalid},
		{name: "short phone", mut: func(d *models.CheckoutDraft) { d.Phone = "091234567" }, want: ErrBuyerPhoneInvalid},
		{name: "missing store", mut: func(d *models.CheckoutDraft) { d.StoreName = "" }, want: ErrStoreRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newCheckoutFixture()
			ctx := context.Background()
			_, _ = f.carts.AddItem(ctx, "s1", AddCartItemInput{CartSelection: CartSelection{ProductID: "1"}, Quantity: 1})
			buyer := validBuyer()
			tc.mut(&buyer)

			result, err := f.svc.Submit(ctx, "s1", buyer)
			if !errors.Is(err, tc.want) {
				t.Fatalf("want %v got %v", tc.want, err)
			}
			if !IsValidationError(err) || result.State != CheckoutStateFilling {
				t.Fatalf("validation failure should stay in filling, got %+v", result)
			}
			if f.submitter.calls != 0 {
				t.Fatalf("upstream must not be called on validation failure")
			}
		})
	}
}

func TestCheckoutOpenRestoresAndReconciles(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	_, _ = f.carts.AddItem(ctx, "s1", AddCartItemInput{CartSelection: CartSelection{ProductID: "1"}, Quantity: 1})

	stale := validBuyer()
	stale.Note = "下午到"
	picker, err := f.svc.BeginStoreSelection(ctx, "s1", stale)
	if err != nil || picker.RedirectURL == "" {
		t.Fatalf("begin store selection failed: view=%+v err=%v", picker, err)
	}
	if picker.State != CheckoutStateAwaitingStoreSelection {
		t.Fatalf("want awaiting_store_selection got %s", picker.State)
	}
	if len(f.scheduler.scheduled) != 1 {
		t.Fatalf("draft expiry should be scheduled once, got %d", len(f.scheduler.scheduled))
	}

	view, err := f.svc.Open(ctx, "s1", url.Values{"storeId": {"654321"}, "storeName": {"新門市"}})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if view.State != CheckoutStateFilling || !view.StoreReturned {
		t.Fatalf("store return should land in filling, got %+v", view)
	}
	if view.Form.StoreID != "654321" || view.Form.StoreName != "新門市" || view.Form.Note != "下午到" || view.Form.Name != "王小明" {
		t.Fatalf("unexpected reconciled form: %+v", view.Form)
	}

	// 刷新后不带 query 仍保持新门市
	view, _ = f.svc.Open(ctx, "s1", url.Values{})
	if view.StoreReturned || view.Form.StoreName != "新門市" {
		t.Fatalf("reconciled store should be persisted, got %+v", view.Form)
	}
}

func TestCheckoutOpenEmptyCartRedirects(t *testing.T) {
	f := newCheckoutFixture()
	view, err := f.svc.Open(context.Background(), "s1", url.Values{"storeName": {"門市"}})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if view.State != CheckoutStateCartEmpty || view.RedirectURL != constants.PathCart {
		t.Fatalf("unexpected view: %+v", view)
	}
}

func TestCheckoutStorePickerWithEmptyCartRedirects(t *testing.T) {
	f := newCheckoutFixture()
	view, err := f.svc.BeginStoreSelection(context.Background(), "s1", validBuyer())
	if err != nil {
		t.Fatalf("begin store selection failed: %v", err)
	}
	if view.State != CheckoutStateCartEmpty || view.RedirectURL != constants.PathCart {
		t.Fatalf("unexpected view: %+v", view)
	}
	if len(f.scheduler.scheduled) != 0 {
		t.Fatalf("empty cart should not save a draft")
	}
}
