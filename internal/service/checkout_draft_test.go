package service

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/neighborwang/roastery/internal/constants"
	"github.com/neighborwang/roastery/internal/models"
)

func TestDraftRoundTripWithStoreOverride(t *testing.T) {
	repo := newMemoryBlobRepo()
	handoff := NewDraftHandoff(repo)
	ctx := context.Background()

	saved := models.CheckoutDraft{
		Name:      "王小明",
		Phone:     "0912345678",
		StoreName: "舊門市",
		StoreID:   "111111",
		Note:      "請下午送",
	}
	if _, err := handoff.SaveDraft(ctx, "s1", saved); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	draft, err := NewDraftHandoff(repo).RestoreDraft(ctx, "s1")
	if err != nil || draft == nil {
		t.Fatalf("restore failed: draft=%v err=%v", draft, err)
	}
	query := url.Values{"storeId": {"222222"}, "storeName": {"新門市"}}
	form := ReconcileStoreSelection(draft, StoreSelectionFromQuery(query))

	want := models.CheckoutDraft{
		Name:      "王小明",
		Phone:     "0912345678",
		StoreName: "新門市",
		StoreID:   "222222",
		Note:      "請下午送",
	}
	if form != want {
		t.Fatalf("want %+v got %+v", want, form)
	}
}

func TestReconcileStoreSelectionMissingIDBecomesEmpty(t *testing.T) {
	draft := &models.CheckoutDraft{Name: "a", StoreName: "舊門市", StoreID: "111111"}
	form := ReconcileStoreSelection(draft, StoreSelectionFromQuery(url.Values{"storeName": {"新門市"}}))
	if form.StoreName != "新門市" || form.StoreID != "" {
		t.Fatalf("store id should come from query, got %+v", form)
	}
}

func TestReconcileStoreSelectionWithoutQueryKeepsDraft(t *testing.T) {
	draft := &models.CheckoutDraft{Name: "a", StoreName: "舊門市", StoreID: "111111"}
	form := ReconcileStoreSelection(draft, StoreSelectionFromQuery(url.Values{"storeId": {"999"}}))
	if form != *draft {
		t.Fatalf("id without name should not override, got %+v", form)
	}
}

func TestReconcileStoreSelectionWithoutDraft(t *testing.T) {
	form := ReconcileStoreSelection(nil, models.StoreSelection{StoreID: "1", StoreName: "門市"})
	if form != (models.CheckoutDraft{StoreID: "1", StoreName: "門市"}) {
		t.Fatalf("unexpected form: %+v", form)
	}
}

func TestDiscardDraft(t *testing.T) {
	repo := newMemoryBlobRepo()
	handoff := NewDraftHandoff(repo)
	ctx := context.Background()
	_, _ = handoff.SaveDraft(ctx, "s1", models.CheckoutDraft{Name: "a"})

	if err := handoff.DiscardDraft(ctx, "s1"); err != nil {
		t.Fatalf("discard failed: %v", err)
	}
	draft, err := handoff.RestoreDraft(ctx, "s1")
	if err != nil || draft != nil {
		t.Fatalf("expected no draft, got %+v err=%v", draft, err)
	}
}

func TestRestoreLegacyDraft(t *testing.T) {
	repo := newMemoryBlobRepo()
	ctx := context.Background()
	legacy := `{"name":"王小明","phone":"0912345678","storeName":"門市","storeId":"123","note":""}`
	_ = repo.Put(ctx, "s1", constants.SessionKeyDraft, []byte(legacy))

	draft, err := NewDraftHandoff(repo).RestoreDraft(ctx, "s1")
	if err != nil || draft == nil {
		t.Fatalf("restore legacy failed: %v", err)
	}
	if draft.Name != "王小明" || draft.StoreID != "123" {
		t.Fatalf("unexpected legacy draft: %+v", draft)
	}
}

func TestExpireDraftSkipsNewerSave(t *testing.T) {
	repo := newMemoryBlobRepo()
	handoff := NewDraftHandoff(repo)
	ctx := context.Background()

	base := time.Unix(1_700_000_000, 0)
	handoff.now = func() time.Time { return base }
	first, _ := handoff.SaveDraft(ctx, "s1", models.CheckoutDraft{Name: "a"})
	handoff.now = func() time.Time { return base.Add(time.Hour) }
	_, _ = handoff.SaveDraft(ctx, "s1", models.CheckoutDraft{Name: "b"})

	expired, err := handoff.ExpireDraft(ctx, "s1", first)
	if err != nil || expired {
		t.Fatalf("stale expiry should be skipped, expired=%v err=%v", expired, err)
	}
	expired, err = handoff.ExpireDraft(ctx, "s1", base.Add(time.Hour))
	if err != nil || !expired {
		t.Fatalf("matching expiry should delete, expired=%v err=%v", expired, err)
	}
	if draft, _ := handoff.RestoreDraft(ctx, "s1"); draft != nil {
		t.Fatalf("draft should be gone")
	}
}
