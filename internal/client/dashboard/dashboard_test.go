package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"telicommunity-go/internal/client/apiclient"
	"telicommunity-go/pkg/logger"
)

type fakeAPI struct {
	pending    []apiclient.Booking
	stats      apiclient.Stats
	approveErr error
	rejectErr  error
	listErr    error
	calls      []string
	// during lets a test inspect the view while a call is in flight.
	during func()
}

func (f *fakeAPI) ListPending(ctx context.Context) ([]apiclient.Booking, error) {
	f.calls = append(f.calls, "list")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]apiclient.Booking(nil), f.pending...), nil
}

func (f *fakeAPI) Stats(ctx context.Context) (apiclient.Stats, error) {
	f.calls = append(f.calls, "stats")
	return f.stats, nil
}

func (f *fakeAPI) Approve(ctx context.Context, id string) (apiclient.Booking, error) {
	f.calls = append(f.calls, "approve:"+id)
	if f.during != nil {
		f.during()
	}
	if f.approveErr != nil {
		return apiclient.Booking{}, f.approveErr
	}
	f.remove(id)
	f.stats.Approved++
	return apiclient.Booking{ID: id, Status: "approved"}, nil
}

func (f *fakeAPI) Reject(ctx context.Context, id string) error {
	f.calls = append(f.calls, "reject:"+id)
	if f.rejectErr != nil {
		return f.rejectErr
	}
	f.remove(id)
	f.stats.Total--
	return nil
}

func (f *fakeAPI) remove(id string) {
	kept := f.pending[:0]
	for _, b := range f.pending {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	f.pending = kept
	f.stats.Pending = int64(len(kept))
}

func ids(items []apiclient.Booking) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func newTestDashboard(t *testing.T) (*Dashboard, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{
		pending: []apiclient.Booking{{ID: "b-1"}, {ID: "b-2"}},
		stats:   apiclient.Stats{Total: 3, Pending: 2, Approved: 1},
	}
	d := New(api, logger.Nop())
	if err := d.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	api.calls = nil
	return d, api
}

func TestApproveRemovesTentativelyThenReconciles(t *testing.T) {
	d, api := newTestDashboard(t)
	api.during = func() {
		if diff := cmp.Diff([]string{"b-2"}, ids(d.Pending())); diff != "" {
			t.Errorf("expected tentative removal while in flight (-want +got):\n%s", diff)
		}
	}

	if err := d.Approve(context.Background(), "b-1"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if diff := cmp.Diff([]string{"b-2"}, ids(d.Pending())); diff != "" {
		t.Fatalf("unexpected pending (-want +got):\n%s", diff)
	}
	if d.view.Pending() != 0 {
		t.Fatalf("expected patch to be reconciled")
	}
	if got := d.Stats(); got.Pending != 1 || got.Approved != 2 {
		t.Fatalf("expected refetched stats, got %+v", got)
	}
}

func TestApproveFailureRollsBack(t *testing.T) {
	d, api := newTestDashboard(t)
	api.approveErr = errors.New("boom")

	err := d.Approve(context.Background(), "b-1")
	if !errors.Is(err, api.approveErr) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if diff := cmp.Diff([]string{"b-1", "b-2"}, ids(d.Pending())); diff != "" {
		t.Fatalf("expected rollback (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"approve:b-1", "list", "stats"}, api.calls); diff != "" {
		t.Fatalf("expected re-fetch after failure (-want +got):\n%s", diff)
	}
}

func TestApproveKeepsPatchWhenRefetchFails(t *testing.T) {
	d, api := newTestDashboard(t)
	api.during = func() { api.listErr = errors.New("offline") }

	if err := d.Approve(context.Background(), "b-1"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if diff := cmp.Diff([]string{"b-2"}, ids(d.Pending())); diff != "" {
		t.Fatalf("expected patch to stay (-want +got):\n%s", diff)
	}
	if got := d.Stats(); got.Pending != 2 {
		t.Fatalf("expected stats untouched, got %+v", got)
	}
}

func TestRejectDeclinedIsNoop(t *testing.T) {
	d, api := newTestDashboard(t)
	var prompt string

	err := d.Reject(context.Background(), "b-1", func(p string) bool {
		prompt = p
		return false
	})
	if !errors.Is(err, ErrRejectCancelled) {
		t.Fatalf("expected ErrRejectCancelled, got %v", err)
	}
	if prompt != RejectConfirmation {
		t.Fatalf("unexpected prompt %q", prompt)
	}
	if len(api.calls) != 0 {
		t.Fatalf("expected no api calls, got %v", api.calls)
	}
	if diff := cmp.Diff([]string{"b-1", "b-2"}, ids(d.Pending())); diff != "" {
		t.Fatalf("expected list untouched (-want +got):\n%s", diff)
	}
}

func TestRejectConfirmed(t *testing.T) {
	d, _ := newTestDashboard(t)

	if err := d.Reject(context.Background(), "b-2", func(string) bool { return true }); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if diff := cmp.Diff([]string{"b-1"}, ids(d.Pending())); diff != "" {
		t.Fatalf("unexpected pending (-want +got):\n%s", diff)
	}
	if got := d.Stats(); got.Total != 2 || got.Pending != 1 {
		t.Fatalf("expected refetched stats, got %+v", got)
	}
}

func TestRejectFailureRollsBack(t *testing.T) {
	d, api := newTestDashboard(t)
	api.rejectErr = &apiclient.APIError{Status: 409, Code: "booking_not_pending"}

	err := d.Reject(context.Background(), "b-1", func(string) bool { return true })
	if !apiclient.IsCode(err, "booking_not_pending") {
		t.Fatalf("expected api error, got %v", err)
	}
	if diff := cmp.Diff([]string{"b-1", "b-2"}, ids(d.Pending())); diff != "" {
		t.Fatalf("expected rollback (-want +got):\n%s", diff)
	}
}

func TestPendingViewPatches(t *testing.T) {
	v := NewPendingView()
	v.Replace([]apiclient.Booking{{ID: "a"}, {ID: "b"}, {ID: "c"}})
	v.ApplyRemoval("op-1", "a")
	v.ApplyRemoval("op-2", "c")

	if diff := cmp.Diff([]string{"b"}, ids(v.Items())); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}

	v.Discard("op-2")
	v.Replace([]apiclient.Booking{{ID: "a"}, {ID: "c"}, {ID: "d"}})
	if diff := cmp.Diff([]string{"c", "d"}, ids(v.Items())); diff != "" {
		t.Fatalf("replace must keep outstanding patches (-want +got):\n%s", diff)
	}

	v.Reconcile("op-1", []apiclient.Booking{{ID: "c"}, {ID: "d"}})
	if diff := cmp.Diff([]string{"c", "d"}, ids(v.Items())); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if v.Pending() != 0 {
		t.Fatalf("expected no outstanding patches")
	}
}
