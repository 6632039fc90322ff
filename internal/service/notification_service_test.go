package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/facility-service/internal/config"
	"github.com/spec-kit/facility-service/internal/domain"
	"github.com/spec-kit/facility-service/internal/events"
)

func notificationFixture(dispatcher events.Dispatcher, users *fakeUserRepo, tickets *fakeTicketRepo) (*NotificationService, *fakeNotificationRepo) {
	store := &fakeNotificationRepo{}
	svc := NewNotificationService(
		config.NotificationConfig{UnreadCacheTTLSeconds: 30, NotePreviewLength: 30},
		zap.NewNop(),
		NotificationDependencies{
			NotificationRepo: store,
			TicketRepo:       tickets,
			UserRepo:         users,
			Dispatcher:       dispatcher,
		},
	)
	return svc, store
}

func TestSendPersistsOneRecordPerRecipient(t *testing.T) {
	svc, store := notificationFixture(nil, newFakeUserRepo(), newFakeTicketRepo())
	ticketID := int64(7)

	if ok := svc.Send(context.Background(), []string{"a", "", "b"}, "hello", &ticketID); !ok {
		t.Fatal("send returned false")
	}
	if len(store.records) != 2 {
		t.Fatalf("record count = %d, want 2 (blank recipient skipped)", len(store.records))
	}
	for _, record := range store.records {
		if record.Message != "hello" {
			t.Errorf("message = %q, want hello", record.Message)
		}
		if record.TicketID == nil || *record.TicketID != ticketID {
			t.Errorf("ticket id = %v, want %d", record.TicketID, ticketID)
		}
		if record.IsRead {
			t.Error("new notification marked read")
		}
	}
}

func TestSendReportsFailureWithoutError(t *testing.T) {
	svc, store := notificationFixture(nil, newFakeUserRepo(), newFakeTicketRepo())
	store.insertErr = errors.New("db down")

	if ok := svc.Send(context.Background(), []string{"a"}, "hello", nil); ok {
		t.Error("send should return false on insert failure")
	}
}

func TestInvolvedUsersDegradesOnMissingTicket(t *testing.T) {
	svc, _ := notificationFixture(nil, newFakeUserRepo(admin), newFakeTicketRepo())

	involved := svc.InvolvedUsers(context.Background(), 404)
	if involved.ResidentID != nil || involved.WorkerID != nil || len(involved.AdminIDs) != 0 {
		t.Errorf("involved users should be empty for missing ticket, got %+v", involved)
	}
}

func TestNotifyUpdateDedupesAndExcludesActor(t *testing.T) {
	tickets := newFakeTicketRepo()
	workerID := worker1.ID
	ticket := domain.Ticket{
		Title:      "t",
		Status:     domain.TicketStatusAssigned,
		ReporterID: resident.ID,
		AssigneeID: &workerID,
		UpdatedBy:  "N/A",
	}
	if err := tickets.Create(context.Background(), &ticket); err != nil {
		t.Fatal(err)
	}
	svc, store := notificationFixture(nil, newFakeUserRepo(admin, worker1, resident), tickets)

	if ok := svc.NotifyUpdate(context.Background(), ticket.ID, "update", worker1.ID); !ok {
		t.Fatal("notify returned false")
	}

	if got := len(store.forRecipient(worker1.ID)); got != 0 {
		t.Errorf("excluded actor received %d notifications", got)
	}
	if got := len(store.forRecipient(admin.ID)); got != 1 {
		t.Errorf("admin notifications = %d, want 1", got)
	}
	if got := len(store.forRecipient(resident.ID)); got != 1 {
		t.Errorf("resident notifications = %d, want 1", got)
	}
}

func TestNotifyUpdateDedupesOverlappingRoles(t *testing.T) {
	// Reporter who is also the only admin must get a single record.
	tickets := newFakeTicketRepo()
	ticket := domain.Ticket{Title: "t", Status: domain.TicketStatusNotAssigned, ReporterID: admin.ID, UpdatedBy: "N/A"}
	if err := tickets.Create(context.Background(), &ticket); err != nil {
		t.Fatal(err)
	}
	svc, store := notificationFixture(nil, newFakeUserRepo(admin), tickets)

	svc.NotifyUpdate(context.Background(), ticket.ID, "update", "")
	if got := len(store.forRecipient(admin.ID)); got != 1 {
		t.Errorf("admin notifications = %d, want exactly 1", got)
	}
}

func TestMarkReadIgnoresForeignNotifications(t *testing.T) {
	svc, store := notificationFixture(nil, newFakeUserRepo(), newFakeTicketRepo())
	svc.Send(context.Background(), []string{resident.ID}, "mine", nil)
	svc.Send(context.Background(), []string{worker1.ID}, "theirs", nil)

	mine := store.forRecipient(resident.ID)[0].ID
	theirs := store.forRecipient(worker1.ID)[0].ID

	if err := svc.MarkRead(context.Background(), resident.ID, []string{mine, theirs}); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	if !store.forRecipient(resident.ID)[0].IsRead {
		t.Error("own notification not marked read")
	}
	if store.forRecipient(worker1.ID)[0].IsRead {
		t.Error("foreign notification was marked read")
	}
}

func TestUnreadCountWithoutCache(t *testing.T) {
	svc, _ := notificationFixture(nil, newFakeUserRepo(), newFakeTicketRepo())
	svc.Send(context.Background(), []string{resident.ID}, "one", nil)
	svc.Send(context.Background(), []string{resident.ID}, "two", nil)

	count, err := svc.UnreadCount(context.Background(), resident.ID)
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestNotePreview(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want string
	}{
		{name: "short text untouched", text: "leaky tap", max: 30, want: "leaky tap"},
		{name: "exact length untouched", text: strings.Repeat("a", 30), max: 30, want: strings.Repeat("a", 30)},
		{name: "long text truncated", text: strings.Repeat("a", 31), max: 30, want: strings.Repeat("a", 30) + "..."},
		{name: "multibyte counted in runes", text: strings.Repeat("ü", 5), max: 4, want: strings.Repeat("ü", 4) + "..."},
		{name: "zero max falls back to default", text: strings.Repeat("b", 40), max: 0, want: strings.Repeat("b", 30) + "..."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := notePreview(tc.text, tc.max); got != tc.want {
				t.Errorf("notePreview = %q, want %q", got, tc.want)
			}
		})
	}
}

// Drives assign and resolve through the dispatcher end to end and checks
// who hears about what.
func TestLifecycleFanout(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	tickets := newFakeTicketRepo()
	users := newFakeUserRepo(admin, worker1, resident)
	clock := &fakeClock{now: day(0)}

	notifier, store := notificationFixture(dispatcher, users, tickets)
	notifier.RegisterHandlers()

	lifecycle := NewLifecycleService(config.TicketConfig{DefaultResolutionDays: 3}, LifecycleDependencies{
		TicketRepo: tickets,
		UserRepo:   users,
		Dispatcher: dispatcher,
		Now:        clock.Now,
	})

	id := seedTicket(t, tickets, domain.Ticket{Title: "Broken heater"})

	if _, err := lifecycle.Assign(context.Background(), &admin, id, worker1.ID, 3); err != nil {
		t.Fatalf("assign: %v", err)
	}

	workerInbox := store.forRecipient(worker1.ID)
	if len(workerInbox) != 1 || !strings.Contains(workerInbox[0].Message, "You have been assigned ticket") {
		t.Fatalf("worker inbox after assign = %+v", workerInbox)
	}
	residentInbox := store.forRecipient(resident.ID)
	if len(residentInbox) != 1 || !strings.Contains(residentInbox[0].Message, "was assigned to Wang") {
		t.Fatalf("resident inbox after assign = %+v", residentInbox)
	}

	clock.now = day(5)
	if _, err := lifecycle.Resolve(context.Background(), &worker1, id); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	// Resolving actor is excluded from the fan-out.
	if got := len(store.forRecipient(worker1.ID)); got != 1 {
		t.Errorf("worker inbox after resolve = %d messages, want still 1", got)
	}
	adminInbox := store.forRecipient(admin.ID)
	if len(adminInbox) != 1 || !strings.Contains(adminInbox[0].Message, "resolved past its due date by Wang") {
		t.Fatalf("admin inbox after resolve = %+v", adminInbox)
	}
	residentInbox = store.forRecipient(resident.ID)
	if len(residentInbox) != 2 || !strings.Contains(residentInbox[1].Message, "resolved past its due date by Wang") {
		t.Fatalf("resident inbox after resolve = %+v", residentInbox)
	}
}
