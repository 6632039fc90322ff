package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spec-kit/facility-service/internal/config"
	"github.com/spec-kit/facility-service/internal/domain"
	"github.com/spec-kit/facility-service/internal/events"
	"github.com/spec-kit/facility-service/internal/repository"
	apperrors "github.com/spec-kit/facility-service/pkg/util"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func day(n int) time.Time {
	return time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

var (
	admin    = domain.User{ID: "a1", Name: "Alice", Role: domain.RoleAdmin}
	worker1  = domain.User{ID: "w1", Name: "Wang", Role: domain.RoleWorker}
	worker2  = domain.User{ID: "w2", Name: "Webb", Role: domain.RoleWorker}
	resident = domain.User{ID: "r1", Name: "Rita", Role: domain.RoleResident}
)

func lifecycleFixture(cfg config.TicketConfig) (*LifecycleService, *fakeTicketRepo, *fakeClock) {
	clock := &fakeClock{now: day(0)}
	tickets := newFakeTicketRepo()
	users := newFakeUserRepo(admin, worker1, worker2, resident)
	svc := NewLifecycleService(cfg, LifecycleDependencies{
		TicketRepo: tickets,
		UserRepo:   users,
		Dispatcher: events.NewInMemoryDispatcher(),
		Now:        clock.Now,
	})
	return svc, tickets, clock
}

func seedTicket(t *testing.T, tickets *fakeTicketRepo, ticket domain.Ticket) int64 {
	t.Helper()
	if ticket.Status == "" {
		ticket.Status = domain.TicketStatusNotAssigned
	}
	if ticket.ReporterID == "" {
		ticket.ReporterID = resident.ID
	}
	if ticket.UpdatedBy == "" {
		ticket.UpdatedBy = "N/A"
	}
	if err := tickets.Create(context.Background(), &ticket); err != nil {
		t.Fatalf("seed ticket: %v", err)
	}
	return ticket.ID
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	return apperrors.ToDomainError(err).Code
}

func TestAssignSetsWorkerStatusAndDueDate(t *testing.T) {
	svc, tickets, _ := lifecycleFixture(config.TicketConfig{})
	id := seedTicket(t, tickets, domain.Ticket{Title: "Broken heater"})

	ticket, err := svc.Assign(context.Background(), &admin, id, worker1.ID, 3)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}

	if ticket.Status != domain.TicketStatusAssigned {
		t.Errorf("status = %s, want ASSIGNED", ticket.Status)
	}
	if ticket.AssigneeID == nil || *ticket.AssigneeID != worker1.ID {
		t.Errorf("assignee = %v, want %s", ticket.AssigneeID, worker1.ID)
	}
	if ticket.AssignmentDate == nil || !ticket.AssignmentDate.Equal(day(0)) {
		t.Errorf("assignment date = %v, want %v", ticket.AssignmentDate, day(0))
	}
	if ticket.DueDate == nil || !ticket.DueDate.Equal(day(3)) {
		t.Errorf("due date = %v, want assignment + 3 days", ticket.DueDate)
	}
	if ticket.UpdatedBy != admin.Name {
		t.Errorf("updated by = %q, want %q", ticket.UpdatedBy, admin.Name)
	}
	if len(ticket.Notes) != 1 {
		t.Fatalf("note count = %d, want 1", len(ticket.Notes))
	}
	note := ticket.Notes[0]
	if !strings.Contains(note.Text, "Ticket assigned to Wang with 3 day(s) to resolve") {
		t.Errorf("unexpected note text: %q", note.Text)
	}
	if note.AddedBy != admin.Name {
		t.Errorf("note author = %q, want %q", note.AddedBy, admin.Name)
	}
}

func TestAssignRejections(t *testing.T) {
	tests := []struct {
		name     string
		prepare  func(t *testing.T, tickets *fakeTicketRepo) int64
		actor    *domain.User
		workerID string
		wantCode string
	}{
		{
			name: "non-admin actor",
			prepare: func(t *testing.T, tickets *fakeTicketRepo) int64 {
				return seedTicket(t, tickets, domain.Ticket{Title: "t"})
			},
			actor:    &worker1,
			workerID: worker2.ID,
			wantCode: "FORBIDDEN",
		},
		{
			name: "already resolved",
			prepare: func(t *testing.T, tickets *fakeTicketRepo) int64 {
				return seedTicket(t, tickets, domain.Ticket{Title: "t", Status: domain.TicketStatusResolved})
			},
			actor:    &admin,
			workerID: worker1.ID,
			wantCode: "CONFLICT",
		},
		{
			name: "already assigned",
			prepare: func(t *testing.T, tickets *fakeTicketRepo) int64 {
				w := worker2.ID
				return seedTicket(t, tickets, domain.Ticket{Title: "t", Status: domain.TicketStatusAssigned, AssigneeID: &w})
			},
			actor:    &admin,
			workerID: worker1.ID,
			wantCode: "CONFLICT",
		},
		{
			name: "assignee not a worker",
			prepare: func(t *testing.T, tickets *fakeTicketRepo) int64 {
				return seedTicket(t, tickets, domain.Ticket{Title: "t"})
			},
			actor:    &admin,
			workerID: resident.ID,
			wantCode: "VALIDATION_FAILED",
		},
		{
			name: "missing ticket",
			prepare: func(t *testing.T, tickets *fakeTicketRepo) int64 {
				return 999
			},
			actor:    &admin,
			workerID: worker1.ID,
			wantCode: "NOT_FOUND",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, tickets, _ := lifecycleFixture(config.TicketConfig{})
			id := tc.prepare(t, tickets)
			_, err := svc.Assign(context.Background(), tc.actor, id, tc.workerID, 3)
			if code := errCode(t, err); code != tc.wantCode {
				t.Errorf("error code = %s, want %s", code, tc.wantCode)
			}
		})
	}
}

func TestAssignToleratesMalformedStoredLedger(t *testing.T) {
	svc, tickets, _ := lifecycleFixture(config.TicketConfig{})
	id := seedTicket(t, tickets, domain.Ticket{
		Title: "t",
		Notes: domain.ParseNoteLedger([]byte("corrupt {{ not json")),
	})

	ticket, err := svc.Assign(context.Background(), &admin, id, worker1.ID, 2)
	if err != nil {
		t.Fatalf("assign over malformed ledger: %v", err)
	}
	if len(ticket.Notes) != 1 {
		t.Errorf("note count = %d, want 1 (malformed history dropped)", len(ticket.Notes))
	}
}

func TestResolveSecondCallRejected(t *testing.T) {
	svc, tickets, clock := lifecycleFixture(config.TicketConfig{})
	id := seedTicket(t, tickets, domain.Ticket{Title: "t"})

	if _, err := svc.Assign(context.Background(), &admin, id, worker1.ID, 3); err != nil {
		t.Fatalf("assign: %v", err)
	}
	clock.now = day(1)
	resolved, err := svc.Resolve(context.Background(), &worker1, id)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Status != domain.TicketStatusResolved {
		t.Fatalf("status = %s, want RESOLVED", resolved.Status)
	}
	noteCount := len(resolved.Notes)

	_, err = svc.Resolve(context.Background(), &worker1, id)
	if code := errCode(t, err); code != "CONFLICT" {
		t.Errorf("second resolve code = %s, want CONFLICT", code)
	}

	stored, _ := tickets.GetByID(context.Background(), id)
	if stored.Status != domain.TicketStatusResolved {
		t.Errorf("stored status = %s, want RESOLVED", stored.Status)
	}
	if len(stored.Notes) != noteCount {
		t.Errorf("note count changed on rejected resolve: %d -> %d", noteCount, len(stored.Notes))
	}
}

func TestResolveClassifiesDueDate(t *testing.T) {
	tests := []struct {
		name         string
		assign       bool
		resolveAtDay int
		wantText     string
	}{
		{name: "past due date", assign: true, resolveAtDay: 5, wantText: "Ticket resolved (past due date)"},
		{name: "on time", assign: true, resolveAtDay: 2, wantText: "Ticket resolved on time"},
		{name: "no due date is on time", assign: false, resolveAtDay: 10, wantText: "Ticket resolved on time"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, tickets, clock := lifecycleFixture(config.TicketConfig{})
			id := seedTicket(t, tickets, domain.Ticket{Title: "t"})
			if tc.assign {
				if _, err := svc.Assign(context.Background(), &admin, id, worker1.ID, 3); err != nil {
					t.Fatalf("assign: %v", err)
				}
			}
			clock.now = day(tc.resolveAtDay)

			ticket, err := svc.Resolve(context.Background(), &admin, id)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			last := ticket.Notes[len(ticket.Notes)-1]
			if last.Text != tc.wantText {
				t.Errorf("resolution note = %q, want %q", last.Text, tc.wantText)
			}
			if ticket.ResolutionDate == nil || !ticket.ResolutionDate.Equal(day(tc.resolveAtDay)) {
				t.Errorf("resolution date = %v, want %v", ticket.ResolutionDate, day(tc.resolveAtDay))
			}
		})
	}
}

func TestLedgerSortedAndAttributableAfterFullFlow(t *testing.T) {
	svc, tickets, clock := lifecycleFixture(config.TicketConfig{})
	id := seedTicket(t, tickets, domain.Ticket{Title: "t"})

	if _, err := svc.Assign(context.Background(), &admin, id, worker1.ID, 3); err != nil {
		t.Fatalf("assign: %v", err)
	}
	clock.now = day(1)
	if _, err := svc.Resolve(context.Background(), &worker1, id); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	clock.now = day(2)
	ticket, err := svc.AddNote(context.Background(), &resident, id, "x")
	if err != nil {
		t.Fatalf("add note: %v", err)
	}

	if len(ticket.Notes) != 3 {
		t.Fatalf("note count = %d, want 3", len(ticket.Notes))
	}
	for i := 1; i < len(ticket.Notes); i++ {
		if ticket.Notes[i].Timestamp.Before(ticket.Notes[i-1].Timestamp) {
			t.Errorf("ledger not ascending at %d", i)
		}
	}
	authors := []string{admin.Name, worker1.Name, resident.Name}
	for i, want := range authors {
		if ticket.Notes[i].AddedBy != want {
			t.Errorf("note %d author = %q, want %q", i, ticket.Notes[i].AddedBy, want)
		}
	}
}

func TestAddNoteRequiresText(t *testing.T) {
	svc, tickets, _ := lifecycleFixture(config.TicketConfig{})
	id := seedTicket(t, tickets, domain.Ticket{Title: "t"})

	_, err := svc.AddNote(context.Background(), &admin, id, "   ")
	if code := errCode(t, err); code != "VALIDATION_FAILED" {
		t.Errorf("error code = %s, want VALIDATION_FAILED", code)
	}
}

func TestAddNoteRequiresVisibility(t *testing.T) {
	svc, tickets, _ := lifecycleFixture(config.TicketConfig{})
	id := seedTicket(t, tickets, domain.Ticket{Title: "t", ReporterID: resident.ID})

	_, err := svc.AddNote(context.Background(), &worker2, id, "hello")
	if code := errCode(t, err); code != "FORBIDDEN" {
		t.Errorf("error code = %s, want FORBIDDEN", code)
	}
}

func TestAddNoteLegacyOrdering(t *testing.T) {
	existing := domain.Note{Text: "future", AddedBy: "seed", Timestamp: day(5)}

	t.Run("legacy appends at tail", func(t *testing.T) {
		svc, tickets, clock := lifecycleFixture(config.TicketConfig{LegacyNoteAppend: true})
		id := seedTicket(t, tickets, domain.Ticket{Title: "t", Notes: domain.NoteLedger{existing}})
		clock.now = day(1)

		ticket, err := svc.AddNote(context.Background(), &admin, id, "older entry")
		if err != nil {
			t.Fatalf("add note: %v", err)
		}
		if ticket.Notes[len(ticket.Notes)-1].Text != "older entry" {
			t.Errorf("legacy mode should append at tail, got tail %q", ticket.Notes[len(ticket.Notes)-1].Text)
		}
	})

	t.Run("default re-sorts", func(t *testing.T) {
		svc, tickets, clock := lifecycleFixture(config.TicketConfig{})
		id := seedTicket(t, tickets, domain.Ticket{Title: "t", Notes: domain.NoteLedger{existing}})
		clock.now = day(1)

		ticket, err := svc.AddNote(context.Background(), &admin, id, "older entry")
		if err != nil {
			t.Fatalf("add note: %v", err)
		}
		if ticket.Notes[0].Text != "older entry" {
			t.Errorf("sorted mode should place earlier note first, got head %q", ticket.Notes[0].Text)
		}
	})
}

func TestVersionConflictSurfacesAsConflict(t *testing.T) {
	svc, tickets, _ := lifecycleFixture(config.TicketConfig{})
	id := seedTicket(t, tickets, domain.Ticket{Title: "t"})
	tickets.updateErr = repository.ErrVersionConflict

	_, err := svc.Assign(context.Background(), &admin, id, worker1.ID, 3)
	if code := errCode(t, err); code != "CONFLICT" {
		t.Errorf("error code = %s, want CONFLICT", code)
	}
}
