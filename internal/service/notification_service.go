package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/facility-service/internal/config"
	"github.com/spec-kit/facility-service/internal/domain"
	"github.com/spec-kit/facility-service/internal/events"
	"github.com/spec-kit/facility-service/internal/repository"
	apperrors "github.com/spec-kit/facility-service/pkg/util"
)

// InvolvedUsers is the default notification audience of a ticket: every
// admin, the assigned worker and the reporting resident.
type InvolvedUsers struct {
	AdminIDs   []string
	WorkerID   *string
	ResidentID *string
}

// NotificationService persists notification fan-out for ticket events and
// serves the notification read paths. Delivery is best-effort: failures are
// logged and never abort the state transition that triggered them.
type NotificationService struct {
	notifications repository.NotificationRepository
	tickets       repository.TicketRepository
	users         repository.UserRepository
	dispatcher    events.Dispatcher
	cache         *redis.Client
	logger        *zap.Logger
	cfg           config.NotificationConfig
	now           func() time.Time
}

// NotificationDependencies bundles collaborators.
type NotificationDependencies struct {
	NotificationRepo repository.NotificationRepository
	TicketRepo       repository.TicketRepository
	UserRepo         repository.UserRepository
	Dispatcher       events.Dispatcher
	Cache            *redis.Client
	Now              func() time.Time
}

// NewNotificationService creates the service.
func NewNotificationService(cfg config.NotificationConfig, logger *zap.Logger, deps NotificationDependencies) *NotificationService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &NotificationService{
		notifications: deps.NotificationRepo,
		tickets:       deps.TicketRepo,
		users:         deps.UserRepo,
		dispatcher:    deps.Dispatcher,
		cache:         deps.Cache,
		logger:        logger,
		cfg:           cfg,
		now:           now,
	}
}

// RegisterHandlers subscribes to lifecycle events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
	n.dispatcher.Subscribe(events.EventTicketResolved, n.handleTicketResolved)
	n.dispatcher.Subscribe(events.EventTicketNoteAdded, n.handleTicketNoteAdded)
}

// Send persists one notification per recipient in a single batched insert.
// Returns false after logging on persistence failure; callers treat delivery
// as best-effort.
func (n *NotificationService) Send(ctx context.Context, recipientIDs []string, message string, ticketID *int64) bool {
	if len(recipientIDs) == 0 {
		return true
	}
	now := n.now()
	records := make([]domain.Notification, 0, len(recipientIDs))
	for _, id := range recipientIDs {
		if id == "" {
			continue
		}
		records = append(records, domain.Notification{
			RecipientID: id,
			Message:     message,
			TicketID:    ticketID,
			IsRead:      false,
			CreatedAt:   now,
		})
	}
	if err := n.notifications.InsertBatch(ctx, records); err != nil {
		n.logger.Error("notification insert failed", zap.Error(err))
		return false
	}
	for _, record := range records {
		n.invalidateUnreadCache(ctx, record.RecipientID)
	}
	return true
}

// InvolvedUsers reads the ticket's reporter and assignee and unions them
// with the admin list. Fetch errors degrade to empty sets rather than
// failing the caller.
func (n *NotificationService) InvolvedUsers(ctx context.Context, ticketID int64) InvolvedUsers {
	var involved InvolvedUsers

	ticket, err := n.tickets.GetByID(ctx, ticketID)
	if err != nil {
		n.logger.Warn("involved users: ticket fetch failed", zap.Int64("ticket_id", ticketID), zap.Error(err))
		return involved
	}
	residentID := ticket.ReporterID
	involved.ResidentID = &residentID
	involved.WorkerID = ticket.AssigneeID

	admins, err := n.users.ListByRole(ctx, domain.RoleAdmin)
	if err != nil {
		n.logger.Warn("involved users: admin list failed", zap.Error(err))
	}
	for _, admin := range admins {
		involved.AdminIDs = append(involved.AdminIDs, admin.ID)
	}
	return involved
}

// NotifyUpdate sends the message to every involved user except excludeUserID.
func (n *NotificationService) NotifyUpdate(ctx context.Context, ticketID int64, message, excludeUserID string) bool {
	involved := n.InvolvedUsers(ctx, ticketID)

	seen := make(map[string]struct{})
	recipients := make([]string, 0, len(involved.AdminIDs)+2)
	add := func(id string) {
		if id == "" || id == excludeUserID {
			return
		}
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		recipients = append(recipients, id)
	}
	for _, id := range involved.AdminIDs {
		add(id)
	}
	if involved.WorkerID != nil {
		add(*involved.WorkerID)
	}
	if involved.ResidentID != nil {
		add(*involved.ResidentID)
	}

	return n.Send(ctx, recipients, message, &ticketID)
}

// ListForRecipient returns the recipient's notifications newest first.
func (n *NotificationService) ListForRecipient(ctx context.Context, recipientID string, limit, offset int) ([]domain.Notification, error) {
	list, err := n.notifications.ListByRecipient(ctx, recipientID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// UnreadCount returns the recipient's unread total, served from the Redis
// cache when fresh. Clients poll this on an interval, so bounded staleness
// is acceptable.
func (n *NotificationService) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	key := unreadCacheKey(recipientID)
	if n.cache != nil {
		if cached, err := n.cache.Get(ctx, key).Result(); err == nil {
			if count, parseErr := strconv.ParseInt(cached, 10, 64); parseErr == nil {
				return count, nil
			}
		}
	}

	count, err := n.notifications.UnreadCount(ctx, recipientID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	if n.cache != nil && n.cfg.UnreadCacheTTL() > 0 {
		if err := n.cache.Set(ctx, key, count, n.cfg.UnreadCacheTTL()).Err(); err != nil {
			n.logger.Debug("unread cache set failed", zap.Error(err))
		}
	}
	return count, nil
}

// MarkRead flips the read flag for the given notification ids belonging to
// the recipient and drops the cached unread count.
func (n *NotificationService) MarkRead(ctx context.Context, recipientID string, ids []string) error {
	owned, err := n.ownedIDs(ctx, recipientID, ids)
	if err != nil {
		return err
	}
	if len(owned) == 0 {
		return nil
	}
	if err := n.notifications.MarkRead(ctx, owned); err != nil {
		return apperrors.MapError(err)
	}
	n.invalidateUnreadCache(ctx, recipientID)
	return nil
}

func (n *NotificationService) ownedIDs(ctx context.Context, recipientID string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	list, err := n.notifications.ListByRecipient(ctx, recipientID, 1000, 0)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	ownedSet := make(map[string]struct{}, len(list))
	for _, record := range list {
		ownedSet[record.ID] = struct{}{}
	}
	owned := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := ownedSet[id]; ok {
			owned = append(owned, id)
		}
	}
	return owned, nil
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	admins, err := n.users.ListByRole(ctx, domain.RoleAdmin)
	if err != nil {
		n.logger.Warn("ticket created: admin list failed", zap.Error(err))
		return nil
	}
	recipients := make([]string, 0, len(admins))
	for _, admin := range admins {
		if admin.ID == event.Actor.UserID {
			continue
		}
		recipients = append(recipients, admin.ID)
	}
	message := fmt.Sprintf("New ticket #%d reported: %s", event.TicketID, payload.Title)
	n.Send(ctx, recipients, message, &event.TicketID)
	return nil
}

func (n *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		return nil
	}
	due := payload.DueDate.Format(dueDateLayout)

	workerMsg := fmt.Sprintf("You have been assigned ticket #%d (%s), due by %s",
		event.TicketID, payload.Title, due)
	n.Send(ctx, []string{payload.AssigneeID}, workerMsg, &event.TicketID)

	residentMsg := fmt.Sprintf("Your ticket #%d (%s) was assigned to %s, due by %s",
		event.TicketID, payload.Title, payload.AssigneeName, due)
	n.Send(ctx, []string{payload.ReporterID}, residentMsg, &event.TicketID)
	return nil
}

func (n *NotificationService) handleTicketResolved(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketResolvedPayload)
	if !ok {
		return nil
	}
	message := fmt.Sprintf("Ticket #%d was resolved on time by %s", event.TicketID, event.Actor.Name)
	if payload.Overdue {
		message = fmt.Sprintf("Ticket #%d was resolved past its due date by %s", event.TicketID, event.Actor.Name)
	}
	n.NotifyUpdate(ctx, event.TicketID, message, event.Actor.UserID)
	return nil
}

func (n *NotificationService) handleTicketNoteAdded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketNoteAddedPayload)
	if !ok {
		return nil
	}
	message := fmt.Sprintf("%s added a note on ticket #%d: %s",
		event.Actor.Name, event.TicketID, notePreview(payload.Note, n.cfg.NotePreviewLength))
	n.NotifyUpdate(ctx, event.TicketID, message, event.Actor.UserID)
	return nil
}

func (n *NotificationService) invalidateUnreadCache(ctx context.Context, recipientID string) {
	if n.cache == nil {
		return
	}
	if err := n.cache.Del(ctx, unreadCacheKey(recipientID)).Err(); err != nil {
		n.logger.Debug("unread cache invalidation failed", zap.Error(err))
	}
}

func unreadCacheKey(recipientID string) string {
	return "notify:unread:" + recipientID
}

func notePreview(text string, max int) string {
	if max <= 0 {
		max = 30
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
