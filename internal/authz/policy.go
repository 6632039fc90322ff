// Package authz holds the pure role-based access rules for tickets. The
// functions are total over already-loaded data and signal no errors: absence
// of authorization yields false, and callers deny rather than throw.
package authz

import "github.com/spec-kit/facility-service/internal/domain"

// CanView reports whether the user may read the ticket. Admins see every
// ticket, workers only tickets assigned to them, residents only tickets
// they reported.
func CanView(user *domain.User, ticket *domain.Ticket) bool {
	if user == nil || ticket == nil {
		return false
	}
	switch user.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleWorker:
		return ticket.AssigneeID != nil && *ticket.AssigneeID == user.ID
	case domain.RoleResident:
		return ticket.ReporterID == user.ID
	}
	return false
}

// CanAssign reports whether the user may assign the ticket to a worker.
// Only admins assign, and never on a resolved ticket.
func CanAssign(user *domain.User, ticket *domain.Ticket) bool {
	if user == nil || ticket == nil {
		return false
	}
	return user.Role == domain.RoleAdmin && ticket.Status != domain.TicketStatusResolved
}

// CanResolve reports whether the user may resolve the ticket: admins on any
// unresolved ticket, workers on unresolved tickets assigned to them.
func CanResolve(user *domain.User, ticket *domain.Ticket) bool {
	if user == nil || ticket == nil {
		return false
	}
	if ticket.Status == domain.TicketStatusResolved {
		return false
	}
	if user.Role == domain.RoleAdmin {
		return true
	}
	return user.Role == domain.RoleWorker && ticket.AssigneeID != nil && *ticket.AssigneeID == user.ID
}
