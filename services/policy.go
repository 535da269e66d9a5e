package services

import (
	"github.com/yeremiapane/restaurant-reservation/apperror"
	"github.com/yeremiapane/restaurant-reservation/models"
)

type Action string

const (
	ActionCreateReservation        Action = "reservation:create"
	ActionViewReservation          Action = "reservation:view"
	ActionCancelReservation        Action = "reservation:cancel"
	ActionUpdateReservationStatus  Action = "reservation:update_status"
	ActionUpdateReservationDetails Action = "reservation:update_details"
	ActionDeleteReservation        Action = "reservation:delete"
	ActionViewTodayReservations    Action = "reservation:today"
	ActionManageTables             Action = "table:manage"
	ActionManageStaff              Action = "staff:manage"
	ActionViewDashboard            Action = "report:dashboard"
	ActionViewAnalytics            Action = "report:analytics"
)

// Authorize is the single capability check for every ledger, registry and
// directory operation. ownerEmail is the customer email of the reservation
// involved, empty when the action is not about one.
func Authorize(p models.Principal, action Action, ownerEmail string) error {
	if p.ID == 0 && p.Email == "" {
		return apperror.New(apperror.ErrUnauthorized, "authentication required")
	}

	switch action {
	case ActionCreateReservation, ActionViewReservation, ActionCancelReservation:
		if p.IsStaff() || p.Owns(ownerEmail) {
			return nil
		}
		return apperror.Forbidden("customers may only access their own reservations")
	case ActionUpdateReservationStatus, ActionUpdateReservationDetails, ActionViewTodayReservations, ActionViewDashboard:
		if p.IsStaff() {
			return nil
		}
		return apperror.Forbidden("staff access required")
	case ActionDeleteReservation, ActionManageTables, ActionManageStaff, ActionViewAnalytics:
		if p.IsAdmin() {
			return nil
		}
		return apperror.Forbidden("admin access required")
	}
	return apperror.Forbidden("unknown action %q", action)
}
