package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yeremiapane/restaurant-reservation/apperror"
	"github.com/yeremiapane/restaurant-reservation/models"
)

func TestAuthorize(t *testing.T) {
	cases := []struct {
		name   string
		p      models.Principal
		action Action
		owner  string
		want   error
	}{
		{"customer books for self", customerPrincipal, ActionCreateReservation, "ANN@example.com", nil},
		{"customer books for other", customerPrincipal, ActionCreateReservation, "bob@example.com", apperror.ErrForbidden},
		{"staff books for anyone", staffPrincipal, ActionCreateReservation, "bob@example.com", nil},
		{"customer cancels own", customerPrincipal, ActionCancelReservation, "ann@example.com", nil},
		{"customer cancels other", customerPrincipal, ActionCancelReservation, "bob@example.com", apperror.ErrForbidden},
		{"customer updates status", customerPrincipal, ActionUpdateReservationStatus, "ann@example.com", apperror.ErrForbidden},
		{"staff updates status", staffPrincipal, ActionUpdateReservationStatus, "", nil},
		{"staff deletes reservation", staffPrincipal, ActionDeleteReservation, "", apperror.ErrForbidden},
		{"admin deletes reservation", adminPrincipal, ActionDeleteReservation, "", nil},
		{"staff manages tables", staffPrincipal, ActionManageTables, "", apperror.ErrForbidden},
		{"admin manages staff", adminPrincipal, ActionManageStaff, "", nil},
		{"staff views dashboard", staffPrincipal, ActionViewDashboard, "", nil},
		{"customer views dashboard", customerPrincipal, ActionViewDashboard, "", apperror.ErrForbidden},
		{"staff views analytics", staffPrincipal, ActionViewAnalytics, "", apperror.ErrForbidden},
		{"anonymous", models.Principal{}, ActionViewReservation, "", apperror.ErrUnauthorized},
		{"unknown action", adminPrincipal, Action("menu:edit"), "", apperror.ErrForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.p, tc.action, tc.owner)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
