package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/minimarket-client/api/responses"
	"github.com/angelmondragon/minimarket-client/internal/checkout"
	"github.com/angelmondragon/minimarket-client/pkg/enums"
	pkgerrors "github.com/angelmondragon/minimarket-client/pkg/errors"
	"github.com/angelmondragon/minimarket-client/pkg/logger"
)

type Finalizer interface {
	ClickFinalize(ctx context.Context) (*checkout.Submission, error)
}

type SubmissionStater interface {
	State() enums.SubmissionState
}

type NotificationSource interface {
	Latest() (checkout.Notification, bool)
}

type submissionResponse struct {
	SubmissionID string                `json:"submission_id"`
	State        enums.SubmissionState `json:"state"`
	Total        string                `json:"total"`
	ItemCount    int                   `json:"item_count"`
}

type checkoutStatusResponse struct {
	State        enums.SubmissionState  `json:"state"`
	Notification *checkout.Notification `json:"notification,omitempty"`
}

// CheckoutSubmit starts a submission and answers 202 without waiting for the
// backend. Poll CheckoutStatus for the outcome.
func CheckoutSubmit(view Finalizer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if view == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout unavailable"))
			return
		}

		sub, err := view.ClickFinalize(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusAccepted, submissionResponse{
			SubmissionID: sub.ID,
			State:        enums.SubmissionPending,
			Total:        sub.Snapshot.Total().StringFixed(2),
			ItemCount:    sub.Snapshot.ItemCount(),
		})
	}
}

// CheckoutStatus reports the submitter state and the last notification.
func CheckoutStatus(state SubmissionStater, latest NotificationSource, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if state == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout unavailable"))
			return
		}

		resp := checkoutStatusResponse{State: state.State()}
		if latest != nil {
			if n, ok := latest.Latest(); ok {
				resp.Notification = &n
			}
		}
		responses.WriteSuccess(w, resp)
	}
}
