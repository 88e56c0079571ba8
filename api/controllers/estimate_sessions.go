package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/techb2bnew/coconut-delivery/api/responses"
	"github.com/techb2bnew/coconut-delivery/api/validators"
	"github.com/techb2bnew/coconut-delivery/internal/estimation"
	"github.com/techb2bnew/coconut-delivery/internal/estimation/session"
	pkgerrors "github.com/techb2bnew/coconut-delivery/pkg/errors"
	"github.com/techb2bnew/coconut-delivery/pkg/logger"
)

// OpenEstimateSession starts a live-estimate session for an order form.
// Quantity edits stream in through UpdateEstimateSessionQuantity and the
// current estimate is polled via EstimateSessionSnapshot.
func OpenEstimateSession(sessions *session.Manager, franchises FranchiseFinder, defaultTimezone string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessions == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "estimate sessions unavailable"))
			return
		}

		var payload openSessionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderTime, err := estimation.ParseOrderTime(payload.OrderTimestamp)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		timezone := defaultTimezone
		if franchises != nil {
			franchise, err := franchises.FindFranchiseByID(r.Context(), payload.FranchiseID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if franchise.Timezone != "" {
				timezone = franchise.Timezone
			}
		}

		sess, err := sessions.Open(r.Context(), estimation.Input{
			FranchiseID: payload.FranchiseID,
			OrderTime:   orderTime,
			ZoneID:      payload.ZoneID,
			ZoneName:    validators.SanitizeString(payload.ZoneName, 120),
			Timezone:    timezone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, openSessionResponse{SessionID: sess.ID()})
	}
}

// UpdateEstimateSessionQuantity feeds one quantity edit into the session's
// debounced recompute. It returns 202 immediately; the estimate lands on
// the snapshot once the edit settles.
func UpdateEstimateSessionQuantity(sessions *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := lookupSession(sessions, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload quantityEditRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// The debounce timer outlives this request, so the recompute must
		// not inherit the request's cancellation.
		sess.QuantityChanged(context.WithoutCancel(r.Context()), payload.Quantity)

		responses.WriteSuccessStatus(w, http.StatusAccepted, quantityEditResponse{SessionID: sess.ID()})
	}
}

// EstimateSessionSnapshot returns the most recently settled estimate for a
// session. estimate is null while nothing is displayed.
func EstimateSessionSnapshot(sessions *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := lookupSession(sessions, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, updatedAt := sess.Snapshot()
		resp := sessionSnapshotResponse{SessionID: sess.ID()}
		if result != nil {
			er := newEstimateResponse(*result)
			resp.Estimate = &er
		}
		if !updatedAt.IsZero() {
			resp.UpdatedAt = updatedAt.UTC().Format(time.RFC3339)
		}

		responses.WriteSuccess(w, resp)
	}
}

// CloseEstimateSession tears a session down.
func CloseEstimateSession(sessions *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessions == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "estimate sessions unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "sessionId"), "sessionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if !sessions.Close(id) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "estimate session not found"))
			return
		}

		responses.WriteSuccess(w, closeSessionResponse{SessionID: id, Closed: true})
	}
}

func lookupSession(sessions *session.Manager, r *http.Request) (*session.Session, error) {
	if sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "estimate sessions unavailable")
	}
	id, err := validators.ParsePathUUID(chi.URLParam(r, "sessionId"), "sessionId")
	if err != nil {
		return nil, err
	}
	sess, ok := sessions.Get(id)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "estimate session not found")
	}
	return sess, nil
}

type openSessionRequest struct {
	FranchiseID    uuid.UUID  `json:"franchise_id" validate:"required"`
	OrderTimestamp string     `json:"order_timestamp" validate:"required"`
	ZoneID         *uuid.UUID `json:"zone_id,omitempty"`
	ZoneName       string     `json:"zone_name,omitempty"`
}

type openSessionResponse struct {
	SessionID uuid.UUID `json:"session_id"`
}

// quantityEditRequest carries the raw field text: blank and non-numeric
// values are meaningful edits, not validation failures.
type quantityEditRequest struct {
	Quantity string `json:"quantity"`
}

type quantityEditResponse struct {
	SessionID uuid.UUID `json:"session_id"`
}

type sessionSnapshotResponse struct {
	SessionID uuid.UUID         `json:"session_id"`
	Estimate  *estimateResponse `json:"estimate"`
	UpdatedAt string            `json:"updated_at,omitempty"`
}

type closeSessionResponse struct {
	SessionID uuid.UUID `json:"session_id"`
	Closed    bool      `json:"closed"`
}
