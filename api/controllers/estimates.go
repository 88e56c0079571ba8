package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/techb2bnew/coconut-delivery/api/responses"
	"github.com/techb2bnew/coconut-delivery/api/validators"
	"github.com/techb2bnew/coconut-delivery/internal/estimation"
	"github.com/techb2bnew/coconut-delivery/pkg/db/models"
	pkgerrors "github.com/techb2bnew/coconut-delivery/pkg/errors"
	"github.com/techb2bnew/coconut-delivery/pkg/logger"
)

// FranchiseFinder looks up the franchise an estimate is being computed for.
// Satisfied by orders.Repository.
type FranchiseFinder interface {
	FindFranchiseByID(ctx context.Context, id uuid.UUID) (*models.Franchise, error)
}

// Estimates handles preview estimates while the customer is still editing
// the order form. Nothing is persisted here. defaultTimezone applies when
// the franchise has no timezone of its own.
func Estimates(svc estimation.Service, franchises FranchiseFinder, defaultTimezone string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "estimation service unavailable"))
			return
		}

		var payload estimateRequest
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

		result, err := svc.Estimate(r.Context(), estimation.Input{
			FranchiseID: payload.FranchiseID,
			Quantity:    payload.Quantity,
			OrderTime:   orderTime,
			ZoneID:      payload.ZoneID,
			ZoneName:    validators.SanitizeString(payload.ZoneName, 120),
			Timezone:    timezone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newEstimateResponse(result))
	}
}

type estimateRequest struct {
	FranchiseID    uuid.UUID  `json:"franchise_id" validate:"required"`
	Quantity       int        `json:"quantity" validate:"required,min=1"`
	OrderTimestamp string     `json:"order_timestamp" validate:"required"`
	ZoneID         *uuid.UUID `json:"zone_id,omitempty"`
	ZoneName       string     `json:"zone_name,omitempty"`
}

type estimateResponse struct {
	DeliveryDate     string  `json:"delivery_date"`
	DeliveryDayLabel *string `json:"delivery_day_label"`
	IsFallback       bool    `json:"is_fallback"`
	Source           string  `json:"source"`
	Notice           string  `json:"notice,omitempty"`
}

func newEstimateResponse(result estimation.Result) estimateResponse {
	resp := estimateResponse{
		DeliveryDate:     result.DeliveryDate.Format("2006-01-02"),
		DeliveryDayLabel: result.DeliveryDayLabel,
		IsFallback:       result.IsFallback,
		Source:           result.Source,
	}
	if result.IsFallback {
		resp.Notice = estimation.FallbackNotice
	}
	return resp
}
