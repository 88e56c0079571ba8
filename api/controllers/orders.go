package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/techb2bnew/coconut-delivery/api/responses"
	"github.com/techb2bnew/coconut-delivery/api/validators"
	"github.com/techb2bnew/coconut-delivery/internal/estimation"
	"github.com/techb2bnew/coconut-delivery/internal/orders"
	"github.com/techb2bnew/coconut-delivery/pkg/db/models"
	pkgerrors "github.com/techb2bnew/coconut-delivery/pkg/errors"
	"github.com/techb2bnew/coconut-delivery/pkg/logger"
)

// SubmitOrder persists a new order with its final delivery estimate.
func SubmitOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var payload submitOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderTime, err := estimation.ParseOrderTime(payload.OrderTimestamp)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Submit(r.Context(), orders.SubmitInput{
			FranchiseID:     payload.FranchiseID,
			CustomerName:    validators.SanitizeString(payload.CustomerName, 200),
			DeliveryAddress: validators.SanitizeString(payload.DeliveryAddress, 500),
			Quantity:        payload.Quantity,
			OrderTime:       orderTime,
			ZoneID:          payload.ZoneID,
			ZoneName:        validators.SanitizeString(payload.ZoneName, 120),
			Notes:           payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newSubmitOrderResponse(result))
	}
}

// OrderDetail returns one order by id.
func OrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(*order))
	}
}

// FranchiseOrders lists a franchise's recent orders.
func FranchiseOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		franchiseID, err := validators.ParsePathUUID(chi.URLParam(r, "franchiseId"), "franchiseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListOrders(r.Context(), franchiseID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]orderResponse, 0, len(list))
		for _, o := range list {
			out = append(out, newOrderResponse(o))
		}
		responses.WriteSuccess(w, map[string]any{"orders": out})
	}
}

type submitOrderRequest struct {
	FranchiseID     uuid.UUID  `json:"franchise_id" validate:"required"`
	CustomerName    string     `json:"customer_name" validate:"required,min=1,max=200"`
	DeliveryAddress string     `json:"delivery_address" validate:"required,min=1,max=500"`
	Quantity        int        `json:"quantity" validate:"required,min=1"`
	OrderTimestamp  string     `json:"order_timestamp" validate:"required"`
	ZoneID          *uuid.UUID `json:"zone_id,omitempty"`
	ZoneName        string     `json:"zone_name,omitempty"`
	Notes           *string    `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type orderResponse struct {
	OrderID          uuid.UUID  `json:"order_id"`
	FranchiseID      uuid.UUID  `json:"franchise_id"`
	ZoneID           *uuid.UUID `json:"zone_id,omitempty"`
	CustomerName     string     `json:"customer_name"`
	DeliveryAddress  string     `json:"delivery_address"`
	Quantity         int        `json:"quantity"`
	UnitPrice        string     `json:"unit_price"`
	TotalPrice       string     `json:"total_price"`
	DeliveryDate     string     `json:"delivery_date"`
	DeliveryDayLabel *string    `json:"delivery_day_label"`
	Status           string     `json:"status"`
	Notes            *string    `json:"notes,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

type submitOrderResponse struct {
	orderResponse
	IsFallback bool   `json:"is_fallback"`
	Notice     string `json:"notice,omitempty"`
}

func newOrderResponse(order models.Order) orderResponse {
	return orderResponse{
		OrderID:          order.ID,
		FranchiseID:      order.FranchiseID,
		ZoneID:           order.ZoneID,
		CustomerName:     order.CustomerName,
		DeliveryAddress:  order.DeliveryAddress,
		Quantity:         order.Quantity,
		UnitPrice:        order.UnitPrice.StringFixed(2),
		TotalPrice:       order.TotalPrice.StringFixed(2),
		DeliveryDate:     order.DeliveryDate.Format("2006-01-02"),
		DeliveryDayLabel: order.DeliveryDayLabel,
		Status:           order.Status.String(),
		Notes:            order.Notes,
		CreatedAt:        order.CreatedAt,
	}
}

func newSubmitOrderResponse(result *orders.SubmitResult) submitOrderResponse {
	resp := submitOrderResponse{
		orderResponse: newOrderResponse(result.Order),
		IsFallback:    result.Estimate.IsFallback,
	}
	if result.Estimate.IsFallback {
		resp.Notice = estimation.FallbackNotice
	}
	return resp
}
