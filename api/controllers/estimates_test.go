package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/techb2bnew/coconut-delivery/internal/estimation"
	"github.com/techb2bnew/coconut-delivery/pkg/db/models"
	pkgerrors "github.com/techb2bnew/coconut-delivery/pkg/errors"
)

type stubEstimationService struct {
	result estimation.Result
	err    error
	inputs []estimation.Input
}

func (s *stubEstimationService) Estimate(_ context.Context, in estimation.Input) (estimation.Result, error) {
	s.inputs = append(s.inputs, in)
	return s.result, s.err
}

type stubFranchiseFinder struct {
	franchise *models.Franchise
	err       error
}

func (s stubFranchiseFinder) FindFranchiseByID(_ context.Context, _ uuid.UUID) (*models.Franchise, error) {
	return s.franchise, s.err
}

func testFranchise() *models.Franchise {
	return &models.Franchise{
		ID:        uuid.New(),
		Name:      "Coco Fresh Colombo",
		Slug:      "coco-fresh-colombo",
		Timezone:  "Asia/Colombo",
		UnitPrice: decimal.RequireFromString("3.50"),
		IsActive:  true,
	}
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestEstimatesSuccess(t *testing.T) {
	franchise := testFranchise()
	label := "2 days"
	svc := &stubEstimationService{result: estimation.Result{
		DeliveryDate:     time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
		DeliveryDayLabel: &label,
		Source:           estimation.SourceQuantity,
	}}
	handler := Estimates(svc, stubFranchiseFinder{franchise: franchise}, "", nil)

	rec := postJSON(t, handler, "/api/v1/estimates", map[string]any{
		"franchise_id":    franchise.ID,
		"quantity":        5,
		"order_timestamp": "2026-08-27T14:30:00Z",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data estimateResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.DeliveryDate != "2026-08-29" {
		t.Fatalf("delivery_date = %q, want 2026-08-29", envelope.Data.DeliveryDate)
	}
	if envelope.Data.DeliveryDayLabel == nil || *envelope.Data.DeliveryDayLabel != label {
		t.Fatalf("delivery_day_label = %v, want %q", envelope.Data.DeliveryDayLabel, label)
	}
	if envelope.Data.Notice != "" {
		t.Fatalf("notice = %q, want empty for non-fallback", envelope.Data.Notice)
	}

	if len(svc.inputs) != 1 || svc.inputs[0].Timezone != franchise.Timezone {
		t.Fatalf("estimator inputs = %+v, want franchise timezone passed through", svc.inputs)
	}
}

func TestEstimatesFallbackCarriesNotice(t *testing.T) {
	svc := &stubEstimationService{result: estimation.Result{
		DeliveryDate: time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC),
		IsFallback:   true,
		Source:       estimation.SourceFallback,
	}}
	handler := Estimates(svc, stubFranchiseFinder{franchise: testFranchise()}, "", nil)

	rec := postJSON(t, handler, "/api/v1/estimates", map[string]any{
		"franchise_id":    uuid.New(),
		"quantity":        3,
		"order_timestamp": "2026-08-27T09:00:00Z",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data estimateResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.IsFallback {
		t.Fatal("expected is_fallback true")
	}
	if envelope.Data.DeliveryDayLabel != nil {
		t.Fatalf("delivery_day_label = %q, want null", *envelope.Data.DeliveryDayLabel)
	}
	if envelope.Data.Notice != estimation.FallbackNotice {
		t.Fatalf("notice = %q, want %q", envelope.Data.Notice, estimation.FallbackNotice)
	}
}

func TestEstimatesDefaultTimezoneWhenFranchiseHasNone(t *testing.T) {
	franchise := testFranchise()
	franchise.Timezone = ""
	svc := &stubEstimationService{result: estimation.Result{
		DeliveryDate: time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		Source:       estimation.SourceQuantity,
	}}
	handler := Estimates(svc, stubFranchiseFinder{franchise: franchise}, "Asia/Kolkata", nil)

	rec := postJSON(t, handler, "/api/v1/estimates", map[string]any{
		"franchise_id":    franchise.ID,
		"quantity":        5,
		"order_timestamp": "2026-08-27T14:30:00Z",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}

	if len(svc.inputs) != 1 || svc.inputs[0].Timezone != "Asia/Kolkata" {
		t.Fatalf("estimator inputs = %+v, want the configured default timezone", svc.inputs)
	}
}

func TestEstimatesRejectsBadBody(t *testing.T) {
	handler := Estimates(&stubEstimationService{}, stubFranchiseFinder{franchise: testFranchise()}, "", nil)

	rec := postJSON(t, handler, "/api/v1/estimates", map[string]any{
		"franchise_id": uuid.New(),
		// quantity missing
		"order_timestamp": "2026-08-27T09:00:00Z",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestEstimatesRejectsBadTimestamp(t *testing.T) {
	handler := Estimates(&stubEstimationService{}, stubFranchiseFinder{franchise: testFranchise()}, "", nil)

	rec := postJSON(t, handler, "/api/v1/estimates", map[string]any{
		"franchise_id":    uuid.New(),
		"quantity":        2,
		"order_timestamp": "yesterday",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestEstimatesUnknownFranchise(t *testing.T) {
	handler := Estimates(
		&stubEstimationService{},
		stubFranchiseFinder{err: pkgerrors.New(pkgerrors.CodeNotFound, "franchise not found")},
		"",
		nil,
	)

	rec := postJSON(t, handler, "/api/v1/estimates", map[string]any{
		"franchise_id":    uuid.New(),
		"quantity":        2,
		"order_timestamp": "2026-08-27T09:00:00Z",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}
