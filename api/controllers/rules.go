package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/techb2bnew/coconut-delivery/api/responses"
	"github.com/techb2bnew/coconut-delivery/api/validators"
	"github.com/techb2bnew/coconut-delivery/internal/rules"
	"github.com/techb2bnew/coconut-delivery/pkg/db/models"
	pkgerrors "github.com/techb2bnew/coconut-delivery/pkg/errors"
	"github.com/techb2bnew/coconut-delivery/pkg/logger"
)

// FranchiseRules lists a franchise's delivery rules, active or not, for the
// admin dashboard.
func FranchiseRules(repo rules.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rule repository unavailable"))
			return
		}

		franchiseID, err := validators.ParsePathUUID(chi.URLParam(r, "franchiseId"), "franchiseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quantityRules, err := repo.ListQuantityRules(r.Context(), franchiseID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		zoneRules, err := repo.ListZoneRules(r.Context(), franchiseID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newRulesResponse(quantityRules, zoneRules))
	}
}

type quantityRuleResponse struct {
	RuleID      uuid.UUID `json:"rule_id"`
	Status      string    `json:"status"`
	MinQuantity int       `json:"min_quantity"`
	MaxQuantity *int      `json:"max_quantity"`
	OffsetDays  string    `json:"offset_days"`
}

type zoneRuleResponse struct {
	RuleID                 uuid.UUID `json:"rule_id"`
	ZoneID                 uuid.UUID `json:"zone_id"`
	Status                 string    `json:"status"`
	CutoffTime             string    `json:"cutoff_time"`
	BeforeCutoffOffsetDays *int      `json:"before_cutoff_offset_days"`
	AfterCutoffOffsetDays  *int      `json:"after_cutoff_offset_days"`
}

type rulesResponse struct {
	QuantityRules []quantityRuleResponse `json:"quantity_rules"`
	ZoneRules     []zoneRuleResponse     `json:"zone_rules"`
}

func newRulesResponse(quantityRules []models.QuantityRule, zoneRules []models.ZoneRule) rulesResponse {
	resp := rulesResponse{
		QuantityRules: make([]quantityRuleResponse, 0, len(quantityRules)),
		ZoneRules:     make([]zoneRuleResponse, 0, len(zoneRules)),
	}
	for _, rule := range quantityRules {
		resp.QuantityRules = append(resp.QuantityRules, quantityRuleResponse{
			RuleID:      rule.ID,
			Status:      rule.Status.String(),
			MinQuantity: rule.MinQuantity,
			MaxQuantity: rule.MaxQuantity,
			OffsetDays:  rule.DeliveryOffsetDays.Raw(),
		})
	}
	for _, rule := range zoneRules {
		resp.ZoneRules = append(resp.ZoneRules, zoneRuleResponse{
			RuleID:                 rule.ID,
			ZoneID:                 rule.ZoneID,
			Status:                 rule.Status.String(),
			CutoffTime:             rule.CutoffTime,
			BeforeCutoffOffsetDays: rule.BeforeCutoffOffsetDays,
			AfterCutoffOffsetDays:  rule.AfterCutoffOffsetDays,
		})
	}
	return resp
}
