package estimation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/techb2bnew/coconut-delivery/pkg/db/models"
	"github.com/techb2bnew/coconut-delivery/pkg/errors"
	"github.com/techb2bnew/coconut-delivery/pkg/logger"
	"github.com/techb2bnew/coconut-delivery/pkg/metrics"
)

// Result sources, also used as the metric label.
const (
	SourceQuantity = "quantity"
	SourceZone     = "zone"
	SourceFallback = "fallback"
)

// Cutoff offset defaults applied when a zone rule leaves them null.
const (
	defaultBeforeCutoffOffset = 1
	defaultAfterCutoffOffset  = 2
)

// FallbackNotice is shown to the customer when no rule produced an estimate
// and the date defaulted to today.
const FallbackNotice = "Delivery updates will be sent to your email soon"

// RuleSource provides the active delivery rules for a franchise. A read
// failure from any method sends the estimate down the fallback path rather
// than surfacing an error to the caller.
type RuleSource interface {
	// ActiveQuantityRules returns the franchise's quantity rules with
	// Status "Active", in no particular order.
	ActiveQuantityRules(ctx context.Context, franchiseID uuid.UUID) ([]models.QuantityRule, error)

	// ActiveZoneRule returns the active cutoff rule for the zone, or nil
	// when the franchise has none for it.
	ActiveZoneRule(ctx context.Context, franchiseID uuid.UUID, zoneID uuid.UUID) (*models.ZoneRule, error)

	// ResolveZoneIDByName finds a zone whose name contains the given
	// fragment, case-insensitively. ok is false when nothing matched.
	ResolveZoneIDByName(ctx context.Context, nameFragment string) (uuid.UUID, bool, error)
}

// Input identifies one estimation request. ZoneID and ZoneName are optional;
// Timezone is the franchise's configured IANA zone and may be blank.
type Input struct {
	FranchiseID uuid.UUID
	Quantity    int
	OrderTime   time.Time
	ZoneID      *uuid.UUID
	ZoneName    string
	Timezone    string
}

// Result is what the customer sees. DeliveryDate is always midnight in the
// resolved timezone. DeliveryDayLabel is nil on the fallback path.
type Result struct {
	DeliveryDate     time.Time
	DeliveryDayLabel *string
	IsFallback       bool
	Source           string
}

// Service computes delivery-date estimates.
type Service interface {
	// Estimate never returns an error for rule or data problems; those
	// degrade to the fallback result, as does an absent franchise id. It
	// only fails on an unusable quantity or order timestamp.
	Estimate(ctx context.Context, in Input) (Result, error)
}

type service struct {
	rules   RuleSource
	logg    *logger.Logger
	metrics *metrics.EstimatorMetrics
	now     func() time.Time
}

// NewService builds the estimator. metrics may be nil.
func NewService(rules RuleSource, logg *logger.Logger, m *metrics.EstimatorMetrics) (Service, error) {
	if rules == nil {
		return nil, errors.New(errors.CodeInternal, "estimation: rule source is required")
	}
	if logg == nil {
		return nil, errors.New(errors.CodeInternal, "estimation: logger is required")
	}
	return &service{
		rules:   rules,
		logg:    logg,
		metrics: m,
		now:     time.Now,
	}, nil
}

func (s *service) Estimate(ctx context.Context, in Input) (Result, error) {
	if in.Quantity <= 0 {
		return Result{}, errors.New(errors.CodeValidation, "quantity must be positive")
	}
	if in.OrderTime.IsZero() {
		return Result{}, errors.New(errors.CodeValidation, "order timestamp is required")
	}

	loc := resolveLocation(in.Timezone, in.OrderTime)

	// No franchise means no rules to consult; the customer still gets the
	// fallback estimate rather than an error.
	if in.FranchiseID == uuid.Nil {
		s.logg.Warn(ctx, "estimate requested without a franchise id")
		return s.fallback(ctx, loc), nil
	}

	ctx = s.logg.WithFranchiseID(ctx, in.FranchiseID.String())

	if offset, ok := s.offsetFromQuantityRules(ctx, in); ok {
		return s.resultFor(ctx, in, loc, offset, SourceQuantity), nil
	}

	if offset, ok := s.offsetFromZoneRule(ctx, in, loc); ok {
		return s.resultFor(ctx, in, loc, offset, SourceZone), nil
	}

	return s.fallback(ctx, loc), nil
}

// offsetFromQuantityRules finds the quantity rule covering in.Quantity.
// Rules without an upper bound never match. Among overlapping matches the
// narrowest range wins; equal widths break the tie on the lowest minimum.
func (s *service) offsetFromQuantityRules(ctx context.Context, in Input) (int, bool) {
	rules, err := s.rules.ActiveQuantityRules(ctx, in.FranchiseID)
	if err != nil {
		s.logg.Error(ctx, "load quantity rules", err)
		return 0, false
	}

	matches := make([]models.QuantityRule, 0, len(rules))
	for _, r := range rules {
		if r.Matches(in.Quantity) {
			matches = append(matches, r)
		}
	}
	if len(matches) == 0 {
		return 0, false
	}

	sort.SliceStable(matches, func(i, j int) bool {
		wi, wj := matches[i].RangeWidth(), matches[j].RangeWidth()
		if wi != wj {
			return wi < wj
		}
		return matches[i].MinQuantity < matches[j].MinQuantity
	})

	best := matches[0]
	offset, ok := best.DeliveryOffsetDays.Normalize()
	if !ok {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"rule_id": best.ID.String(),
			"offset":  best.DeliveryOffsetDays.Raw(),
		}), "quantity rule carries unparseable offset, using 0")
		if s.metrics != nil {
			s.metrics.IncMalformedRule()
		}
	}
	return offset, true
}

// offsetFromZoneRule applies the cutoff-time rule for the order's zone. An
// order placed at or after the cutoff counts as after it.
func (s *service) offsetFromZoneRule(ctx context.Context, in Input, loc *time.Location) (int, bool) {
	rule := s.lookupZoneRule(ctx, in)
	if rule == nil {
		return 0, false
	}

	cutoffMinutes, ok := parseCutoff(rule.CutoffTime)
	if !ok {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"rule_id": rule.ID.String(),
			"cutoff":  rule.CutoffTime,
		}), "zone rule carries unparseable cutoff time")
		if s.metrics != nil {
			s.metrics.IncMalformedRule()
		}
		return 0, false
	}

	local := in.OrderTime.In(loc)
	orderMinutes := local.Hour()*60 + local.Minute()

	if orderMinutes >= cutoffMinutes {
		return offsetOrDefault(rule.AfterCutoffOffsetDays, defaultAfterCutoffOffset), true
	}
	return offsetOrDefault(rule.BeforeCutoffOffsetDays, defaultBeforeCutoffOffset), true
}

// lookupZoneRule tries the explicit zone id first, then a case-insensitive
// name match when the id produced nothing.
func (s *service) lookupZoneRule(ctx context.Context, in Input) *models.ZoneRule {
	if in.ZoneID != nil && *in.ZoneID != uuid.Nil {
		rule, err := s.rules.ActiveZoneRule(ctx, in.FranchiseID, *in.ZoneID)
		if err != nil {
			s.logg.Error(ctx, "load zone rule", err)
			return nil
		}
		if rule != nil {
			return rule
		}
	}

	if in.ZoneName == "" {
		return nil
	}
	zoneID, found, err := s.rules.ResolveZoneIDByName(ctx, in.ZoneName)
	if err != nil {
		s.logg.Error(ctx, "resolve zone by name", err)
		return nil
	}
	if !found {
		return nil
	}
	rule, err := s.rules.ActiveZoneRule(ctx, in.FranchiseID, zoneID)
	if err != nil {
		s.logg.Error(ctx, "load zone rule", err)
		return nil
	}
	return rule
}

func (s *service) resultFor(ctx context.Context, in Input, loc *time.Location, offset int, source string) Result {
	if offset < 0 {
		offset = 0
	}
	date := midnight(in.OrderTime, loc).AddDate(0, 0, offset)
	label := DayLabel(offset)
	if s.metrics != nil {
		s.metrics.IncEstimate(source)
	}
	s.logg.Debug(s.logg.WithFields(ctx, map[string]any{
		"source":        source,
		"offset_days":   offset,
		"delivery_date": date.Format("2006-01-02"),
	}), "delivery estimate computed")
	return Result{
		DeliveryDate:     date,
		DeliveryDayLabel: &label,
		Source:           source,
	}
}

// fallback defaults to today at midnight with no day label.
func (s *service) fallback(ctx context.Context, loc *time.Location) Result {
	if s.metrics != nil {
		s.metrics.IncEstimate(SourceFallback)
	}
	s.logg.Info(ctx, "no delivery rule matched, falling back to same-day estimate")
	return Result{
		DeliveryDate: midnight(s.now(), loc),
		IsFallback:   true,
		Source:       SourceFallback,
	}
}

// DayLabel renders an offset as customer-facing text.
func DayLabel(offset int) string {
	switch {
	case offset <= 0:
		return "Same Day"
	case offset == 1:
		return "1 day"
	default:
		return fmt.Sprintf("%d days", offset)
	}
}

func offsetOrDefault(v *int, def int) int {
	if v == nil {
		return def
	}
	if *v < 0 {
		return 0
	}
	return *v
}
