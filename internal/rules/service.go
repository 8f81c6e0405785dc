package rules

import (
	"context"
	stdErrors "errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ridgelinearms/armory-backend/pkg/db/models"
	"github.com/ridgelinearms/armory-backend/pkg/enums"
	"github.com/ridgelinearms/armory-backend/pkg/errors"
	"github.com/ridgelinearms/armory-backend/pkg/logger"
	"github.com/ridgelinearms/armory-backend/pkg/outbox"
	"github.com/ridgelinearms/armory-backend/pkg/outbox/payloads"
	"github.com/ridgelinearms/armory-backend/pkg/pagination"
)

// TierInput is one tier's markup parameters.
type TierInput struct {
	Threshold decimal.Decimal `json:"threshold" validate:"required"`
	Percent   decimal.Decimal `json:"percent" validate:"required"`
	Flat      decimal.Decimal `json:"flat" validate:"required"`
}

// RuleInput is the admin payload for activating a new rule version.
type RuleInput struct {
	Bronze                    TierInput       `json:"bronze" validate:"required"`
	Gold                      TierInput       `json:"gold" validate:"required"`
	Platinum                  TierInput       `json:"platinum" validate:"required"`
	MissingMAPDiscountPercent decimal.Decimal `json:"missingMapDiscountPercent"`
	HideGoldWhenEqualMAP      bool            `json:"hideGoldWhenEqualMap"`
}

// Service manages the markup rule lifecycle. Rules are versioned rows:
// activating a new rule deactivates the previous one in the same
// transaction, so exactly one rule is active at any instant and order
// history stays re-derivable.
type Service struct {
	db     TxRunner
	repo   Repository
	events EventEmitter
	logg   *logger.Logger
}

// NewService validates dependencies and builds the rules service.
func NewService(db TxRunner, repo Repository, events EventEmitter, logg *logger.Logger) (*Service, error) {
	if db == nil {
		return nil, stdErrors.New("tx runner is required")
	}
	if repo == nil {
		return nil, stdErrors.New("repository is required")
	}
	if events == nil {
		return nil, stdErrors.New("event emitter is required")
	}
	if logg == nil {
		return nil, stdErrors.New("logger is required")
	}
	return &Service{db: db, repo: repo, events: events, logg: logg}, nil
}

// Activate creates a new active rule version, deactivating the previous one.
func (s *Service) Activate(ctx context.Context, input RuleInput, actorID uuid.UUID) (*models.TierMarkupRule, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	rule := &models.TierMarkupRule{
		ID:     uuid.New(),
		Status: enums.RuleStatusActive,

		BronzeThreshold: input.Bronze.Threshold,
		BronzePercent:   input.Bronze.Percent,
		BronzeFlat:      input.Bronze.Flat,

		GoldThreshold: input.Gold.Threshold,
		GoldPercent:   input.Gold.Percent,
		GoldFlat:      input.Gold.Flat,

		PlatinumThreshold: input.Platinum.Threshold,
		PlatinumPercent:   input.Platinum.Percent,
		PlatinumFlat:      input.Platinum.Flat,

		MissingMAPDiscountPercent: input.MissingMAPDiscountPercent,
		HideGoldWhenEqualMAP:      input.HideGoldWhenEqualMAP,
	}
	if actorID != uuid.Nil {
		rule.CreatedByUserID = &actorID
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		previousID, err := txRepo.DeactivateActive(ctx)
		if err != nil {
			return err
		}
		if err := txRepo.Create(ctx, rule); err != nil {
			return err
		}

		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRuleChanged,
			AggregateType: enums.AggregateRule,
			AggregateID:   rule.ID,
			Actor:         actorRef(actorID),
			Data: payloads.RuleChangedEvent{
				RuleID:         rule.ID,
				PreviousRuleID: previousID,
				Status:         enums.RuleStatusActive.String(),
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithField(ctx, "rule_id", rule.ID.String())
	s.logg.Info(logCtx, "markup rule activated")
	return rule, nil
}

// Deactivate retires the given rule without activating a replacement.
// Pricing falls back to the documented default rule until a new rule is
// activated.
func (s *Service) Deactivate(ctx context.Context, ruleID uuid.UUID, actorID uuid.UUID) error {
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		rows, err := txRepo.Deactivate(ctx, ruleID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return errors.New(errors.CodeStateConflict, "rule is not active")
		}

		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRuleChanged,
			AggregateType: enums.AggregateRule,
			AggregateID:   ruleID,
			Actor:         actorRef(actorID),
			Data: payloads.RuleChangedEvent{
				RuleID: ruleID,
				Status: enums.RuleStatusInactive.String(),
			},
			Version: 1,
		})
	})
	if err != nil {
		return err
	}

	logCtx := s.logg.WithField(ctx, "rule_id", ruleID.String())
	s.logg.Warn(logCtx, "markup rule deactivated with no replacement, pricing falls back to the default rule")
	return nil
}

// Get returns one rule version.
func (s *Service) Get(ctx context.Context, ruleID uuid.UUID) (*models.TierMarkupRule, error) {
	return s.repo.FindRule(ctx, ruleID)
}

// Active returns the currently active rule, or nil when none exists.
func (s *Service) Active(ctx context.Context) (*models.TierMarkupRule, error) {
	return s.repo.ActiveRule(ctx)
}

// List pages through rule versions, newest first.
func (s *Service) List(ctx context.Context, params pagination.Params) (*RuleList, error) {
	return s.repo.ListRules(ctx, params)
}

var hundred = decimal.NewFromInt(100)

func validateInput(input RuleInput) error {
	tiers := map[string]TierInput{
		"bronze":   input.Bronze,
		"gold":     input.Gold,
		"platinum": input.Platinum,
	}
	for name, tier := range tiers {
		if tier.Threshold.IsNegative() {
			return errors.New(errors.CodeValidation, fmt.Sprintf("%s threshold must not be negative", name))
		}
		if tier.Percent.IsNegative() || tier.Percent.GreaterThan(hundred) {
			return errors.New(errors.CodeValidation, fmt.Sprintf("%s percent must be between 0 and 100", name))
		}
		if tier.Flat.IsNegative() {
			return errors.New(errors.CodeValidation, fmt.Sprintf("%s flat markup must not be negative", name))
		}
	}
	if input.MissingMAPDiscountPercent.IsNegative() || input.MissingMAPDiscountPercent.GreaterThan(hundred) {
		return errors.New(errors.CodeValidation, "missing-MAP discount percent must be between 0 and 100")
	}
	return nil
}

func actorRef(actorID uuid.UUID) *outbox.ActorRef {
	if actorID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{UserID: actorID, Role: "admin"}
}
