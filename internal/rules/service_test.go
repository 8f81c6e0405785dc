package rules

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ridgelinearms/armory-backend/pkg/db/models"
	"github.com/ridgelinearms/armory-backend/pkg/enums"
	"github.com/ridgelinearms/armory-backend/pkg/errors"
	"github.com/ridgelinearms/armory-backend/pkg/logger"
	"github.com/ridgelinearms/armory-backend/pkg/outbox"
	"github.com/ridgelinearms/armory-backend/pkg/pagination"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubRulesRepo struct {
	active *models.TierMarkupRule

	created         *models.TierMarkupRule
	deactivatedRows int64
	deactivatedID   *uuid.UUID
}

func (s *stubRulesRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRulesRepo) FindRule(ctx context.Context, id uuid.UUID) (*models.TierMarkupRule, error) {
	return nil, errors.New(errors.CodeNotFound, "rule not found")
}

func (s *stubRulesRepo) ActiveRule(ctx context.Context) (*models.TierMarkupRule, error) {
	return s.active, nil
}

func (s *stubRulesRepo) Create(ctx context.Context, rule *models.TierMarkupRule) error {
	s.created = rule
	return nil
}

func (s *stubRulesRepo) DeactivateActive(ctx context.Context) (*uuid.UUID, error) {
	if s.active == nil {
		return nil, nil
	}
	id := s.active.ID
	s.deactivatedID = &id
	return &id, nil
}

func (s *stubRulesRepo) Deactivate(ctx context.Context, id uuid.UUID) (int64, error) {
	return s.deactivatedRows, nil
}

func (s *stubRulesRepo) ListRules(ctx context.Context, params pagination.Params) (*RuleList, error) {
	return &RuleList{}, nil
}

type stubEmitter struct {
	events []outbox.DomainEvent
}

func (s *stubEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", value, err)
	}
	return d
}

func validInput(t *testing.T) RuleInput {
	t.Helper()
	tier := TierInput{Threshold: dec(t, "200"), Percent: dec(t, "10"), Flat: dec(t, "20")}
	return RuleInput{
		Bronze:                    tier,
		Gold:                      tier,
		Platinum:                  tier,
		MissingMAPDiscountPercent: dec(t, "5"),
	}
}

func newTestService(t *testing.T, repo *stubRulesRepo) (*Service, *stubEmitter) {
	t.Helper()
	emitter := &stubEmitter{}
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel, Output: &bytes.Buffer{}})
	svc, err := NewService(stubTxRunner{}, repo, emitter, logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, emitter
}

func TestActivateCreatesNewVersionAndRetiresPrevious(t *testing.T) {
	previous := &models.TierMarkupRule{ID: uuid.New(), Status: enums.RuleStatusActive}
	repo := &stubRulesRepo{active: previous}
	svc, emitter := newTestService(t, repo)
	actor := uuid.New()

	rule, err := svc.Activate(context.Background(), validInput(t), actor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rule.Status != enums.RuleStatusActive {
		t.Fatalf("expected active status, got %s", rule.Status)
	}
	if repo.created == nil || repo.created.ID != rule.ID {
		t.Fatalf("expected rule row created")
	}
	if repo.deactivatedID == nil || *repo.deactivatedID != previous.ID {
		t.Fatalf("expected previous rule deactivated")
	}
	if rule.CreatedByUserID == nil || *rule.CreatedByUserID != actor {
		t.Fatalf("expected actor recorded")
	}

	if len(emitter.events) != 1 {
		t.Fatalf("expected one event, got %d", len(emitter.events))
	}
	event := emitter.events[0]
	if event.EventType != enums.EventRuleChanged || event.AggregateID != rule.ID {
		t.Fatalf("unexpected event %+v", event)
	}
}

func TestActivateWithNoPreviousRule(t *testing.T) {
	repo := &stubRulesRepo{}
	svc, emitter := newTestService(t, repo)

	rule, err := svc.Activate(context.Background(), validInput(t), uuid.Nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rule.CreatedByUserID != nil {
		t.Fatalf("nil actor must not be recorded")
	}
	if len(emitter.events) != 1 {
		t.Fatalf("expected one event, got %d", len(emitter.events))
	}
}

func TestActivateValidatesInput(t *testing.T) {
	repo := &stubRulesRepo{}
	svc, _ := newTestService(t, repo)

	cases := []struct {
		name   string
		mutate func(*RuleInput)
	}{
		{"negative threshold", func(in *RuleInput) { in.Bronze.Threshold = dec(t, "-1") }},
		{"percent over 100", func(in *RuleInput) { in.Gold.Percent = dec(t, "101") }},
		{"negative flat", func(in *RuleInput) { in.Platinum.Flat = dec(t, "-5") }},
		{"discount over 100", func(in *RuleInput) { in.MissingMAPDiscountPercent = dec(t, "150") }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput(t)
			tc.mutate(&input)
			_, err := svc.Activate(context.Background(), input, uuid.Nil)
			if !errors.HasCode(err, errors.CodeValidation) {
				t.Fatalf("expected VALIDATION_ERROR, got %v", err)
			}
			if repo.created != nil {
				t.Fatalf("invalid input must not create a rule")
			}
		})
	}
}

func TestDeactivateInactiveRuleFails(t *testing.T) {
	repo := &stubRulesRepo{deactivatedRows: 0}
	svc, emitter := newTestService(t, repo)

	err := svc.Deactivate(context.Background(), uuid.New(), uuid.Nil)
	if !errors.HasCode(err, errors.CodeStateConflict) {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
	if len(emitter.events) != 0 {
		t.Fatalf("failed deactivation must not emit events")
	}
}

func TestDeactivateActiveRuleEmitsEvent(t *testing.T) {
	repo := &stubRulesRepo{deactivatedRows: 1}
	svc, emitter := newTestService(t, repo)
	ruleID := uuid.New()

	if err := svc.Deactivate(context.Background(), ruleID, uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(emitter.events) != 1 {
		t.Fatalf("expected one event, got %d", len(emitter.events))
	}
	if emitter.events[0].AggregateID != ruleID {
		t.Fatalf("unexpected aggregate id")
	}
}
