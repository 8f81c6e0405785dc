package orders

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ridgelinearms/armory-backend/internal/compliance"
	"github.com/ridgelinearms/armory-backend/internal/fulfillment"
	"github.com/ridgelinearms/armory-backend/internal/pricing"
	"github.com/ridgelinearms/armory-backend/pkg/db/models"
	"github.com/ridgelinearms/armory-backend/pkg/enums"
	"github.com/ridgelinearms/armory-backend/pkg/errors"
	"github.com/ridgelinearms/armory-backend/pkg/logger"
	"github.com/ridgelinearms/armory-backend/pkg/outbox"
	"github.com/ridgelinearms/armory-backend/pkg/outbox/payloads"
	"github.com/ridgelinearms/armory-backend/pkg/pagination"
)

type engineMetrics interface {
	IncLinesPriced(tier string)
	IncRoutingOutcome(outcome string)
	ObserveCheckoutDuration(duration time.Duration)
}

// Service executes order finalization and reads back finalized orders.
type Service interface {
	Finalize(ctx context.Context, input CheckoutInput) (*OrderSummary, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderSummary, error)
	GetOrderByBaseNumber(ctx context.Context, baseNumber int64) (*OrderSummary, error)
	ListOrders(ctx context.Context, customerID *uuid.UUID, params pagination.Params) (*OrderList, error)
}

type service struct {
	tx        TxRunner
	repo      Repository
	catalog   ProductCatalog
	rules     RuleLoader
	router    *fulfillment.Router
	directory DealerDirectory
	allocator BaseNumberAllocator
	outbox    EventEmitter
	logg      *logger.Logger
	metrics   engineMetrics
	now       func() time.Time
}

// NewService validates dependencies and builds the finalization service.
func NewService(
	tx TxRunner,
	repo Repository,
	catalog ProductCatalog,
	rules RuleLoader,
	router *fulfillment.Router,
	directory DealerDirectory,
	allocator BaseNumberAllocator,
	publisher EventEmitter,
	logg *logger.Logger,
	metrics engineMetrics,
) (Service, error) {
	if tx == nil {
		return nil, stdErrors.New("tx runner is required")
	}
	if repo == nil {
		return nil, stdErrors.New("orders repository is required")
	}
	if catalog == nil {
		return nil, stdErrors.New("product catalog is required")
	}
	if rules == nil {
		return nil, stdErrors.New("rule loader is required")
	}
	if router == nil {
		return nil, stdErrors.New("fulfillment router is required")
	}
	if directory == nil {
		return nil, stdErrors.New("dealer directory is required")
	}
	if allocator == nil {
		return nil, stdErrors.New("base number allocator is required")
	}
	if publisher == nil {
		return nil, stdErrors.New("outbox publisher is required")
	}
	if logg == nil {
		return nil, stdErrors.New("logger is required")
	}
	return &service{
		tx:        tx,
		repo:      repo,
		catalog:   catalog,
		rules:     rules,
		router:    router,
		directory: directory,
		allocator: allocator,
		outbox:    publisher,
		logg:      logg,
		metrics:   metrics,
		now:       time.Now,
	}, nil
}

// Finalize prices, routes, partitions, and persists an order in one
// transaction. The active rule is loaded exactly once up front; every line of
// the order is priced against that same rule even if an administrator swaps
// rules mid-request.
func (s *service) Finalize(ctx context.Context, input CheckoutInput) (*OrderSummary, error) {
	started := s.now()

	if err := validateCheckout(input); err != nil {
		return nil, err
	}

	rule, err := s.rules.Load(ctx)
	if err != nil {
		return nil, err
	}

	routed, priced, err := s.priceAndRoute(ctx, input, rule)
	if err != nil {
		return nil, err
	}

	groups, err := fulfillment.Partition(routed)
	if err != nil {
		return nil, err
	}

	dealerStatuses, err := s.resolveDealerStatuses(ctx, groups)
	if err != nil {
		return nil, err
	}

	savings, err := pricing.ComputeSavings(priced, input.MembershipTier, rule)
	if err != nil {
		return nil, err
	}

	baseNumber, err := s.allocator.Next(ctx)
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithOrderNumber(ctx, baseNumber)

	order, shipments, lines := assembleOrder(input, baseNumber, groups, dealerStatuses, savings, s.now().UTC())

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateOrder(ctx, order); err != nil {
			return err
		}
		if err := repo.CreateShipments(ctx, shipments); err != nil {
			return err
		}
		if err := repo.CreateOrderLines(ctx, lines); err != nil {
			return err
		}
		if err := s.emitOrderFinalized(ctx, tx, order, shipments); err != nil {
			return err
		}
		return s.emitHoldsOpened(ctx, tx, order, shipments)
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ObserveCheckoutDuration(s.now().Sub(started))
	}
	s.logg.Info(ctx, fmt.Sprintf("order finalized with %d shipment(s)", len(shipments)))

	order.Shipments = shipments
	return buildSummary(order, lines), nil
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderSummary, error) {
	if orderID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrderDetail(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return buildSummary(order, collectLines(order)), nil
}

func (s *service) GetOrderByBaseNumber(ctx context.Context, baseNumber int64) (*OrderSummary, error) {
	if baseNumber <= 0 {
		return nil, errors.New(errors.CodeValidation, "base number required")
	}
	order, err := s.repo.FindOrderByBaseNumber(ctx, baseNumber)
	if err != nil {
		return nil, err
	}
	return buildSummary(order, collectLines(order)), nil
}

func (s *service) ListOrders(ctx context.Context, customerID *uuid.UUID, params pagination.Params) (*OrderList, error) {
	return s.repo.ListOrders(ctx, customerID, params)
}

func validateCheckout(input CheckoutInput) error {
	if input.CustomerID == uuid.Nil {
		return errors.New(errors.CodeValidation, "customer id required")
	}
	if !input.MembershipTier.IsValid() {
		return errors.New(errors.CodeValidation, fmt.Sprintf("invalid membership tier %q", input.MembershipTier))
	}
	if input.PaymentTxnID == "" {
		return errors.New(errors.CodeValidation, "payment transaction id required")
	}
	if len(input.Lines) == 0 {
		return errors.New(errors.CodeEmptyOrder, "order has no lines")
	}
	for _, line := range input.Lines {
		if line.SKU == "" {
			return errors.New(errors.CodeValidation, "line sku required")
		}
		if line.Quantity <= 0 {
			return errors.New(errors.CodeValidation, fmt.Sprintf("line %s quantity must be positive", line.SKU))
		}
	}
	return nil
}

// priceAndRoute resolves each checkout line to a priced, routed line plus the
// savings calculator's input. The snapshot taken here is what gets persisted;
// later catalog edits never change what the customer was charged.
func (s *service) priceAndRoute(ctx context.Context, input CheckoutInput, rule pricing.RuleSet) ([]fulfillment.RoutedLine, []pricing.PricedLine, error) {
	routed := make([]fulfillment.RoutedLine, 0, len(input.Lines))
	priced := make([]pricing.PricedLine, 0, len(input.Lines))
	productCache := map[string]*models.Product{}

	for _, line := range input.Lines {
		product, ok := productCache[line.SKU]
		if !ok {
			found, err := s.catalog.FindActiveBySKU(ctx, line.SKU)
			if err != nil {
				return nil, nil, err
			}
			productCache[line.SKU] = found
			product = found
		}

		snapshot := product.PricingSnapshot()
		unitPrice, err := pricing.Price(snapshot, input.MembershipTier, rule)
		if err != nil {
			return nil, nil, err
		}
		outcome := s.router.Route(snapshot)

		if s.metrics != nil {
			s.metrics.IncLinesPriced(input.MembershipTier.String())
			s.metrics.IncRoutingOutcome(outcome.String())
		}

		routed = append(routed, fulfillment.RoutedLine{
			ProductID:     product.ID,
			SKU:           product.SKU,
			Quantity:      line.Quantity,
			UnitPricePaid: unitPrice,
			Outcome:       outcome,
			FFLDealerID:   line.FFLDealerID,
			Snapshot:      snapshot,
		})
		priced = append(priced, pricing.PricedLine{
			Snapshot:      snapshot,
			Quantity:      line.Quantity,
			UnitPricePaid: unitPrice,
		})
	}
	return routed, priced, nil
}

func (s *service) resolveDealerStatuses(ctx context.Context, groups []fulfillment.ShipmentGroup) (map[uuid.UUID]enums.FFLDirectoryStatus, error) {
	statuses := map[uuid.UUID]enums.FFLDirectoryStatus{}
	for _, group := range groups {
		if !group.Outcome.ToFFL() || group.FFLDealerID == nil {
			continue
		}
		if _, ok := statuses[*group.FFLDealerID]; ok {
			continue
		}
		status, err := s.directory.DealerStatus(ctx, *group.FFLDealerID)
		if err != nil {
			return nil, err
		}
		statuses[*group.FFLDealerID] = status
	}
	return statuses, nil
}

// assembleOrder materializes the partitioned groups as persistence rows. IDs
// are assigned here so outbox payloads and the returned summary can reference
// them without a round trip.
func assembleOrder(
	input CheckoutInput,
	baseNumber int64,
	groups []fulfillment.ShipmentGroup,
	dealerStatuses map[uuid.UUID]enums.FFLDirectoryStatus,
	savings pricing.Savings,
	now time.Time,
) (*models.Order, []models.Shipment, []models.OrderLine) {
	total := decimal.Zero
	for _, group := range groups {
		total = total.Add(group.Total)
	}

	order := &models.Order{
		ID:               uuid.New(),
		BaseNumber:       baseNumber,
		CustomerID:       input.CustomerID,
		MembershipTier:   input.MembershipTier,
		Status:           enums.OrderStatusFinalized,
		Total:            total,
		SavingsActual:    savings.Actual,
		SavingsPotential: savings.Potential,
		PaymentTxnID:     input.PaymentTxnID,
		ShippingAddress:  input.ShippingAddress,
	}

	shipments := make([]models.Shipment, 0, len(groups))
	lines := make([]models.OrderLine, 0, len(input.Lines))
	for _, group := range groups {
		dealerStatus := enums.FFLNotOnFile
		if group.FFLDealerID != nil {
			dealerStatus = dealerStatuses[*group.FFLDealerID]
		}
		holdState, holdStartedAt := compliance.InitialHold(group.Outcome, dealerStatus, now)

		shipment := models.Shipment{
			ID:            uuid.New(),
			OrderID:       order.ID,
			Suffix:        group.Suffix,
			Outcome:       group.Outcome,
			FFLDealerID:   group.FFLDealerID,
			Total:         group.Total,
			HoldState:     holdState,
			HoldStartedAt: holdStartedAt,
			Version:       1,
		}
		shipments = append(shipments, shipment)

		for _, line := range group.Lines {
			lines = append(lines, models.OrderLine{
				ID:                       uuid.New(),
				OrderID:                  order.ID,
				ShipmentID:               shipment.ID,
				ProductID:                line.ProductID,
				SKU:                      line.SKU,
				Quantity:                 line.Quantity,
				MembershipTierAtPurchase: input.MembershipTier,
				UnitPricePaid:            line.UnitPricePaid,
				Outcome:                  line.Outcome,
				Snapshot:                 line.Snapshot,
			})
		}
	}
	return order, shipments, lines
}

func (s *service) emitOrderFinalized(ctx context.Context, tx *gorm.DB, order *models.Order, shipments []models.Shipment) error {
	refs := make([]payloads.ShipmentFinalizedRef, 0, len(shipments))
	for _, shipment := range shipments {
		refs = append(refs, payloads.ShipmentFinalizedRef{
			ShipmentID:    shipment.ID,
			DisplayNumber: shipment.DisplayNumber(order.BaseNumber),
			Outcome:       shipment.Outcome.String(),
			Total:         shipment.Total.StringFixed(2),
			OnHold:        shipment.HoldState == enums.HoldPendingFFL,
		})
	}
	event := outbox.DomainEvent{
		EventType:     enums.EventOrderFinalized,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Data: payloads.OrderFinalizedEvent{
			OrderID:          order.ID,
			BaseNumber:       order.BaseNumber,
			CustomerID:       order.CustomerID,
			MembershipTier:   order.MembershipTier.String(),
			Total:            order.Total.StringFixed(2),
			SavingsActual:    order.SavingsActual.StringFixed(2),
			SavingsPotential: order.SavingsPotential.StringFixed(2),
			Shipments:        refs,
		},
		Version: 1,
	}
	return s.outbox.Emit(ctx, tx, event)
}

func (s *service) emitHoldsOpened(ctx context.Context, tx *gorm.DB, order *models.Order, shipments []models.Shipment) error {
	for _, shipment := range shipments {
		if shipment.HoldState != enums.HoldPendingFFL {
			continue
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventHoldOpened,
			AggregateType: enums.AggregateShipment,
			AggregateID:   shipment.ID,
			Data: payloads.HoldEvent{
				ShipmentID:    shipment.ID,
				OrderID:       order.ID,
				DisplayNumber: shipment.DisplayNumber(order.BaseNumber),
				HoldState:     shipment.HoldState.String(),
				HoldStartedAt: shipment.HoldStartedAt,
			},
			Version: 1,
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}
	}
	return nil
}

func collectLines(order *models.Order) []models.OrderLine {
	lines := []models.OrderLine{}
	for _, shipment := range order.Shipments {
		lines = append(lines, shipment.Lines...)
	}
	return lines
}

func buildSummary(order *models.Order, lines []models.OrderLine) *OrderSummary {
	linesByShipment := map[uuid.UUID][]LineSummary{}
	for _, line := range lines {
		linesByShipment[line.ShipmentID] = append(linesByShipment[line.ShipmentID], LineSummary{
			ProductID:     line.ProductID,
			SKU:           line.SKU,
			Quantity:      line.Quantity,
			UnitPricePaid: line.UnitPricePaid,
			LineTotal:     line.LineTotal(),
		})
	}

	shipments := make([]ShipmentSummary, 0, len(order.Shipments))
	for _, shipment := range order.Shipments {
		destination := DestinationRef{Type: destinationCustomerAddress}
		if shipment.Outcome.ToFFL() {
			destination = DestinationRef{Type: destinationFFL, FFLDealerID: shipment.FFLDealerID}
		}
		shipments = append(shipments, ShipmentSummary{
			ShipmentID:    shipment.ID,
			Suffix:        shipment.Suffix,
			DisplayNumber: shipment.DisplayNumber(order.BaseNumber),
			Outcome:       shipment.Outcome,
			Destination:   destination,
			Lines:         linesByShipment[shipment.ID],
			Total:         shipment.Total,
			HoldType:      shipment.HoldState,
			HoldStartedAt: shipment.HoldStartedAt,
			HoldClearedAt: shipment.HoldClearedAt,
		})
	}

	display := strconv.FormatInt(order.BaseNumber, 10)
	if len(order.Shipments) == 1 {
		display = order.Shipments[0].DisplayNumber(order.BaseNumber)
	}

	return &OrderSummary{
		OrderID:        order.ID,
		CustomerID:     order.CustomerID,
		BaseNumber:     order.BaseNumber,
		DisplayNumber:  display,
		MembershipTier: order.MembershipTier,
		Status:         order.Status,
		Shipments:      shipments,
		Totals:         order.Total,
		Savings:        SavingsSummary{Actual: order.SavingsActual, Potential: order.SavingsPotential},
		CreatedAt:      order.CreatedAt,
	}
}
