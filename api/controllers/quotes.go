package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/ridgelinearms/armory-backend/api/middleware"
	"github.com/ridgelinearms/armory-backend/api/responses"
	"github.com/ridgelinearms/armory-backend/api/validators"
	"github.com/ridgelinearms/armory-backend/internal/catalog"
	"github.com/ridgelinearms/armory-backend/internal/pricing"
	"github.com/ridgelinearms/armory-backend/pkg/db/models"
	"github.com/ridgelinearms/armory-backend/pkg/enums"
	pkgerrors "github.com/ridgelinearms/armory-backend/pkg/errors"
	"github.com/ridgelinearms/armory-backend/pkg/logger"
	"github.com/ridgelinearms/armory-backend/pkg/pagination"
)

type quoteCatalog interface {
	FindActiveBySKU(ctx context.Context, sku string) (*models.Product, error)
	ListActive(ctx context.Context, manufacturer string, params pagination.Params) (*catalog.ProductList, error)
}

type quoteRuleSource interface {
	Load(ctx context.Context) (pricing.RuleSet, error)
}

type tierQuote struct {
	Tier      enums.MembershipTier `json:"tier"`
	UnitPrice decimal.Decimal      `json:"unitPrice"`
}

type quoteResponse struct {
	SKU          string                `json:"sku"`
	Title        string                `json:"title"`
	Manufacturer string                `json:"manufacturer"`
	RequiresFFL  bool                  `json:"requiresFFL"`
	Prices       []tierQuote           `json:"prices"`
	Visibility   enums.PriceVisibility `json:"visibility"`
}

// Quote returns the tier price matrix for one SKU. Every tier is always
// computed; what the caller sees depends on who they are. Platinum is a
// staff-only number, and Gold disappears for missing-MAP products when the
// active rule says to hide it.
func Quote(catalog quoteCatalog, rules quoteRuleSource, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if catalog == nil || rules == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}

		sku := strings.TrimSpace(chi.URLParam(r, "sku"))
		if sku == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "sku is required"))
			return
		}

		product, err := catalog.FindActiveBySKU(r.Context(), sku)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rule, err := rules.Load(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		matrix, err := pricing.Matrix(product.PricingSnapshot(), rule)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		visibility := enums.VisibilityPublic
		if middleware.RoleFromContext(r.Context()).IsStaff() {
			visibility = enums.VisibilityStaff
		}

		responses.WriteSuccess(w, quoteResponse{
			SKU:          product.SKU,
			Title:        product.Title,
			Manufacturer: product.Manufacturer,
			RequiresFFL:  product.RequiresFFL,
			Prices:       visiblePrices(matrix, visibility),
			Visibility:   visibility,
		})
	}
}

// visiblePrices applies the display policy the pricing engine deliberately
// does not know about: Platinum is staff-only, and a hidden Gold entry is
// suppressed for everyone but staff.
func visiblePrices(matrix map[enums.MembershipTier]pricing.TierPrice, visibility enums.PriceVisibility) []tierQuote {
	prices := make([]tierQuote, 0, len(matrix))
	for _, tier := range enums.AllMembershipTiers() {
		entry, ok := matrix[tier]
		if !ok {
			continue
		}
		if visibility != enums.VisibilityStaff {
			if tier == enums.TierPlatinum {
				continue
			}
			if entry.Hidden {
				continue
			}
		}
		prices = append(prices, tierQuote{Tier: tier, UnitPrice: entry.UnitPrice})
	}
	return prices
}

// ListProducts pages through active catalog entries for the storefront,
// optionally filtered by manufacturer.
func ListProducts(catalog quoteCatalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if catalog == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cursor := strings.TrimSpace(r.URL.Query().Get("cursor"))
		manufacturer := strings.TrimSpace(r.URL.Query().Get("manufacturer"))

		list, err := catalog.ListActive(r.Context(), manufacturer, pagination.Params{Limit: limit, Cursor: cursor})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
