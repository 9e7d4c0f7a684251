package domain_test

import (
	"testing"

	"github.com/nikolayk812/atelier-cart/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestAvailability(t *testing.T) {
	tests := []struct {
		name         string
		inventory    int
		quantity     int
		isActive     bool
		status       domain.ListingStatus
		wantOutStock bool
		wantInactive bool
		wantLabel    string
	}{
		{
			name:         "out of stock",
			inventory:    2,
			quantity:     5,
			isActive:     true,
			status:       domain.ListingPublic,
			wantOutStock: true,
			wantLabel:    "rupture",
		},
		{
			name:         "inactive sku",
			inventory:    10,
			quantity:     1,
			isActive:     false,
			status:       domain.ListingPublic,
			wantInactive: true,
			wantLabel:    "indisponible",
		},
		{
			name:         "draft listing",
			inventory:    10,
			quantity:     1,
			isActive:     true,
			status:       domain.ListingDraft,
			wantInactive: true,
			wantLabel:    "indisponible",
		},
		{
			name:         "archived listing",
			inventory:    10,
			quantity:     1,
			isActive:     true,
			status:       domain.ListingArchived,
			wantInactive: true,
			wantLabel:    "indisponible",
		},
		{
			name:         "inactive and out of stock: inactive wins",
			inventory:    0,
			quantity:     3,
			isActive:     false,
			status:       domain.ListingPublic,
			wantOutStock: true,
			wantInactive: true,
			wantLabel:    "indisponible",
		},
		{
			name:      "exact stock: ok",
			inventory: 3,
			quantity:  3,
			isActive:  true,
			status:    domain.ListingPublic,
		},
		{
			name:      "plenty of stock: ok",
			inventory: 10,
			quantity:  1,
			isActive:  true,
			status:    domain.ListingPublic,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := domain.LineItem{
				Quantity: tt.quantity,
				SKU: domain.SKUSnapshot{
					Inventory:     tt.inventory,
					IsActive:      tt.isActive,
					ListingStatus: tt.status,
				},
			}

			assert.Equal(t, tt.wantOutStock, domain.IsOutOfStock(item))
			assert.Equal(t, tt.wantInactive, domain.IsInactive(item))
			assert.Equal(t, tt.wantOutStock || tt.wantInactive, domain.HasIssue(item))

			label, ok := domain.IssueLabel(item)
			assert.Equal(t, tt.wantLabel != "", ok)
			assert.Equal(t, tt.wantLabel, label)

			assert.Equal(t, !domain.HasIssue(item), domain.CanFulfil(item.SKU, item.Quantity))
		})
	}
}

func TestIssueReason_String(t *testing.T) {
	assert.Equal(t, "inactive", domain.IssueInactive.String())
	assert.Equal(t, "out_of_stock", domain.IssueOutOfStock.String())

	var zero domain.IssueReason
	assert.Equal(t, "unknown", zero.String())
	assert.Empty(t, zero.Label())
	assert.Equal(t, "unknown", domain.IssueReason(42).String())
}
