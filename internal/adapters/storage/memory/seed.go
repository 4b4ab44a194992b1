package memory

import (
	"context"
	"time"

	"profile-agent/internal/domain/accounts"
	"profile-agent/internal/domain/grants"
)

// SeedDemoData carga el dataset de demo del producto: un usuario con dos
// grants emitidos y dos recibidos. Solo para dev/handoff (SEED_DEMO_DATA).
func SeedDemoData(ctx context.Context, users accounts.Repository, grantsRepo grants.Repository) error {
	now := time.Now()

	demo := accounts.User{
		ID:        "user-123",
		Email:     "user@example.com",
		Name:      "Demo User",
		CreatedAt: now.Add(-30 * 24 * time.Hour),
	}
	if err := users.Create(ctx, demo); err != nil {
		return err
	}

	in7d := now.Add(7 * 24 * time.Hour)
	in30d := now.Add(30 * 24 * time.Hour)
	in1d := now.Add(24 * time.Hour)

	seed := []grants.Grant{
		{
			ID:              "grant-123",
			GrantorUserID:   demo.ID,
			RecipientUserID: "user-456",
			RecipientEmail:  "colleague@example.com",
			RecipientName:   "Work Colleague",
			Scopes:          []grants.Scope{grants.ScopeFinancialInsights, grants.ScopeReceiptInfo},
			ExpiresAt:       &in7d,
			IsActive:        true,
			CreatedAt:       now,
		},
		{
			ID:              "grant-124",
			GrantorUserID:   demo.ID,
			RecipientUserID: "user-789",
			RecipientEmail:  "friend@example.com",
			RecipientName:   "Close Friend",
			Scopes:          []grants.Scope{grants.ScopeReceiptInfo},
			ExpiresAt:       nil, // sin vencimiento
			IsActive:        true,
			CreatedAt:       now.Add(-14 * 24 * time.Hour),
		},
		{
			ID:              "grant-987",
			GrantorUserID:   "user-555",
			GrantorName:     "Jane Smith",
			GrantorEmail:    "jane@example.com",
			RecipientUserID: demo.ID,
			Scopes:          []grants.Scope{grants.ScopeFinancialInsights, grants.ScopeCalendarInfo},
			ExpiresAt:       &in30d,
			IsActive:        true,
			CreatedAt:       now.Add(-2 * 24 * time.Hour),
		},
		{
			ID:              "grant-654",
			GrantorUserID:   "user-777",
			GrantorName:     "Mike Johnson",
			GrantorEmail:    "mike@example.com",
			RecipientUserID: demo.ID,
			Scopes:          []grants.Scope{grants.ScopeReceiptInfo},
			ExpiresAt:       &in1d,
			IsActive:        true,
			CreatedAt:       now.Add(-5 * 24 * time.Hour),
		},
	}

	for _, g := range seed {
		if err := grantsRepo.Create(ctx, g); err != nil {
			return err
		}
	}
	return nil
}
