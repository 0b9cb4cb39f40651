package service

import (
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Change-feed rows use snake_case keys so every subscriber, regardless of
// client stack, reconciles against the same shape as the REST responses.

func ticketRow(t *domain.Ticket) map[string]any {
	return map[string]any{
		"id":                      t.ID,
		"ticket_number":           t.TicketNumber,
		"title":                   t.Title,
		"description":             t.Description,
		"category":                t.Category,
		"priority":                t.Priority,
		"status":                  t.Status,
		"created_by":              t.CreatedBy,
		"assigned_to":             t.AssignedTo,
		"sla_response_minutes":    t.SLAResponseMinutes,
		"sla_resolution_minutes":  t.SLAResolutionMinutes,
		"resolution_rating":       t.ResolutionRating,
		"resolution_feedback":     t.ResolutionFeedback,
		"resolution_confirmed_by": t.ResolutionConfirmedBy,
		"created_at":              t.CreatedAt,
		"updated_at":              t.UpdatedAt,
		"responded_at":            t.RespondedAt,
		"resolved_at":             t.ResolvedAt,
		"closed_at":               t.ClosedAt,
		"resolution_confirmed_at": t.ResolutionConfirmedAt,
	}
}

func messageRow(m *domain.TicketMessage) map[string]any {
	return map[string]any{
		"id":          m.ID,
		"ticket_id":   m.TicketID,
		"user_id":     m.UserID,
		"body":        m.Body,
		"is_internal": m.IsInternal,
		"created_at":  m.CreatedAt,
	}
}

func assetRow(a *domain.Asset) map[string]any {
	return map[string]any{
		"id":                    a.ID,
		"asset_code":            a.AssetCode,
		"name":                  a.Name,
		"description":           a.Description,
		"category":              a.Category,
		"status":                a.Status,
		"lifecycle_stage":       a.LifecycleStage,
		"inventoried":           a.Inventoried,
		"support_owner":         a.SupportOwner,
		"quantity":              a.Quantity,
		"last_maintenance_date": a.LastMaintenanceDate,
		"next_maintenance_date": a.NextMaintenanceDate,
		"license_expiry":        a.LicenseExpiry,
		"warranty_expires_at":   a.WarrantyExpiresAt,
		"created_at":            a.CreatedAt,
		"updated_at":            a.UpdatedAt,
	}
}
