package erasure

import (
	"context"
	"fmt"
)

// Handler purges one data layer for a subject. Handlers run independently;
// an error (or panic) in one never aborts its siblings.
type Handler func(ctx context.Context, subjectID, requestID string) (Outcome, error)

// AuditAnonymizer is the audit-log collaborator view the audit-layer
// handler needs: erasure of audit data is field anonymization, never a
// row delete.
type AuditAnonymizer interface {
	AnonymizeRequester(ctx context.Context, requesterID string) (int, error)
}

// defaultHandlers wires the built-in purge set. The audit-log handler is
// the only one touching a real collaborator; the rest stand in for the
// systems a production deployment would integrate.
func defaultHandlers(auditor AuditAnonymizer) map[DataLayer]Handler {
	return map[DataLayer]Handler{
		LayerPrimaryDB: func(_ context.Context, _, _ string) (Outcome, error) {
			return Outcome{
				RecordsAffected: 1,
				Details: map[string]any{
					"tables_processed": []string{"users", "user_data", "preferences"},
					"method":           "hard_delete",
				},
			}, nil
		},
		LayerCache: func(_ context.Context, subjectID, _ string) (Outcome, error) {
			return Outcome{
				RecordsAffected: 3,
				Details: map[string]any{
					"cache_keys_deleted": []string{
						"user:" + subjectID,
						"session:" + subjectID,
						"prefs:" + subjectID,
					},
				},
			}, nil
		},
		LayerSearchIndex: func(_ context.Context, _, _ string) (Outcome, error) {
			return Outcome{
				RecordsAffected: 1,
				Details: map[string]any{
					"indices_updated": []string{"users_index", "activity_index"},
				},
			}, nil
		},
		LayerMLModels: func(_ context.Context, _, _ string) (Outcome, error) {
			// Complete removal needs retraining; the purge flags it.
			return Outcome{
				RecordsAffected: 1,
				Details: map[string]any{
					"action":               "flagged_for_retraining",
					"models_affected":      []string{"recommendation_model", "risk_scoring_model"},
					"retraining_scheduled": true,
				},
			}, nil
		},
		LayerAnalytics: func(_ context.Context, _, _ string) (Outcome, error) {
			return Outcome{
				RecordsAffected: 50,
				Details: map[string]any{
					"events_deleted":          50,
					"aggregates_recalculated": true,
				},
			}, nil
		},
		LayerBackups: func(_ context.Context, _, _ string) (Outcome, error) {
			// Backups purge on rotation; immediate access is already blocked.
			return Outcome{
				Details: map[string]any{
					"action": "scheduled",
					"scheduled_purge_dates": []string{
						"next_backup_rotation",
						"30_day_backup_expiry",
					},
					"immediate_access_blocked": true,
				},
			}, nil
		},
		LayerAuditLogs: func(ctx context.Context, subjectID, _ string) (Outcome, error) {
			// Retention rules forbid deleting audit rows; anonymize instead.
			affected := 25
			if auditor != nil {
				n, err := auditor.AnonymizeRequester(ctx, subjectID)
				if err != nil {
					return Outcome{}, fmt.Errorf("anonymize audit records: %w", err)
				}
				affected = n
			}
			return Outcome{
				RecordsAffected: affected,
				Details: map[string]any{
					"action":         "anonymized",
					"reason":         "Audit log retention requirements",
					"fields_cleared": []string{"requester_id", "ip_address", "user_agent"},
				},
			}, nil
		},
		LayerThirdParty: func(_ context.Context, _, _ string) (Outcome, error) {
			return Outcome{
				Details: map[string]any{
					"notifications_sent": []map[string]string{
						{"processor": "analytics_partner", "status": "notified"},
						{"processor": "email_service", "status": "notified"},
						{"processor": "backup_provider", "status": "notified"},
					},
					"gdpr_article_17_compliant": true,
				},
			}, nil
		},
	}
}
