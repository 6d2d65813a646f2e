// Package cron runs the background jobs of the SweepOS backend. Currently
// a single daily job: program-completion notifications.
package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"sweepos-backend/internal/crm"
	"sweepos-backend/internal/database"
)

// Notifier scans program windows once a day and writes in-app
// notifications for programs that are ending soon or have ended.
type Notifier struct {
	db       database.Service
	interval time.Duration
}

// NewNotifier creates a Notifier with the standard daily interval.
func NewNotifier(db database.Service) *Notifier {
	return &Notifier{db: db, interval: 24 * time.Hour}
}

// Start runs the notifier loop until ctx is cancelled. The first sweep
// runs immediately.
func (n *Notifier) Start(ctx context.Context) {
	log.Printf("[cron] program notifier started (interval %s)", n.interval)

	n.sweep(ctx)

	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[cron] program notifier stopped")
			return
		case <-ticker.C:
			n.sweep(ctx)
		}
	}
}

// endingSoonDays is the lookahead window for "program ending" alerts.
const endingSoonDays = 7

func (n *Notifier) sweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	pool := n.db.GetPool()

	rows, err := pool.Query(ctx, `
		SELECT id, organization_id::text, name, program_start_date, program_duration_weeks
		FROM clients
		WHERE program_start_date IS NOT NULL AND program_duration_weeks > 0
			AND lifecycle_state IN ('active', 'offboarding')
	`)
	if err != nil {
		log.Printf("[cron] failed to scan program windows: %v", err)
		return
	}
	defer rows.Close()

	type candidate struct {
		clientID string
		orgID    string
		name     string
		kind     string
		days     int
	}
	candidates := []candidate{}

	now := time.Now()
	for rows.Next() {
		var clientID, orgID, name string
		var start *time.Time
		var weeks int
		if err := rows.Scan(&clientID, &orgID, &name, &start, &weeks); err != nil {
			log.Printf("[cron] scan error: %v", err)
			continue
		}

		days := crm.ProgramDaysRemaining(start, weeks, now)
		if days == nil {
			continue
		}
		switch {
		case *days <= 0:
			candidates = append(candidates, candidate{clientID, orgID, name, "program_complete", *days})
		case *days <= endingSoonDays:
			candidates = append(candidates, candidate{clientID, orgID, name, "program_ending", *days})
		}
	}

	notified := 0
	for _, c := range candidates {
		title, message := notificationText(c.name, c.kind, c.days)

		// One notification per user/client/kind per day. The WHERE NOT
		// EXISTS guard makes re-running the sweep idempotent.
		tag, err := pool.Exec(ctx, `
			INSERT INTO notifications (user_id, title, message, type, entity_type, entity_id)
			SELECT u.id, $1, $2, $3, 'client', $4
			FROM users u
			WHERE u.organization_id = $5
				AND NOT EXISTS (
					SELECT 1 FROM notifications n
					WHERE n.user_id = u.id AND n.type = $3 AND n.entity_id = $4
						AND n.created_at >= CURRENT_DATE
				)
		`, title, message, c.kind, c.clientID, c.orgID)
		if err != nil {
			log.Printf("[cron] failed to notify for client %s: %v", c.clientID, err)
			continue
		}
		notified += int(tag.RowsAffected())
	}

	log.Printf("[cron] program sweep done: %d candidates, %d notifications", len(candidates), notified)
}

func notificationText(clientName, kind string, days int) (title, message string) {
	if kind == "program_complete" {
		return "Program complete",
			fmt.Sprintf("%s's program has ended. Time to plan the next step.", clientName)
	}
	if days == 1 {
		return "Program ending soon",
			fmt.Sprintf("%s's program ends tomorrow.", clientName)
	}
	return "Program ending soon",
		fmt.Sprintf("%s's program ends in %d days.", clientName, days)
}
