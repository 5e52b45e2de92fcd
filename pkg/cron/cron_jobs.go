package cron

import (
	"context"
	"os"
	"planbuddy/internal/repositories"
	"planbuddy/internal/services"
	"planbuddy/pkg/utils"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
)

func StartCronJob(tokens *repositories.TokenRepository, proposals *repositories.ProposalRepository, coordinator *services.Coordinator) *cron.Cron {
	c := cron.New()

	// Runs hourly: purge expired response tokens
	_, err := c.AddFunc("0 * * * *", func() {
		if err := PurgeExpiredTokens(tokens); err != nil {
			utils.Logger.Errorf("Cron job failed to purge expired tokens: %v", err)
		}
	})
	if err != nil {
		utils.Logger.Errorf("Failed to schedule token purge job: %v", err)
	}

	// Runs daily at 9am: nudge recipients who have not answered
	_, err = c.AddFunc("0 9 * * *", func() {
		if err := SendPendingResponseReminders(coordinator); err != nil {
			utils.Logger.Errorf("Cron job failed to send response reminders: %v", err)
		}
	})
	if err != nil {
		utils.Logger.Errorf("Failed to schedule response reminder job: %v", err)
	}

	// Runs daily at midnight: archive old resolved proposals
	_, err = c.AddFunc("0 0 * * *", func() {
		if err := ArchiveOldResolvedProposals(proposals); err != nil {
			utils.Logger.Errorf("Cron job failed to archive resolved proposals: %v", err)
		}
	})
	if err != nil {
		utils.Logger.Errorf("Failed to schedule proposal archive job: %v", err)
	}

	c.Start()
	utils.Logger.Info("Cron jobs started (token purge hourly, response reminders daily at 9am, proposal archiving daily at midnight)")
	return c
}

// -------------------------------------------------------------
// Purge expired, never-consumed response tokens
// -------------------------------------------------------------
func PurgeExpiredTokens(tokens *repositories.TokenRepository) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Recently expired rows stay a day longer so a late click still
	// reads "expired" rather than "invalid".
	purged, err := tokens.PurgeExpired(ctx, 24*time.Hour)
	if err != nil {
		return err
	}

	if purged > 0 {
		utils.Logger.Infof("Purged %d expired response tokens", purged)
	}
	return nil
}

// -------------------------------------------------------------
// Send fresh response links to recipients still pending
// -------------------------------------------------------------
func SendPendingResponseReminders(coordinator *services.Coordinator) error {
	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	count, err := coordinator.RemindPendingRecipients(ctx)
	if err != nil {
		return err
	}

	if count > 0 {
		utils.Logger.Infof("📧 Sent %d response reminders for open proposals", count)
	}
	utils.Logger.Info("✅ Finished the pending response reminder run.")
	return nil
}

// -------------------------------------------------------------
// Archive resolved proposals past the retention window
// -------------------------------------------------------------
func ArchiveOldResolvedProposals(proposals *repositories.ProposalRepository) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	days, err := strconv.Atoi(os.Getenv("ARCHIVE_AFTER_DAYS"))
	if err != nil || days < 1 {
		days = 30
	}

	archived, err := proposals.ArchiveResolvedBefore(ctx, time.Duration(days)*24*time.Hour)
	if err != nil {
		return err
	}

	if archived > 0 {
		utils.Logger.Infof("Archived %d resolved proposals older than %d days", archived, days)
	}
	return nil
}
