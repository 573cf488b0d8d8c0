// Package ai defines the lead verification contract. An Investigator
// assesses a carrier's public footprint and intent to work with a
// dispatcher before any outreach happens.
package ai

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/faridlogistics/freightcrm/internal/freight"
	"github.com/faridlogistics/freightcrm/internal/utils"
)

// VerificationAssessment is the outcome of investigating one lead.
type VerificationAssessment struct {
	SocialVerified bool
	HighIntent     bool
	Score          float64
	Reason         string
	WebsiteURL     string
	Snippets       []string
	Raw            string
}

type Investigator interface {
	Investigate(ctx context.Context, lead *freight.Lead) (*VerificationAssessment, error)
}

// ApplyAssessment writes verification results back onto the lead.
func ApplyAssessment(lead *freight.Lead, a *VerificationAssessment) {
	lead.VerificationStatus = "verified"
	lead.SocialVerified = a.SocialVerified
	lead.HighIntent = a.HighIntent
	lead.WebsiteURL = a.WebsiteURL
	lead.SearchSnippets = a.Snippets
	lead.UpdatedAt = time.Now().UTC()
}

// Session aggregates one verification run.
type Session struct {
	TotalInvestigated   int
	SocialVerifiedCount int
	HighIntentCount     int
	Errors              int
	StartedAt           time.Time
	Duration            time.Duration
}

// VerifyBatch investigates leads one by one with a delay between
// calls. Failed investigations are counted and skipped, not fatal.
func VerifyBatch(ctx context.Context, inv Investigator, leads []*freight.Lead, delay time.Duration, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	session := &Session{StartedAt: time.Now().UTC()}
	defer func() { session.Duration = time.Since(session.StartedAt) }()

	for i, lead := range leads {
		if i > 0 {
			if err := utils.WaitFor(ctx, delay); err != nil {
				return session, err
			}
		}

		assessment, err := inv.Investigate(ctx, lead)
		session.TotalInvestigated++
		if err != nil {
			session.Errors++
			logger.Warn("lead verification failed",
				zap.String("lead_id", lead.ID),
				zap.String("company", lead.CompanyName),
				zap.Error(err),
			)
			continue
		}

		ApplyAssessment(lead, assessment)
		if assessment.SocialVerified {
			session.SocialVerifiedCount++
		}
		if assessment.HighIntent {
			session.HighIntentCount++
		}
	}
	return session, nil
}
