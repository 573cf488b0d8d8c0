// Package outreach drafts the email sequence sent to qualified
// carriers. Drafts are generated, never sent, so a dispatcher reviews
// every message before it goes out.
package outreach

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/faridlogistics/freightcrm/internal/freight"
)

// Stage is one step of the contact sequence.
type Stage string

const (
	StageInitial   Stage = "initial"
	StageFollowUp1 Stage = "follow_up_1"
	StageFollowUp2 Stage = "follow_up_2"
	StageFollowUp3 Stage = "follow_up_3"
)

const (
	// MinDaysBetweenContact is the cooldown between emails to the
	// same carrier.
	MinDaysBetweenContact = 3
	// MaxContactAttempts caps the sequence length.
	MaxContactAttempts = 4
)

// Draft is an email ready for dispatcher review.
type Draft struct {
	LeadID      string    `json:"lead_id"`
	ToEmail     string    `json:"to_email"`
	ToName      string    `json:"to_name"`
	CompanyName string    `json:"company_name"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	Stage       Stage     `json:"stage"`
	CreatedAt   time.Time `json:"created_at"`
}

// Result summarizes one campaign run.
type Result struct {
	TotalLeads           int      `json:"total_leads"`
	DraftsCreated        int      `json:"drafts_created"`
	SkippedNoEmail       int      `json:"skipped_no_email"`
	SkippedDoNotContact  int      `json:"skipped_do_not_contact"`
	SkippedRecentContact int      `json:"skipped_recent_contact"`
	SkippedMaxAttempts   int      `json:"skipped_max_attempts"`
	Drafts               []*Draft `json:"drafts"`
	Errors               []string `json:"errors,omitempty"`
}

type templateData struct {
	CompanyName   string
	ContactName   string
	TruckCount    int
	State         string
	Equipment     string
	MCNumber      string
	CommissionPct string
	CharityPct    string
}

type stageTemplate struct {
	subject *template.Template
	body    *template.Template
}

var stageOrder = []Stage{StageInitial, StageFollowUp1, StageFollowUp2, StageFollowUp3}

var templateSources = map[Stage][2]string{
	StageInitial: {
		"Dispatch Partnership Opportunity - {{.CompanyName}}",
		`Hello {{.ContactName}},

I came across {{.CompanyName}} and was impressed by your operation. We
connect quality carriers with consistent, well-paying freight.

What makes us different:
- Transparent {{.CommissionPct}} commission, no hidden fees
- Every load screened before it reaches you, so you never haul
  restricted freight
- 24/7 dispatcher support
- Fast payment processing

We are currently looking to partner with {{.TruckCount}}-truck
operations in {{.State}} running {{.Equipment}} freight.

Would you be open to a brief call this week?

Best regards,
Farid Logistics Dispatch

P.S. We donate {{.CharityPct}} of our commission to support trucking
families in need.
`,
	},
	StageFollowUp1: {
		"Re: Dispatch Partnership - {{.CompanyName}}",
		`Hello {{.ContactName}},

I wanted to follow up on my previous message about a dispatch
partnership with {{.CompanyName}}.

I understand you are busy running your operation. If now is not the
right time, no pressure at all.

But if you are currently:
- Looking for more consistent freight
- Tired of brokers with hidden fees
- Wanting a dispatcher who respects your time

I would love a quick 10-minute conversation. What does your schedule
look like this week?

Best regards,
Farid Logistics Dispatch
`,
	},
	StageFollowUp2: {
		"Quick question for {{.CompanyName}}",
		`Hello {{.ContactName}},

Just a quick note. I have reached out a couple of times about dispatch
services for {{.CompanyName}}.

If you are happy with your current setup, I completely understand and
will not bother you again.

But if you would like to see what consistent freight at $2.50+/mile
looks like, just reply "interested" and I will send over details.

Either way, safe travels.

Best,
Farid Logistics Dispatch
`,
	},
	StageFollowUp3: {
		"Last note from Farid Logistics - {{.CompanyName}}",
		`Hello {{.ContactName}},

This will be my last message unless you would like to connect.

I have been trying to reach {{.CompanyName}} about our dispatch
services. If the timing is not right or you are not interested, I
respect that completely.

If anything changes, my door is always open. Just reply to this email
anytime.

Wishing you success on the road.

Best regards,
Farid Logistics Dispatch
`,
	},
}

// Sequencer generates drafts for the contact sequence.
type Sequencer struct {
	templates map[Stage]stageTemplate
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures a Sequencer.
type Option func(*Sequencer)

func WithClock(now func() time.Time) Option {
	return func(s *Sequencer) { s.now = now }
}

func NewSequencer(logger *zap.Logger, opts ...Option) (*Sequencer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Sequencer{
		templates: make(map[Stage]stageTemplate, len(templateSources)),
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for stage, src := range templateSources {
		subject, err := template.New(string(stage) + "_subject").Parse(src[0])
		if err != nil {
			return nil, fmt.Errorf("parsing %s subject: %w", stage, err)
		}
		body, err := template.New(string(stage) + "_body").Parse(src[1])
		if err != nil {
			return nil, fmt.Errorf("parsing %s body: %w", stage, err)
		}
		s.templates[stage] = stageTemplate{subject: subject, body: body}
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// StageFor picks the next sequence step from contact history. The
// second return is false once the sequence is exhausted.
func StageFor(lead *freight.Lead) (Stage, bool) {
	if lead.ContactAttempts < 0 || lead.ContactAttempts >= len(stageOrder) {
		return "", false
	}
	return stageOrder[lead.ContactAttempts], true
}

// ShouldContact reports whether a lead is eligible for outreach, with
// the reason when it is not.
func (s *Sequencer) ShouldContact(lead *freight.Lead) (bool, string) {
	if lead.Contact.DoNotEmail {
		return false, "do_not_email flag set"
	}
	if lead.Contact.Email == "" {
		return false, "no email address"
	}
	if lead.ContactAttempts >= MaxContactAttempts {
		return false, "max contact attempts reached"
	}
	if !lead.LastContactDate.IsZero() {
		days := int(s.now().Sub(lead.LastContactDate).Hours() / 24)
		if days < MinDaysBetweenContact {
			return false, fmt.Sprintf("contacted %d days ago (min %d)", days, MinDaysBetweenContact)
		}
	}
	return true, "ok"
}

// GenerateDraft renders the next email in the sequence for one lead.
// Returns nil when the lead should not be contacted.
func (s *Sequencer) GenerateDraft(lead *freight.Lead) (*Draft, error) {
	if ok, _ := s.ShouldContact(lead); !ok {
		return nil, nil
	}
	stage, ok := StageFor(lead)
	if !ok {
		return nil, nil
	}

	data := personalize(lead)
	tmpl := s.templates[stage]

	var subject, body bytes.Buffer
	if err := tmpl.subject.Execute(&subject, data); err != nil {
		return nil, fmt.Errorf("rendering %s subject: %w", stage, err)
	}
	if err := tmpl.body.Execute(&body, data); err != nil {
		return nil, fmt.Errorf("rendering %s body: %w", stage, err)
	}

	toName := lead.OwnerName
	if toName == "" {
		toName = lead.CompanyName
	}

	return &Draft{
		LeadID:      lead.ID,
		ToEmail:     lead.Contact.Email,
		ToName:      toName,
		CompanyName: lead.CompanyName,
		Subject:     subject.String(),
		Body:        body.String(),
		Stage:       stage,
		CreatedAt:   s.now(),
	}, nil
}

// Campaign drafts emails for a batch of leads, stopping at limit.
func (s *Sequencer) Campaign(leads []*freight.Lead, limit int) *Result {
	result := &Result{TotalLeads: len(leads)}

	for _, lead := range leads {
		if limit > 0 && result.DraftsCreated >= limit {
			break
		}

		if ok, reason := s.ShouldContact(lead); !ok {
			switch {
			case strings.Contains(reason, "no email"):
				result.SkippedNoEmail++
			case strings.Contains(reason, "do_not"):
				result.SkippedDoNotContact++
			case strings.Contains(reason, "contacted"):
				result.SkippedRecentContact++
			case strings.Contains(reason, "max contact"):
				result.SkippedMaxAttempts++
			}
			continue
		}

		draft, err := s.GenerateDraft(lead)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("lead %s: %v", lead.ID, err))
			continue
		}
		if draft == nil {
			continue
		}

		result.Drafts = append(result.Drafts, draft)
		result.DraftsCreated++
		s.logger.Debug("draft created",
			zap.String("lead_id", lead.ID),
			zap.String("stage", string(draft.Stage)),
		)
	}
	return result
}

// MarkSent records the contact attempt on the lead after a draft was
// actually sent.
func (s *Sequencer) MarkSent(lead *freight.Lead) {
	lead.MarkContacted()
}

func personalize(lead *freight.Lead) templateData {
	equipment := "dry van"
	if len(lead.Fleet.EquipmentTypes) > 0 {
		equipment = strings.ReplaceAll(string(lead.Fleet.EquipmentTypes[0]), "_", " ")
	}

	contactName := lead.OwnerName
	if contactName == "" {
		if fields := strings.Fields(lead.CompanyName); len(fields) > 0 {
			contactName = fields[0]
		}
	}

	state := lead.Fleet.HomeBaseState
	if state == "" {
		state = "your area"
	}

	truckCount := lead.Fleet.TruckCount
	if truckCount < 1 {
		truckCount = 1
	}

	return templateData{
		CompanyName:   lead.CompanyName,
		ContactName:   contactName,
		TruckCount:    truckCount,
		State:         state,
		Equipment:     equipment,
		MCNumber:      lead.Authority.MCNumber,
		CommissionPct: fmt.Sprintf("%.0f%%", freight.DefaultCommissionRate*100),
		CharityPct:    fmt.Sprintf("%.0f%%", freight.DefaultCharityRate*100),
	}
}
