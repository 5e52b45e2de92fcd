package services

import (
	"fmt"
	"os"
	"strings"
	"time"

	"planbuddy/internal/models"
	"planbuddy/internal/repositories"
	"planbuddy/pkg/utils"
)

// Notifier delivers proposal and response notifications. Calls are
// fire-and-forget: implementations own their retries and never report
// failure back to the data path.
type Notifier interface {
	ProposalInvites(proposal models.MeetingProposal, organizer models.MemberContact, tokens []repositories.IssuedToken)
	ResponseReceived(proposal models.MeetingProposal, organizer models.MemberContact, respondentEmail string, answer models.Answer, tally repositories.ResponseTally)
	ProposalResolved(proposal models.MeetingProposal, organizer models.MemberContact, tally repositories.ResponseTally)
	ResponseReminder(proposal models.MeetingProposal, organizer models.MemberContact, token repositories.IssuedToken)
}

// EmailNotifier dispatches over SMTP in background goroutines with a
// doubling backoff between attempts.
type EmailNotifier struct {
	baseURL     string
	maxAttempts int
	backoff     time.Duration
}

func NewEmailNotifier() *EmailNotifier {
	baseURL := strings.TrimRight(os.Getenv("APP_BASE_URL"), "/")
	if baseURL == "" {
		baseURL = "https://planbuddy.app"
	}
	return &EmailNotifier{
		baseURL:     baseURL,
		maxAttempts: 3,
		backoff:     30 * time.Second,
	}
}

func (n *EmailNotifier) answerURL(rawToken string, answer models.Answer) string {
	return fmt.Sprintf("%s/respond?token=%s&response=%s", n.baseURL, rawToken, answer)
}

func (n *EmailNotifier) respondURL(rawToken string) string {
	return fmt.Sprintf("%s/respond?token=%s", n.baseURL, rawToken)
}

// deliver runs one send in the background, retrying with a doubling
// backoff. Failures end in an error log, never in the caller.
func (n *EmailNotifier) deliver(description string, send func() error) {
	go func() {
		backoff := n.backoff
		for attempt := 1; attempt <= n.maxAttempts; attempt++ {
			err := send()
			if err == nil {
				if attempt > 1 {
					utils.Logger.Infof("%s delivered after %d attempts", description, attempt)
				}
				return
			}
			utils.Logger.Warnf("%s failed (attempt %d/%d): %v", description, attempt, n.maxAttempts, err)
			if attempt < n.maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		utils.Logger.Errorf("%s dropped after %d attempts", description, n.maxAttempts)
	}()
}

func (n *EmailNotifier) ProposalInvites(proposal models.MeetingProposal, organizer models.MemberContact, tokens []repositories.IssuedToken) {
	for _, token := range tokens {
		token := token
		description := fmt.Sprintf("invite email to %s for proposal %s", token.RecipientEmail, proposal.PublicID)
		n.deliver(description, func() error {
			return utils.SendProposalInviteEmail(
				token.RecipientEmail,
				organizer.FirstName,
				proposal.Title,
				proposal.Description,
				proposal.WindowStartTime(),
				proposal.WindowEndTime(),
				n.answerURL(token.RawToken, models.AnswerYes),
				n.answerURL(token.RawToken, models.AnswerNo),
				n.respondURL(token.RawToken),
				token.ExpiresAt,
			)
		})
	}
}

func (n *EmailNotifier) ResponseReceived(proposal models.MeetingProposal, organizer models.MemberContact, respondentEmail string, answer models.Answer, tally repositories.ResponseTally) {
	description := fmt.Sprintf("response notice to %s for proposal %s", organizer.Email, proposal.PublicID)
	n.deliver(description, func() error {
		return utils.SendResponseReceivedEmail(
			organizer.Email,
			organizer.FirstName,
			proposal.Title,
			respondentEmail,
			string(answer),
			tally.Yes, tally.No, tally.Alternate, tally.Pending,
		)
	})
}

func (n *EmailNotifier) ProposalResolved(proposal models.MeetingProposal, organizer models.MemberContact, tally repositories.ResponseTally) {
	description := fmt.Sprintf("resolved notice to %s for proposal %s", organizer.Email, proposal.PublicID)
	n.deliver(description, func() error {
		return utils.SendProposalResolvedEmail(
			organizer.Email,
			organizer.FirstName,
			proposal.Title,
			proposal.WindowStartTime(),
			tally.Yes, tally.No, tally.Alternate,
		)
	})
}

func (n *EmailNotifier) ResponseReminder(proposal models.MeetingProposal, organizer models.MemberContact, token repositories.IssuedToken) {
	description := fmt.Sprintf("reminder email to %s for proposal %s", token.RecipientEmail, proposal.PublicID)
	n.deliver(description, func() error {
		return utils.SendResponseReminderEmail(
			token.RecipientEmail,
			organizer.FirstName,
			proposal.Title,
			proposal.WindowStartTime(),
			n.respondURL(token.RawToken),
			token.ExpiresAt,
		)
	})
}
