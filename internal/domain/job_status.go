package domain

import "github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"

// ApplicationParty is who acts on an application.
type ApplicationParty string

const (
	PartyCompany   ApplicationParty = "company"
	PartyApplicant ApplicationParty = "applicant"
)

var applicationTransitions = map[ApplicationParty]map[models.ApplicationStatus][]models.ApplicationStatus{
	PartyCompany: {
		models.ApplicationPending:   {models.ApplicationReviewing, models.ApplicationAccepted, models.ApplicationRejected},
		models.ApplicationReviewing: {models.ApplicationAccepted, models.ApplicationRejected},
	},
	PartyApplicant: {
		models.ApplicationPending:   {models.ApplicationCancelled},
		models.ApplicationReviewing: {models.ApplicationCancelled},
	},
}

// CanMoveApplication reports whether party may move an application from -> to.
func CanMoveApplication(party ApplicationParty, from, to models.ApplicationStatus) bool {
	for _, s := range applicationTransitions[party][from] {
		if s == to {
			return true
		}
	}
	return false
}

// CanRespondProposal reports whether a provider may answer a proposal with to.
func CanRespondProposal(from, to models.ProposalStatus) bool {
	return from == models.ProposalPending && (to == models.ProposalAccepted || to == models.ProposalRejected)
}
