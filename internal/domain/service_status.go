package domain

import "github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"

// Side is the role a user plays on a specific service request.
type Side string

const (
	SideRequester Side = "requester"
	SideProvider  Side = "provider"
)

type ServiceAction string

const (
	ServiceAccept   ServiceAction = "accept"
	ServiceReject   ServiceAction = "reject"
	ServiceStart    ServiceAction = "start"
	ServiceComplete ServiceAction = "complete"
	ServiceCancel   ServiceAction = "cancel"
)

type serviceEdge struct {
	from   models.ServiceStatus
	action ServiceAction
	side   Side
}

var serviceTransitions = map[serviceEdge]models.ServiceStatus{
	{models.ServicePending, ServiceAccept, SideProvider}:      models.ServiceAccepted,
	{models.ServicePending, ServiceReject, SideProvider}:      models.ServiceRejected,
	{models.ServiceAccepted, ServiceStart, SideProvider}:      models.ServiceInProgress,
	{models.ServiceInProgress, ServiceComplete, SideProvider}: models.ServiceCompleted,

	{models.ServicePending, ServiceCancel, SideRequester}:   models.ServiceCancelled,
	{models.ServiceAccepted, ServiceCancel, SideProvider}:   models.ServiceCancelled,
	{models.ServiceInProgress, ServiceCancel, SideProvider}: models.ServiceCancelled,
}

// providerOnly lists the actions a requester may never perform.
var providerOnly = map[ServiceAction]bool{
	ServiceAccept:   true,
	ServiceReject:   true,
	ServiceStart:    true,
	ServiceComplete: true,
}

// ActionForTarget maps a requested target status to the action that produces it.
func ActionForTarget(target models.ServiceStatus) (ServiceAction, bool) {
	switch target {
	case models.ServiceAccepted:
		return ServiceAccept, true
	case models.ServiceRejected:
		return ServiceReject, true
	case models.ServiceInProgress:
		return ServiceStart, true
	case models.ServiceCompleted:
		return ServiceComplete, true
	case models.ServiceCancelled:
		return ServiceCancel, true
	}
	return "", false
}

// TransitionResult classifies the outcome of a transition lookup.
type TransitionResult int

const (
	TransitionOK TransitionResult = iota
	// TransitionForbidden means the side may never perform the action.
	TransitionForbidden
	// TransitionInvalid means the action is not allowed from the current status.
	TransitionInvalid
)

// NextServiceStatus looks up (from, action, side) in the transition table.
func NextServiceStatus(from models.ServiceStatus, action ServiceAction, side Side) (models.ServiceStatus, TransitionResult) {
	if side == SideRequester && providerOnly[action] {
		return from, TransitionForbidden
	}
	to, ok := serviceTransitions[serviceEdge{from, action, side}]
	if !ok {
		return from, TransitionInvalid
	}
	return to, TransitionOK
}
