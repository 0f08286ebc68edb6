// Package store defines the persistence contract of the marketplace.
// gormstore implements it on postgres; memstore implements it in memory for tests.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/domain"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
)

var (
	ErrNotFound  = errors.New("store: record not found")
	ErrDuplicate = errors.New("store: duplicate key")
	// ErrConflict means a compare-and-swap lost: the row is no longer in the expected state.
	ErrConflict = errors.New("store: state conflict")
)

type Page struct {
	Page  int
	Limit int
}

func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	return p
}

func (p Page) Offset() int {
	p = p.Normalize()
	return (p.Page - 1) * p.Limit
}

type UserFilter struct {
	Role      models.Role
	Active    *bool
	Search    string
	Category  string
	City      string
	MinRating float64
	// SortByRating orders by provider rating, highest first.
	SortByRating bool
	Page
}

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	GetUserByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error)
	SaveUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
	ListUsers(ctx context.Context, f UserFilter) ([]models.User, int64, error)
	CountUsersByRole(ctx context.Context) (map[models.Role]int64, error)
	// ApplyRating adds (remove=false) or removes one rating from the user's
	// average of the given kind in a single atomic write.
	ApplyRating(ctx context.Context, userID uuid.UUID, kind domain.RatingKind, rating int, remove bool) (*models.User, error)
	PurgeExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

type ServiceFilter struct {
	RequesterID *uuid.UUID
	ProviderID  *uuid.UUID
	Status      models.ServiceStatus
	Page
}

// StatusChange is a compare-and-swap on a service request status.
type StatusChange struct {
	From               models.ServiceStatus
	To                 models.ServiceStatus
	At                 time.Time
	CancelledBy        *uuid.UUID
	CancellationReason string
}

type ServiceStore interface {
	CreateServiceRequest(ctx context.Context, s *models.ServiceRequest) error
	GetServiceRequest(ctx context.Context, id uuid.UUID) (*models.ServiceRequest, error)
	ListServiceRequests(ctx context.Context, f ServiceFilter) ([]models.ServiceRequest, int64, error)
	ChangeServiceStatus(ctx context.Context, id uuid.UUID, ch StatusChange) (*models.ServiceRequest, error)
	// SetServiceRating stores one direction's sub-rating; ErrConflict if already set.
	SetServiceRating(ctx context.Context, id uuid.UUID, side domain.Side, rating int, comment string) (*models.ServiceRequest, error)
	CountServicesByStatus(ctx context.Context) (map[models.ServiceStatus]int64, error)
}

type JobFilter struct {
	CompanyID *uuid.UUID
	Category  string
	Type      models.JobType
	Location  string
	Search    string
	Status    models.JobStatus
	Page
}

type ApplicationFilter struct {
	JobID       *uuid.UUID
	ApplicantID *uuid.UUID
	Page
}

type ProposalFilter struct {
	ProviderID *uuid.UUID
	CompanyID  *uuid.UUID
	Page
}

// Response is a compare-and-swap answer on an application or proposal.
type Response struct {
	From    string
	To      string
	Message string
	At      time.Time
}

type JobStore interface {
	CreateJob(ctx context.Context, j *models.JobVacancy) error
	GetJob(ctx context.Context, id uuid.UUID) (*models.JobVacancy, error)
	ListJobs(ctx context.Context, f JobFilter) ([]models.JobVacancy, int64, error)
	SaveJob(ctx context.Context, j *models.JobVacancy) error
	DeleteJob(ctx context.Context, id uuid.UUID) error
	CountJobs(ctx context.Context) (int64, error)

	// CreateApplication inserts the application and bumps the job's counter atomically.
	CreateApplication(ctx context.Context, a *models.Application) error
	GetApplication(ctx context.Context, id uuid.UUID) (*models.Application, error)
	ListApplications(ctx context.Context, f ApplicationFilter) ([]models.Application, int64, error)
	RespondApplication(ctx context.Context, id uuid.UUID, r Response) (*models.Application, error)
	CountApplications(ctx context.Context) (int64, error)

	CreateProposal(ctx context.Context, p *models.JobProposal) error
	GetProposal(ctx context.Context, id uuid.UUID) (*models.JobProposal, error)
	ListProposals(ctx context.Context, f ProposalFilter) ([]models.JobProposal, int64, error)
	RespondProposal(ctx context.Context, id uuid.UUID, r Response) (*models.JobProposal, error)
}

type ReviewFilter struct {
	ReviewedUserID *uuid.UUID
	Type           models.ReviewType
	Statuses       []models.ReviewStatus
	Page
}

// ReviewUpdate is a compare-and-swap on a review's moderation state.
type ReviewUpdate struct {
	From         models.ReviewStatus
	To           models.ReviewStatus
	Counted      bool
	ClearReports bool
	Reason       string
	ModeratedBy  *uuid.UUID
	At           time.Time
}

type ReviewStore interface {
	CreateReview(ctx context.Context, r *models.Review) error
	GetReview(ctx context.Context, id uuid.UUID) (*models.Review, error)
	ListReviews(ctx context.Context, f ReviewFilter) ([]models.Review, int64, error)
	UpdateReviewState(ctx context.Context, id uuid.UUID, u ReviewUpdate) (*models.Review, error)
	// DeleteReview removes the review with its reports and votes and returns
	// the row as it stood when it was removed.
	DeleteReview(ctx context.Context, id uuid.UUID) (*models.Review, error)
	// AddReport records a report and flags the review once it reaches threshold
	// reports while approved. ErrDuplicate if the reporter already reported it.
	AddReport(ctx context.Context, rep *models.ReviewReport, threshold int) (*models.Review, error)
	// ToggleHelpful flips userID's helpful vote and returns the new state.
	ToggleHelpful(ctx context.Context, reviewID, userID uuid.UUID) (bool, *models.Review, error)
	CountReviewsByStatus(ctx context.Context) (map[models.ReviewStatus]int64, error)
}

// ConversationKey identifies a conversation independently of participant order.
type ConversationKey struct {
	UserA     uuid.UUID
	UserB     uuid.UUID
	Type      models.ConversationType
	RelatedID uuid.UUID
}

// Ordered returns the key with UserA <= UserB.
func (k ConversationKey) Ordered() ConversationKey {
	k.UserA, k.UserB = models.OrderPair(k.UserA, k.UserB)
	return k
}

// ConversationSummary is a conversation as seen by one participant.
type ConversationSummary struct {
	models.Conversation
	UnreadCount int `json:"unread_count"`
}

type ChatStore interface {
	FindConversation(ctx context.Context, k ConversationKey) (*models.Conversation, error)
	// CreateConversation inserts the conversation and one participant row per member.
	CreateConversation(ctx context.Context, c *models.Conversation) error
	GetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	ListConversations(ctx context.Context, userID uuid.UUID) ([]ConversationSummary, error)
	// CreateMessage stores the message, bumps every other participant's unread
	// counter and refreshes the conversation's last message.
	CreateMessage(ctx context.Context, m *models.Message) error
	ListMessages(ctx context.Context, conversationID uuid.UUID, p Page) ([]models.Message, int64, error)
	// MarkRead zeroes userID's unread counter and writes receipts for messages
	// sent by others.
	MarkRead(ctx context.Context, conversationID, userID uuid.UUID, at time.Time) error
}

type SettingsStore interface {
	// GetSettings returns the singleton, creating the default row when missing.
	GetSettings(ctx context.Context) (*models.Settings, error)
	SaveSettings(ctx context.Context, s *models.Settings) error
}

type Store interface {
	UserStore
	ServiceStore
	JobStore
	ReviewStore
	ChatStore
	SettingsStore
	Ping(ctx context.Context) error
}
