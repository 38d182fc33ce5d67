package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/helpdesk-central/ticket-hub/internal/classify"
	"github.com/helpdesk-central/ticket-hub/internal/domain"
	"github.com/helpdesk-central/ticket-hub/internal/events"
	"github.com/helpdesk-central/ticket-hub/internal/repository"
	apperrors "github.com/helpdesk-central/ticket-hub/pkg/util"
)

// IntakeInput is a platform-submitted complaint. Platform identity is not
// part of the input: it comes exclusively from the authenticated API key.
type IntakeInput struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Subject   string `json:"subject" validate:"required,max=100"`
	Message   string `json:"message" validate:"required"`
}

// IntakeService validates and creates tickets from platform submissions.
type IntakeService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	validate   *validator.Validate
}

// IntakeDependencies bundles requirements for the intake service.
type IntakeDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
}

// NewIntakeService constructs the service.
func NewIntakeService(deps IntakeDependencies) *IntakeService {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &IntakeService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		validate:   validate,
	}
}

// Submit creates a ticket for the authenticated platform. The priority is
// classified from the subject once, here; status starts at new and no agent
// is bound.
func (s *IntakeService) Submit(ctx context.Context, platform string, input IntakeInput) (*domain.Ticket, error) {
	if strings.TrimSpace(platform) == "" {
		return nil, apperrors.NewUnauthorized("platform identity not determined")
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, validationDetails(err)
	}

	ticket := &domain.Ticket{
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Email:        strings.TrimSpace(input.Email),
		Subject:      strings.TrimSpace(input.Subject),
		Message:      input.Message,
		PlatformName: platform,
		Status:       domain.TicketStatusNew,
		Priority:     classify.Classify(input.Subject),
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketReceived,
		TicketID: ticket.ID,
		Actor:    events.Actor{Platform: &ticket.PlatformName},
		Payload: events.TicketReceivedPayload{
			Platform: ticket.PlatformName,
			Priority: ticket.Priority,
			Subject:  ticket.Subject,
		},
	})
	return ticket, nil
}

func (s *IntakeService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}

// validationDetails flattens validator errors into per-field messages so the
// submitting platform can correct the payload.
func validationDetails(err error) error {
	var fieldErrors validator.ValidationErrors
	details := map[string]any{}
	if errors.As(err, &fieldErrors) {
		for _, fe := range fieldErrors {
			switch fe.Tag() {
			case "required":
				details[fe.Field()] = "this field is required"
			case "email":
				details[fe.Field()] = "must be a valid email address"
			case "max":
				details[fe.Field()] = "exceeds maximum length of " + fe.Param()
			default:
				details[fe.Field()] = "invalid value"
			}
		}
	}
	return apperrors.NewValidationError("invalid submission", details)
}
