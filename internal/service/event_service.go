package service

import (
	"context"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/kanji/internal/consensus"
)

// EventServiceName is the fully-qualified name of the event service.
const EventServiceName = "kanji.v1.EventService"

// Procedure paths for EventService.
const (
	EventServiceCreateEventProcedure            = "/" + EventServiceName + "/CreateEvent"
	EventServiceGetEventProcedure               = "/" + EventServiceName + "/GetEvent"
	EventServiceListEventsProcedure             = "/" + EventServiceName + "/ListEvents"
	EventServiceDeleteEventProcedure            = "/" + EventServiceName + "/DeleteEvent"
	EventServiceCastVoteProcedure               = "/" + EventServiceName + "/CastVote"
	EventServiceFinalizeDateProcedure           = "/" + EventServiceName + "/FinalizeDate"
	EventServiceDecideDateProcedure             = "/" + EventServiceName + "/DecideDate"
	EventServiceRequestVenueCandidatesProcedure = "/" + EventServiceName + "/RequestVenueCandidates"
	EventServiceAddVenueOptionProcedure         = "/" + EventServiceName + "/AddVenueOption"
	EventServiceListVenueOptionsProcedure       = "/" + EventServiceName + "/ListVenueOptions"
	EventServiceDecideVenueProcedure            = "/" + EventServiceName + "/DecideVenue"
	EventServiceCancelEventProcedure            = "/" + EventServiceName + "/CancelEvent"
	EventServiceCompleteEventProcedure          = "/" + EventServiceName + "/CompleteEvent"
	EventServiceSetAttendanceProcedure          = "/" + EventServiceName + "/SetAttendance"
	EventServiceListNotificationsProcedure      = "/" + EventServiceName + "/ListNotifications"
)

// EventService exposes the consensus engine over Connect.
type EventService struct {
	engine *consensus.Engine
	logger *slog.Logger
}

// NewEventService creates a new EventService backed by engine.
func NewEventService(engine *consensus.Engine, logger *slog.Logger) *EventService {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventService{engine: engine, logger: logger}
}

// Handler returns the path prefix and handler serving every EventService procedure.
func (s *EventService) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	unary(mux, EventServiceCreateEventProcedure, s.CreateEvent, opts...)
	unary(mux, EventServiceGetEventProcedure, s.GetEvent, opts...)
	unary(mux, EventServiceListEventsProcedure, s.ListEvents, opts...)
	unary(mux, EventServiceDeleteEventProcedure, s.DeleteEvent, opts...)
	unary(mux, EventServiceCastVoteProcedure, s.CastVote, opts...)
	unary(mux, EventServiceFinalizeDateProcedure, s.FinalizeDate, opts...)
	unary(mux, EventServiceDecideDateProcedure, s.DecideDate, opts...)
	unary(mux, EventServiceRequestVenueCandidatesProcedure, s.RequestVenueCandidates, opts...)
	unary(mux, EventServiceAddVenueOptionProcedure, s.AddVenueOption, opts...)
	unary(mux, EventServiceListVenueOptionsProcedure, s.ListVenueOptions, opts...)
	unary(mux, EventServiceDecideVenueProcedure, s.DecideVenue, opts...)
	unary(mux, EventServiceCancelEventProcedure, s.CancelEvent, opts...)
	unary(mux, EventServiceCompleteEventProcedure, s.CompleteEvent, opts...)
	unary(mux, EventServiceSetAttendanceProcedure, s.SetAttendance, opts...)
	unary(mux, EventServiceListNotificationsProcedure, s.ListNotifications, opts...)
	return "/" + EventServiceName + "/", mux
}

// CreateEvent opens a new event for date voting.
func (s *EventService) CreateEvent(ctx context.Context, req *CreateEventRequest) (*EventDetailResponse, error) {
	s.logger.Info("CreateEvent request received",
		"title", req.Title,
		"date_options", len(req.DateOptions),
		"participants", len(req.Participants),
	)

	in := consensus.CreateEventInput{
		Title:              req.Title,
		Description:        req.Description,
		BudgetPerPerson:    req.BudgetPerPerson,
		LocationConstraint: req.LocationConstraint,
		DateOptions:        req.DateOptions,
		Participants:       make([]consensus.ParticipantInput, len(req.Participants)),
	}
	for i, p := range req.Participants {
		in.Participants[i] = consensus.ParticipantInput{
			Token:     p.Token,
			Name:      p.Name,
			Email:     p.Email,
			Attending: p.Attending,
		}
	}

	view, err := s.engine.CreateEvent(ctx, in)
	if err != nil {
		return nil, err
	}
	return toEventDetail(view), nil
}

// GetEvent returns an event with its participants and options.
func (s *EventService) GetEvent(ctx context.Context, req *EventRequest) (*EventDetailResponse, error) {
	view, err := s.engine.GetEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	return toEventDetail(view), nil
}

// ListEvents returns all events, newest first.
func (s *EventService) ListEvents(ctx context.Context, _ *ListEventsRequest) (*ListEventsResponse, error) {
	events, err := s.engine.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	res := &ListEventsResponse{Events: make([]*Event, len(events))}
	for i, e := range events {
		res.Events[i] = toEvent(e)
	}
	return res, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, req *EventRequest) (*Empty, error) {
	if err := s.engine.DeleteEvent(ctx, req.EventID); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

// CastVote toggles a participant's vote on a date option.
func (s *EventService) CastVote(ctx context.Context, req *CastVoteRequest) (*CastVoteResponse, error) {
	res, err := s.engine.CastVote(ctx, req.EventID, req.DateOptionID, req.ParticipantToken)
	if err != nil {
		return nil, err
	}
	return &CastVoteResponse{Action: string(res.Action), VoteCount: res.VoteCount}, nil
}

func (s *EventService) FinalizeDate(ctx context.Context, req *EventRequest) (*EventResponse, error) {
	ev, err := s.engine.FinalizeDate(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	return &EventResponse{Event: toEvent(ev)}, nil
}

func (s *EventService) DecideDate(ctx context.Context, req *DecideDateRequest) (*EventResponse, error) {
	ev, err := s.engine.DecideDateManually(ctx, req.EventID, req.DateOptionID)
	if err != nil {
		return nil, err
	}
	return &EventResponse{Event: toEvent(ev)}, nil
}

// RequestVenueCandidates asks the configured provider for venues. An
// unreachable provider is reported through Unavailable, not as an error.
func (s *EventService) RequestVenueCandidates(ctx context.Context, req *EventRequest) (*VenueCandidatesResponse, error) {
	res, err := s.engine.RequestVenueCandidates(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	return &VenueCandidatesResponse{Added: toVenueOptions(res.Added), Unavailable: res.Unavailable}, nil
}

func (s *EventService) AddVenueOption(ctx context.Context, req *AddVenueOptionRequest) (*VenueOptionResponse, error) {
	opt, err := s.engine.AddVenueOption(ctx, req.EventID, consensus.VenueInput{
		Name:       req.Name,
		Address:    req.Address,
		PriceRange: req.PriceRange,
		Rating:     req.Rating,
		URL:        req.URL,
	})
	if err != nil {
		return nil, err
	}
	return &VenueOptionResponse{VenueOption: toVenueOption(opt)}, nil
}

func (s *EventService) ListVenueOptions(ctx context.Context, req *EventRequest) (*ListVenueOptionsResponse, error) {
	opts, err := s.engine.ListVenueOptions(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	return &ListVenueOptionsResponse{VenueOptions: toVenueOptions(opts)}, nil
}

func (s *EventService) DecideVenue(ctx context.Context, req *DecideVenueRequest) (*EventResponse, error) {
	ev, err := s.engine.DecideVenue(ctx, req.EventID, req.VenueOptionID)
	if err != nil {
		return nil, err
	}
	return &EventResponse{Event: toEvent(ev)}, nil
}

func (s *EventService) CancelEvent(ctx context.Context, req *EventRequest) (*EventResponse, error) {
	ev, err := s.engine.Cancel(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	return &EventResponse{Event: toEvent(ev)}, nil
}

func (s *EventService) CompleteEvent(ctx context.Context, req *EventRequest) (*EventResponse, error) {
	ev, err := s.engine.Complete(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	return &EventResponse{Event: toEvent(ev)}, nil
}

func (s *EventService) SetAttendance(ctx context.Context, req *SetAttendanceRequest) (*ParticipantResponse, error) {
	p, err := s.engine.SetAttendance(ctx, req.EventID, req.ParticipantID, req.Attending)
	if err != nil {
		return nil, err
	}
	return &ParticipantResponse{Participant: toParticipant(p)}, nil
}

func (s *EventService) ListNotifications(ctx context.Context, req *EventRequest) (*ListNotificationsResponse, error) {
	list, err := s.engine.ListNotifications(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	res := &ListNotificationsResponse{Notifications: make([]*Notification, len(list))}
	for i, n := range list {
		res.Notifications[i] = &Notification{
			ID:        n.ID,
			Type:      string(n.Type),
			Message:   n.Message,
			Status:    string(n.Status),
			CreatedAt: n.CreatedAt,
		}
	}
	return res, nil
}
