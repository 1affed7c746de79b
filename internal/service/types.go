package service

import (
	"time"

	"github.com/mmynk/kanji/internal/billing"
	"github.com/mmynk/kanji/internal/consensus"
	"github.com/mmynk/kanji/internal/models"
)

// Wire messages for the kanji.v1 services. Field names follow the
// lowerCamelCase JSON mapping Connect clients expect.

type Event struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	BudgetPerPerson    *int64     `json:"budgetPerPerson,omitempty"`
	LocationConstraint string     `json:"locationConstraint,omitempty"`
	Status             string     `json:"status"`
	DecidedDate        *time.Time `json:"decidedDate,omitempty"`
	DateDecidedBy      string     `json:"dateDecidedBy,omitempty"`
	DecidedVenueName   string     `json:"decidedVenueName,omitempty"`
	DecidedVenueURL    string     `json:"decidedVenueUrl,omitempty"`
	TotalBill          *int64     `json:"totalBill,omitempty"`
	CreatedAt          int64      `json:"createdAt"`
	UpdatedAt          int64      `json:"updatedAt"`
}

type Participant struct {
	ID        string `json:"id"`
	Token     string `json:"token"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Attending bool   `json:"attending"`
}

type DateOption struct {
	ID        string    `json:"id"`
	StartsAt  time.Time `json:"startsAt"`
	Position  int       `json:"position"`
	VoteCount int       `json:"voteCount"`
}

type VenueOption struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Address    string   `json:"address,omitempty"`
	PriceRange string   `json:"priceRange,omitempty"`
	URL        string   `json:"url,omitempty"`
	Rating     *float64 `json:"rating,omitempty"`
	Source     string   `json:"source"`
	IsDecided  bool     `json:"isDecided"`
}

type BillSplit struct {
	ParticipantID string `json:"participantId"`
	Amount        int64  `json:"amount"`
	IsPaid        bool   `json:"isPaid"`
}

type Notification struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"createdAt"`
}

// EventService requests and responses.

type ParticipantInput struct {
	Token     string `json:"token" validate:"required,max=128"`
	Name      string `json:"name" validate:"max=128"`
	Email     string `json:"email" validate:"omitempty,email"`
	Attending *bool  `json:"attending"`
}

type CreateEventRequest struct {
	Title              string             `json:"title" validate:"required,max=200"`
	Description        string             `json:"description" validate:"max=2000"`
	BudgetPerPerson    *int64             `json:"budgetPerPerson" validate:"omitempty,gte=0"`
	LocationConstraint string             `json:"locationConstraint" validate:"max=200"`
	DateOptions        []time.Time        `json:"dateOptions" validate:"required,min=1"`
	Participants       []ParticipantInput `json:"participants" validate:"required,min=1,dive"`
}

type EventRequest struct {
	EventID string `json:"eventId" validate:"required"`
}

type EventResponse struct {
	Event *Event `json:"event"`
}

type EventDetailResponse struct {
	Event        *Event         `json:"event"`
	Participants []*Participant `json:"participants"`
	DateOptions  []*DateOption  `json:"dateOptions"`
	VenueOptions []*VenueOption `json:"venueOptions"`
}

type ListEventsRequest struct{}

type ListEventsResponse struct {
	Events []*Event `json:"events"`
}

type Empty struct{}

type CastVoteRequest struct {
	EventID          string `json:"eventId" validate:"required"`
	DateOptionID     string `json:"dateOptionId" validate:"required"`
	ParticipantToken string `json:"participantToken" validate:"required"`
}

type CastVoteResponse struct {
	Action    string `json:"action"`
	VoteCount int    `json:"voteCount"`
}

type DecideDateRequest struct {
	EventID      string `json:"eventId" validate:"required"`
	DateOptionID string `json:"dateOptionId" validate:"required"`
}

type VenueCandidatesResponse struct {
	Added       []*VenueOption `json:"added"`
	Unavailable bool           `json:"unavailable"`
}

type AddVenueOptionRequest struct {
	EventID    string   `json:"eventId" validate:"required"`
	Name       string   `json:"name" validate:"required,max=200"`
	Address    string   `json:"address" validate:"max=500"`
	PriceRange string   `json:"priceRange" validate:"max=100"`
	URL        string   `json:"url" validate:"omitempty,url"`
	Rating     *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
}

type VenueOptionResponse struct {
	VenueOption *VenueOption `json:"venueOption"`
}

type ListVenueOptionsResponse struct {
	VenueOptions []*VenueOption `json:"venueOptions"`
}

type DecideVenueRequest struct {
	EventID       string `json:"eventId" validate:"required"`
	VenueOptionID string `json:"venueOptionId" validate:"required"`
}

type SetAttendanceRequest struct {
	EventID       string `json:"eventId" validate:"required"`
	ParticipantID string `json:"participantId" validate:"required"`
	Attending     bool   `json:"attending"`
}

type ParticipantResponse struct {
	Participant *Participant `json:"participant"`
}

type ListNotificationsResponse struct {
	Notifications []*Notification `json:"notifications"`
}

// BillService requests and responses.

type ComputeSplitRequest struct {
	EventID          string           `json:"eventId" validate:"required"`
	TotalAmount      int64            `json:"totalAmount" validate:"gt=0"`
	ParticipantCount *int             `json:"participantCount" validate:"omitempty,gt=0"`
	ExplicitSplits   map[string]int64 `json:"explicitSplits" validate:"omitempty,dive,keys,required,endkeys,gte=0"`
}

type ComputeSplitResponse struct {
	TotalAmount      int64        `json:"totalAmount"`
	PerPerson        int64        `json:"perPerson"`
	Remainder        int64        `json:"remainder"`
	ParticipantCount int          `json:"participantCount"`
	Mode             string       `json:"mode"`
	Splits           []*BillSplit `json:"splits"`
}

type TogglePaidRequest struct {
	EventID       string `json:"eventId" validate:"required"`
	ParticipantID string `json:"participantId" validate:"required"`
}

type BillSplitResponse struct {
	Split *BillSplit `json:"split"`
}

type GetBillResponse struct {
	TotalBill   *int64       `json:"totalBill,omitempty"`
	Splits      []*BillSplit `json:"splits"`
	Assigned    int64        `json:"assigned"`
	Collected   int64        `json:"collected"`
	Outstanding int64        `json:"outstanding"`
	Unpaid      []string     `json:"unpaid"`
}

func toEvent(e *models.Event) *Event {
	return &Event{
		ID:                 e.ID,
		Title:              e.Title,
		Description:        e.Description,
		BudgetPerPerson:    e.BudgetPerPerson,
		LocationConstraint: e.LocationConstraint,
		Status:             string(e.Status),
		DecidedDate:        e.DecidedDate,
		DateDecidedBy:      string(e.DateDecidedBy),
		DecidedVenueName:   e.DecidedVenueName,
		DecidedVenueURL:    e.DecidedVenueURL,
		TotalBill:          e.TotalBill,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

func toParticipant(p *models.Participant) *Participant {
	return &Participant{ID: p.ID, Token: p.Token, Name: p.Name, Email: p.Email, Attending: p.Attending}
}

func toVenueOption(v *models.VenueOption) *VenueOption {
	return &VenueOption{
		ID:         v.ID,
		Name:       v.Name,
		Address:    v.Address,
		PriceRange: v.PriceRange,
		URL:        v.URL,
		Rating:     v.Rating,
		Source:     v.Source,
		IsDecided:  v.IsDecided,
	}
}

func toVenueOptions(in []*models.VenueOption) []*VenueOption {
	out := make([]*VenueOption, len(in))
	for i, v := range in {
		out[i] = toVenueOption(v)
	}
	return out
}

func toBillSplits(in []*models.BillSplit) []*BillSplit {
	out := make([]*BillSplit, len(in))
	for i, s := range in {
		out[i] = &BillSplit{ParticipantID: s.ParticipantID, Amount: s.Amount, IsPaid: s.IsPaid}
	}
	return out
}

func toEventDetail(v *consensus.EventView) *EventDetailResponse {
	res := &EventDetailResponse{
		Event:        toEvent(v.Event),
		Participants: make([]*Participant, len(v.Participants)),
		DateOptions:  make([]*DateOption, len(v.DateOptions)),
		VenueOptions: toVenueOptions(v.VenueOptions),
	}
	for i, p := range v.Participants {
		res.Participants[i] = toParticipant(p)
	}
	for i, d := range v.DateOptions {
		res.DateOptions[i] = &DateOption{ID: d.ID, StartsAt: d.StartsAt, Position: d.Position, VoteCount: d.VoteCount}
	}
	return res
}

func toComputeSplitResponse(r *billing.BillResult) *ComputeSplitResponse {
	return &ComputeSplitResponse{
		TotalAmount:      r.TotalAmount,
		PerPerson:        r.PerPerson,
		Remainder:        r.Remainder,
		ParticipantCount: r.ParticipantCount,
		Mode:             string(r.Mode),
		Splits:           toBillSplits(r.Splits),
	}
}
