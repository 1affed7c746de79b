package service

import (
	"context"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/kanji/internal/billing"
)

// BillServiceName is the fully-qualified name of the bill service.
const BillServiceName = "kanji.v1.BillService"

const (
	BillServiceComputeSplitProcedure = "/" + BillServiceName + "/ComputeSplit"
	BillServiceTogglePaidProcedure   = "/" + BillServiceName + "/TogglePaid"
	BillServiceGetBillProcedure      = "/" + BillServiceName + "/GetBill"
)

// BillService exposes the bill splitter over Connect.
type BillService struct {
	splitter *billing.Splitter
	logger   *slog.Logger
}

// NewBillService creates a new BillService backed by splitter.
func NewBillService(splitter *billing.Splitter, logger *slog.Logger) *BillService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BillService{splitter: splitter, logger: logger}
}

// Handler returns the path prefix and handler serving every BillService procedure.
func (s *BillService) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	unary(mux, BillServiceComputeSplitProcedure, s.ComputeSplit, opts...)
	unary(mux, BillServiceTogglePaidProcedure, s.TogglePaid, opts...)
	unary(mux, BillServiceGetBillProcedure, s.GetBill, opts...)
	return "/" + BillServiceName + "/", mux
}

// ComputeSplit divides the total among participants, evenly or by explicit amounts.
func (s *BillService) ComputeSplit(ctx context.Context, req *ComputeSplitRequest) (*ComputeSplitResponse, error) {
	s.logger.Info("ComputeSplit request received",
		"event_id", req.EventID,
		"total_amount", req.TotalAmount,
		"explicit_splits", len(req.ExplicitSplits),
	)

	res, err := s.splitter.ComputeSplit(ctx, billing.ComputeInput{
		EventID:          req.EventID,
		TotalAmount:      req.TotalAmount,
		ParticipantCount: req.ParticipantCount,
		ExplicitSplits:   req.ExplicitSplits,
	})
	if err != nil {
		return nil, err
	}
	return toComputeSplitResponse(res), nil
}

func (s *BillService) TogglePaid(ctx context.Context, req *TogglePaidRequest) (*BillSplitResponse, error) {
	split, err := s.splitter.TogglePaid(ctx, req.EventID, req.ParticipantID)
	if err != nil {
		return nil, err
	}
	return &BillSplitResponse{Split: &BillSplit{
		ParticipantID: split.ParticipantID,
		Amount:        split.Amount,
		IsPaid:        split.IsPaid,
	}}, nil
}

func (s *BillService) GetBill(ctx context.Context, req *EventRequest) (*GetBillResponse, error) {
	view, err := s.splitter.GetBill(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	unpaid := view.Collection.Unpaid
	if unpaid == nil {
		unpaid = []string{}
	}
	return &GetBillResponse{
		TotalBill:   view.TotalBill,
		Splits:      toBillSplits(view.Splits),
		Assigned:    view.Collection.Assigned,
		Collected:   view.Collection.Collected,
		Outstanding: view.Collection.Outstanding,
		Unpaid:      unpaid,
	}, nil
}
