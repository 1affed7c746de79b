package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"

	"github.com/mmynk/kanji/internal/apperr"
)

// JSONCodec marshals plain Go structs for Connect. It takes the "json" name
// so clients speaking application/json reach the handlers without protobuf
// descriptors.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (JSONCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateRequest runs struct-tag validation and reports the first failing
// field as an InvalidInput error.
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperr.InvalidInput("field %s failed %s validation", fe.Namespace(), fieldRule(fe))
	}
	return apperr.InvalidInput("invalid request: %v", err)
}

func fieldRule(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fmt.Sprintf("%s=%s", fe.Tag(), fe.Param())
}

// connectError maps an application error kind to a Connect code.
func connectError(err error) error {
	code := connect.CodeInternal
	switch apperr.KindOf(err) {
	case apperr.KindInvalidInput:
		code = connect.CodeInvalidArgument
	case apperr.KindNotFound:
		code = connect.CodeNotFound
	case apperr.KindInvalidState, apperr.KindEmptyCandidateSet:
		code = connect.CodeFailedPrecondition
	case apperr.KindDependencyUnavailable:
		code = connect.CodeUnavailable
	}
	return connect.NewError(code, err)
}

// unary registers one procedure on mux. Requests are validated before fn runs
// and errors from fn are translated to Connect codes.
func unary[Req, Res any](mux *http.ServeMux, procedure string, fn func(context.Context, *Req) (*Res, error), opts ...connect.HandlerOption) {
	mux.Handle(procedure, connect.NewUnaryHandler(procedure,
		func(ctx context.Context, req *connect.Request[Req]) (*connect.Response[Res], error) {
			if err := validateRequest(req.Msg); err != nil {
				return nil, connectError(err)
			}
			res, err := fn(ctx, req.Msg)
			if err != nil {
				return nil, connectError(err)
			}
			return connect.NewResponse(res), nil
		},
		append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)...,
	))
}
