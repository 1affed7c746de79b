// Package middleware holds Connect interceptors shared by the kanji services.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

// NewLoggingInterceptor returns a Connect interceptor that logs every RPC call
// with its procedure, result code and duration.
func NewLoggingInterceptor(logger *slog.Logger) connect.UnaryInterceptorFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure

			resp, err := next(ctx, req)

			duration := time.Since(start).Milliseconds()
			if err == nil {
				logger.Info("RPC ok",
					"procedure", procedure,
					"code", "ok",
					"duration_ms", duration,
				)
				return resp, nil
			}

			var connectErr *connect.Error
			if !errors.As(err, &connectErr) {
				logger.Error("RPC error",
					"procedure", procedure,
					"error", err,
					"duration_ms", duration,
				)
				return resp, err
			}

			level := slog.LevelWarn
			switch connectErr.Code() {
			case connect.CodeInternal, connect.CodeUnknown, connect.CodeDataLoss:
				level = slog.LevelError
			}
			logger.Log(ctx, level, "RPC error",
				"procedure", procedure,
				"code", connectErr.Code().String(),
				"error", connectErr.Message(),
				"duration_ms", duration,
			)
			return resp, err
		}
	}
}
