package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator/service"
	apperrors "github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/grpc"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/proto"
)

// RegisterRPC exposes the annotation and definition operations on s.
func RegisterRPC(s *grpc.Server, svc *service.Service, checker *health.Checker) {
	s.Register(proto.MethodAnnotate, func(ctx context.Context, raw json.RawMessage) (any, error) {
		var req proto.AnnotateRequest
		if err := decode(raw, &req); err != nil {
			return nil, err
		}
		return svc.Annotate(ctx, &req, "")
	})
	s.Register(proto.MethodLookup, func(ctx context.Context, raw json.RawMessage) (any, error) {
		var req proto.LookupRequest
		if err := decode(raw, &req); err != nil {
			return nil, err
		}
		return svc.Lookup(ctx, req.Term)
	})
	s.Register(proto.MethodHealth, func(ctx context.Context, _ json.RawMessage) (any, error) {
		status := "SERVING"
		if checker != nil && checker.Run(ctx).Status == health.StatusDown {
			status = "NOT_SERVING"
		}
		return proto.HealthCheckResponse{Status: status}, nil
	})
}

func decode(raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, fmt.Sprintf("invalid params: %v", err))
	}
	return nil
}
