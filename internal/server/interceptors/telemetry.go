package interceptors

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/vincent-24/GlassBallots-sub001/internal/telemetry"
	"github.com/vincent-24/GlassBallots-sub001/internal/telemetry/domain"
)

// grpcRequestMetadata is the JSON stored in Event.Metadata for grpc_request events.
type grpcRequestMetadata struct {
	FullMethod string `json:"full_method"`
	StatusCode string `json:"status_code"`
	DurationMs int64  `json:"duration_ms"`
	ClientIP   string `json:"client_ip"`
}

// TelemetryUnary returns a unary server interceptor that emits a grpc_request event after each RPC.
// Emission is asynchronous and best-effort. A nil emitter disables the interceptor.
func TelemetryUnary(emitter telemetry.EventEmitter, skipMethods map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if emitter == nil || skipMethods[info.FullMethod] {
			return resp, err
		}
		meta, _ := json.Marshal(grpcRequestMetadata{
			FullMethod: info.FullMethod,
			StatusCode: status.Code(err).String(),
			DurationMs: time.Since(start).Milliseconds(),
			ClientIP:   ClientIP(ctx),
		})
		orgID, _ := GetOrgID(ctx)
		userID, _ := GetUserID(ctx)
		telemetry.EmitAsync(emitter, ctx, &domain.Event{
			ID:        uuid.NewString(),
			EventType: domain.EventGRPCRequest,
			Source:    "grpc_interceptor",
			OrgID:     orgID,
			UserID:    userID,
			Metadata:  meta,
			CreatedAt: time.Now().UTC(),
		})
		return resp, err
	}
}
