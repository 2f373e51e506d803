package predictor

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/backoff"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/yourusername/hoopslines/internal/config"
	"github.com/yourusername/hoopslines/internal/metrics"
)

// PredictMethod is the full gRPC method name of the regressor. Requests and
// responses are google.protobuf.Struct messages.
const PredictMethod = "/hoopslines.Regressor/Predict"

// GRPCPredictor calls the regressor over gRPC.
type GRPCPredictor struct {
	conn    *grpc.ClientConn
	health  grpc_health_v1.HealthClient
	timeout time.Duration
	logger  *logrus.Logger
}

// NewGRPCPredictor creates a client for cfg.GRPCAddress. Extra dial options
// are appended to the defaults.
func NewGRPCPredictor(cfg config.PredictorConfig, logger *logrus.Logger, opts ...grpc.DialOption) (*GRPCPredictor, error) {
	connectParams := grpc.ConnectParams{
		Backoff: backoff.Config{
			BaseDelay:  1 * time.Second,
			Multiplier: 1.6,
			Jitter:     0.2,
			MaxDelay:   5 * time.Second,
		},
		MinConnectTimeout: 10 * time.Second,
	}

	keepAlive := keepalive.ClientParameters{
		Time:                30 * time.Second,
		Timeout:             10 * time.Second,
		PermitWithoutStream: true,
	}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithConnectParams(connectParams),
		grpc.WithKeepaliveParams(keepAlive),
	}, opts...)

	conn, err := grpc.NewClient(cfg.GRPCAddress, dialOpts...)
	if err != nil {
		logger.WithError(err).Error("Failed to create regressor client")
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	logger.WithField("address", cfg.GRPCAddress).Info("Regressor client created")
	return &GRPCPredictor{
		conn:    conn,
		health:  grpc_health_v1.NewHealthClient(conn),
		timeout: timeout(cfg),
		logger:  logger,
	}, nil
}

// Predict sends the vector as a Struct and reads point_total and margin.
func (c *GRPCPredictor) Predict(ctx context.Context, v FeatureVector) (Prediction, error) {
	start := time.Now()

	req, err := structpb.NewStruct(v.Payload())
	if err != nil {
		return Prediction{}, fmt.Errorf("encode features: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, PredictMethod, req, resp); err != nil {
		metrics.RecordPrediction("grpc", time.Since(start), err)
		c.logger.WithError(err).WithField("game", v.Game.String()).Error("Regressor call failed")
		return Prediction{}, fmt.Errorf("%w: %v", ErrPredictorUnavailable, err)
	}

	p, err := decodeStruct(resp)
	metrics.RecordPrediction("grpc", time.Since(start), err)
	return p, err
}

// HealthCheck asks the regressor's health service for its serving status.
func (c *GRPCPredictor) HealthCheck(ctx context.Context) error {
	resp, err := c.health.Check(ctx, &grpc_health_v1.HealthCheckRequest{})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPredictorUnavailable, err)
	}
	if resp.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
		return fmt.Errorf("%w: status %s", ErrPredictorUnavailable, resp.GetStatus())
	}
	return nil
}

// Close closes the gRPC connection
func (c *GRPCPredictor) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func decodeStruct(s *structpb.Struct) (Prediction, error) {
	fields := s.GetFields()
	total, ok := fields["point_total"]
	if !ok {
		return Prediction{}, fmt.Errorf("%w: missing point_total", ErrInvalidPrediction)
	}
	margin, ok := fields["margin"]
	if !ok {
		return Prediction{}, fmt.Errorf("%w: missing margin", ErrInvalidPrediction)
	}
	if _, isNum := total.GetKind().(*structpb.Value_NumberValue); !isNum {
		return Prediction{}, fmt.Errorf("%w: point_total is not a number", ErrInvalidPrediction)
	}
	if _, isNum := margin.GetKind().(*structpb.Value_NumberValue); !isNum {
		return Prediction{}, fmt.Errorf("%w: margin is not a number", ErrInvalidPrediction)
	}
	return Prediction{PointTotal: total.GetNumberValue(), Margin: margin.GetNumberValue()}, nil
}
