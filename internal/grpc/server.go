package grpc

import (
	"context"

	"stock-ticker/internal/pubsub"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Refresher queues an out-of-schedule quote refresh.
type Refresher interface {
	RequestRefresh() bool
}

type TickerServer struct {
	broker    *pubsub.Broker
	refresher Refresher
	logger    *zap.Logger
}

func NewTickerServer(broker *pubsub.Broker, refresher Refresher, logger *zap.Logger) *TickerServer {
	return &TickerServer{
		broker:    broker,
		refresher: refresher,
		logger:    logger,
	}
}

func (s *TickerServer) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	latest := s.broker.Latest()
	if latest == nil {
		return nil, status.Error(codes.Unavailable, "no update published yet")
	}

	pbUpdate, err := convertUpdateToProto(latest)
	if err != nil {
		s.logger.Error("failed to convert update", zap.Error(err))
		return nil, status.Error(codes.Internal, "failed to encode update")
	}
	return pbUpdate, nil
}

func (s *TickerServer) Refresh(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	if !s.refresher.RequestRefresh() {
		return nil, status.Error(codes.ResourceExhausted, "refresh already pending")
	}

	s.logger.Info("refresh requested over gRPC")
	return &emptypb.Empty{}, nil
}

func (s *TickerServer) WatchUpdates(_ *emptypb.Empty, stream TickerService_WatchUpdatesServer) error {
	subscriber := s.broker.Subscribe("", 100)
	defer s.broker.Unsubscribe(subscriber.ID)

	logger := s.logger.With(zap.String("subscriber", subscriber.ID))
	logger.Info("client watching updates")

	for {
		select {
		case <-stream.Context().Done():
			logger.Info("client disconnected from update stream")
			return stream.Context().Err()
		case update, ok := <-subscriber.Updates:
			if !ok {
				return nil
			}

			pbUpdate, err := convertUpdateToProto(update)
			if err != nil {
				logger.Error("failed to convert update", zap.Error(err))
				continue
			}

			if err := stream.Send(pbUpdate); err != nil {
				logger.Warn("failed to send update", zap.Error(err))
				return err
			}
		}
	}
}
