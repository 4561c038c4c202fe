package grpc

import (
	"context"

	"stock-ticker/pkg/models"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client is a typed wrapper over a connection to the ticker service.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) GetStatus(ctx context.Context, opts ...grpc.CallOption) (*models.Update, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getStatusMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return convertUpdateFromProto(out)
}

func (c *Client) Refresh(ctx context.Context, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, refreshMethod, &emptypb.Empty{}, new(emptypb.Empty), opts...)
}

// UpdateStream yields updates until the server closes the stream or the
// context passed to WatchUpdates is done.
type UpdateStream struct {
	stream grpc.ClientStream
}

func (c *Client) WatchUpdates(ctx context.Context, opts ...grpc.CallOption) (*UpdateStream, error) {
	stream, err := c.cc.NewStream(ctx, &TickerService_ServiceDesc.Streams[0], watchUpdatesMethod, opts...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(&emptypb.Empty{}); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &UpdateStream{stream: stream}, nil
}

func (s *UpdateStream) Recv() (*models.Update, error) {
	m := new(structpb.Struct)
	if err := s.stream.RecvMsg(m); err != nil {
		return nil, err
	}
	return convertUpdateFromProto(m)
}
