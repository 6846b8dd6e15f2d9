package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client is a thin caller for the dispatch service.
type Client struct {
	conn *grpc.ClientConn
}

func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	}, opts...)

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Submit(ctx context.Context, request *JobRequest) (*JobResponse, error) {
	response := new(JobResponse)
	if err := c.conn.Invoke(ctx, submitFullMethod, request, response); err != nil {
		return nil, err
	}
	return response, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}
