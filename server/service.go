package server

import (
	"context"

	"google.golang.org/grpc"
)

const serviceName = "dispatch.Engine"
const submitFullMethod = "/" + serviceName + "/Submit"

// EngineServer is the dispatch service contract.
type EngineServer interface {
	Submit(ctx context.Context, request *JobRequest) (*JobResponse, error)
}

// serviceDesc is registered by hand; the JSON codec carries the messages,
// so there is no generated stub to keep in sync.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*EngineServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Submit",
			Handler:    submitHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dispatch/engine",
}

func submitHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(JobRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EngineServer).Submit(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: submitFullMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(EngineServer).Submit(ctx, req.(*JobRequest))
	}
	return interceptor(ctx, in, info, handler)
}
