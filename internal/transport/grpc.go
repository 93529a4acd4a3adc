package transport

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/tinyurl-pestebani/go-otel-setup/internal/auth"
)

// UnaryClientInterceptor returns an interceptor that attaches the provider's
// headers as outgoing call metadata.
//
// A provider failure aborts the call with codes.Unauthenticated so outer
// retry policy can tell credential failures from transport failures. A
// header value that is not metadata-safe ASCII aborts with codes.Internal
// instead: that is a local defect (for example a project id with control
// characters), not a credential problem.
func UnaryClientInterceptor(provider auth.HeaderProvider) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx, err := annotate(ctx, provider)
		if err != nil {
			return err
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// StreamClientInterceptor is the stream-call analogue of
// UnaryClientInterceptor.
func StreamClientInterceptor(provider auth.HeaderProvider) grpc.StreamClientInterceptor {
	return func(ctx context.Context, desc *grpc.StreamDesc, cc *grpc.ClientConn, method string, streamer grpc.Streamer, opts ...grpc.CallOption) (grpc.ClientStream, error) {
		ctx, err := annotate(ctx, provider)
		if err != nil {
			return nil, err
		}
		return streamer(ctx, desc, cc, method, opts...)
	}
}

func annotate(ctx context.Context, provider auth.HeaderProvider) (context.Context, error) {
	md, ok := metadata.FromOutgoingContext(ctx)
	if ok {
		md = md.Copy()
	} else {
		md = metadata.MD{}
	}

	var valueErr error
	err := Apply(ctx, provider, func(key, value string) {
		if !metadataSafe(value) {
			valueErr = status.Errorf(codes.Internal, "metadata value for %q is not valid ASCII", key)
			return
		}
		md.Set(key, value)
	})
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}
	if valueErr != nil {
		return nil, valueErr
	}

	return metadata.NewOutgoingContext(ctx, md), nil
}

// metadataSafe reports whether the value can be carried in gRPC metadata
// without percent-encoding: printable ASCII, space included.
func metadataSafe(value string) bool {
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}
