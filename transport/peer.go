package transport

import (
	"context"

	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
)

// ClientNameKey is the metadata key clients announce themselves under.
// grpc lower-cases metadata keys.
const ClientNameKey = "x-client-name"

// WithClientName attaches name to outgoing calls made with ctx.
func WithClientName(ctx context.Context, name string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, ClientNameKey, name)
}

// RemotePeer returns the remote address and announced client name of an
// incoming call. Either may be empty.
func RemotePeer(ctx context.Context) (remoteAddress, clientName string) {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if value := md.Get(ClientNameKey); len(value) > 0 {
			clientName = value[0]
		}
	}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		remoteAddress = p.Addr.String()
	}
	return
}
