package rpc

import (
	"context"

	"github.com/zhigui-projects/go-quizledger/ledger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "quizledger.Ledger"

// LedgerServer is the server API for the quizledger.Ledger service.
type LedgerServer interface {
	Submit(context.Context, *Envelope) (*SubmitResponse, error)
	Verify(context.Context, *VerifyRequest) (*BoolResponse, error)
	BalanceOf(context.Context, *AccountRequest) (*AmountResponse, error)
	Funding(context.Context, *FundingRequest) (*AmountResponse, error)
	NativeBalance(context.Context, *AccountRequest) (*AmountResponse, error)
	Nonce(context.Context, *AccountRequest) (*NonceResponse, error)
	PoolEndTime(context.Context, *PoolRequest) (*TimeResponse, error)
	AnswerHash(context.Context, *AnswerRequest) (*HashResponse, error)
	VerifyAnswerHash(context.Context, *AnswerRequest) (*BoolResponse, error)
	Info(context.Context, *InfoRequest) (*InfoResponse, error)
	Watch(*WatchRequest, Ledger_WatchServer) error
}

// UnimplementedLedgerServer can be embedded to have forward compatible
// implementations.
type UnimplementedLedgerServer struct{}

func (UnimplementedLedgerServer) Submit(context.Context, *Envelope) (*SubmitResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Submit not implemented")
}
func (UnimplementedLedgerServer) Verify(context.Context, *VerifyRequest) (*BoolResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Verify not implemented")
}
func (UnimplementedLedgerServer) BalanceOf(context.Context, *AccountRequest) (*AmountResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method BalanceOf not implemented")
}
func (UnimplementedLedgerServer) Funding(context.Context, *FundingRequest) (*AmountResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Funding not implemented")
}
func (UnimplementedLedgerServer) NativeBalance(context.Context, *AccountRequest) (*AmountResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method NativeBalance not implemented")
}
func (UnimplementedLedgerServer) Nonce(context.Context, *AccountRequest) (*NonceResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Nonce not implemented")
}
func (UnimplementedLedgerServer) PoolEndTime(context.Context, *PoolRequest) (*TimeResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method PoolEndTime not implemented")
}
func (UnimplementedLedgerServer) AnswerHash(context.Context, *AnswerRequest) (*HashResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method AnswerHash not implemented")
}
func (UnimplementedLedgerServer) VerifyAnswerHash(context.Context, *AnswerRequest) (*BoolResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method VerifyAnswerHash not implemented")
}
func (UnimplementedLedgerServer) Info(context.Context, *InfoRequest) (*InfoResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Info not implemented")
}
func (UnimplementedLedgerServer) Watch(*WatchRequest, Ledger_WatchServer) error {
	return status.Errorf(codes.Unimplemented, "method Watch not implemented")
}

func RegisterLedgerServer(s *grpc.Server, srv LedgerServer) {
	s.RegisterService(&_Ledger_serviceDesc, srv)
}

// unaryHandler decodes the request into in and dispatches call through the
// interceptor chain.
func unaryHandler(method string, in interface{}, call func(LedgerServer, context.Context, interface{}) (interface{}, error)) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LedgerServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + ServiceName + "/" + method,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(LedgerServer), ctx, req)
		}
		return interceptor(ctx, in, info, handler)
	}
}

func _Ledger_Submit_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return unaryHandler("Submit", new(Envelope), func(s LedgerServer, ctx context.Context, req interface{}) (interface{}, error) {
		return s.Submit(ctx, req.(*Envelope))
	})(srv, ctx, dec, interceptor)
}

func _Ledger_Verify_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return unaryHandler("Verify", new(VerifyRequest), func(s LedgerServer, ctx context.Context, req interface{}) (interface{}, error) {
		return s.Verify(ctx, req.(*VerifyRequest))
	})(srv, ctx, dec, interceptor)
}

func _Ledger_BalanceOf_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return unaryHandler("BalanceOf", new(AccountRequest), func(s LedgerServer, ctx context.Context, req interface{}) (interface{}, error) {
		return s.BalanceOf(ctx, req.(*AccountRequest))
	})(srv, ctx, dec, interceptor)
}

func _Ledger_Funding_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return unaryHandler("Funding", new(FundingRequest), func(s LedgerServer, ctx context.Context, req interface{}) (interface{}, error) {
		return s.Funding(ctx, req.(*FundingRequest))
	})(srv, ctx, dec, interceptor)
}

func _Ledger_NativeBalance_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return unaryHandler("NativeBalance", new(AccountRequest), func(s LedgerServer, ctx context.Context, req interface{}) (interface{}, error) {
		return s.NativeBalance(ctx, req.(*AccountRequest))
	})(srv, ctx, dec, interceptor)
}

func _Ledger_Nonce_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return unaryHandler("Nonce", new(AccountRequest), func(s LedgerServer, ctx context.Context, req interface{}) (interface{}, error) {
		return s.Nonce(ctx, req.(*AccountRequest))
	})(srv, ctx, dec, interceptor)
}

func _Ledger_PoolEndTime_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return unaryHandler("PoolEndTime", new(PoolRequest), func(s LedgerServer, ctx context.Context, req interface{}) (interface{}, error) {
		return s.PoolEndTime(ctx, req.(*PoolRequest))
	})(srv, ctx, dec, interceptor)
}

func _Ledger_AnswerHash_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return unaryHandler("AnswerHash", new(AnswerRequest), func(s LedgerServer, ctx context.Context, req interface{}) (interface{}, error) {
		return s.AnswerHash(ctx, req.(*AnswerRequest))
	})(srv, ctx, dec, interceptor)
}

func _Ledger_VerifyAnswerHash_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return unaryHandler("VerifyAnswerHash", new(AnswerRequest), func(s LedgerServer, ctx context.Context, req interface{}) (interface{}, error) {
		return s.VerifyAnswerHash(ctx, req.(*AnswerRequest))
	})(srv, ctx, dec, interceptor)
}

func _Ledger_Info_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return unaryHandler("Info", new(InfoRequest), func(s LedgerServer, ctx context.Context, req interface{}) (interface{}, error) {
		return s.Info(ctx, req.(*InfoRequest))
	})(srv, ctx, dec, interceptor)
}

func _Ledger_Watch_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(WatchRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(LedgerServer).Watch(m, &ledgerWatchServer{stream})
}

type Ledger_WatchServer interface {
	Send(*ledger.StoredLog) error
	grpc.ServerStream
}

type ledgerWatchServer struct {
	grpc.ServerStream
}

func (x *ledgerWatchServer) Send(m *ledger.StoredLog) error {
	return x.ServerStream.SendMsg(m)
}

var _Ledger_serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Submit", Handler: _Ledger_Submit_Handler},
		{MethodName: "Verify", Handler: _Ledger_Verify_Handler},
		{MethodName: "BalanceOf", Handler: _Ledger_BalanceOf_Handler},
		{MethodName: "Funding", Handler: _Ledger_Funding_Handler},
		{MethodName: "NativeBalance", Handler: _Ledger_NativeBalance_Handler},
		{MethodName: "Nonce", Handler: _Ledger_Nonce_Handler},
		{MethodName: "PoolEndTime", Handler: _Ledger_PoolEndTime_Handler},
		{MethodName: "AnswerHash", Handler: _Ledger_AnswerHash_Handler},
		{MethodName: "VerifyAnswerHash", Handler: _Ledger_VerifyAnswerHash_Handler},
		{MethodName: "Info", Handler: _Ledger_Info_Handler},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Watch",
			Handler:       _Ledger_Watch_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "quizledger.json",
}

// LedgerClient is the client API for the quizledger.Ledger service. Every
// call is sent with the JSON content-subtype.
type LedgerClient interface {
	Submit(ctx context.Context, in *Envelope, opts ...grpc.CallOption) (*SubmitResponse, error)
	Verify(ctx context.Context, in *VerifyRequest, opts ...grpc.CallOption) (*BoolResponse, error)
	BalanceOf(ctx context.Context, in *AccountRequest, opts ...grpc.CallOption) (*AmountResponse, error)
	Funding(ctx context.Context, in *FundingRequest, opts ...grpc.CallOption) (*AmountResponse, error)
	NativeBalance(ctx context.Context, in *AccountRequest, opts ...grpc.CallOption) (*AmountResponse, error)
	Nonce(ctx context.Context, in *AccountRequest, opts ...grpc.CallOption) (*NonceResponse, error)
	PoolEndTime(ctx context.Context, in *PoolRequest, opts ...grpc.CallOption) (*TimeResponse, error)
	AnswerHash(ctx context.Context, in *AnswerRequest, opts ...grpc.CallOption) (*HashResponse, error)
	VerifyAnswerHash(ctx context.Context, in *AnswerRequest, opts ...grpc.CallOption) (*BoolResponse, error)
	Info(ctx context.Context, in *InfoRequest, opts ...grpc.CallOption) (*InfoResponse, error)
	Watch(ctx context.Context, in *WatchRequest, opts ...grpc.CallOption) (Ledger_WatchClient, error)
}

type ledgerClient struct {
	cc *grpc.ClientConn
}

func NewLedgerClient(cc *grpc.ClientConn) LedgerClient {
	return &ledgerClient{cc}
}

func (c *ledgerClient) invoke(ctx context.Context, method string, in, out interface{}, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...)
}

func (c *ledgerClient) Submit(ctx context.Context, in *Envelope, opts ...grpc.CallOption) (*SubmitResponse, error) {
	out := new(SubmitResponse)
	if err := c.invoke(ctx, "Submit", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ledgerClient) Verify(ctx context.Context, in *VerifyRequest, opts ...grpc.CallOption) (*BoolResponse, error) {
	out := new(BoolResponse)
	if err := c.invoke(ctx, "Verify", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ledgerClient) BalanceOf(ctx context.Context, in *AccountRequest, opts ...grpc.CallOption) (*AmountResponse, error) {
	out := new(AmountResponse)
	if err := c.invoke(ctx, "BalanceOf", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ledgerClient) Funding(ctx context.Context, in *FundingRequest, opts ...grpc.CallOption) (*AmountResponse, error) {
	out := new(AmountResponse)
	if err := c.invoke(ctx, "Funding", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ledgerClient) NativeBalance(ctx context.Context, in *AccountRequest, opts ...grpc.CallOption) (*AmountResponse, error) {
	out := new(AmountResponse)
	if err := c.invoke(ctx, "NativeBalance", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ledgerClient) Nonce(ctx context.Context, in *AccountRequest, opts ...grpc.CallOption) (*NonceResponse, error) {
	out := new(NonceResponse)
	if err := c.invoke(ctx, "Nonce", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ledgerClient) PoolEndTime(ctx context.Context, in *PoolRequest, opts ...grpc.CallOption) (*TimeResponse, error) {
	out := new(TimeResponse)
	if err := c.invoke(ctx, "PoolEndTime", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ledgerClient) AnswerHash(ctx context.Context, in *AnswerRequest, opts ...grpc.CallOption) (*HashResponse, error) {
	out := new(HashResponse)
	if err := c.invoke(ctx, "AnswerHash", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ledgerClient) VerifyAnswerHash(ctx context.Context, in *AnswerRequest, opts ...grpc.CallOption) (*BoolResponse, error) {
	out := new(BoolResponse)
	if err := c.invoke(ctx, "VerifyAnswerHash", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ledgerClient) Info(ctx context.Context, in *InfoRequest, opts ...grpc.CallOption) (*InfoResponse, error) {
	out := new(InfoResponse)
	if err := c.invoke(ctx, "Info", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ledgerClient) Watch(ctx context.Context, in *WatchRequest, opts ...grpc.CallOption) (Ledger_WatchClient, error) {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	stream, err := c.cc.NewStream(ctx, &_Ledger_serviceDesc.Streams[0], "/"+ServiceName+"/Watch", opts...)
	if err != nil {
		return nil, err
	}
	x := &ledgerWatchClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type Ledger_WatchClient interface {
	Recv() (*ledger.StoredLog, error)
	grpc.ClientStream
}

type ledgerWatchClient struct {
	grpc.ClientStream
}

func (x *ledgerWatchClient) Recv() (*ledger.StoredLog, error) {
	m := new(ledger.StoredLog)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}
