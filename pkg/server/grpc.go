package server

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dasmlab/pharmagen/pkg/assistant"
	"github.com/sirupsen/logrus"
)

// Service and method names of the gRPC API. Messages are
// google.protobuf.Struct values: the request carries "question" and an
// optional "language"; the response carries "request_id", "answer" and
// "language".
const (
	AssistantServiceName = "pharmagen.v1.Assistant"
	AskFullMethod        = "/" + AssistantServiceName + "/Ask"
)

// AssistantServer is the server API for the pharmagen.v1.Assistant service.
type AssistantServer interface {
	Ask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// AssistantServiceDesc describes the pharmagen.v1.Assistant service.
var AssistantServiceDesc = grpc.ServiceDesc{
	ServiceName: AssistantServiceName,
	HandlerType: (*AssistantServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Ask",
			Handler:    askHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pharmagen/v1/assistant.proto",
}

// RegisterAssistantServer registers srv on s.
func RegisterAssistantServer(s grpc.ServiceRegistrar, srv AssistantServer) {
	s.RegisterService(&AssistantServiceDesc, srv)
}

func askHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AssistantServer).Ask(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: AskFullMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AssistantServer).Ask(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// AssistantService implements the pharmagen.v1.Assistant gRPC service.
type AssistantService struct {
	// Assistant answers the questions.
	Assistant *assistant.Assistant

	// Logger for service operations.
	Logger *logrus.Logger
}

// NewAssistantService creates a new AssistantService instance.
func NewAssistantService(a *assistant.Assistant, logger *logrus.Logger) *AssistantService {
	if logger == nil {
		logger = logrus.New()
	}
	return &AssistantService{
		Assistant: a,
		Logger:    logger,
	}
}

// Ask answers a single question.
func (s *AssistantService) Ask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	startTime := time.Now()
	fields := req.GetFields()
	query := assistant.Query{
		RawText:     fields["question"].GetStringValue(),
		LanguageTag: fields["language"].GetStringValue(),
	}

	s.Logger.WithFields(logrus.Fields{
		"question_length": len(query.RawText),
		"language":        query.LanguageTag,
	}).Debug("[gRPC] Ask request received")

	answer, err := s.Assistant.Ask(ctx, query)
	if err != nil {
		code := grpcCode(err)
		s.Logger.WithError(err).WithFields(logrus.Fields{
			"request_id": answer.RequestID,
			"code":       code.String(),
		}).Info("[gRPC] Ask failed")
		return nil, status.Error(code, assistant.UserMessage(err))
	}

	resp, err := structpb.NewStruct(map[string]interface{}{
		"request_id": answer.RequestID,
		"answer":     answer.Text,
		"language":   answer.Language.Code,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to build response: %v", err)
	}

	s.Logger.WithFields(logrus.Fields{
		"request_id":  answer.RequestID,
		"duration_ms": time.Since(startTime).Milliseconds(),
	}).Debug("[gRPC] Ask completed")
	return resp, nil
}

// AssistantClient calls the pharmagen.v1.Assistant service.
type AssistantClient struct {
	cc grpc.ClientConnInterface
}

// NewAssistantClient creates a client over an established connection.
func NewAssistantClient(cc grpc.ClientConnInterface) *AssistantClient {
	return &AssistantClient{cc: cc}
}

// Ask sends a question and returns the answer fields.
func (c *AssistantClient) Ask(ctx context.Context, question, language string, opts ...grpc.CallOption) (AskResponse, error) {
	in, err := structpb.NewStruct(map[string]interface{}{
		"question": question,
		"language": language,
	})
	if err != nil {
		return AskResponse{}, err
	}

	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, AskFullMethod, in, out, opts...); err != nil {
		return AskResponse{}, err
	}

	fields := out.GetFields()
	return AskResponse{
		RequestID: fields["request_id"].GetStringValue(),
		Answer:    fields["answer"].GetStringValue(),
		Language:  fields["language"].GetStringValue(),
	}, nil
}
