package grpcvault

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"identik.app/stamp/store"
)

// Backend is the record vault a Server fronts.
type Backend interface {
	store.IdentityStore
	store.KeyDirectory
	store.MediaStore
	store.EventStore
}

// Server exposes a Backend over the Vault gRPC service.
type Server struct {
	UnimplementedVaultServer
	Backend Backend
}

func (s *Server) FindIdentity(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	if s == nil || s.Backend == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing backend")
	}
	identity, err := s.Backend.FindIdentityByName(ctx, in.GetValue())
	if err != nil {
		return nil, mapErr(err)
	}
	return marshalRecord(identity)
}

func (s *Server) FindKey(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	if s == nil || s.Backend == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing backend")
	}
	key, err := s.Backend.FindKeyByFingerprint(ctx, in.GetValue())
	if err != nil {
		return nil, mapErr(err)
	}
	return marshalRecord(key)
}

func (s *Server) PutMedia(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	if s == nil || s.Backend == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing backend")
	}
	var record store.MediaRecord
	if err := json.Unmarshal(in.GetValue(), &record); err != nil {
		return nil, status.Error(codes.InvalidArgument, store.ErrInvalidRecord.Error())
	}
	if err := s.Backend.PutMedia(ctx, &record); err != nil {
		return nil, mapErr(err)
	}
	return wrapperspb.String(record.PayloadHash), nil
}

func (s *Server) FindMedia(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	if s == nil || s.Backend == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing backend")
	}
	record, err := s.Backend.FindMediaByPayloadHash(ctx, in.GetValue())
	if err != nil {
		return nil, mapErr(err)
	}
	return marshalRecord(record)
}

func (s *Server) HasMedia(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	if s == nil || s.Backend == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing backend")
	}
	return wrapperspb.Bool(s.Backend.HasMedia(ctx, in.GetValue())), nil
}

func (s *Server) AppendEvent(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BoolValue, error) {
	if s == nil || s.Backend == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing backend")
	}
	var event store.Event
	if err := json.Unmarshal(in.GetValue(), &event); err != nil {
		return nil, status.Error(codes.InvalidArgument, store.ErrInvalidRecord.Error())
	}
	if err := s.Backend.AppendEvent(ctx, event); err != nil {
		return nil, mapErr(err)
	}
	return wrapperspb.Bool(true), nil
}

func (s *Server) SignerSignals(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	if s == nil || s.Backend == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing backend")
	}
	snap, err := s.Backend.SignerSignals(ctx, in.GetValue())
	if err != nil {
		return nil, mapErr(err)
	}
	return marshalRecord(snap)
}

func (s *Server) TotalEventWeight(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.DoubleValue, error) {
	if s == nil || s.Backend == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing backend")
	}
	total, err := s.Backend.TotalEventWeight(ctx, in.GetValue())
	if err != nil {
		return nil, mapErr(err)
	}
	return wrapperspb.Double(total), nil
}

func marshalRecord(v any) (*wrapperspb.BytesValue, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "record encoding failed")
	}
	return wrapperspb.Bytes(b), nil
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case store.IsNotFound(err):
		return status.Error(codes.NotFound, store.ErrNotFound.Error())
	case err == store.ErrInvalidRecord:
		return status.Error(codes.InvalidArgument, err.Error())
	case err == store.ErrImmutable:
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
