package grpcvault

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"identik.app/stamp/store"
)

func mapRPC(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	switch st.Code() {
	case codes.NotFound:
		return store.ErrNotFound
	case codes.InvalidArgument:
		return store.ErrInvalidRecord
	case codes.FailedPrecondition:
		// Server uses FailedPrecondition for immutability violations.
		return store.ErrImmutable
	default:
		// Best-effort: if the server sent a known store error message, preserve it.
		switch st.Message() {
		case store.ErrNotFound.Error():
			return store.ErrNotFound
		case store.ErrInvalidRecord.Error():
			return store.ErrInvalidRecord
		case store.ErrImmutable.Error():
			return store.ErrImmutable
		default:
			return err
		}
	}
}
