package errors

import (
	"fmt"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorDomain scopes the reasons carried in gRPC error details
const ErrorDomain = "hexroom"

// ToGRPCError converts an error to a gRPC status error. The domain reason and
// metadata travel as an ErrorInfo detail.
func ToGRPCError(err error) error {
	if err == nil {
		return nil
	}
	return GRPCStatus(err).Err()
}

// FromGRPCError converts a gRPC status error back to an *Error
func FromGRPCError(err error) error {
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	out := &Error{
		Code:    grpcCodeToCode(st.Code()),
		Message: st.Message(),
	}

	for _, detail := range st.Details() {
		info, ok := detail.(*errdetails.ErrorInfo)
		if !ok || info.GetDomain() != ErrorDomain {
			continue
		}
		out.Reason = Reason(info.GetReason())
		for k, v := range info.GetMetadata() {
			out = out.WithMeta(k, v)
		}
		break
	}

	return out
}

// GRPCStatus returns the gRPC status for any error
func GRPCStatus(err error) *status.Status {
	if err == nil {
		return status.New(codes.OK, "")
	}

	if st, ok := status.FromError(err); ok {
		return st
	}

	var custom *Error
	if !As(err, &custom) {
		return status.New(codes.Internal, "internal error")
	}

	st := status.New(custom.Code.GRPCCode(), custom.Message)
	if custom.Reason == "" && len(custom.Meta) == 0 {
		return st
	}

	info := &errdetails.ErrorInfo{
		Reason:   custom.Reason.String(),
		Domain:   ErrorDomain,
		Metadata: make(map[string]string, len(custom.Meta)),
	}
	for k, v := range custom.Meta {
		info.Metadata[k] = fmt.Sprint(v)
	}
	if withDetails, detailErr := st.WithDetails(info); detailErr == nil {
		return withDetails
	}
	return st
}

// GRPCCode returns the corresponding gRPC code
func (c Code) GRPCCode() codes.Code {
	if gc, ok := codeToGRPC[c]; ok {
		return gc
	}
	return codes.Unknown
}

var codeToGRPC = map[Code]codes.Code{
	CodeOK:                 codes.OK,
	CodeCanceled:           codes.Canceled,
	CodeInvalidArgument:    codes.InvalidArgument,
	CodeDeadlineExceeded:   codes.DeadlineExceeded,
	CodeNotFound:           codes.NotFound,
	CodeAlreadyExists:      codes.AlreadyExists,
	CodePermissionDenied:   codes.PermissionDenied,
	CodeFailedPrecondition: codes.FailedPrecondition,
	CodeUnimplemented:      codes.Unimplemented,
	CodeInternal:           codes.Internal,
	CodeUnavailable:        codes.Unavailable,
}

func grpcCodeToCode(gc codes.Code) Code {
	for c, mapped := range codeToGRPC {
		if mapped == gc {
			return c
		}
	}
	return CodeInternal
}
