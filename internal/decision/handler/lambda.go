package handler

import (
	"context"
	"encoding/base64"

	"github.com/aws/aws-lambda-go/events"

	dErrors "loanapproval/pkg/domain-errors"
	"loanapproval/pkg/requestcontext"
)

// HandleAPIGateway adapts an API Gateway proxy event onto Handle. Errors are
// always expressed in the response; the returned error is reserved for the
// Lambda runtime and is always nil.
func (h *Handler) HandleAPIGateway(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if id := event.RequestContext.RequestID; id != "" {
		ctx = requestcontext.WithRequestID(ctx, id)
	}

	raw := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return toProxyResponse(h.errorResponse(dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid base64 body"))), nil
		}
		raw = decoded
	}

	return toProxyResponse(h.Handle(ctx, raw)), nil
}

func toProxyResponse(resp Response) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
	}
}
