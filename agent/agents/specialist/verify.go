package specialist

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/contract"
)

const (
	msgCustomerVerified     = "Customer verified successfully."
	msgCustomerNotFound     = "Customer not found. Please provide valid customer ID."
	msgVerificationDegraded = "Customer verification failed. Please try again later."
)

// VerifyCustomer looks customerID up before any sensitive data is revealed.
// Only a reported absence yields CustomerNotFound; a failing data service
// yields CollaboratorFailure.
func VerifyCustomer(ctx context.Context, data contractx.DataService, customerID string) contractx.Verification {
	customerID = strings.TrimSpace(customerID)
	out := contractx.Verification{CustomerID: customerID}

	if customerID == "" {
		out.Message = msgCustomerNotFound
		out.Error = contractx.ErrorKindCustomerNotFound
		return out
	}

	customer, err := data.CustomerByID(ctx, customerID)
	switch {
	case err == nil && customer != nil:
		out.Verified = true
		out.CustomerInfo = customer
		out.Message = msgCustomerVerified
	case err == nil, errors.Is(err, contractx.ErrNotFound):
		out.Message = msgCustomerNotFound
		out.Error = contractx.ErrorKindCustomerNotFound
	default:
		log.Warn().Err(err).Str("customer_id", customerID).Msg("customer verification failed")
		out.Message = msgVerificationDegraded
		out.Error = contractx.ErrorKindCollaboratorFailure
	}
	return out
}
