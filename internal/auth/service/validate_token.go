package service

import (
	"context"
	"strings"

	"firstaccess/internal/audit"
	authModels "firstaccess/internal/auth/models"
	verification "firstaccess/internal/verification/service"
	dErrors "firstaccess/pkg/domain-errors"
	"firstaccess/pkg/masking"
)

// outcomeMessages maps each validation outcome to its caller-facing text.
var outcomeMessages = map[verification.Outcome]string{
	verification.OutcomeValidated:   "token validated",
	verification.OutcomeNotFound:    "token not found",
	verification.OutcomeAlreadyUsed: "token already used",
	verification.OutcomeExpired:     "token expired",
	verification.OutcomeExhausted:   "attempt limit exceeded",
	verification.OutcomeMismatch:    "invalid token",
}

// auditActions names the outcomes worth a trail entry. Plain mismatches
// inside the budget are visible through attempt counters instead.
var auditActions = map[verification.Outcome]audit.Action{
	verification.OutcomeValidated: audit.ActionTokenValidated,
	verification.OutcomeExpired:   audit.ActionTokenExpired,
	verification.OutcomeExhausted: audit.ActionTokenExhausted,
	verification.OutcomeMismatch:  audit.ActionTokenRejected,
}

// ValidateToken applies one validation step against the stored record for
// (issuer, identifier). Every reachable outcome is a well-formed response;
// only infrastructure trouble surfaces as an error.
func (s *Service) ValidateToken(ctx context.Context, issuer string, req authModels.ValidateTokenRequest) (*authModels.ValidateTokenResponse, error) {
	issuer, err := authModels.NormalizeIssuer(issuer)
	if err != nil {
		return nil, err
	}
	subjectID, err := authModels.NormalizeIdentifier(req.Identifier)
	if err != nil {
		return nil, err
	}
	presented := strings.TrimSpace(req.Token)
	if presented == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "token is required")
	}

	result, err := s.engine.Validate(ctx, issuer, subjectID, presented)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodePersistenceFailed, "could not read verification state", err)
	}

	maskedID := masking.Document(subjectID)
	if s.metrics != nil {
		s.metrics.Validations.WithLabelValues(string(result.Outcome)).Inc()
	}
	s.logger.InfoContext(ctx, "token validation handled",
		"issuer", issuer,
		"identifier", maskedID,
		"outcome", string(result.Outcome),
	)
	if action, ok := auditActions[result.Outcome]; ok {
		event := audit.Event{
			Action:  action,
			Issuer:  issuer,
			Subject: maskedID,
		}
		if result.Record != nil {
			event.RequestID = result.Record.ID
		}
		s.record(ctx, event)
	}

	resp := &authModels.ValidateTokenResponse{
		Valid:   result.Accepted,
		Message: outcomeMessages[result.Outcome],
	}
	if result.Record != nil {
		remaining := result.Record.AttemptsRemaining()
		resp.AttemptsRemaining = &remaining
	}

	if result.Accepted && s.proofs != nil {
		signed, err := s.proofs.Issue(subjectID, issuer, result.Record.ID, s.clock())
		if err != nil {
			// The validation itself stands; the caller just retries for
			// a proof if they need one.
			s.logger.ErrorContext(ctx, "proof issuance failed",
				"issuer", issuer,
				"identifier", maskedID,
				"error", err.Error(),
			)
		} else {
			resp.ProofToken = signed
		}
	}

	return resp, nil
}
