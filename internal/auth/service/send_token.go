package service

import (
	"context"
	"fmt"
	"time"

	"firstaccess/internal/audit"
	authModels "firstaccess/internal/auth/models"
	"firstaccess/internal/directory"
	"firstaccess/internal/ticket"
	dErrors "firstaccess/pkg/domain-errors"
	"firstaccess/pkg/masking"
)

// SendToken runs the full send flow: confirm the subject exists for the
// issuer and the supplied birth date matches, generate a token, dispatch
// it, and only then persist the verification record. A dispatch failure
// therefore leaves no state behind.
func (s *Service) SendToken(ctx context.Context, issuer string, req authModels.SendTokenRequest) (*authModels.SendTokenResponse, error) {
	resp, err := s.sendToken(ctx, issuer, req)
	if err != nil {
		if s.metrics != nil {
			s.metrics.SendFailures.WithLabelValues(string(dErrors.CodeOf(err))).Inc()
		}
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.TokensSent.Inc()
	}
	return resp, nil
}

func (s *Service) sendToken(ctx context.Context, issuer string, req authModels.SendTokenRequest) (*authModels.SendTokenResponse, error) {
	issuer, err := authModels.NormalizeIssuer(issuer)
	if err != nil {
		return nil, err
	}
	subjectID, err := authModels.NormalizeIdentifier(req.Identifier)
	if err != nil {
		return nil, err
	}
	if err := authModels.ValidateBirthDate(req.BirthDate, s.clock()); err != nil {
		return nil, err
	}

	maskedID := masking.Document(subjectID)

	user, err := s.lookupUser(ctx, subjectID, issuer)
	if err != nil {
		s.logger.WarnContext(ctx, "identity lookup failed",
			"issuer", issuer,
			"identifier", maskedID,
			"error", err.Error(),
		)
		return nil, mapDomainError(err)
	}

	if user.BirthDate != req.BirthDate {
		s.logger.InfoContext(ctx, "birth date check failed",
			"issuer", issuer,
			"identifier", maskedID,
		)
		return nil, mapDomainError(ErrBirthDateMismatch)
	}

	rec, err := s.engine.Create(subjectID, user.Email, s.tokenCfg)
	if err != nil {
		return nil, mapDomainError(err)
	}

	if err := s.dispatchToken(ctx, rec.SubjectID, rec.Address, rec.Token); err != nil {
		s.logger.ErrorContext(ctx, "token dispatch failed",
			"issuer", issuer,
			"identifier", maskedID,
			"error", err.Error(),
		)
		return nil, mapDomainError(err)
	}

	if err := s.engine.Save(ctx, issuer, rec); err != nil {
		s.logger.ErrorContext(ctx, "verification record save failed",
			"issuer", issuer,
			"identifier", maskedID,
			"error", err.Error(),
		)
		return nil, dErrors.Wrap(dErrors.CodePersistenceFailed, "could not persist verification state", err)
	}

	s.logger.InfoContext(ctx, "verification token sent",
		"issuer", issuer,
		"identifier", maskedID,
		"address", rec.MaskedAddress(),
		"expiration_minutes", rec.Config.ExpirationMinutes,
	)
	s.record(ctx, audit.Event{
		Action:    audit.ActionTokenSent,
		Issuer:    issuer,
		Subject:   maskedID,
		RequestID: rec.ID,
	})

	return &authModels.SendTokenResponse{
		Message:               fmt.Sprintf("token sent to %s", rec.MaskedAddress()),
		ExpirationTimeMinutes: rec.Config.ExpirationMinutes,
		ClientEmail:           rec.MaskedAddress(),
	}, nil
}

func (s *Service) lookupUser(ctx context.Context, subjectID, issuer string) (*directory.UserDetail, error) {
	start := s.clock()
	detail, err := s.directory.Lookup(ctx, subjectID, issuer)
	s.observeExternal("directory", start)
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *Service) dispatchToken(ctx context.Context, subjectID, address, generated string) error {
	start := s.clock()
	err := s.dispatch.Send(ctx, ticket.DispatchRequest{
		SubjectID:         subjectID,
		Address:           address,
		Token:             generated,
		TokenLength:       s.tokenCfg.Length,
		AttemptLimit:      s.tokenCfg.AttemptLimit,
		ExpirationSeconds: s.tokenCfg.ExpirationMinutes * 60,
	})
	s.observeExternal("ticket", start)
	return err
}

func (s *Service) observeExternal(target string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.ExternalCallMs.WithLabelValues(target).Observe(float64(s.clock().Sub(start).Milliseconds()))
}
