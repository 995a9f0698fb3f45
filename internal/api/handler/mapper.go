package handler

import (
	"time"

	"github.com/deppen/custody-registry/internal/core/domain"
	"github.com/deppen/custody-registry/internal/core/ports"
)

func toPrincipalResponse(p *domain.Principal) *principalResponse {
	if p == nil {
		return nil
	}
	return &principalResponse{
		Email:    p.Email,
		FullName: p.FullName,
		Role:     string(p.Role),
		HomeUnit: string(p.HomeUnit),
	}
}

func toAuthResponse(r *ports.AuthResult) authResponse {
	return authResponse{
		State:         string(r.State),
		Reason:        string(r.Reason),
		Message:       r.Message,
		Justification: r.Justification,
		SessionToken:  r.SessionToken,
		ChangeToken:   r.ChangeToken,
		Principal:     toPrincipalResponse(r.Principal),
	}
}

func toRecordResponse(r domain.Record) recordResponse {
	return recordResponse{
		ID:           r.ID,
		Type:         string(r.Type),
		SubjectName:  r.SubjectName,
		FileNumber:   r.FileNumber,
		Destination:  r.Destination,
		Room:         r.Room,
		ScheduledAt:  r.ScheduledAt,
		Risk:         string(r.Risk),
		Status:       string(r.Status),
		Notes:        r.Notes,
		UnitOfOrigin: string(r.UnitOfOrigin),
		CreatedBy:    r.CreatedBy,
		CreatedAt:    r.CreatedAt,
		CompletedAt:  r.CompletedAt,
	}
}

func toRecordResponses(records []domain.Record) []recordResponse {
	out := make([]recordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, toRecordResponse(r))
	}
	return out
}

func toCreateRecordInput(req createRecordRequest) ports.CreateRecordInput {
	return ports.CreateRecordInput{
		Type:        domain.RecordType(req.Type),
		SubjectName: req.SubjectName,
		FileNumber:  req.FileNumber,
		Destination: req.Destination,
		Room:        req.Room,
		ScheduledAt: req.ScheduledAt,
		Risk:        domain.Risk(req.Risk),
		Notes:       req.Notes,
		Context:     domain.ViewContext(req.Context),
	}
}

func toUpdateRecordInput(req updateRecordRequest) ports.UpdateRecordInput {
	in := ports.UpdateRecordInput{
		SubjectName: req.SubjectName,
		FileNumber:  req.FileNumber,
		Destination: req.Destination,
		Room:        req.Room,
		ScheduledAt: req.ScheduledAt,
		Notes:       req.Notes,
	}
	if req.Type != nil {
		t := domain.RecordType(*req.Type)
		in.Type = &t
	}
	if req.Risk != nil {
		r := domain.Risk(*req.Risk)
		in.Risk = &r
	}
	if req.Status != nil {
		s := domain.RecordStatus(*req.Status)
		in.Status = &s
	}
	return in
}

func toAccountResponse(a domain.UserAccount) accountResponse {
	return accountResponse{
		Email:         a.Email,
		FullName:      a.FullName,
		Role:          string(a.Role),
		Unit:          string(a.Unit),
		Status:        string(a.Status),
		IsBlocked:     a.IsBlocked,
		IsTemporary:   a.IsTemporary,
		Justification: a.Justification,
		RequestedBy:   a.RequestedBy,
		RequestDate:   a.RequestDate,
		LastSeen:      optionalTime(a.LastSeen),
	}
}

func toAccountResponses(accounts []domain.UserAccount) []accountResponse {
	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	return out
}

func toUpdateAccountInput(req updateAccountRequest) ports.UpdateAccountInput {
	in := ports.UpdateAccountInput{FullName: req.FullName}
	if req.Role != nil {
		r := domain.Role(*req.Role)
		in.Role = &r
	}
	if req.Unit != nil {
		u := domain.Unit(*req.Unit)
		in.Unit = &u
	}
	return in
}

func toAuditResponses(entries []domain.AuditLogEntry) []auditEntryResponse {
	out := make([]auditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditEntryResponse{
			ID:         e.ID,
			Timestamp:  e.Timestamp,
			ActorEmail: e.ActorEmail,
			Action:     e.Action,
			Details:    e.Details,
			Unit:       e.Unit,
			Category:   string(e.Category),
		})
	}
	return out
}

func toPresenceResponses(entries []ports.PresenceEntry) []presenceResponse {
	out := make([]presenceResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, presenceResponse{
			Email:    e.Email,
			FullName: e.FullName,
			Role:     string(e.Role),
			Unit:     string(e.Unit),
			LastSeen: optionalTime(e.LastSeen),
			Online:   e.Online,
		})
	}
	return out
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
