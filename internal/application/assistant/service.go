package assistant

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/healthinsure-ai/internal/application"
	"github.com/bryanwahyu/healthinsure-ai/internal/domain/ai"
	"github.com/bryanwahyu/healthinsure-ai/internal/domain/audit"
	"github.com/bryanwahyu/healthinsure-ai/internal/domain/documents"
	"github.com/bryanwahyu/healthinsure-ai/internal/infra/ai/prompt"
	"github.com/bryanwahyu/healthinsure-ai/internal/infra/logger"
)

const defaultSession = "default"

// Service implements the assistant use-cases. Every provider-backed operation
// issues exactly one Generate call and reports provider or extraction failures
// as an error Result rather than an error value.
// Service is safe for concurrent use when its Documents store is.
type Service struct {
	Generator ai.Generator
	Documents documents.Store
	Extractor documents.TextExtractor
	Archive   documents.Archiver // optional
	Audit     audit.Repository   // optional
	Prompts   prompt.Builder
	Clock     application.Clock
	Log       logger.Logger
}

//
// ==== USE CASES ====
//

// Ask answers a question, using the session's document when one was uploaded.
func (s *Service) Ask(ctx context.Context, cmd AskCommand) Result {
	session := sessionOrDefault(cmd.SessionID)
	doc, _ := s.Documents.Get(session)
	p := s.Prompts.Ask(prompt.AskInput{
		Question:   cmd.Question,
		PolicyDate: cmd.PolicyDate,
		UserInfo:   cmd.UserInfo,
		Document:   doc.Text,
	})
	return s.generate(ctx, session, audit.KindAsk, "answer", p)
}

// UploadDocument extracts the text of a PDF, replaces the session's document
// and returns a summary of it. stored reports whether the document was kept,
// in which case a summary prompt was issued. Non-PDF uploads fail with
// ErrUnsupportedFileType before extraction runs.
func (s *Service) UploadDocument(ctx context.Context, cmd UploadCommand) (res Result, stored bool, err error) {
	if !IsPDF(cmd.ContentType, cmd.Data) {
		return Result{}, false, ErrUnsupportedFileType
	}
	session := sessionOrDefault(cmd.SessionID)
	filename := cleanFilename(cmd.Filename)

	text, err := s.Extractor.Extract(cmd.Data)
	if err != nil {
		s.logger().Warn("ASSISTANT", "pdf extraction failed", map[string]interface{}{
			"session":  session,
			"filename": filename,
			"error":    err.Error(),
		})
		return failure(extractionMessage(err)), false, nil
	}

	s.Documents.Put(session, documents.Document{
		SessionID:  session,
		Filename:   filename,
		Text:       text,
		UploadedAt: s.now(),
	})
	s.archive(ctx, session, filename, cmd)

	res = s.generate(ctx, session, audit.KindSummary, "summary", s.Prompts.Summary(text))
	res.Extra = map[string]string{"filename": filename, "sessionId": session}
	return res, true, nil
}

// CheckClaim assesses claim eligibility against the session's document.
func (s *Service) CheckClaim(ctx context.Context, cmd ClaimCommand) Result {
	session := sessionOrDefault(cmd.SessionID)
	doc, _ := s.Documents.Get(session)
	p := s.Prompts.Claim(prompt.ClaimInput{
		ClaimType:          cmd.ClaimType,
		ExpenseDescription: cmd.ExpenseDescription,
		HospitalPreference: cmd.HospitalPreference,
		BillAttached:       cmd.BillPresent,
		Document:           doc.Text,
	})
	return s.generate(ctx, session, audit.KindClaim, "result", p)
}

// RecommendPolicy suggests policy types for a user profile.
func (s *Service) RecommendPolicy(ctx context.Context, cmd RecommendationCommand) Result {
	p := s.Prompts.Recommendation(prompt.RecommendationInput{
		Age:              cmd.Age,
		Gender:           cmd.Gender,
		HealthConditions: cmd.HealthConditions,
		DesiredCoverage:  cmd.Coverage,
		Budget:           cmd.Budget,
	})
	return s.generate(ctx, sessionOrDefault(cmd.SessionID), audit.KindRecommendation, "recommendations", p)
}

// WellnessInsights gives wellness advice for a goal. Uploaded health data is
// acknowledged by name only.
func (s *Service) WellnessInsights(ctx context.Context, cmd WellnessCommand) Result {
	p := s.Prompts.Wellness(prompt.WellnessInput{
		Goal:           cmd.Goal,
		HealthDataFile: cmd.HealthDataFilename,
	})
	return s.generate(ctx, sessionOrDefault(cmd.SessionID), audit.KindWellness, "insights", p)
}

// ClearDocument forgets the session's document so later questions are
// answered without it.
func (s *Service) ClearDocument(sessionID string) Result {
	session := sessionOrDefault(sessionID)
	_, had := s.Documents.Get(session)
	s.Documents.Delete(session)

	res := Result{Status: StatusSuccess, Message: "No document was stored for this session."}
	if had {
		res.Message = "Document cleared."
		s.logger().Info("ASSISTANT", "document cleared", map[string]interface{}{"session": session})
	}
	res.Extra = map[string]string{"sessionId": session}
	return res
}

// StoredDocuments reports how many sessions currently hold a document.
func (s *Service) StoredDocuments() int {
	return s.Documents.Count()
}

// Interactions lists the latest audited provider calls of a session. It is
// empty when auditing is disabled.
func (s *Service) Interactions(ctx context.Context, sessionID string, limit int) ([]*audit.Interaction, error) {
	if s.Audit == nil {
		return []*audit.Interaction{}, nil
	}
	items, err := s.Audit.Latest(ctx, sessionOrDefault(sessionID), limit)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	if items == nil {
		items = []*audit.Interaction{}
	}
	return items, nil
}

func (s *Service) generate(ctx context.Context, session string, kind audit.Kind, field, p string) Result {
	start := s.now()
	text, err := s.Generator.Generate(ctx, p)
	duration := s.now().Sub(start)

	res := success(field, text)
	if err != nil {
		res = failure(providerMessage(err))
		s.logger().Error("ASSISTANT", "provider call failed", map[string]interface{}{
			"session": session,
			"kind":    string(kind),
			"error":   err.Error(),
		})
	}
	s.record(ctx, session, kind, len(p), res, start, duration)
	return res
}

func (s *Service) record(ctx context.Context, session string, kind audit.Kind, promptChars int, res Result, start time.Time, duration time.Duration) {
	if s.Audit == nil {
		return
	}
	it := &audit.Interaction{
		ID:          audit.InteractionID(uuid.New().String()),
		SessionID:   session,
		Kind:        kind,
		PromptChars: promptChars,
		Status:      audit.StatusSuccess,
		Response:    res.Text,
		DurationMS:  duration.Milliseconds(),
		CreatedAt:   start,
	}
	if !res.OK() {
		it.Status = audit.StatusError
		it.Response = ""
		it.Error = res.Message
	}
	// audit must not depend on the client staying connected
	if err := s.Audit.Save(context.WithoutCancel(ctx), it); err != nil {
		s.logger().Warn("AUDIT", "failed to save interaction", map[string]interface{}{
			"session": session,
			"kind":    string(kind),
			"error":   err.Error(),
		})
	}
}

func (s *Service) archive(ctx context.Context, session, filename string, cmd UploadCommand) {
	if s.Archive == nil {
		return
	}
	key := fmt.Sprintf("%s/%s-%s", session, uuid.New().String(), filename)
	url, err := s.Archive.Archive(ctx, key, cmd.Data, "application/pdf")
	if err != nil {
		s.logger().Warn("ARCHIVE", "failed to archive upload", map[string]interface{}{
			"session": session,
			"key":     key,
			"error":   err.Error(),
		})
		return
	}
	s.logger().Info("ARCHIVE", "upload archived", map[string]interface{}{
		"session": session,
		"url":     url,
	})
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

func (s *Service) logger() logger.Logger {
	if s.Log == nil {
		return logger.NewNop()
	}
	return s.Log
}

// IsPDF accepts a declared application/pdf upload. Uploads without a useful
// content type are sniffed instead.
func IsPDF(contentType string, data []byte) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	switch mediaType {
	case "application/pdf":
		return true
	case "", "application/octet-stream":
		return http.DetectContentType(data) == "application/pdf"
	default:
		return false
	}
}

func providerMessage(err error) string {
	var pe *ai.ProviderError
	if errors.As(err, &pe) {
		return pe.Error()
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return ai.UnknownErrorMessage
}

func extractionMessage(err error) string {
	if errors.Is(err, documents.ErrNoExtractableText) {
		return documents.ErrNoExtractableText.Error()
	}
	return fmt.Sprintf("Could not read PDF: %v", err)
}

func cleanFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return "document.pdf"
	}
	return name
}

func sessionOrDefault(id string) string {
	if strings.TrimSpace(id) == "" {
		return defaultSession
	}
	return id
}
