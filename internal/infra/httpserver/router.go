package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bryanwahyu/healthinsure-ai/internal/application/assistant"
	"github.com/bryanwahyu/healthinsure-ai/internal/infra/logger"
	"github.com/bryanwahyu/healthinsure-ai/internal/middleware"
)

type Router struct {
	svc       *assistant.Service
	log       logger.Logger
	maxUpload int64
}

// Options configures the HTTP surface around the assistant service.
type Options struct {
	AllowedOrigins []string
	MaxUploadBytes int64
	HealthCheckers map[string]middleware.HealthChecker
	Log            logger.Logger

	// reported by /health
	Provider    string
	Model       string
	DocumentTTL time.Duration
}

func NewRouter(svc *assistant.Service, opts Options) http.Handler {
	if opts.Log == nil {
		opts.Log = logger.NewNop()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 20 << 20
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	r := &Router{svc: svc, log: opts.Log, maxUpload: opts.MaxUploadBytes}

	mux := chi.NewRouter()
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.Logging(opts.Log))
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.SessionHeader},
		ExposedHeaders: []string{middleware.SessionHeader},
		MaxAge:         300,
	}))

	mux.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"message": "HealthInsure AI Backend is running!"})
	})
	mux.Get("/health", middleware.HealthHandler(opts.HealthCheckers, func() middleware.ServiceInfo {
		return middleware.ServiceInfo{
			Provider:          opts.Provider,
			Model:             opts.Model,
			DocumentTTL:       middleware.DocumentTTLString(opts.DocumentTTL),
			DocumentsInMemory: svc.StoredDocuments(),
			ArchiveEnabled:    svc.Archive != nil,
			AuditEnabled:      svc.Audit != nil,
		}
	}))
	mux.Get("/healthz", middleware.LivenessHandler)
	mux.Get("/readyz", middleware.ReadinessHandler)
	mux.Get("/metrics", middleware.MetricsHandler(svc.StoredDocuments))

	mux.Group(func(rt chi.Router) {
		rt.Use(middleware.Session)
		rt.Post("/login", r.wrap(r.handleLogin))
		rt.Post("/ask", r.wrap(r.handleAsk))
		rt.Post("/upload-doc", r.wrap(r.handleUpload))
		rt.Delete("/document", r.wrap(r.handleClearDocument))
		rt.Post("/check-claim", r.wrap(r.handleCheckClaim))
		rt.Post("/recommend-policy", r.wrap(r.handleRecommend))
		rt.Post("/wellness-insights", r.wrap(r.handleWellness))
		rt.Post("/blockchain-action", r.wrap(r.handleBlockchain))
		rt.Get("/interactions", r.wrap(r.handleInteractions))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap maps handler errors to JSON error bodies. Provider and extraction
// failures never reach here; they are returned as error results with 200.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		var ve *middleware.ValidationError
		var be *badRequestError
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &ve):
			middleware.WriteError(w, http.StatusBadRequest, ve.Message)
		case errors.As(err, &tooLarge):
			middleware.WriteError(w, http.StatusBadRequest, "Uploaded file is too large.")
		case errors.As(err, &be):
			middleware.WriteError(w, http.StatusBadRequest, be.msg)
		case errors.Is(err, assistant.ErrUnsupportedFileType), errors.Is(err, assistant.ErrInvalidAction):
			middleware.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, assistant.ErrInvalidCredentials):
			middleware.WriteError(w, http.StatusUnauthorized, err.Error())
		default:
			r.log.Error("HTTP", "unhandled error", map[string]interface{}{
				"path":  req.URL.Path,
				"error": err.Error(),
			})
			middleware.WriteError(w, http.StatusInternalServerError, "internal server error")
		}
	}
}

// POST /login
func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) error {
	f, err := r.readFields(w, req)
	if err != nil {
		return err
	}
	cmd := assistant.LoginCommand{
		Email:    f.get("email"),
		Password: f.get("password"),
	}
	if err := middleware.Validate(cmd); err != nil {
		return err
	}

	res, err := r.svc.Login(cmd)
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusOK, res)
	return nil
}

// POST /ask
// Body: {"question": "...", "policyDate": "...", "userInfo": "..."}
func (r *Router) handleAsk(w http.ResponseWriter, req *http.Request) error {
	f, err := r.readFields(w, req)
	if err != nil {
		return err
	}
	cmd := assistant.AskCommand{
		SessionID:  middleware.SessionFromContext(req.Context()),
		Question:   f.get("question"),
		PolicyDate: f.get("policyDate", "policy_date"),
		UserInfo:   f.get("userInfo", "user_info"),
	}
	if err := middleware.Validate(cmd); err != nil {
		return err
	}

	res := trackPrompt(func() assistant.Result { return r.svc.Ask(req.Context(), cmd) })
	middleware.WriteJSON(w, http.StatusOK, res)
	return nil
}

// POST /upload-doc (multipart, field "file")
func (r *Router) handleUpload(w http.ResponseWriter, req *http.Request) error {
	f, err := r.readFields(w, req)
	if err != nil {
		return err
	}
	file, ok := f.file("file")
	if !ok {
		return &middleware.ValidationError{Field: "file", Message: "file is required"}
	}
	data, err := file.read()
	if err != nil {
		return err
	}

	session := middleware.SessionFromContext(req.Context())
	cmd := assistant.UploadCommand{
		SessionID:   session,
		Filename:    file.Filename,
		ContentType: file.ContentType,
		Data:        data,
	}

	res, stored, err := r.svc.UploadDocument(req.Context(), cmd)
	if err != nil {
		return err
	}
	if stored {
		middleware.IncrementDocuments()
		middleware.IncrementPrompts()
		if !res.OK() {
			middleware.IncrementPromptsFailed()
		}
	}

	w.Header().Set(middleware.SessionHeader, session)
	middleware.WriteJSON(w, http.StatusOK, res)
	return nil
}

// DELETE /document
func (r *Router) handleClearDocument(w http.ResponseWriter, req *http.Request) error {
	session := middleware.SessionFromContext(req.Context())
	w.Header().Set(middleware.SessionHeader, session)
	middleware.WriteJSON(w, http.StatusOK, r.svc.ClearDocument(session))
	return nil
}

// POST /check-claim
func (r *Router) handleCheckClaim(w http.ResponseWriter, req *http.Request) error {
	f, err := r.readFields(w, req)
	if err != nil {
		return err
	}
	_, hasBill := f.file("bill")
	cmd := assistant.ClaimCommand{
		SessionID:          middleware.SessionFromContext(req.Context()),
		ClaimType:          f.get("claimType", "claim_type"),
		ExpenseDescription: f.get("expenseDescription", "expense_description"),
		HospitalPreference: f.get("hospitalPreference", "hospital_preference"),
		BillPresent:        hasBill || f.flag("billPresent", "bill_present"),
	}
	if err := middleware.Validate(cmd); err != nil {
		return err
	}

	res := trackPrompt(func() assistant.Result { return r.svc.CheckClaim(req.Context(), cmd) })
	middleware.WriteJSON(w, http.StatusOK, res)
	return nil
}

// POST /recommend-policy
func (r *Router) handleRecommend(w http.ResponseWriter, req *http.Request) error {
	f, err := r.readFields(w, req)
	if err != nil {
		return err
	}
	cmd := assistant.RecommendationCommand{
		SessionID:        middleware.SessionFromContext(req.Context()),
		Age:              f.get("age", "user_age"),
		Gender:           f.get("gender", "user_gender"),
		HealthConditions: f.get("healthConditions", "health_conditions"),
		Coverage:         f.get("coverage", "desiredCoverage", "desired_coverage"),
		Budget:           f.get("budget"),
	}
	if err := middleware.Validate(cmd); err != nil {
		return err
	}

	res := trackPrompt(func() assistant.Result { return r.svc.RecommendPolicy(req.Context(), cmd) })
	middleware.WriteJSON(w, http.StatusOK, res)
	return nil
}

// POST /wellness-insights
func (r *Router) handleWellness(w http.ResponseWriter, req *http.Request) error {
	f, err := r.readFields(w, req)
	if err != nil {
		return err
	}
	cmd := assistant.WellnessCommand{
		SessionID:          middleware.SessionFromContext(req.Context()),
		Goal:               f.get("wellnessGoal", "wellness_goal"),
		HealthDataFilename: f.get("healthDataFilename", "health_data_filename"),
	}
	if data, ok := f.file("health_data"); ok {
		cmd.HealthDataFilename = data.Filename
	}
	if err := middleware.Validate(cmd); err != nil {
		return err
	}

	res := trackPrompt(func() assistant.Result { return r.svc.WellnessInsights(req.Context(), cmd) })
	middleware.WriteJSON(w, http.StatusOK, res)
	return nil
}

// POST /blockchain-action
// Body: {"action": "view-records"|"verify-claim", "recordId": "..."}
func (r *Router) handleBlockchain(w http.ResponseWriter, req *http.Request) error {
	f, err := r.readFields(w, req)
	if err != nil {
		return err
	}
	cmd := assistant.BlockchainCommand{
		Action:   f.get("action"),
		RecordID: f.get("recordId", "record_id"),
	}
	if err := middleware.Validate(cmd); err != nil {
		return err
	}

	res, err := r.svc.BlockchainAction(cmd)
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusOK, res)
	return nil
}

// GET /interactions?limit=
func (r *Router) handleInteractions(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	list, err := r.svc.Interactions(req.Context(), middleware.SessionFromContext(req.Context()), middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusOK, list)
	return nil
}

// trackPrompt updates the provider call counters around fn.
func trackPrompt(fn func() assistant.Result) assistant.Result {
	middleware.IncrementPrompts()
	middleware.IncrementPromptsInFlight()
	defer middleware.DecrementPromptsInFlight()

	res := fn()
	if res.Status == assistant.StatusError {
		middleware.IncrementPromptsFailed()
	}
	return res
}
