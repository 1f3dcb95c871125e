package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Karthikeyadusa/Attendly-sub000/internal/aiclient"
	"github.com/Karthikeyadusa/Attendly-sub000/internal/auth"
	"github.com/Karthikeyadusa/Attendly-sub000/internal/identity"
	"github.com/Karthikeyadusa/Attendly-sub000/internal/model"
	"github.com/Karthikeyadusa/Attendly-sub000/internal/queue"
	"github.com/Karthikeyadusa/Attendly-sub000/internal/syncer"
	"github.com/Karthikeyadusa/Attendly-sub000/internal/tracker"
)

// Auth settings the session endpoint needs from config.
type AuthConfig struct {
	Issuer     string
	SigningKey string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Handler exposes the tracker core over HTTP.
type Handler struct {
	store    *tracker.Store
	ai       *aiclient.Client
	identity *identity.Client
	queue    queue.Queue
	results  queue.ResultStore
	sync     *syncer.Syncer
	authCfg  AuthConfig
}

// New wires the handler with its collaborators. sync may be nil when no
// persistence backend is configured.
func New(store *tracker.Store, ai *aiclient.Client, idc *identity.Client, q queue.Queue, results queue.ResultStore, sync *syncer.Syncer, authCfg AuthConfig) *Handler {
	return &Handler{
		store:    store,
		ai:       ai,
		identity: idc,
		queue:    q,
		results:  results,
		sync:     sync,
		authCfg:  authCfg,
	}
}

// Register mounts all routes. authMW guards everything under /v1 except
// session creation.
func (h *Handler) Register(r *gin.Engine, authMW gin.HandlerFunc) {
	r.GET("/healthz", h.Healthz)
	r.POST("/v1/sessions", h.CreateSession)

	v1 := r.Group("/v1", authMW)
	{
		v1.POST("/subjects", h.CreateSubject)
		v1.GET("/subjects", h.ListSubjects)
		v1.PUT("/subjects/:id", h.UpdateSubject)
		v1.DELETE("/subjects/:id", h.DeleteSubject)

		v1.GET("/timetable", h.ListTimetable)
		v1.POST("/timetable/slots", h.CreateTimeSlot)
		v1.DELETE("/timetable/slots/:id", h.DeleteTimeSlot)
		v1.POST("/timetable/import", h.ImportTimetable)

		v1.POST("/oneoffs", h.CreateOneOffSlot)
		v1.GET("/oneoffs", h.ListOneOffSlots)
		v1.DELETE("/oneoffs/:id", h.DeleteOneOffSlot)

		v1.POST("/attendance", h.LogAttendance)
		v1.DELETE("/attendance", h.ClearAttendance)
		v1.GET("/attendance", h.ListAttendance)

		v1.GET("/schedule", h.GetSchedule)
		v1.GET("/stats", h.GetStats)

		v1.POST("/reschedule", h.Reschedule)
		v1.POST("/reschedule/undo", h.UndoReschedule)

		v1.POST("/holidays", h.AddHoliday)
		v1.GET("/holidays", h.ListHolidays)
		v1.DELETE("/holidays/:date", h.RemoveHoliday)

		v1.PUT("/settings", h.UpdateSettings)
		v1.PUT("/historical", h.SetHistorical)

		v1.GET("/backup", h.Backup)
		v1.POST("/restore", h.Restore)

		v1.POST("/extract/timetable", h.ExtractTimetable)
		v1.POST("/extract/questions", h.ExtractQuestions)
		v1.GET("/extract/jobs/:id", h.GetExtractionJob)

		v1.GET("/debrief", h.Debrief)
	}
}

func (h *Handler) coreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, tracker.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, tracker.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Healthz reports liveness plus the sync-status signal.
func (h *Handler) Healthz(c *gin.Context) {
	status := syncer.StatusIdle
	if h.sync != nil {
		status = h.sync.Status()
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sync": status})
}

// ---------- Sessions ----------

// CreateSession exchanges an identity-provider token for service JWTs.
func (h *Handler) CreateSession(c *gin.Context) {
	var req struct {
		ProviderToken string `json:"provider_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	subject, err := h.identity.Verify(c.Request.Context(), req.ProviderToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "identity verification failed"})
		return
	}

	tokens, err := auth.Issue(subject, "user", h.authCfg.Issuer, h.authCfg.SigningKey,
		h.authCfg.AccessTTL, h.authCfg.RefreshTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_at":    tokens.AccessExp.Unix(),
	})
}

// ---------- Subjects ----------

type subjectRequest struct {
	Name    string `json:"name" binding:"required"`
	Type    string `json:"type" binding:"required,oneof=Lecture Lab"`
	Credits int    `json:"credits" binding:"required,min=1"`
}

func (h *Handler) CreateSubject(c *gin.Context) {
	var req subjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sub, err := h.store.AddSubject(req.Name, req.Type, req.Credits)
	if err != nil {
		h.coreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *Handler) ListSubjects(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Subjects())
}

func (h *Handler) UpdateSubject(c *gin.Context) {
	var req subjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.store.UpdateSubject(model.Subject{
		ID:      c.Param("id"),
		Name:    req.Name,
		Type:    req.Type,
		Credits: req.Credits,
	})
	if err != nil {
		h.coreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) DeleteSubject(c *gin.Context) {
	if err := h.store.DeleteSubject(c.Param("id")); err != nil {
		h.coreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---------- Timetable ----------

func (h *Handler) CreateTimeSlot(c *gin.Context) {
	var req struct {
		Day       string `json:"day" binding:"required"`
		StartTime string `json:"startTime" binding:"required"`
		EndTime   string `json:"endTime" binding:"required"`
		SubjectID string `json:"subjectId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	slot, err := h.store.AddTimeSlot(req.Day, req.StartTime, req.EndTime, req.SubjectID)
	if err != nil {
		h.coreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, slot)
}

func (h *Handler) ListTimetable(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Timetable())
}

func (h *Handler) DeleteTimeSlot(c *gin.Context) {
	if err := h.store.DeleteTimeSlot(c.Param("id")); err != nil {
		h.coreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ImportTimetable bulk-adds extracted rows.
func (h *Handler) ImportTimetable(c *gin.Context) {
	var req struct {
		Rows []tracker.TimetableImportRow `json:"rows" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	added := h.store.ImportTimetable(req.Rows)
	c.JSON(http.StatusOK, gin.H{"added": added})
}

// ---------- One-off slots ----------

func (h *Handler) CreateOneOffSlot(c *gin.Context) {
	var req struct {
		Date      string `json:"date" binding:"required"`
		StartTime string `json:"startTime" binding:"required"`
		EndTime   string `json:"endTime" binding:"required"`
		SubjectID string `json:"subjectId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	slot, err := h.store.AddOneOffSlot(req.Date, req.StartTime, req.EndTime, req.SubjectID)
	if err != nil {
		h.coreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, slot)
}

func (h *Handler) ListOneOffSlots(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.OneOffSlots())
}

func (h *Handler) DeleteOneOffSlot(c *gin.Context) {
	if err := h.store.DeleteOneOffSlot(c.Param("id")); err != nil {
		h.coreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---------- Attendance ----------

func (h *Handler) LogAttendance(c *gin.Context) {
	var req struct {
		SlotID string `json:"slotId" binding:"required"`
		Date   string `json:"date" binding:"required"`
		Status string `json:"status" binding:"required,oneof=Attended Absent Cancelled Postponed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// Policy violations inside the core are silent no-ops.
	h.store.LogAttendance(req.SlotID, req.Date, req.Status)
	c.Status(http.StatusNoContent)
}

func (h *Handler) ClearAttendance(c *gin.Context) {
	slotID, date := c.Query("slotId"), c.Query("date")
	if slotID == "" || date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slotId and date required"})
		return
	}
	h.store.ClearAttendance(slotID, date)
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListAttendance(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Records())
}

// ---------- Schedule & stats ----------

func (h *Handler) GetSchedule(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date required"})
		return
	}
	occurrences := h.store.ScheduleForDate(date)
	if occurrences == nil {
		occurrences = []tracker.Occurrence{}
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "occurrences": occurrences})
}

func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Stats())
}

// ---------- Reschedule ----------

func (h *Handler) Reschedule(c *gin.Context) {
	var req struct {
		SlotID       string `json:"slotId" binding:"required"`
		OriginalDate string `json:"originalDate" binding:"required"`
		NewDate      string `json:"newDate" binding:"required"`
		NewStartTime string `json:"newStartTime" binding:"required"`
		NewEndTime   string `json:"newEndTime" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	slot, err := h.store.Reschedule(req.SlotID, req.OriginalDate, req.NewDate, req.NewStartTime, req.NewEndTime)
	if err != nil {
		h.coreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, slot)
}

func (h *Handler) UndoReschedule(c *gin.Context) {
	var req struct {
		OneOffSlotID string `json:"oneOffSlotId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.UndoPostpone(req.OneOffSlotID); err != nil {
		h.coreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---------- Holidays & settings ----------

func (h *Handler) AddHoliday(c *gin.Context) {
	var req struct {
		Date string `json:"date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.AddHoliday(req.Date); err != nil {
		h.coreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) RemoveHoliday(c *gin.Context) {
	h.store.RemoveHoliday(c.Param("date"))
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListHolidays(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Snapshot().Holidays)
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	var req struct {
		MinAttendancePercentage *float64 `json:"minAttendancePercentage"`
		TrackingStartDate       *string  `json:"trackingStartDate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.MinAttendancePercentage != nil {
		if err := h.store.SetMinAttendance(*req.MinAttendancePercentage); err != nil {
			h.coreError(c, err)
			return
		}
	}
	if req.TrackingStartDate != nil {
		if err := h.store.SetTrackingStartDate(*req.TrackingStartDate); err != nil {
			h.coreError(c, err)
			return
		}
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) SetHistorical(c *gin.Context) {
	var req struct {
		SubjectID string `json:"subjectId" binding:"required"`
		Conducted int    `json:"conducted" binding:"min=0"`
		Attended  int    `json:"attended" binding:"min=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.store.SetHistorical(model.HistoricalRecord{
		SubjectID: req.SubjectID,
		Conducted: req.Conducted,
		Attended:  req.Attended,
	})
	if err != nil {
		h.coreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---------- Backup ----------

func (h *Handler) Backup(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Snapshot())
}

func (h *Handler) Restore(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read body failed"})
		return
	}
	if err := h.store.RestoreJSON(data); err != nil {
		h.coreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---------- Extraction ----------

func (h *Handler) enqueueExtraction(c *gin.Context, kind, payload string) {
	job := queue.Job{ID: uuid.NewString(), Kind: kind, Payload: payload}
	if err := h.results.Put(c.Request.Context(), queue.Result{JobID: job.ID, Kind: kind, Status: queue.ResultPending}); err != nil {
		log.Warn().Err(err).Msg("result store put failed")
	}
	if err := h.queue.Publish(c.Request.Context(), job); err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("queue publish failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "extraction queue unavailable"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"job_id": job.ID})
}

// ExtractTimetable enqueues a timetable-image extraction job.
func (h *Handler) ExtractTimetable(c *gin.Context) {
	var req struct {
		Image string `json:"image" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.enqueueExtraction(c, queue.KindTimetable, req.Image)
}

// ExtractQuestions enqueues a question-paper extraction job.
func (h *Handler) ExtractQuestions(c *gin.Context) {
	var req struct {
		Document string `json:"document" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.enqueueExtraction(c, queue.KindQuestions, req.Document)
}

// GetExtractionJob returns the outcome of a previously enqueued job.
func (h *Handler) GetExtractionJob(c *gin.Context) {
	res, ok, err := h.results.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	c.JSON(http.StatusOK, res)
}

// ---------- Debrief ----------

// Debrief builds the week report and hands it to the AI collaborator.
func (h *Handler) Debrief(c *gin.Context) {
	week := c.Query("week")
	if week == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "week required"})
		return
	}
	report, err := h.store.WeekReport(week)
	if err != nil {
		h.coreError(c, err)
		return
	}
	debrief, err := h.ai.WeeklyDebrief(c.Request.Context(), report)
	if err != nil {
		log.Warn().Err(err).Msg("debrief generation failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "debrief unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report, "debrief": debrief})
}
