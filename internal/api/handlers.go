package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/legistar-comb/internal/database"
	"github.com/lysyi3m/legistar-comb/internal/jurisdiction"
	"github.com/lysyi3m/legistar-comb/internal/tasks"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

func NewHandler(configCache *jurisdiction.ConfigCache, billRepo database.BillRepositoryInterface,
	voteRepo database.VoteRepositoryInterface, eventRepo database.EventRepositoryInterface,
	counter CounterInterface, runner tasks.RunnerInterface, newTasks TaskFactory,
	generator *FeedGenerator) *Handler {
	return &Handler{
		configCache: configCache,
		billRepo:    billRepo,
		voteRepo:    voteRepo,
		eventRepo:   eventRepo,
		counter:     counter,
		runner:      runner,
		newTasks:    newTasks,
		generator:   generator,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	total, err := h.counter.Counts("")
	if err != nil {
		slog.Error("Database error", "operation", "get_counts", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	perJurisdiction := make([]database.Counts, 0, h.configCache.GetConfigCount())
	for _, name := range h.configCache.Names() {
		counts, err := h.counter.Counts(name)
		if err != nil {
			slog.Error("Database error", "operation", "get_counts", "jurisdiction", name, "error", err)
			c.Status(http.StatusInternalServerError)
			return
		}
		perJurisdiction = append(perJurisdiction, counts)
	}

	c.JSON(http.StatusOK, gin.H{
		"timestamp":     time.Now().In(time.Local).Format(time.RFC3339),
		"total":         total,
		"jurisdictions": perJurisdiction,
	})
}

func (h *Handler) ListJurisdictions(c *gin.Context) {
	names := h.configCache.Names()
	jurisdictions := make([]map[string]interface{}, 0, len(names))

	for _, name := range names {
		jc, err := h.configCache.GetConfig(name)
		if err != nil {
			continue
		}

		jurisdictions = append(jurisdictions, map[string]interface{}{
			"name":         jc.Name,
			"organization": jc.Organization,
			"timezone":     jc.Timezone,
			"web_url":      jc.WebURL,
			"enabled":      jc.Settings.Enabled,
			"bills":        jc.Settings.ScrapeBills,
			"events":       jc.Settings.ScrapeEvents,
			"sessions":     jc.Bills.Sessions,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"jurisdictions": jurisdictions,
		"total":         len(jurisdictions),
	})
}

func (h *Handler) ListBills(c *gin.Context) {
	jc, ok := h.jurisdiction(c)
	if !ok {
		return
	}

	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	bills, err := h.billRepo.ListBills(jc.Name, c.Query("session"), limit)
	if err != nil {
		slog.Error("Database error", "operation", "list_bills", "jurisdiction", jc.Name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"jurisdiction": jc.Name,
		"bills":        bills,
		"total":        len(bills),
	})
}

func (h *Handler) GetBill(c *gin.Context) {
	jc, ok := h.jurisdiction(c)
	if !ok {
		return
	}
	identifier := c.Param("identifier")

	bill, err := h.billRepo.GetBill(jc.Name, identifier)
	if err != nil {
		slog.Error("Database error", "operation", "get_bill", "jurisdiction", jc.Name, "bill", identifier, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	if bill == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Bill not found"})
		return
	}

	c.JSON(http.StatusOK, bill)
}

func (h *Handler) ListVotes(c *gin.Context) {
	jc, ok := h.jurisdiction(c)
	if !ok {
		return
	}
	identifier := c.Param("identifier")

	votes, err := h.voteRepo.ListVotesForBill(jc.Name, identifier)
	if err != nil {
		slog.Error("Database error", "operation", "list_votes", "jurisdiction", jc.Name, "bill", identifier, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"jurisdiction": jc.Name,
		"bill":         identifier,
		"votes":        votes,
		"total":        len(votes),
	})
}

func (h *Handler) ListEvents(c *gin.Context) {
	jc, ok := h.jurisdiction(c)
	if !ok {
		return
	}

	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	events, err := h.eventRepo.ListEvents(jc.Name, limit)
	if err != nil {
		slog.Error("Database error", "operation", "list_events", "jurisdiction", jc.Name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"jurisdiction": jc.Name,
		"events":       events,
		"total":        len(events),
	})
}

func (h *Handler) GetEvent(c *gin.Context) {
	jc, ok := h.jurisdiction(c)
	if !ok {
		return
	}
	id := c.Param("id")

	event, err := h.eventRepo.GetEvent(jc.Name, id)
	if err != nil {
		slog.Error("Database error", "operation", "get_event", "jurisdiction", jc.Name, "event_id", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	if event == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	c.JSON(http.StatusOK, event)
}

func (h *Handler) GetEventFeed(c *gin.Context) {
	jc, ok := h.jurisdiction(c)
	if !ok {
		return
	}

	events, err := h.eventRepo.ListEvents(jc.Name, defaultLimit)
	if err != nil {
		slog.Error("Database error", "operation", "list_events", "jurisdiction", jc.Name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	rss, err := h.generator.Run(jc, events)
	if err != nil {
		slog.Error("RSS generation error", "jurisdiction", jc.Name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(events)))
	c.String(http.StatusOK, rss)
}

func (h *Handler) APIScrape(c *gin.Context) {
	jc, ok := h.jurisdiction(c)
	if !ok {
		return
	}

	kind := c.DefaultQuery("kind", tasks.KindAll)
	scrapeTasks, err := h.newTasks(jc, kind)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if len(scrapeTasks) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Jurisdiction does not scrape " + kind,
		})
		return
	}

	ids := make([]string, 0, len(scrapeTasks))
	for _, task := range scrapeTasks {
		if err := h.runner.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue scrape task", "jurisdiction", jc.Name, "type", string(task.GetType()), "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":    "Failed to enqueue task",
				"message":  err.Error(),
				"enqueued": ids,
			})
			return
		}
		ids = append(ids, task.GetID())
	}

	slog.Info("Scrape tasks enqueued", "jurisdiction", jc.Name, "kind", kind, "count", len(ids))

	c.JSON(http.StatusAccepted, gin.H{
		"jurisdiction": jc.Name,
		"kind":         kind,
		"tasks":        ids,
	})
}

func (h *Handler) jurisdiction(c *gin.Context) (*jurisdiction.Config, bool) {
	name := c.Param("name")

	jc, err := h.configCache.GetConfig(name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Jurisdiction not found"})
		return nil, false
	}
	return jc, true
}

func parseLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultLimit, true
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
		return 0, false
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit, true
}
