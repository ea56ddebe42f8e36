package handlers

import (
	"fmt"
	"net/http"
	"time"

	"smart_time/internal/domain"
	"smart_time/internal/report"

	"github.com/gin-gonic/gin"
)

type reportRequest struct {
	Date      string `json:"date"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	Save      *bool  `json:"save"`
}

// reportWindow resolves the window of a generation request
func reportWindow(typ domain.ReportType, req reportRequest, loc *time.Location, now time.Time) (report.Window, error) {
	date := func(s string, def time.Time) (time.Time, error) {
		if s == "" {
			return def, nil
		}
		return parseTime(s, loc)
	}

	switch typ {
	case domain.ReportDaily:
		d, err := date(req.Date, now)
		if err != nil {
			return report.Window{}, err
		}
		return report.Daily(d.In(loc)), nil
	case domain.ReportWeekly:
		d, err := date(req.StartDate, report.WeekStart(now))
		if err != nil {
			return report.Window{}, err
		}
		return report.Weekly(d), nil
	case domain.ReportMonthly:
		year, month := req.Year, time.Month(req.Month)
		if year == 0 {
			year = now.Year()
		}
		if month == 0 {
			month = now.Month()
		}
		if month < time.January || month > time.December {
			return report.Window{}, fmt.Errorf("%w: month must be between 1 and 12", domain.ErrInvalidInput)
		}
		return report.Monthly(year, month, loc), nil
	default:
		start, err := date(req.StartDate, time.Time{})
		if err != nil {
			return report.Window{}, err
		}
		end, err := date(req.EndDate, time.Time{})
		if err != nil {
			return report.Window{}, err
		}
		return report.Custom(start, end)
	}
}

func (h *Handler) generateReport(typ domain.ReportType) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := getUserID(c)
		if !ok {
			return
		}
		loc, ok := location(c)
		if !ok {
			return
		}

		var req reportRequest
		if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
			return
		}

		w, err := reportWindow(typ, req, loc, time.Now().In(loc))
		if err != nil {
			respondError(c, err)
			return
		}

		save := req.Save == nil || *req.Save
		rep, stats, err := h.Reports.Generate(c.Request.Context(), userID, typ, w, save)
		if err != nil {
			respondError(c, err)
			return
		}

		status := http.StatusOK
		if save {
			status = http.StatusCreated
		}
		c.JSON(status, generatedReport{Report: newReportView(rep), Statistics: stats, Saved: save})
	}
}

func (h *Handler) DailyReport() gin.HandlerFunc   { return h.generateReport(domain.ReportDaily) }
func (h *Handler) WeeklyReport() gin.HandlerFunc  { return h.generateReport(domain.ReportWeekly) }
func (h *Handler) MonthlyReport() gin.HandlerFunc { return h.generateReport(domain.ReportMonthly) }
func (h *Handler) CustomReport() gin.HandlerFunc  { return h.generateReport(domain.ReportCustom) }

func (h *Handler) ListReports(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	reports, err := h.Reports.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": newReportViews(reports)})
}

func (h *Handler) RecentReports(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	reports, err := h.Reports.Recent(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": newReportViews(reports)})
}

func (h *Handler) GetReport(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	rep, err := h.Reports.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newReportView(rep))
}

func (h *Handler) DeleteReport(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.Reports.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// queryWindow reads ?from=&to=, the current week by default
func queryWindow(c *gin.Context) (report.Window, bool) {
	loc, ok := location(c)
	if !ok {
		return report.Window{}, false
	}
	start := report.WeekStart(time.Now().In(loc))
	from, to, ok := queryRange(c, loc, start, start.AddDate(0, 0, 7))
	if !ok {
		return report.Window{}, false
	}
	return report.Window{Start: from, End: to}, true
}

func (h *Handler) ProductivityScore(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	w, ok := queryWindow(c)
	if !ok {
		return
	}

	score, err := h.Reports.ProductivityScore(c.Request.Context(), userID, w)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"from":               w.Start,
		"to":                 w.End,
		"productivity_score": score,
	})
}

func (h *Handler) Statistics(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	w, ok := queryWindow(c)
	if !ok {
		return
	}

	stats, err := h.Reports.Statistics(c.Request.Context(), userID, w)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
