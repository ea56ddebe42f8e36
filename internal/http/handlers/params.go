package handlers

import (
	"fmt"
	"net/http"
	"time"

	"smart_time/internal/domain"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// parseTime accepts RFC3339 or a plain date in loc
func parseTime(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a date", domain.ErrInvalidInput, s)
	}
	return t, nil
}

// location reads ?tz=Area/City, UTC by default
func location(c *gin.Context) (*time.Location, bool) {
	tz := c.Query("tz")
	if tz == "" {
		return time.UTC, true
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown tz"})
		return nil, false
	}
	return loc, true
}

// queryRange reads ?from=&to=. Missing bounds fall back to def.
func queryRange(c *gin.Context, loc *time.Location, defFrom, defTo time.Time) (time.Time, time.Time, bool) {
	from, to := defFrom, defTo
	var err error
	if v := c.Query("from"); v != "" {
		if from, err = parseTime(v, loc); err != nil {
			respondError(c, err)
			return time.Time{}, time.Time{}, false
		}
	}
	if v := c.Query("to"); v != "" {
		if to, err = parseTime(v, loc); err != nil {
			respondError(c, err)
			return time.Time{}, time.Time{}, false
		}
	}
	if !to.After(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must be after from"})
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}
