package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/datalyr/foresight-go/internal/database"
	"github.com/datalyr/foresight-go/internal/forecast"
	"github.com/datalyr/foresight-go/internal/middleware"
	"github.com/datalyr/foresight-go/internal/services"
	"github.com/datalyr/foresight-go/internal/utils"
)

// respondError translates service and engine errors into HTTP responses.
// Input-shape and validation problems map to 4xx; anything unrecognized is
// reported as a 500 and recorded on the active span.
func respondError(c *gin.Context, err error) {
	var requestErr *utils.ValidationError
	var validationErr *forecast.ValidationError
	var forecastErr *forecast.ForecastError

	switch {
	case errors.Is(err, services.ErrNoSource), errors.Is(err, services.ErrAmbiguousSource):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &requestErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": requestErr.Error()})
	case errors.As(err, &validationErr):
		resp := gin.H{"error": validationErr.Error()}
		if validationErr.Column != "" {
			resp["column"] = validationErr.Column
		}
		c.JSON(http.StatusBadRequest, resp)
	case errors.As(err, &forecastErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  forecastErr.Error(),
			"method": string(forecastErr.Method),
		})
	case errors.Is(err, database.ErrDatasetNotFound),
		errors.Is(err, database.ErrForecastNotFound),
		errors.Is(err, database.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, database.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		middleware.RecordError(c, err, "request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
