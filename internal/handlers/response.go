package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/knowledgegraph-backend/internal/apierr"
	"github.com/yungbote/knowledgegraph-backend/internal/graph/jsonrepair"
	"github.com/yungbote/knowledgegraph-backend/internal/graph/relation"
	"github.com/yungbote/knowledgegraph-backend/internal/kgerrors"
	"github.com/yungbote/knowledgegraph-backend/internal/platform/deepseek"
)

// writeError maps domain errors onto HTTP statuses. Anything unrecognized is
// a 500 with the error text.
func writeError(c *gin.Context, err error) {
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		c.JSON(apiErr.Status, gin.H{"error": apiErr.Error(), "code": apiErr.Code})
		return
	}

	var formatErr *jsonrepair.UnrecoverableFormatError
	var edgeErr *relation.InvalidEdgeFormatError
	var httpErr *deepseek.HTTPError
	switch {
	case errors.Is(err, kgerrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, kgerrors.ErrEmptyDocument), errors.Is(err, kgerrors.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &formatErr), errors.As(err, &edgeErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.As(err, &httpErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
