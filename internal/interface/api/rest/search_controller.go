package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cloudy/internal/application/ports"
	fileDTO "cloudy/internal/interface/api/rest/dto/file"
	usageDTO "cloudy/internal/interface/api/rest/dto/usage"
	"cloudy/internal/interface/api/rest/middleware"
)

type SearchController struct {
	searchService ports.SearchService
	usageService  ports.UsageService
	logger        *zap.Logger
}

func NewSearchController(
	r *gin.Engine,
	searchService ports.SearchService,
	usageService ports.UsageService,
	logger *zap.Logger,
	authMW gin.HandlerFunc,
) *SearchController {
	sc := &SearchController{
		searchService: searchService,
		usageService:  usageService,
		logger:        logger,
	}

	r.GET(RouteSearch, authMW, sc.SearchHandler)
	r.GET(RouteUsage, authMW, sc.UsageHandler)

	return sc
}

func (sc *SearchController) SearchHandler(c *gin.Context) {
	files, err := sc.searchService.Search(c.Request.Context(), middleware.CurrentUser(c), c.Query("query"))
	if err != nil {
		respondError(c, sc.logger, "search", err)
		return
	}

	c.JSON(http.StatusOK, fileDTO.ResponseData{
		Data:  fileDTO.ToResponseFiles(files),
		Total: len(files),
	})
}

func (sc *SearchController) UsageHandler(c *gin.Context) {
	s, err := sc.usageService.Usage(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, sc.logger, "usage", err)
		return
	}

	c.JSON(http.StatusOK, usageDTO.ToResponse(s))
}
