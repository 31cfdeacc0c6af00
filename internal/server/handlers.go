package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	apierrors "github.com/aimerfeng/PawPals/internal/errors"
	"github.com/aimerfeng/PawPals/internal/location"
	"github.com/aimerfeng/PawPals/internal/logging"
	"github.com/aimerfeng/PawPals/internal/middleware"
	"github.com/aimerfeng/PawPals/internal/models"
	"github.com/aimerfeng/PawPals/internal/present"
	"github.com/aimerfeng/PawPals/internal/search"
	"github.com/aimerfeng/PawPals/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Request headers understood by the search endpoints
const (
	HeaderSearchSession  = "X-Search-Session"
	HeaderDevicePosition = "X-Device-Position"
)

// FieldError describes one invalid query parameter
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// parseSearchRequest reads search filters from the query string. It
// returns an APIError listing every invalid parameter.
func parseSearchRequest(c *gin.Context) (search.Request, *apierrors.APIError) {
	var (
		req  search.Request
		errs []FieldError
		err  error
	)

	req.Query = strings.TrimSpace(c.Query("q"))
	req.Address = strings.TrimSpace(c.Query("address"))
	req.Session = c.GetHeader(HeaderSearchSession)

	if req.ServiceType, err = models.ParseServiceType(c.Query("serviceType")); err != nil {
		errs = append(errs, FieldError{"serviceType", err.Error()})
	}
	if req.ResultType, err = search.ParseResultType(c.Query("type")); err != nil {
		errs = append(errs, FieldError{"type", err.Error()})
	}
	if req.SortOrder, err = search.ParseSortOrder(c.Query("sort")); err != nil {
		errs = append(errs, FieldError{"sort", err.Error()})
	}

	for _, v := range c.QueryArray("breeds") {
		req.Breeds = append(req.Breeds, strings.Split(v, ",")...)
	}
	req.Breeds = models.NormalizeBreeds(req.Breeds)

	if raw := c.Query("distance"); raw != "" {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil || !search.ValidDistance(d) {
			errs = append(errs, FieldError{"distance", "must be a finite, non-negative number of miles"})
		} else {
			req.DistanceMiles = d
		}
	}

	lat, lng := c.Query("lat"), c.Query("lng")
	switch {
	case lat == "" && lng == "":
	case lat == "" || lng == "":
		errs = append(errs, FieldError{"lat,lng", "both lat and lng are required"})
	default:
		p, err := location.ParsePoint(lat + "," + lng)
		if err != nil || !p.Valid() {
			return req, apierrors.ErrInvalidLocationError.WithDetails([]FieldError{
				{"lat,lng", "lat must be within [-90, 90] and lng within [-180, 180]"},
			})
		}
		req.Point = &p
	}

	if len(errs) > 0 {
		return req, apierrors.NewValidationError(errs)
	}
	return req, nil
}

// capabilities builds the ambient inputs of a search from the request
func capabilities(c *gin.Context) search.Capabilities {
	caps := search.Capabilities{
		Viewer: search.Identity{
			UID:  middleware.GetUserIDFromContext(c),
			Name: middleware.GetNameFromContext(c),
		},
	}
	if pos := c.GetHeader(HeaderDevicePosition); pos != "" {
		caps.Sensor = location.HeaderSensor(pos)
	}
	return caps
}

func (s *APIServer) runSearch(c *gin.Context) (*search.Response, bool) {
	req, apiErr := parseSearchRequest(c)
	if apiErr != nil {
		respondError(c, apiErr)
		return nil, false
	}

	ctx := search.WithRequestID(c.Request.Context(), middleware.GetRequestIDFromContext(c))
	resp, err := s.search.Search(ctx, req, capabilities(c))
	if err != nil {
		respondSearchError(c, err)
		return nil, false
	}
	return resp, true
}

// handleSearch runs the search pipeline and returns the ordered results
func (s *APIServer) handleSearch(c *gin.Context) {
	resp, ok := s.runSearch(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, resp)
}

// handleSearchList returns the results as list cards
func (s *APIServer) handleSearchList(c *gin.Context) {
	resp, ok := s.runSearch(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"cards":          present.Cards(resp.Results),
		"total":          resp.Total,
		"location_label": resp.LocationLabel,
		"advisories":     resp.Advisories,
	})
}

// handleSearchMap returns the results as map markers with a viewport
func (s *APIServer) handleSearchMap(c *gin.Context) {
	resp, ok := s.runSearch(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"markers":        present.Markers(resp.Results),
		"viewport":       present.MapViewport(resp.Origin, resp.DistanceMiles, resp.Results),
		"total":          resp.Total,
		"location_label": resp.LocationLabel,
		"advisories":     resp.Advisories,
	})
}

func (s *APIServer) handleGetProvider(c *gin.Context) {
	detail, err := s.search.Provider(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondLookupError(c, err, apierrors.ErrProviderNotFoundError)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (s *APIServer) handleGetProviderReviews(c *gin.Context) {
	reviews, err := s.search.Reviews(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondLookupError(c, err, apierrors.ErrProviderNotFoundError)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
		"total":   len(reviews),
	})
}

func (s *APIServer) handleGetJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apierrors.ErrJobNotFoundError)
		return
	}
	detail, err := s.search.Job(c.Request.Context(), id)
	if err != nil {
		respondLookupError(c, err, apierrors.ErrJobNotFoundError)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (s *APIServer) handleGetBreeds(c *gin.Context) {
	c.JSON(http.StatusOK, models.Breeds)
}

// respondSearchError maps pipeline errors to the API envelope
func respondSearchError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, search.ErrSuperseded):
		respondError(c, apierrors.ErrSearchSupersededError)
	case errors.Is(err, search.ErrFetchFailed):
		logging.LogError(err, middleware.GetRequestIDFromContext(c), "search", "fetch")
		respondError(c, apierrors.ErrFetchFailedError)
	default:
		logging.LogError(err, middleware.GetRequestIDFromContext(c), "search", "search")
		respondError(c, apierrors.ErrInternalServerError)
	}
}

func respondLookupError(c *gin.Context, err error, notFound *apierrors.APIError) {
	if errors.Is(err, store.ErrNotFound) {
		respondError(c, notFound)
		return
	}
	logging.LogError(err, middleware.GetRequestIDFromContext(c), "search", "lookup")
	respondError(c, apierrors.ErrDatabaseErrorError)
}
