//go:generate go run github.com/99designs/gqlgen generate

package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/cccac/attendance-geofence/geofence"
	"github.com/cccac/attendance-geofence/graph"
	"github.com/cccac/attendance-geofence/graph/generated"
)

// server exposes a single immutable fence. Handlers share it without locking.
type server struct {
	fence   *geofence.Geofence
	metrics *metrics
}

func newServer(fence *geofence.Geofence) *server {
	return &server{
		fence:   fence,
		metrics: newMetrics(fence),
	}
}

type polygonResponse struct {
	Enabled  bool         `json:"enabled"`
	Vertices int          `json:"vertices"`
	Polygon  [][2]float64 `json:"polygon"`
	Bound    boundJSON    `json:"bound"`
}

type boundJSON struct {
	MinLatitude  float64 `json:"minLatitude"`
	MinLongitude float64 `json:"minLongitude"`
	MaxLatitude  float64 `json:"maxLatitude"`
	MaxLongitude float64 `json:"maxLongitude"`
}

func (s *server) router(socketPath string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))

	g := r.Group("/geofence")
	g.GET("", s.getPolygon)
	g.GET("/geojson", s.getGeoJSON)
	g.GET("/check", s.checkQuery)
	g.POST("/check", s.checkBody)

	observe := func(res geofence.Result) { s.metrics.observeCheck(transportGraphQL, res) }
	gql := handler.NewDefaultServer(generated.NewExecutableSchema(generated.Config{Resolvers: &graph.Resolver{
		Fence:   s.fence,
		Checked: observe,
	}}))
	r.Any("/query", gin.WrapH(gql))
	r.GET("/playground", gin.WrapH(playground.Handler("Geofence playground", "/query")))

	r.GET(socketPath, func(c *gin.Context) {
		s.socketHandler(c.Writer, c.Request)
	})

	return r
}

func requestLogger() gin.HandlerFunc {
	log := logrus.WithField("component", "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
			"remote":   c.ClientIP(),
		}).Debug("request served")
	}
}

func (s *server) health(c *gin.Context) {
	if !s.fence.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "unhealthy",
			"geofencing": "disabled",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"geofencing": "enabled",
	})
}

func (s *server) getPolygon(c *gin.Context) {
	poly := s.fence.Polygon()
	b := poly.Bound()

	c.JSON(http.StatusOK, polygonResponse{
		Enabled:  s.fence.Enabled(),
		Vertices: len(poly),
		Polygon:  poly.Pairs(),
		Bound: boundJSON{
			MinLatitude:  b.Min.Lat(),
			MinLongitude: b.Min.Lon(),
			MaxLatitude:  b.Max.Lat(),
			MaxLongitude: b.Max.Lon(),
		},
	})
}

func (s *server) getGeoJSON(c *gin.Context) {
	c.JSON(http.StatusOK, s.fence.Feature())
}

func (s *server) checkQuery(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lat parameter"})
		return
	}

	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lon parameter"})
		return
	}

	c.JSON(http.StatusOK, s.check(transportHTTP, geofence.Point{Latitude: lat, Longitude: lon}))
}

type checkRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

var errMissingCoordinate = errors.New("latitude and longitude are required")

// point returns the requested coordinate. Absent keys are an error rather than a check of (0, 0).
func (r checkRequest) point() (geofence.Point, error) {
	if r.Latitude == nil || r.Longitude == nil {
		return geofence.Point{}, errMissingCoordinate
	}
	return geofence.Point{Latitude: *r.Latitude, Longitude: *r.Longitude}, nil
}

func (s *server) checkBody(c *gin.Context) {
	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	p, err := req.point()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	c.JSON(http.StatusOK, s.check(transportHTTP, p))
}

func (s *server) check(transport string, p geofence.Point) geofence.Result {
	res := s.fence.Check(p.Latitude, p.Longitude)
	s.metrics.observeCheck(transport, res)
	return res
}
