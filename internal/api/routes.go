package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/nvandessel/poleposition/internal/ratelimit"
	"github.com/nvandessel/poleposition/internal/tools"
)

// argsFunc extracts tool arguments from a request.
type argsFunc func(c *gin.Context) tools.Args

func noArgs(*gin.Context) tools.Args { return nil }

func (s *Server) newRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(ServiceName))
	r.Use(s.observe())
	r.Use(s.cors())

	r.GET("/health", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry})))

	api := r.Group("/api")
	api.GET("/championship", s.toolRoute(tools.ChampionshipStandings, noArgs))
	api.GET("/constructors", s.toolRoute(tools.ConstructorStandings, noArgs))
	api.GET("/contenders", s.toolRoute(tools.TitleContenders, noArgs))
	api.GET("/drivers", s.toolRoute(tools.ListDrivers, noArgs))
	api.GET("/races", s.toolRoute(tools.ListRaces, noArgs))
	api.GET("/driver/:code", s.toolRoute(tools.DriverProfile, func(c *gin.Context) tools.Args {
		return tools.Args{"driver": c.Param("code")}
	}))
	api.GET("/driver/:code/calendar", s.toolRoute(tools.DriverCalendar, func(c *gin.Context) tools.Args {
		return tools.Args{"driver": c.Param("code")}
	}))
	api.GET("/compare", s.toolRoute(tools.CompareDrivers, func(c *gin.Context) tools.Args {
		return tools.Args{"driver1": c.Query("driver1"), "driver2": c.Query("driver2")}
	}))
	api.GET("/race/:name", s.toolRoute(tools.RaceProbabilities, func(c *gin.Context) tools.Args {
		return tools.Args{"race": c.Param("name")}
	}))
	api.GET("/prediction", s.toolRoute(tools.RacePrediction, func(c *gin.Context) tools.Args {
		return tools.Args{"driver": c.Query("driver"), "race": c.Query("race")}
	}))

	r.GET("/ws/tools", s.handleToolsWebSocket)

	return r
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	Drivers     int    `json:"drivers"`
	Races       int    `json:"races"`
	Positions   int    `json:"positions"`
	Simulations int    `json:"simulations"`
}

func (s *Server) handleHealth(c *gin.Context) {
	b := s.engine.Bundle()
	c.JSON(http.StatusOK, HealthResponse{
		Status:      "ok",
		Drivers:     b.NumDrivers(),
		Races:       b.NumRounds(),
		Positions:   b.NumPositions(),
		Simulations: b.NumSimulations(),
	})
}

// toolRoute serves one catalogue tool as a GET route.
func (s *Server) toolRoute(name string, args argsFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := s.callTool(name, args(c))
		if err != nil {
			c.JSON(httpStatus(err), tools.NewErrorResult(err))
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// callTool rate limits and runs a tool, counting the outcome.
func (s *Server) callTool(name string, args tools.Args) (any, error) {
	if err := ratelimit.CheckLimit(s.limiters, name); err != nil {
		s.metrics.ToolCallsTotal.WithLabelValues(name, outcome(err)).Inc()
		return nil, err
	}
	result, err := tools.Call(s.engine, name, args)
	s.metrics.ToolCallsTotal.WithLabelValues(name, outcome(err)).Inc()
	return result, err
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	switch tools.Classify(err) {
	case tools.StatusNotFound:
		return "not_found"
	case tools.StatusBadRequest:
		return "bad_request"
	case tools.StatusRateLimited:
		return "rate_limited"
	default:
		return "error"
	}
}

func httpStatus(err error) int {
	switch tools.Classify(err) {
	case tools.StatusNotFound:
		return http.StatusNotFound
	case tools.StatusBadRequest:
		return http.StatusBadRequest
	case tools.StatusRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// observe logs every request and records its metrics. Routes are labelled by
// their pattern so path parameters do not explode label cardinality.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		s.metrics.RequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(status)).Inc()
		s.metrics.RequestDurationSeconds.WithLabelValues(route).Observe(elapsed.Seconds())
		s.logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", elapsed,
		)
	}
}

// cors adds CORS headers for allowed origins and answers preflight requests.
func (s *Server) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if s.origins[origin] {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			h.Add("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// originAllowed reports whether a WebSocket upgrade from r may proceed.
func (s *Server) originAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || s.origins[origin]
}
