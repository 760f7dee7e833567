package server

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"pco2proc/internal/monitor"
	"pco2proc/internal/pipeline"
	"pco2proc/internal/reader"
)

type processResponse struct {
	Records []pipeline.Measurement `json:"records"`
	Errors  []string               `json:"errors,omitempty"`
	Stats   pipeline.Stats         `json:"stats"`
}

func (a *mainApp) router() *gin.Engine {
	if !a.opt.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.POST("/process", a.handleProcess)

	return r
}

// handleProcess runs one request body of raw frame text through a fresh
// processor. State never leaks between requests: each body carries its own
// blank frames.
func (a *mainApp) handleProcess(c *gin.Context) {
	start := time.Now()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp := processResponse{Records: []pipeline.Measurement{}}
	emit := func(rec pipeline.Record) error {
		if rec.Err != nil {
			resp.Errors = append(resp.Errors, rec.Err.Error())
			return nil
		}
		resp.Records = append(resp.Records, *rec.Measurement)
		return nil
	}

	p := a.newProcessor()
	stats, err := p.Run(reader.New(strings.NewReader(string(body))), emit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	resp.Stats = stats

	monitor.Observe(stats)
	monitor.RequestDuration.Observe(time.Since(start).Seconds())
	log.Debugf("processed request: %d frames, %d records", stats.Frames, len(resp.Records))

	c.JSON(http.StatusOK, resp)
}
