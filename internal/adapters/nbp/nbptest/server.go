// Package nbptest provides an in-process fake of the NBP exchange rate API.
package nbptest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type rateKey struct {
	table, code, date string
}

type rateRecord struct {
	No            string          `json:"no"`
	EffectiveDate string          `json:"effectiveDate"`
	Mid           json.RawMessage `json:"mid"`
}

// Server serves /api/exchangerates/rates/{table}/{code}/{date}/ from an in-memory table.
// Days without a rate answer 404 like the real service does on weekends and holidays.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	rates    map[rateKey]string
	statuses map[rateKey]int
	payloads map[rateKey]string
	delay    time.Duration
	requests []string
}

// NewServer starts a fake seeded with the September 2016 fixture.
func NewServer() *Server {
	s := &Server{
		rates:    make(map[rateKey]string),
		statuses: make(map[rateKey]int),
		payloads: make(map[rateKey]string),
	}
	s.seed()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/exchangerates/rates/:table/:code/:date/", s.handleRate)
	s.Server = httptest.NewServer(r)
	return s
}

// seed loads the rates used across the test suites.
// 2016-09-10 and 2016-09-11 are a weekend and have no rates.
func (s *Server) seed() {
	s.AddRate("USD", "2016-09-08", "3.8400")
	s.AddRate("USD", "2016-09-09", "3.8385")
	s.AddRate("USD", "2016-09-12", "3.8687")
	s.AddRate("USD", "2016-09-13", "3.8734")
	s.AddRate("CHF", "2016-09-09", "3.9444")
	s.AddRate("EUR", "2016-09-09", "4.3129")
	s.AddRate("EUR", "2016-09-12", "4.3442")
}

// BaseURL is the API root to configure clients with.
func (s *Server) BaseURL() string {
	return s.URL + "/api"
}

// AddRate publishes a table A mid rate for code on date (YYYY-MM-DD).
func (s *Server) AddRate(code, date, mid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[rateKey{"A", code, date}] = mid
}

// FailWith makes requests for code on date answer with the given status.
func (s *Server) FailWith(code, date string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[rateKey{"A", code, date}] = status
}

// ClearFailure removes a status set with FailWith.
func (s *Server) ClearFailure(code, date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.statuses, rateKey{"A", code, date})
}

// SetPayload makes requests for code on date answer 200 with a raw body.
func (s *Server) SetPayload(code, date, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads[rateKey{"A", code, date}] = body
}

// SetDelay delays every response.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// Requests returns "CODE DATE" for every request received, in order.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *Server) handleRate(c *gin.Context) {
	key := rateKey{
		table: strings.ToUpper(c.Param("table")),
		code:  strings.ToUpper(c.Param("code")),
		date:  c.Param("date"),
	}

	s.mu.Lock()
	s.requests = append(s.requests, key.code+" "+key.date)
	delay := s.delay
	status, failing := s.statuses[key]
	payload, raw := s.payloads[key]
	mid, found := s.rates[key]
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-c.Request.Context().Done():
			return
		}
	}

	switch {
	case failing:
		c.String(status, fmt.Sprintf("%d %s", status, http.StatusText(status)))
	case raw:
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(payload))
	case found:
		c.JSON(http.StatusOK, gin.H{
			"table":    key.table,
			"currency": strings.ToLower(key.code),
			"code":     key.code,
			"rates": []rateRecord{{
				No:            "176/A/NBP/2016",
				EffectiveDate: key.date,
				Mid:           json.RawMessage(mid),
			}},
		})
	default:
		c.String(http.StatusNotFound, "404 NotFound - Not Found - Brak danych")
	}
}
