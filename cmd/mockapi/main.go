// Command mockapi simulates the external company APIs the dashboard talks to:
// the token endpoint and the user-activity API. It exists so the backend can
// run end to end on a laptop with no corporate network access.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/miniapp-template/dashboard/internal/activity"
	"github.com/miniapp-template/dashboard/internal/app"
	"github.com/miniapp-template/dashboard/pkg/logger"
)

const (
	activityCount   = 500
	tokenLifetime   = time.Hour
	shutdownTimeout = 10 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("miniapp-mockapi", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	var (
		port     int
		basePath string
	)
	fs.IntVar(&port, "port", 8086, "Port to listen on")
	fs.StringVar(&basePath, "base-path", "/miniappsdev", "Path prefix for the auth endpoints")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := app.ConfigureLogging("info"); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer logger.Sync() // best effort

	log := logger.WithModule("mockapi")

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	store := newActivityStore()

	base := strings.TrimRight(basePath, "/")
	r.GET(base+"/auth/token", issueToken)
	r.GET("/api/UserActivity/Get", requireBearer, store.list)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: r,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("mock api listening", zap.String("addr", server.Addr), zap.String("base_path", base))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// issueToken hands out an opaque bearer token. Any caller gets one; this
// endpoint mimics the shape of the real token service, not its checks.
func issueToken(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"access_token": "mock-" + uuid.NewString(),
		"expires_in":   int(tokenLifetime.Seconds()),
		"token_type":   "Bearer",
	})
}

// requireBearer rejects requests without a plausible bearer token. The token
// value is not verified beyond a length check; the real API owns validation.
func requireBearer(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if !strings.HasPrefix(header, "Bearer ") || len(token) < 10 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.Next()
}

type activityStore struct {
	records []activity.Activity
}

var (
	mockUserNames   = []string{"developer@company.com", "admin@company.com", "analyst@company.com", "guest@partner.com"}
	mockControllers = []string{"Dashboard", "Entities", "Reports", "Settings"}
	mockActions     = []string{"View", "Create", "Update", "Delete", "Export"}
	mockCountries   = []string{"US", "DE", "SG", "GB", "JP"}
	mockAgents      = []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64)",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)",
		"Mozilla/5.0 (X11; Linux x86_64)",
	}
)

// newActivityStore generates a fixed-seed data set so responses are stable
// across restarts.
func newActivityStore() *activityStore {
	rng := rand.New(rand.NewSource(42))
	base := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	records := make([]activity.Activity, 0, activityCount)
	for i := 1; i <= activityCount; i++ {
		at := base.Add(time.Duration(rng.Intn(365*24)) * time.Hour)
		controller := mockControllers[rng.Intn(len(mockControllers))]
		action := mockActions[rng.Intn(len(mockActions))]
		records = append(records, activity.Activity{
			ID:           i,
			UserName:     mockUserNames[rng.Intn(len(mockUserNames))],
			ActivityOn:   controller + "/" + action,
			ActivityAt:   at.Format(time.RFC3339),
			Controller:   controller,
			Action:       action,
			RequestParam: fmt.Sprintf("{\"id\":%d}", rng.Intn(1000)),
			ActivityIP:   fmt.Sprintf("10.%d.%d.%d", rng.Intn(256), rng.Intn(256), rng.Intn(256)),
			IPCountry:    mockCountries[rng.Intn(len(mockCountries))],
			TokenID:      uuid.NewString(),
			UserAgent:    mockAgents[rng.Intn(len(mockAgents))],
		})
	}
	return &activityStore{records: records}
}

func (s *activityStore) list(c *gin.Context) {
	filtered := s.filter(
		c.Query("userName"),
		c.Query("dateFrom"),
		c.Query("dateTo"),
	)

	sortRecords(filtered, c.DefaultQuery("sortBy", "id"), c.DefaultQuery("sortDirection", "desc"))

	page := intQuery(c, "page", 1)
	pageSize := intQuery(c, "pageSize", 25)

	total := len(filtered)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	c.JSON(http.StatusOK, activity.Response{
		Data:       filtered[start:end],
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

func (s *activityStore) filter(userName, dateFrom, dateTo string) []activity.Activity {
	out := make([]activity.Activity, 0, len(s.records))
	for _, rec := range s.records {
		if userName != "" && !strings.Contains(strings.ToLower(rec.UserName), strings.ToLower(userName)) {
			continue
		}
		if dateFrom != "" && rec.ActivityAt < dateFrom {
			continue
		}
		if dateTo != "" && rec.ActivityAt > dateTo {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func sortRecords(records []activity.Activity, sortBy, direction string) {
	desc := strings.EqualFold(direction, "desc")

	less := func(a, b activity.Activity) bool { return a.ID < b.ID }
	switch sortBy {
	case "userName":
		less = func(a, b activity.Activity) bool { return a.UserName < b.UserName }
	case "activityAt":
		less = func(a, b activity.Activity) bool { return a.ActivityAt < b.ActivityAt }
	case "controller":
		less = func(a, b activity.Activity) bool { return a.Controller < b.Controller }
	case "action":
		less = func(a, b activity.Activity) bool { return a.Action < b.Action }
	}

	sort.SliceStable(records, func(i, j int) bool {
		if desc {
			return less(records[j], records[i])
		}
		return less(records[i], records[j])
	})
}

func intQuery(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return def
	}
	return value
}
