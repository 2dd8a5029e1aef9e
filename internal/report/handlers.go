package report

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mentalx/mentalxbot/internal/classifier"
	"github.com/mentalx/mentalxbot/internal/database"
)

// NoAnalysisText is shown when a user has no stored analysis yet.
const NoAnalysisText = "No analysis available."

type riskView struct {
	Percent   float64   `json:"percent"`
	Category  string    `json:"category"`
	UpdatedAt time.Time `json:"updated_at"`
}

type userView struct {
	UserID       int64     `json:"user_id"`
	AgeRange     string    `json:"age_range"`
	Gender       string    `json:"gender"`
	Country      string    `json:"country"`
	AuthorizedAt time.Time `json:"authorized_at"`
	Risk         *riskView `json:"risk"`
}

type messageView struct {
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type analysisView struct {
	Text      string     `json:"text"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type dayView struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type userDetailView struct {
	UserID        int64         `json:"user_id"`
	Authorization *userView     `json:"authorization"`
	Messages      []messageView `json:"messages"`
	Analysis      analysisView  `json:"analysis"`
	Risk          *riskView     `json:"risk"`
	DailyCounts   []dayView     `json:"daily_counts"`
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := s.reader.Ping(ctx); err != nil {
		s.log.WarnContext(ctx, "Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// listUsers returns authorized users with their latest risk, optionally
// filtered by ?risk=<category> ("All" or empty disables the filter).
func (s *Server) listUsers(c *gin.Context) {
	filter := strings.TrimSpace(c.Query("risk"))
	var want classifier.Category
	if filter != "" && !strings.EqualFold(filter, "all") {
		category, ok := classifier.LookupCategory(filter)
		if !ok {
			writeError(c, http.StatusBadRequest, "unknown risk category")
			return
		}
		want = category
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	summaries, err := s.reader.GetUserSummaries(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to list users", "error", err)
		writeError(c, http.StatusInternalServerError, "failed to list users")
		return
	}

	users := make([]userView, 0, len(summaries))
	for _, sum := range summaries {
		if want != "" && (!sum.RiskCategory.Valid || sum.RiskCategory.String != string(want)) {
			continue
		}
		view := authView(&sum.Authorization)
		if sum.RiskPercent.Valid {
			view.Risk = &riskView{
				Percent:   sum.RiskPercent.Float64,
				Category:  sum.RiskCategory.String,
				UpdatedAt: sum.RiskUpdatedAt.Time,
			}
		}
		users = append(users, view)
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (s *Server) getUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		writeError(c, http.StatusBadRequest, "invalid user id")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	detail, found, err := s.loadUser(ctx, userID)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to load user", "user_id", userID, "error", err)
		writeError(c, http.StatusInternalServerError, "failed to load user")
		return
	}
	if !found {
		writeError(c, http.StatusNotFound, "user not found")
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (s *Server) loadUser(ctx context.Context, userID int64) (userDetailView, bool, error) {
	detail := userDetailView{UserID: userID, Analysis: analysisView{Text: NoAnalysisText}}

	auth, err := s.reader.GetAuthorization(ctx, userID)
	if err != nil {
		return detail, false, err
	}
	messages, err := s.reader.GetUserMessages(ctx, userID)
	if err != nil {
		return detail, false, err
	}
	if auth == nil && len(messages) == 0 {
		return detail, false, nil
	}

	if auth != nil {
		view := authView(auth)
		detail.Authorization = &view
	}

	detail.Messages = make([]messageView, 0, len(messages))
	for _, m := range messages {
		detail.Messages = append(detail.Messages, messageView{Content: m.Content, Timestamp: m.Timestamp})
	}

	ta, err := s.reader.GetTextAnalysis(ctx, userID)
	if err != nil {
		return detail, false, err
	}
	if ta != nil {
		updated := ta.UpdatedAt
		detail.Analysis = analysisView{Text: ta.ResultText, UpdatedAt: &updated}
	}

	risk, err := s.reader.GetRiskScore(ctx, userID)
	if err != nil {
		return detail, false, err
	}
	if risk != nil {
		detail.Risk = &riskView{Percent: risk.Percent, Category: risk.Category, UpdatedAt: risk.UpdatedAt}
	}

	counts, err := s.reader.GetDailyCounts(ctx, userID)
	if err != nil {
		return detail, false, err
	}
	detail.DailyCounts = fillDays(counts)

	return detail, true, nil
}

func (s *Server) distribution(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	out := make(map[string][]database.DistributionEntry, len(database.DemographicColumns))
	for _, column := range database.DemographicColumns {
		entries, err := s.reader.GetDistribution(ctx, column)
		if err != nil {
			s.log.ErrorContext(ctx, "Failed to load distribution", "column", column, "error", err)
			writeError(c, http.StatusInternalServerError, "failed to load distribution")
			return
		}
		if entries == nil {
			entries = []database.DistributionEntry{}
		}
		out[string(column)] = entries
	}
	c.JSON(http.StatusOK, out)
}

func authView(a *database.Authorization) userView {
	return userView{
		UserID:       a.UserID,
		AgeRange:     a.AgeRange,
		Gender:       a.Gender,
		Country:      a.Country,
		AuthorizedAt: a.CreatedAt,
	}
}

// fillDays returns one entry per calendar day from the first to the last
// recorded date, with zero for days without messages. counts must be sorted
// by date.
func fillDays(counts []*database.DailyCount) []dayView {
	days := []dayView{}
	if len(counts) == 0 {
		return days
	}

	byDate := make(map[string]int64, len(counts))
	for _, c := range counts {
		byDate[c.Date] = c.Count
	}

	first, errFirst := time.Parse(time.DateOnly, counts[0].Date)
	last, errLast := time.Parse(time.DateOnly, counts[len(counts)-1].Date)
	if errFirst != nil || errLast != nil || last.Before(first) {
		for _, c := range counts {
			days = append(days, dayView{Date: c.Date, Count: c.Count})
		}
		return days
	}

	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		date := d.Format(time.DateOnly)
		days = append(days, dayView{Date: date, Count: byDate[date]})
	}
	return days
}
