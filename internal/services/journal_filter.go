package services

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/AnshRaj112/journal-backend/internal/logging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// JournalFilter carries the optional list-query criteria from the client.
// UserID always comes from the authenticated session, never from client input.
type JournalFilter struct {
	UserID    string
	Search    string
	Mood      string
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD
	Tags      []string
	SortField string
	SortOrder string
}

// sortFields maps the accepted client sort keys to their stored field names.
// Anything outside this map falls back to createdAt so raw client input is
// never used as a sort key.
var sortFields = map[string]string{
	"createdAt": "created_at",
	"title":     "title",
	"mood":      "mood",
}

// ParseJournalFilter reads the list-query parameters for the given user.
// The tags parameter is a comma-separated list; empty segments are dropped.
func ParseJournalFilter(userID string, q url.Values) JournalFilter {
	f := JournalFilter{
		UserID:    userID,
		Search:    q.Get("search"),
		Mood:      q.Get("mood"),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		SortField: q.Get("sortField"),
		SortOrder: q.Get("sortOrder"),
	}
	if tags := q.Get("tags"); tags != "" {
		for _, t := range strings.Split(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				f.Tags = append(f.Tags, t)
			}
		}
	}
	return f
}

// CompileJournalFilter translates a filter into a MongoDB query plus a
// single-field sort directive. Supplied dimensions are ANDed together; only
// within the tag set is OR used (an entry matches when any of its tags is in
// the set). Absent or empty fields impose no constraint.
func CompileJournalFilter(f JournalFilter) (bson.M, bson.D) {
	query := bson.M{"user_id": f.UserID}

	if f.Search != "" {
		// Case-insensitive substring match across title, content and tag
		// elements. The user text is escaped so it's a substring, not a regex.
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"content": re},
			bson.M{"tags": re},
		}
	}

	if f.Mood != "" && f.Mood != "all" {
		query["mood"] = f.Mood
	}

	if f.StartDate != "" || f.EndDate != "" {
		createdAt := bson.M{}
		if f.StartDate != "" {
			if t, err := time.ParseInLocation(dateLayout, f.StartDate, time.Local); err == nil {
				createdAt["$gte"] = t
			} else {
				logging.Log.Warn("Ignoring unparseable startDate", zap.String("startDate", f.StartDate))
			}
		}
		if f.EndDate != "" {
			if t, err := time.ParseInLocation(dateLayout, f.EndDate, time.Local); err == nil {
				// End of day: 23:59:59.999 inclusive
				createdAt["$lte"] = t.Add(24*time.Hour - time.Millisecond)
			} else {
				logging.Log.Warn("Ignoring unparseable endDate", zap.String("endDate", f.EndDate))
			}
		}
		if len(createdAt) > 0 {
			query["created_at"] = createdAt
		}
	}

	if len(f.Tags) > 0 {
		query["tags"] = bson.M{"$in": f.Tags}
	}

	field, ok := sortFields[f.SortField]
	if !ok {
		field = "created_at"
	}
	order := -1
	if f.SortOrder == "asc" {
		order = 1
	}
	sort := bson.D{{Key: field, Value: order}}

	logging.Log.Debug("Compiled journal query",
		zap.Any("query", query),
		zap.String("sortField", field),
		zap.Int("sortOrder", order),
	)

	return query, sort
}
