package main

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"autopostq/internal/constants"
	"autopostq/internal/errors"
	"autopostq/internal/models"
	"autopostq/internal/service"
	"autopostq/internal/tracing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

var (
	hashtagSeparators = regexp.MustCompile(`[#,\s]+`)
	listSeparators    = regexp.MustCompile(`[\n,]+`)
)

// Accepted timestamp layouts, most specific first. The original clients sent
// full RFC3339 but date-only values were tolerated.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.queue.Ping(r.Context()); err != nil {
			s.logger.WithError(err).Error("Health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (s *Server) handleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		// Unparseable cursor/limit values fall back to the defaults rather
		// than failing the request.
		cursor, _ := strconv.ParseInt(query.Get("cursor"), 10, 64)
		limit, _ := strconv.Atoi(query.Get("limit"))

		result, err := s.queue.List(r.Context(), query.Get("status"), cursor, limit)
		if err != nil {
			s.logError(r, err, "Failed to list autoposts")
			writeError(w, http.StatusInternalServerError, "Unable to load autoposts.")
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) handleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := decodeObject(w, r)
		if !ok {
			writeError(w, http.StatusBadRequest, "Request body must be a JSON object.")
			return
		}

		body := strings.TrimSpace(stringField(payload, "body"))
		if body == "" {
			writeError(w, http.StatusBadRequest, "Body is required.")
			return
		}

		scheduledAt, ok := parseTimestamp(stringField(payload, "scheduledAt"))
		if !ok {
			writeError(w, http.StatusBadRequest, "scheduledAt must be a valid ISO timestamp.")
			return
		}

		input := service.CreateAutopostInput{
			Body:              body,
			Mood:              stringPtrField(payload, "mood"),
			MediaURL:          stringPtrField(payload, "mediaUrl"),
			PosterURL:         stringPtrField(payload, "posterUrl"),
			Metadata:          parseMetadata(payload["metadata"]),
			ScheduledAt:       scheduledAt,
			Audience:          audienceField(payload, "audience"),
			Hashtags:          hashtagField(payload["hashtags"]),
			CallToActionLabel: stringPtrField(payload, "callToActionLabel"),
			CallToActionURL:   stringPtrField(payload, "callToActionUrl"),
		}

		entry, err := s.queue.CreateGeneric(r.Context(), input)
		if err != nil {
			s.logError(r, err, "Failed to create autopost")
			writeError(w, http.StatusInternalServerError, "Unable to schedule autopost.")
			return
		}

		writeJSON(w, http.StatusCreated, map[string]*models.Autopost{"autopost": entry})
	}
}

func (s *Server) handleCreateCampaign() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := decodeObject(w, r)
		if !ok {
			writeError(w, http.StatusBadRequest, "Request body must be a JSON object.")
			return
		}

		creativeType := strings.TrimSpace(stringField(payload, "creativeType"))
		if creativeType == "" {
			writeError(w, http.StatusBadRequest, "creativeType is required.")
			return
		}
		title := strings.TrimSpace(stringField(payload, "title"))
		if title == "" {
			writeError(w, http.StatusBadRequest, "title is required.")
			return
		}
		summary := strings.TrimSpace(stringField(payload, "summary"))
		if summary == "" {
			writeError(w, http.StatusBadRequest, "summary is required.")
			return
		}

		delaySeconds := intField(payload, "delaySeconds")
		delay := constants.DefaultCampaignDelaySec
		if delaySeconds != nil {
			if *delaySeconds < 0 {
				*delaySeconds = 0
			}
			delay = *delaySeconds
		}

		brief := service.CampaignBrief{
			CampaignID:      strings.TrimSpace(stringField(payload, "campaignId")),
			BrandName:       strings.TrimSpace(stringField(payload, "brandName")),
			Objective:       strings.TrimSpace(stringField(payload, "objective")),
			CreativeType:    creativeType,
			Title:           title,
			Summary:         summary,
			Body:            strings.TrimSpace(stringField(payload, "body")),
			Inspirations:    listField(payload["inspirations"]),
			Hashtags:        listField(payload["hashtags"]),
			AssetURL:        stringPtrField(payload, "assetUrl"),
			PosterURL:       stringPtrField(payload, "posterUrl"),
			MediaURL:        stringPtrField(payload, "mediaUrl"),
			DurationSeconds: intField(payload, "durationSeconds"),
			Audience:        audienceField(payload, "audience"),
			CallToAction:    callToActionField(payload),
			EmotionSignals:  service.BuildEmotionSignals(payload["sentiment"]),
			ScheduledAt:     time.Now().UTC().Add(time.Duration(delay) * time.Second),
			DelaySeconds:    delaySeconds,
		}

		entry, err := s.queue.CreateCampaign(r.Context(), brief)
		if err != nil {
			s.logError(r, err, "Failed to create campaign autopost")
			writeError(w, http.StatusInternalServerError, "Unable to schedule creative autopost.")
			return
		}

		writeJSON(w, http.StatusCreated, map[string]*models.Autopost{"autopost": entry})
	}
}

func (s *Server) handlePublish() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid autopost id.")
			return
		}

		payload, ok := decodeObject(w, r)
		if !ok {
			writeError(w, http.StatusBadRequest, "Request body must be a JSON object.")
			return
		}

		publishedAt, ok := parseTimestamp(stringField(payload, "publishedAt"))
		if !ok {
			writeError(w, http.StatusBadRequest, "publishedAt must be a valid ISO timestamp.")
			return
		}

		entry, err := s.queue.Publish(r.Context(), id, publishedAt)
		if err != nil {
			if errors.IsNotFound(err) {
				writeError(w, http.StatusNotFound, errors.GetUserMessage(err))
				return
			}
			s.logError(r, err, "Failed to publish autopost")
			writeError(w, http.StatusInternalServerError, "Unable to publish autopost.")
			return
		}

		writeJSON(w, http.StatusOK, map[string]*models.Autopost{"autopost": entry})
	}
}

func (s *Server) handleReleaseDue() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := decodeObject(w, r)
		if !ok {
			writeError(w, http.StatusBadRequest, "Request body must be a JSON object.")
			return
		}

		releaseUntil, ok := parseTimestamp(stringField(payload, "releaseUntil"))
		if !ok {
			writeError(w, http.StatusBadRequest, "releaseUntil must be a valid ISO timestamp.")
			return
		}

		released, err := s.queue.ReleaseDue(r.Context(), releaseUntil)
		if err != nil {
			s.logError(r, err, "Failed to release due autoposts")
			writeError(w, http.StatusInternalServerError, "Unable to release due autoposts.")
			return
		}

		writeJSON(w, http.StatusOK, map[string][]models.Autopost{"autoposts": released})
	}
}

func (s *Server) logError(r *http.Request, err error, message string) {
	s.logger.WithFields(logrus.Fields{
		"request_id": tracing.GetRequestID(r.Context()),
		"path":       r.URL.Path,
		"error":      err,
	}).Error(message)
}

// decodeObject reads the request body as a JSON object. Anything else,
// including malformed JSON, reports false.
func decodeObject(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxRequestBodyBytes)

	var decoded any
	if err := json.NewDecoder(r.Body).Decode(&decoded); err != nil {
		return nil, false
	}

	payload, ok := decoded.(map[string]any)
	if !ok || payload == nil {
		return nil, false
	}
	return payload, true
}

func parseTimestamp(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// parseMetadata accepts a metadata object or a JSON string encoding one.
// Anything else degrades to nil rather than failing the request.
func parseMetadata(value any) map[string]any {
	switch v := value.(type) {
	case map[string]any:
		return v
	case string:
		var parsed map[string]any
		if err := json.Unmarshal([]byte(v), &parsed); err != nil {
			return nil
		}
		return parsed
	default:
		return nil
	}
}

func stringField(payload map[string]any, key string) string {
	value, _ := payload[key].(string)
	return value
}

// stringPtrField keeps absent and non-string values as nil so optional
// columns stay NULL.
func stringPtrField(payload map[string]any, key string) *string {
	if value, ok := payload[key].(string); ok {
		return &value
	}
	return nil
}

func intField(payload map[string]any, key string) *int {
	if value, ok := payload[key].(float64); ok {
		n := int(value)
		return &n
	}
	return nil
}

func audienceField(payload map[string]any, key string) *models.Audience {
	if value, ok := payload[key].(string); ok {
		audience := models.Audience(value)
		return &audience
	}
	return nil
}

// hashtagField accepts a string list or a single delimited string; "#spring,
// launch" and ["#spring", "launch"] are equivalent.
func hashtagField(value any) []string {
	switch v := value.(type) {
	case []any:
		var out []string
		for _, entry := range v {
			if s, ok := entry.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return splitAndTrim(v, hashtagSeparators)
	default:
		return nil
	}
}

// listField accepts a string list or a newline/comma delimited string.
func listField(value any) []string {
	switch v := value.(type) {
	case []any:
		var out []string
		for _, entry := range v {
			if s, ok := entry.(string); ok {
				if trimmed := strings.TrimSpace(s); trimmed != "" {
					out = append(out, trimmed)
				}
			}
		}
		return out
	case string:
		return splitAndTrim(v, listSeparators)
	default:
		return nil
	}
}

func splitAndTrim(value string, separators *regexp.Regexp) []string {
	var out []string
	for _, part := range separators.Split(value, -1) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func callToActionField(payload map[string]any) *models.CallToAction {
	label := strings.TrimSpace(stringField(payload, "callToActionLabel"))
	url := strings.TrimSpace(stringField(payload, "callToActionUrl"))
	if label == "" && url == "" {
		return nil
	}
	cta := &models.CallToAction{}
	if label != "" {
		cta.Label = &label
	}
	if url != "" {
		cta.URL = &url
	}
	return cta
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
