package handlers

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/akolanti/PDFChat/internal/adapter"
	"github.com/akolanti/PDFChat/internal/adapter/utils"
	"github.com/akolanti/PDFChat/internal/appErrors"
	"github.com/akolanti/PDFChat/internal/config"
	"github.com/akolanti/PDFChat/pkg/logger_i"
)

var (
	logRH          = logger_i.NewLogger("RequestHandler")
	whitespace     = regexp.MustCompile(`\s+`)
	unsafeFileChar = regexp.MustCompile(`[^A-Za-z0-9._-]`)
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// headers are already out, nothing left but to log
		logRH.Error("Error encoding response", "error", err)
	}
}

// writeError maps a typed error to its status and the common error body.
func writeError(w http.ResponseWriter, err error) {
	WriteErrorResponse(w, appErrors.HTTPStatus(err), appErrors.PublicMessage(err))
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, message string) {
	writeJsonResponse(w, httpCode, adapter.ErrorBody(message))
}

func validateContext(r *http.Request) bool {
	if err := r.Context().Err(); err != nil {
		logRH.FromContext(r.Context()).Warn("context error", "error", err)
		return false
	}
	return true
}

// resolveSession picks the session from the body, header or cookie, in that
// order, and mints a new one when none is present.
func resolveSession(r *http.Request, fromBody string) (string, bool) {
	if id := strings.TrimSpace(fromBody); id != "" {
		return id, false
	}
	if id := strings.TrimSpace(r.Header.Get(config.SessionHeaderName)); id != "" {
		return id, false
	}
	if c, err := r.Cookie(config.SessionCookieName); err == nil && c.Value != "" {
		return c.Value, false
	}
	return utils.GetNewUUID(), true
}

func setSessionCookie(w http.ResponseWriter, sessionId string) {
	http.SetCookie(w, &http.Cookie{
		Name:     config.SessionCookieName,
		Value:    sessionId,
		Path:     "/",
		MaxAge:   int(config.RedisConversationTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// sanitizeFileName keeps only the base name with whitespace folded to
// underscores and anything outside [A-Za-z0-9._-] dropped. The stem and the
// extension are cleaned separately; a stem with nothing safe left is
// replaced by a generated one.
func sanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	ext := cleanPart(filepath.Ext(name))
	stem := cleanPart(strings.TrimSuffix(name, filepath.Ext(name)))
	stem = strings.TrimLeft(stem, ".")
	if strings.Trim(stem, "_-") == "" {
		stem = utils.GetNewUUID()
	}
	return stem + ext
}

func cleanPart(part string) string {
	part = whitespace.ReplaceAllString(strings.TrimSpace(part), "_")
	return unsafeFileChar.ReplaceAllString(part, "")
}

func isPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}
