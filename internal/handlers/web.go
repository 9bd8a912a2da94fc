package handlers

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/akolanti/PDFChat/internal/config"
)

//go:embed web/templates/*.html web/static/*
var webAssets embed.FS

type chatPageData struct {
	Title       string
	MaxUploadMB int64
}

func parseChatPage() (*template.Template, error) {
	return template.ParseFS(webAssets, "web/templates/chat.html")
}

// StaticHandler serves the embedded scripts and styles under /static/.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(webAssets, "web/static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServerFS(sub))
}

func (h *RequestHandler) ChatPageHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := h.page.Execute(w, chatPageData{
		Title:       "PDF Chat",
		MaxUploadMB: config.MaxUploadSize >> 20,
	})
	if err != nil {
		h.logger.FromContext(r.Context()).Error("Rendering chat page failed", "error", err)
	}
}
