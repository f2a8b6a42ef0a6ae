package httpx

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
)

// Template paths used for loading templates in tests and dev mode.
const (
	TemplatePathFromRoot = "web/templates"       // From project root
	TemplatePathFromTest = "../../web/templates" // From internal/http test files
)

// TemplateRenderer renders HTML pages. Every page template defines a block named
// "<page>-content" that the shared layout pulls in through the content func.
type TemplateRenderer struct {
	fsys    fs.FS
	devMode bool // re-parse on each render so template edits show up without restart
	logger  *slog.Logger
	t       *template.Template
}

// TemplateRendererConfig holds configuration for creating a TemplateRenderer.
type TemplateRendererConfig struct {
	TemplateFS fs.FS        // Filesystem containing *.tmpl (required)
	DevMode    bool         // Enable hot reloading of templates
	Logger     *slog.Logger // Logger for template errors (optional)
}

// NewTemplateRenderer constructs a renderer by parsing templates from the provided config.
func NewTemplateRenderer(cfg TemplateRendererConfig) (*TemplateRenderer, error) {
	if cfg.TemplateFS == nil {
		return nil, errors.New("TemplateFS is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := &TemplateRenderer{fsys: cfg.TemplateFS, devMode: cfg.DevMode, logger: logger}
	t, err := r.parse()
	if err != nil {
		logger.Error("template parsing failed",
			slog.Any("error", err),
			slog.String("phase", "initialization"),
		)
		return nil, err
	}
	r.t = t
	return r, nil
}

func (r *TemplateRenderer) parse() (*template.Template, error) {
	var t *template.Template
	t, err := template.New("root").Funcs(template.FuncMap{
		"content": func(page string, data any) (template.HTML, error) {
			var buf bytes.Buffer
			if execErr := t.ExecuteTemplate(&buf, page+"-content", data); execErr != nil {
				return "", execErr
			}
			//nolint:gosec // output of html/template execution is already escaped
			return template.HTML(buf.String()), nil
		},
		"lower": strings.ToLower,
	}).ParseFS(r.fsys, "*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return t, nil
}

func (r *TemplateRenderer) current() (*template.Template, error) {
	if r.devMode {
		return r.parse()
	}
	return r.t, nil
}

// RenderPage renders the layout around page with the given status code.
func (r *TemplateRenderer) RenderPage(w http.ResponseWriter, status int, data PageData) error {
	t, err := r.current()
	if err != nil {
		r.logTemplateError("layout", err)
		return err
	}

	var buf bytes.Buffer
	if execErr := t.ExecuteTemplate(&buf, "layout", data); execErr != nil {
		r.logTemplateError(data.Page, execErr)
		return execErr
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, writeErr := buf.WriteTo(w); writeErr != nil {
		r.logger.Error("failed to write rendered template",
			slog.String("template", data.Page),
			slog.Any("error", writeErr),
		)
		return writeErr
	}
	return nil
}

// logTemplateError logs a template execution error with context.
func (r *TemplateRenderer) logTemplateError(templateName string, err error) {
	r.logger.Error("template execution failed",
		slog.String("template", templateName),
		slog.Any("error", err),
	)
}
