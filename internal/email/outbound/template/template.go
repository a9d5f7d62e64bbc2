// Package template renders named email templates into HTML bodies.
//
// A name without an extension resolves to "<name>.html" first and then
// "<name>.md". HTML templates run through html/template. Markdown templates
// may open with a YAML frontmatter block whose keys act as defaults, run
// through text/template and are then converted to HTML with goldmark. Both
// kinds get the sprig function set and treat missing keys as zero values.
package template

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"path"
	"sync"
	texttemplate "text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/shandysiswandi/mailbite/internal/email/entity"
	"github.com/shandysiswandi/mailbite/internal/pkg/instrument"
)

const (
	extHTML     = ".html"
	extMarkdown = ".md"
)

type compiled interface {
	execute(data map[string]any) (string, error)
}

// Options configures a Renderer.
type Options struct {
	Store Store
	// Cache keeps parsed templates for the life of the Renderer.
	Cache      bool
	Instrument instrument.Instrumentation
}

// Renderer turns a template name and context into an HTML message.
type Renderer struct {
	store Store
	cache bool
	ins   instrument.Instrumentation
	md    goldmark.Markdown

	mu     sync.RWMutex
	parsed map[string]compiled
}

// New builds a Renderer. A nil store serves the embedded templates.
func New(opts Options) *Renderer {
	store := opts.Store
	if store == nil {
		store = NewEmbedStore()
	}
	ins := opts.Instrument
	if ins == nil {
		ins = instrument.NewNoop()
	}

	return &Renderer{
		store: store,
		cache: opts.Cache,
		ins:   ins,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		parsed: make(map[string]compiled),
	}
}

// Render binds every key of tc into the template called name.
func (r *Renderer) Render(ctx context.Context, name string, tc *entity.TemplateContext) (entity.RenderedMessage, error) {
	ctx, span := r.ins.Tracer("email.outbound.template").Start(ctx, "Render")
	defer span.End()
	span.SetAttributes(attribute.String("template.name", name))

	if tc == nil {
		tc = entity.NewTemplateContext()
	}

	body, err := r.render(ctx, name, tc.Map())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return entity.RenderedMessage{}, entity.NewError(entity.KindTemplateRender, "", err)
	}

	return entity.RenderedMessage{IsHTML: true, Body: body}, nil
}

func (r *Renderer) render(ctx context.Context, name string, data map[string]any) (string, error) {
	t, err := r.lookup(ctx, name)
	if err != nil {
		return "", err
	}

	out, err := t.execute(data)
	if err != nil {
		return "", fmt.Errorf("template: execute %q: %w", name, err)
	}
	return out, nil
}

func (r *Renderer) lookup(ctx context.Context, name string) (compiled, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrTemplateNotFound)
	}

	if r.cache {
		r.mu.RLock()
		t, ok := r.parsed[name]
		r.mu.RUnlock()
		if ok {
			return t, nil
		}
	}

	t, err := r.load(ctx, name)
	if err != nil {
		return nil, err
	}

	if r.cache {
		r.mu.Lock()
		r.parsed[name] = t
		r.mu.Unlock()
	}
	return t, nil
}

func (r *Renderer) load(ctx context.Context, name string) (compiled, error) {
	candidates := []string{name}
	if ext := path.Ext(name); ext != extHTML && ext != extMarkdown {
		candidates = []string{name + extHTML, name + extMarkdown}
	}

	for _, file := range candidates {
		src, err := r.store.Open(ctx, file)
		if errors.Is(err, ErrTemplateNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		if path.Ext(file) == extMarkdown {
			return r.parseMarkdown(file, src)
		}
		return parseHTML(file, src)
	}

	return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
}

type htmlTemplate struct {
	t *htmltemplate.Template
}

func parseHTML(name string, src []byte) (compiled, error) {
	t, err := htmltemplate.New(name).
		Option("missingkey=zero").
		Funcs(sprig.HtmlFuncMap()).
		Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("template: parse %q: %w", name, err)
	}
	return &htmlTemplate{t: t}, nil
}

func (h *htmlTemplate) execute(data map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := h.t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type markdownTemplate struct {
	t        *texttemplate.Template
	defaults map[string]any
	md       goldmark.Markdown
}

func (r *Renderer) parseMarkdown(name string, src []byte) (compiled, error) {
	defaults, body, err := splitFrontmatter(src)
	if err != nil {
		return nil, fmt.Errorf("template: frontmatter %q: %w", name, err)
	}

	t, err := texttemplate.New(name).
		Option("missingkey=zero").
		Funcs(sprig.TxtFuncMap()).
		Parse(string(body))
	if err != nil {
		return nil, fmt.Errorf("template: parse %q: %w", name, err)
	}
	return &markdownTemplate{t: t, defaults: defaults, md: r.md}, nil
}

func (m *markdownTemplate) execute(data map[string]any) (string, error) {
	merged := make(map[string]any, len(m.defaults)+len(data))
	for k, v := range m.defaults {
		merged[k] = v
	}
	for k, v := range data {
		if str, ok := v.(string); ok {
			v = escapeMarkdown(str)
		}
		merged[k] = v
	}

	var src bytes.Buffer
	if err := m.t.Execute(&src, merged); err != nil {
		return "", err
	}

	var out bytes.Buffer
	if err := m.md.Convert(src.Bytes(), &out); err != nil {
		return "", fmt.Errorf("markdown: %w", err)
	}
	return out.String(), nil
}
