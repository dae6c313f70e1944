// Package csp builds Content-Security-Policy header values.
package csp

import "strings"

// directiveOrder fixes the output order so headers are stable.
var directiveOrder = []string{
	"default-src",
	"script-src",
	"style-src",
	"img-src",
	"font-src",
	"connect-src",
	"frame-ancestors",
	"form-action",
	"base-uri",
	"object-src",
}

// HeaderName is the response header carrying the policy.
const HeaderName = "Content-Security-Policy"

// Builder accumulates directives. Setting a directive twice replaces it.
type Builder struct {
	directives map[string][]string
}

func NewBuilder() *Builder {
	return &Builder{directives: make(map[string][]string)}
}

func (b *Builder) set(name string, sources []string) *Builder {
	b.directives[name] = sources
	return b
}

func (b *Builder) DefaultSrc(sources ...string) *Builder { return b.set("default-src", sources) }
func (b *Builder) ScriptSrc(sources ...string) *Builder  { return b.set("script-src", sources) }
func (b *Builder) StyleSrc(sources ...string) *Builder   { return b.set("style-src", sources) }
func (b *Builder) ImgSrc(sources ...string) *Builder     { return b.set("img-src", sources) }
func (b *Builder) FontSrc(sources ...string) *Builder    { return b.set("font-src", sources) }
func (b *Builder) ConnectSrc(sources ...string) *Builder { return b.set("connect-src", sources) }
func (b *Builder) FormAction(sources ...string) *Builder { return b.set("form-action", sources) }
func (b *Builder) BaseURI(sources ...string) *Builder    { return b.set("base-uri", sources) }
func (b *Builder) ObjectSrc(sources ...string) *Builder  { return b.set("object-src", sources) }

func (b *Builder) FrameAncestors(sources ...string) *Builder {
	return b.set("frame-ancestors", sources)
}

// Build renders the policy. Directives without sources are omitted.
func (b *Builder) Build() string {
	parts := make([]string, 0, len(b.directives))
	for _, name := range directiveOrder {
		if sources := b.directives[name]; len(sources) > 0 {
			parts = append(parts, name+" "+strings.Join(sources, " "))
		}
	}
	return strings.Join(parts, "; ")
}

// PagePolicy fits the server-rendered pages: one inline stylesheet, no
// scripts or fetches, local fonts, and article images from anywhere over https.
func PagePolicy() *Builder {
	return NewBuilder().
		DefaultSrc("'self'").
		ScriptSrc("'none'").
		StyleSrc("'self'", "'unsafe-inline'").
		ImgSrc("'self'", "data:", "https:").
		FontSrc("'self'").
		ConnectSrc("'none'").
		FrameAncestors("'none'").
		FormAction("'self'").
		BaseURI("'self'").
		ObjectSrc("'none'")
}

// StrictPolicy suits JSON and XML responses that load nothing.
func StrictPolicy() *Builder {
	return NewBuilder().
		DefaultSrc("'none'").
		FrameAncestors("'none'")
}
