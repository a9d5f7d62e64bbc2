package entity

// Keys always bound into a verification template.
const (
	VarUsername         = "username"
	VarVerificationCode = "verificationCode"
	VarValidityPeriod   = "validityPeriod"
	VarSubject          = "subject"
)

// TemplateContext is an insertion-ordered set of template variables.
type TemplateContext struct {
	keys   []string
	values map[string]any
}

// NewTemplateContext returns an empty context.
func NewTemplateContext() *TemplateContext {
	return &TemplateContext{values: make(map[string]any)}
}

// Set adds key, or overwrites its value in place when it already exists.
func (c *TemplateContext) Set(key string, value any) *TemplateContext {
	if _, ok := c.values[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.values[key] = value
	return c
}

// Get returns the value bound to key.
func (c *TemplateContext) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (c *TemplateContext) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Len returns the number of keys.
func (c *TemplateContext) Len() int {
	return len(c.keys)
}

// Map copies the variables into a map for template execution.
func (c *TemplateContext) Map() map[string]any {
	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}
