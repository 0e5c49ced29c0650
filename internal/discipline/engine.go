// Package discipline is the rule engine for disciplinary case records: the
// field schema and option catalog, the gate table that clears stale
// dependent fields, section visibility, validation profiles, the create /
// update / batch lifecycle and the reporting aggregates.
//
// Every operation takes a full record and returns a new one. The engine
// holds no mutable state after construction and is safe for concurrent use.
package discipline

import (
	"time"

	"github.com/google/uuid"
)

// Engine evaluates case records against a fixed schema, catalog and gate
// table.
type Engine struct {
	schema  *Schema
	catalog *Catalog
	gates   []Gate

	now   func() time.Time
	newID func() string
}

// EngineOption configures an Engine.
type EngineOption func(*engineConfig)

type engineConfig struct {
	fields  []FieldDef
	gates   []Gate
	catalog *Catalog
	now     func() time.Time
	newID   func() string
}

// WithClock replaces the wall clock used for timestamps and date checks.
func WithClock(now func() time.Time) EngineOption {
	return func(c *engineConfig) { c.now = now }
}

// WithIDGenerator replaces the record id generator.
func WithIDGenerator(gen func() string) EngineOption {
	return func(c *engineConfig) { c.newID = gen }
}

// WithFields replaces the declared field list.
func WithFields(fields []FieldDef) EngineOption {
	return func(c *engineConfig) { c.fields = fields }
}

// WithGates replaces the gate table.
func WithGates(gates []Gate) EngineOption {
	return func(c *engineConfig) { c.gates = gates }
}

// WithCatalog replaces the option catalog.
func WithCatalog(cat *Catalog) EngineOption {
	return func(c *engineConfig) { c.catalog = cat }
}

// NewEngine builds an engine and verifies its configuration. Any problem is
// returned as a *ConfigurationError and should abort startup.
func NewEngine(opts ...EngineOption) (*Engine, error) {
	cfg := engineConfig{
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.fields == nil {
		cfg.fields = DefaultFields()
	}
	if cfg.gates == nil {
		cfg.gates = DefaultGates()
	}
	if cfg.catalog == nil {
		cat, err := DefaultCatalog()
		if err != nil {
			return nil, err
		}
		cfg.catalog = cat
	}

	schema, err := NewSchema(cfg.fields)
	if err != nil {
		return nil, err
	}
	for _, f := range schema.Fields() {
		if f.Kind == KindEnum && !cfg.catalog.HasList(f.Options) {
			return nil, configErrorf("field %q uses unknown option list %q", f.Key, f.Options)
		}
	}
	for _, key := range []string{FieldName, FieldCategory, FieldSubCategory, FieldCaseTypeConfirmed, FieldIncidentDate} {
		if _, ok := schema.Field(key); !ok {
			return nil, configErrorf("required field %q is not declared", key)
		}
	}
	if err := checkGates(schema, cfg.gates); err != nil {
		return nil, err
	}

	return &Engine{
		schema:  schema,
		catalog: cfg.catalog,
		gates:   cfg.gates,
		now:     cfg.now,
		newID:   cfg.newID,
	}, nil
}

// MustEngine is NewEngine with the default configuration; it panics on a
// broken embedded catalog.
func MustEngine() *Engine {
	e, err := NewEngine()
	if err != nil {
		panic(err)
	}
	return e
}

// Schema returns the field schema.
func (e *Engine) Schema() *Schema { return e.schema }

// Catalog returns the option catalog.
func (e *Engine) Catalog() *Catalog { return e.catalog }

// Gates returns a copy of the gate table.
func (e *Engine) Gates() []Gate {
	out := make([]Gate, len(e.gates))
	copy(out, e.gates)
	return out
}

// ApplyGates resets every dependent of a closed gate branch.
func (e *Engine) ApplyGates(r Record) Record {
	return applyGates(e.schema, e.gates, r)
}

func (e *Engine) timestamp() string {
	return e.now().UTC().Format(TimestampLayout)
}

func (e *Engine) today() string {
	return e.now().Format(DateLayout)
}

// TimestampLayout is ISO-8601 UTC with milliseconds.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
