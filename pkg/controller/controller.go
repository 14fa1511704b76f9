package controller

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-specform/pkg/fetcher"
	"github.com/goliatone/go-specform/pkg/form"
	"github.com/goliatone/go-specform/pkg/schema"
	"github.com/goliatone/go-specform/pkg/values"
)

var (
	// ErrUnknownField is returned when editing a key that is not rendered.
	ErrUnknownField = errors.New("controller: field is not rendered")
	// ErrUnknownGroup is returned when toggling a missing section.
	ErrUnknownGroup = errors.New("controller: group is not rendered")
	// ErrNotRendered is returned by Sync when no attribute fields are shown.
	ErrNotRendered = errors.New("controller: no attribute fields rendered")
)

// Phase is the controller's position in the page lifecycle.
type Phase string

const (
	PhaseUninitialized Phase = "uninitialized"
	PhaseIdle          Phase = "idle"
	PhaseLoading       Phase = "loading"
	PhaseRendered      Phase = "rendered"
	PhaseEmpty         Phase = "empty"
	PhaseError         Phase = "error"
)

// Token identifies one schema request.
type Token uint64

// FormState is a snapshot of the controller.
type FormState struct {
	ID         string
	Phase      Phase
	CategoryID string
	Schema     schema.Schema
	Values     values.ValueMap
	Token      Token
	Err        error
	Form       form.DescribedForm
}

// Option customises a Controller.
type Option func(*Controller)

// WithPolicy selects how stored keys outside the current schema are handled.
func WithPolicy(policy values.Policy) Option {
	return func(c *Controller) {
		c.policy = policy
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMessages overrides the loading/empty/error notices.
func WithMessages(messages form.Messages) Option {
	return func(c *Controller) {
		c.messages = messages
	}
}

// Controller synchronises one attribute form with its persisted field.
type Controller struct {
	mu sync.Mutex

	id       string
	fetcher  fetcher.Fetcher
	field    Field
	policy   values.Policy
	messages form.Messages
	logger   *slog.Logger

	phase      Phase
	categoryID string
	schema     schema.Schema
	doc        values.Document
	sections   []form.Section
	token      Token
	err        error
	rawVisible bool
}

// New binds a controller to field, parsing its current content once. Content
// that does not parse is treated as an empty value map. The field is hidden
// until a category without attributes exposes it.
func New(f fetcher.Fetcher, field Field, options ...Option) (*Controller, error) {
	if f == nil {
		return nil, errors.New("controller: fetcher is required")
	}
	if field == nil {
		return nil, errors.New("controller: persisted field is required")
	}

	c := &Controller{
		id:       uuid.NewString(),
		fetcher:  f,
		field:    field,
		policy:   values.PreserveOffSchema,
		messages: form.DefaultMessages(),
		logger:   slog.New(slog.DiscardHandler),
		phase:    PhaseUninitialized,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	c.logger = c.logger.With("form", c.id)

	c.doc = c.parseField()
	c.field.SetVisible(false)
	return c, nil
}

// SelectCategory reacts to a category change: an empty id clears the form,
// anything else fetches and renders the category's schema. The returned error
// is informational; failures are already reflected in the form state.
func (c *Controller) SelectCategory(ctx context.Context, categoryID string) error {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		c.Clear()
		return nil
	}

	token := c.Begin(categoryID)
	groups, err := c.fetcher.FetchSchema(ctx, categoryID)
	c.Complete(token, groups, err)
	return err
}

// Begin enters Loading for categoryID and returns the token the matching
// Complete must present. Any earlier token becomes stale.
func (c *Controller) Begin(categoryID string) Token {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token++
	c.phase = PhaseLoading
	c.categoryID = strings.TrimSpace(categoryID)
	c.err = nil
	c.logger.Debug("schema requested", "category", c.categoryID, "token", c.token)
	return c.token
}

// Complete applies a fetch result. It reports false, changing nothing, when
// token has been superseded by a later Begin or Clear.
func (c *Controller) Complete(token Token, groups schema.Schema, fetchErr error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if token != c.token {
		c.logger.Debug("stale schema response discarded", "token", token, "current", c.token)
		return false
	}

	if fetchErr != nil {
		c.phase = PhaseError
		c.err = fetchErr
		c.logger.Warn("schema fetch failed", "category", c.categoryID, "error", fetchErr)
		return true
	}

	c.doc = c.parseField()
	c.schema = groups.Clone()

	described := form.Describe(c.schema, c.doc.Values(), c.messages)
	if described.State == form.StateEmpty {
		c.phase = PhaseEmpty
		c.sections = nil
		c.setVisible(true)
		c.logger.Debug("category has no attributes", "category", c.categoryID)
		return true
	}

	c.phase = PhaseRendered
	c.sections = described.Groups
	c.setVisible(false)
	c.logger.Debug("attribute form rendered",
		"category", c.categoryID,
		"groups", len(c.sections),
		"attributes", c.schema.Len(),
	)

	if c.policy == values.PreserveOffSchema && c.fieldParses() {
		c.syncLocked()
	}
	return true
}

// Clear empties the form region and supersedes any pending fetch.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token++
	c.phase = PhaseIdle
	c.categoryID = ""
	c.schema = nil
	c.sections = nil
	c.err = nil
}

// EditField records new content for every rendered field with key and
// re-serializes the value map into the persisted field.
func (c *Controller) EditField(key, value string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	found := false
	for si := range c.sections {
		for fi := range c.sections[si].Fields {
			if c.sections[si].Fields[fi].Key == key {
				c.sections[si].Fields[fi].Value = value
				found = true
			}
		}
	}
	if !found {
		return "", ErrUnknownField
	}
	return c.syncLocked(), nil
}

// Sync re-serializes the rendered fields without an edit.
func (c *Controller) Sync() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.sections) == 0 {
		return "", ErrNotRendered
	}
	return c.syncLocked(), nil
}

// Toggle flips a section between expanded and collapsed. It never touches
// the value map.
func (c *Controller) Toggle(index int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.sections) {
		return false, ErrUnknownGroup
	}
	c.sections[index].Expanded = !c.sections[index].Expanded
	return c.sections[index].Expanded, nil
}

// Form returns the current form description.
func (c *Controller) Form() form.DescribedForm {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.describeLocked()
}

// State returns a deep copy of the controller state.
func (c *Controller) State() FormState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return FormState{
		ID:         c.id,
		Phase:      c.phase,
		CategoryID: c.categoryID,
		Schema:     c.schema.Clone(),
		Values:     c.doc.Values(),
		Token:      c.token,
		Err:        c.err,
		Form:       c.describeLocked(),
	}
}

func (c *Controller) describeLocked() form.DescribedForm {
	var described form.DescribedForm
	switch c.phase {
	case PhaseLoading:
		described = form.Loading(c.messages)
		described.RawFieldVisible = c.rawVisible
	case PhaseError:
		described = form.Failed(c.messages, c.rawVisible)
	case PhaseEmpty:
		described = form.Describe(nil, nil, c.messages)
	case PhaseRendered:
		described = form.DescribedForm{State: form.StateRendered, RawFieldVisible: c.rawVisible}
	default:
		described = form.Idle(c.rawVisible)
	}
	described.Groups = c.sections
	return described.Clone()
}

func (c *Controller) syncLocked() string {
	var rendered []values.FieldValue
	for _, section := range c.sections {
		for _, field := range section.Fields {
			rendered = append(rendered, values.FieldValue{Key: field.Key, Value: field.Value})
		}
	}

	c.doc = values.Merge(c.doc, rendered, c.policy)
	serialized := c.doc.Serialize()
	c.field.SetValue(serialized)
	return serialized
}

func (c *Controller) parseField() values.Document {
	doc, err := values.ParseDocument(c.field.Value())
	if err != nil {
		c.logger.Debug("persisted field unparseable, starting empty", "error", err)
		return values.Document{}
	}
	return doc
}

func (c *Controller) fieldParses() bool {
	_, err := values.ParseDocument(c.field.Value())
	return err == nil
}

func (c *Controller) setVisible(visible bool) {
	c.rawVisible = visible
	c.field.SetVisible(visible)
}
