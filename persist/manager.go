package persist

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dmaier/fieldstone/field"
	"github.com/dmaier/fieldstone/model"
)

// metaGroup is the reserved document key carrying workspace snapshot
// metadata.
const metaGroup = "_meta"

// Meta identifies one workspace snapshot.
type Meta struct {
	// ID is a stable identifier for the snapshot.
	ID string
	// Name is the user-visible snapshot name.
	Name string
	// SavedAt is the time of the last successful save.
	SavedAt time.Time
}

// Manager persists the scope-filtered fields of registered models to
// one backing document. Create one with NewSettings or NewWorkspace.
//
// Values loaded from disk are applied to models through the normal
// validated setter path, so observers see loads and reloads as
// ordinary change notifications.
type Manager struct {
	mu sync.Mutex

	scope field.Scope
	store *fileStore
	log   zerolog.Logger

	// Aggregate document, mirroring the last read/written state plus
	// registered group snapshots.
	doc    Document
	loaded bool

	// Registered models and their registration-time defaults
	// (encoded), used to revert fields absent from disk on Load.
	groups   map[string]*model.Model
	order    []string
	defaults map[string]map[string]any

	// Workspace snapshot metadata; nil for settings managers.
	meta *Meta
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the diagnostic logger. Defaults to a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) {
		m.log = log
	}
}

// NewSettings creates a manager for globally scoped fields backed by
// the given file.
func NewSettings(path string, opts ...Option) *Manager {
	return newManager(field.ScopeSetting, path, nil, opts...)
}

// NewWorkspace creates a manager for workspace-scoped fields backed
// by the given file. A fresh snapshot id is minted; loading an
// existing workspace document adopts the id recorded in it.
func NewWorkspace(path string, opts ...Option) *Manager {
	meta := &Meta{ID: uuid.NewString()}
	return newManager(field.ScopeWorkspace, path, meta, opts...)
}

func newManager(scope field.Scope, path string, meta *Meta, opts ...Option) *Manager {
	m := &Manager{
		scope:    scope,
		store:    &fileStore{path: path},
		log:      zerolog.Nop(),
		doc:      Document{},
		groups:   make(map[string]*model.Model),
		defaults: make(map[string]map[string]any),
		meta:     meta,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ServiceName names the manager for service registry lookup:
// "settings" or "workspace" by scope.
func (m *Manager) ServiceName() string {
	if m.scope.Has(field.ScopeWorkspace) {
		return "workspace"
	}
	return "settings"
}

// Initialized reports registration readiness. A constructed manager
// is always ready; it loads its backing file lazily.
func (m *Manager) Initialized() bool {
	return true
}

// Cleanup persists every registered group. Run once at application
// shutdown, typically via the service registry's CleanupAll.
func (m *Manager) Cleanup() error {
	return m.SaveAll()
}

// Path returns the backing file path.
func (m *Manager) Path() string {
	return m.store.path
}

// Scope returns the field scope this manager persists.
func (m *Manager) Scope() field.Scope {
	return m.scope
}

// Meta returns the workspace snapshot metadata. The zero Meta is
// returned for settings managers.
func (m *Manager) Meta() Meta {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.meta == nil {
		return Meta{}
	}
	return *m.meta
}

// SetName sets the user-visible workspace name. No-op for settings
// managers.
func (m *Manager) SetName(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.meta != nil {
		m.meta.Name = name
	}
}

// Groups returns the registered group ids in registration order.
func (m *Manager) Groups() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]string, len(m.order))
	copy(result, m.order)
	return result
}

// Register binds a model instance to a group id. On first
// registration the manager applies any values already on disk for the
// group to the model (through the setter path, so validation and
// notification fire) and records the model's remaining values as the
// group's initial document entry. Registering the same group id twice
// returns ErrDuplicateGroup.
func (m *Manager) Register(group string, mdl *model.Model) error {
	m.mu.Lock()

	if group == "" {
		m.mu.Unlock()
		return ErrEmptyGroup
	}
	if group == metaGroup {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrReservedGroup, group)
	}
	if _, exists := m.groups[group]; exists {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateGroup, group)
	}

	m.ensureLoaded()
	onDisk := cloneEntry(m.doc[group])
	m.groups[group] = mdl
	m.order = append(m.order, group)

	// Release the lock before applying: applyGroup drives observer
	// callbacks, and observers may call back into the manager.
	m.mu.Unlock()

	// Capture the model's constructed values before the disk entry is
	// applied, so Load can revert fields absent from disk to their
	// declared defaults.
	defaults := m.snapshot(mdl)
	m.applyGroup(group, mdl, onDisk)
	entry := m.snapshot(mdl)

	m.mu.Lock()
	m.defaults[group] = defaults
	m.doc[group] = entry
	m.mu.Unlock()

	return nil
}

// Save recomputes the group's document entry from the model's current
// scoped values and writes the full aggregate document to the backing
// file. Write failures are returned to the caller; the previous
// on-disk document is left intact.
func (m *Manager) Save(group string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	mdl, ok := m.groups[group]
	if !ok {
		return fmt.Errorf("%w: %s", ErrGroupNotRegistered, group)
	}

	m.doc[group] = m.snapshot(mdl)
	return m.flush()
}

// SaveAll recomputes every registered group and writes the aggregate
// document once.
func (m *Manager) SaveAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for group, mdl := range m.groups {
		m.doc[group] = m.snapshot(mdl)
	}
	return m.flush()
}

// Load re-reads the backing file and re-applies the group's scoped
// values to its model through the setter path. Fields absent from
// disk revert to their registration-time defaults. A missing or
// malformed file degrades to the defaults and is never an error; this
// is how a settings dialog's Cancel discards in-memory edits.
func (m *Manager) Load(group string) error {
	onDisk := m.readTolerant()

	m.mu.Lock()
	mdl, ok := m.groups[group]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrGroupNotRegistered, group)
	}
	entry := m.mergedEntry(group, onDisk)
	m.mu.Unlock()

	m.applyGroup(group, mdl, entry)

	m.mu.Lock()
	m.doc[group] = m.snapshot(mdl)
	m.mu.Unlock()
	return nil
}

// LoadAll re-reads the backing file once and re-applies every
// registered group.
func (m *Manager) LoadAll() {
	m.loadDocument(m.readTolerant())
}

// Export writes the full aggregate document, recomputed from the
// current model values, to an arbitrary path. The format follows the
// path's extension (.json, .toml, .yaml).
func (m *Manager) Export(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for group, mdl := range m.groups {
		m.doc[group] = m.snapshot(mdl)
	}
	m.stampMeta()
	return writeDocument(path, m.doc)
}

// Import reads an aggregate document from an arbitrary path and
// applies it to every registered model. Malformed input degrades to
// an empty document, reverting models to their defaults. The backing
// file is not rewritten; call Save or SaveAll to persist the imported
// state.
func (m *Manager) Import(path string) error {
	doc, err := readDocument(path)
	if err != nil {
		m.log.Warn().Str("path", path).Err(err).Msg("malformed import document, using defaults")
		doc = Document{}
	}

	m.mu.Lock()
	m.adoptMeta(doc)
	m.mu.Unlock()

	m.loadDocument(doc)
	return nil
}

// ensureLoaded reads the backing file into the aggregate document the
// first time it is needed.
func (m *Manager) ensureLoaded() {
	if m.loaded {
		return
	}
	m.doc = m.readTolerant()
	m.adoptMeta(m.doc)
	m.loaded = true
}

// readTolerant reads the backing file, degrading to an empty document
// on parse or I/O failure with a logged diagnostic.
func (m *Manager) readTolerant() Document {
	doc, err := m.store.read()
	if err != nil {
		m.log.Warn().Str("path", m.store.path).Err(err).Msg("unreadable store, using defaults")
		return Document{}
	}
	return doc
}

// mergedEntry overlays a document's entry for a group onto the
// group's registration-time defaults, so fields absent from the
// document revert to their declared defaults. Callers hold m.mu.
func (m *Manager) mergedEntry(group string, doc Document) map[string]any {
	entry := cloneEntry(m.defaults[group])
	for name, v := range doc[group] {
		entry[name] = v
	}
	return entry
}

// loadDocument re-applies a document to every registered group. The
// lock is held only while planning and while refreshing the in-memory
// entries, never across observer delivery.
func (m *Manager) loadDocument(doc Document) {
	type plan struct {
		group string
		mdl   *model.Model
		entry map[string]any
	}

	m.mu.Lock()
	plans := make([]plan, 0, len(m.order))
	for _, group := range m.order {
		plans = append(plans, plan{group, m.groups[group], m.mergedEntry(group, doc)})
	}
	m.mu.Unlock()

	for _, p := range plans {
		m.applyGroup(p.group, p.mdl, p.entry)
	}

	m.mu.Lock()
	for _, p := range plans {
		m.doc[p.group] = m.snapshot(p.mdl)
	}
	m.mu.Unlock()
}

// applyGroup writes stored values onto a model through the validated
// setter path. Values that no longer decode or validate are skipped
// with a warning; a stale document must not prevent startup. Must be
// called without m.mu held: the setter delivers observer callbacks,
// which may call back into the manager.
func (m *Manager) applyGroup(group string, mdl *model.Model, entry map[string]any) {
	for _, f := range mdl.Schema().Scoped(m.scope) {
		stored, ok := entry[f.Name]
		if !ok {
			continue
		}
		v, err := f.Decode(stored)
		if err != nil {
			m.log.Warn().Str("group", group).Str("field", f.Name).Err(err).
				Msg("skipping undecodable stored value")
			continue
		}
		if err := mdl.Set(f.Name, v); err != nil {
			m.log.Warn().Str("group", group).Str("field", f.Name).Err(err).
				Msg("skipping invalid stored value")
		}
	}
}

// snapshot collects a model's current scoped values in encoded form.
func (m *Manager) snapshot(mdl *model.Model) map[string]any {
	entry := make(map[string]any)
	for _, f := range mdl.Schema().Scoped(m.scope) {
		v, err := mdl.Get(f.Name)
		if err != nil {
			continue
		}
		stored, err := f.Encode(v)
		if err != nil {
			m.log.Warn().Str("field", f.Name).Err(err).Msg("skipping unencodable value")
			continue
		}
		entry[f.Name] = stored
	}
	return entry
}

// flush writes the aggregate document to the backing file.
func (m *Manager) flush() error {
	m.stampMeta()
	return m.store.write(m.doc)
}

// stampMeta refreshes the reserved metadata entry for workspace
// documents.
func (m *Manager) stampMeta() {
	if m.meta == nil {
		return
	}
	m.meta.SavedAt = time.Now()
	m.doc[metaGroup] = map[string]any{
		"id":      m.meta.ID,
		"name":    m.meta.Name,
		"savedAt": m.meta.SavedAt.Format(time.RFC3339Nano),
	}
}

// adoptMeta picks up snapshot metadata recorded in a document.
func (m *Manager) adoptMeta(doc Document) {
	if m.meta == nil {
		return
	}
	entry, ok := doc[metaGroup]
	if !ok {
		return
	}
	if id, ok := entry["id"].(string); ok && id != "" {
		m.meta.ID = id
	}
	if name, ok := entry["name"].(string); ok {
		m.meta.Name = name
	}
	if saved, ok := entry["savedAt"].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, saved); err == nil {
			m.meta.SavedAt = t
		}
	}
}

// cloneEntry shallow-copies a document entry.
func cloneEntry(entry map[string]any) map[string]any {
	result := make(map[string]any, len(entry))
	for k, v := range entry {
		result[k] = v
	}
	return result
}
