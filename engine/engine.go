// Package engine is the object model the sandbox drives: entities with
// transform, renderable and light components, materials and their
// instances, geometry buffers, scenes, views and cameras.
//
// The package holds no GPU state. A Driver (the OpenGL renderer) attaches to
// the Engine and is told when objects it may have mirrored on the GPU are
// destroyed.
package engine

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"material-sandbox/core"
)

var (
	// ErrDestroyed is returned when an object is used after being destroyed.
	ErrDestroyed = errors.New("engine: object already destroyed")
	// ErrNoComponent is returned when an entity lacks the component an
	// operation needs.
	ErrNoComponent = errors.New("engine: entity has no such component")
	// ErrInUse is returned when destroying an object that live objects still
	// reference.
	ErrInUse = errors.New("engine: object still in use")
)

// Driver mirrors engine objects on a GPU.
type Driver interface {
	// Release frees whatever GPU state is tied to obj. It receives
	// *VertexBuffer, *IndexBuffer and *Material values.
	Release(obj any)
}

// Engine owns every object created through it and the component managers.
type Engine struct {
	backend core.Backend
	log     *zap.Logger
	driver  Driver

	entities    *EntityManager
	transforms  *TransformManager
	renderables *RenderableManager
	lights      *LightManager
	debug       *DebugRegistry

	// Debug switches exposed through the registry.
	Options DebugOptions

	materials     map[*Material]struct{}
	instances     map[*MaterialInstance]struct{}
	vertexBuffers map[*VertexBuffer]struct{}
	indexBuffers  map[*IndexBuffer]struct{}
	indirect      map[*IndirectLight]struct{}
	scenes        map[*Scene]struct{}
	views         map[*View]struct{}
	cameras       map[*Camera]struct{}
}

// DebugOptions backs the engine's debug registry properties.
type DebugOptions struct {
	CameraAtOrigin       bool
	FarUsesShadowCasters bool
	FocusShadowCasters   bool
}

// Debug property names registered by New.
const (
	DebugCameraAtOrigin       = "d.view.camera_at_origin"
	DebugFarUsesShadowCasters = "d.shadowmap.far_uses_shadowcasters"
	DebugFocusShadowCasters   = "d.shadowmap.focus_shadowcasters"
)

// New creates an engine for the requested backend. OpenGL is the only
// backend implemented; any other request falls back to it with a warning.
func New(backend core.Backend, log *zap.Logger) *Engine {
	log = core.OrNop(log)

	resolved := backend
	switch backend {
	case core.BackendDefault, core.BackendOpenGL:
		resolved = core.BackendOpenGL
	default:
		log.Warn("backend not available, using opengl",
			zap.Stringer("requested", backend))
		resolved = core.BackendOpenGL
	}

	e := &Engine{
		backend:       resolved,
		log:           log,
		entities:      newEntityManager(),
		debug:         newDebugRegistry(),
		materials:     map[*Material]struct{}{},
		instances:     map[*MaterialInstance]struct{}{},
		vertexBuffers: map[*VertexBuffer]struct{}{},
		indexBuffers:  map[*IndexBuffer]struct{}{},
		indirect:      map[*IndirectLight]struct{}{},
		scenes:        map[*Scene]struct{}{},
		views:         map[*View]struct{}{},
		cameras:       map[*Camera]struct{}{},
		Options: DebugOptions{
			FarUsesShadowCasters: true,
			FocusShadowCasters:   true,
		},
	}
	e.transforms = newTransformManager()
	e.renderables = newRenderableManager()
	e.lights = newLightManager()

	e.debug.RegisterBool(DebugCameraAtOrigin, &e.Options.CameraAtOrigin)
	e.debug.RegisterBool(DebugFarUsesShadowCasters, &e.Options.FarUsesShadowCasters)
	e.debug.RegisterBool(DebugFocusShadowCasters, &e.Options.FocusShadowCasters)

	log.Debug("engine created", zap.Stringer("backend", resolved))
	return e
}

// Backend reports the backend actually in use.
func (e *Engine) Backend() core.Backend { return e.backend }

// Logger returns the engine's logger.
func (e *Engine) Logger() *zap.Logger { return e.log }

// SetDriver attaches the GPU driver. Passing nil detaches it.
func (e *Engine) SetDriver(d Driver) { e.driver = d }

func (e *Engine) EntityManager() *EntityManager         { return e.entities }
func (e *Engine) TransformManager() *TransformManager   { return e.transforms }
func (e *Engine) RenderableManager() *RenderableManager { return e.renderables }
func (e *Engine) LightManager() *LightManager           { return e.lights }
func (e *Engine) DebugRegistry() *DebugRegistry         { return e.debug }

// ── Creation ─────────────────────────────────────────────────────────────────

// CreateScene returns an empty scene.
func (e *Engine) CreateScene() *Scene {
	s := newScene()
	e.scenes[s] = struct{}{}
	return s
}

// CreateView returns a view with default post-processing settings.
func (e *Engine) CreateView(name string) *View {
	v := newView(name)
	e.views[v] = struct{}{}
	return v
}

// CreateCamera returns a perspective camera at the origin looking down -Z.
func (e *Engine) CreateCamera() *Camera {
	c := newCamera()
	e.cameras[c] = struct{}{}
	return c
}

// ── Destruction ──────────────────────────────────────────────────────────────

// DestroyEntity destroys every component attached to entity. The entity id
// itself stays alive until EntityManager().Destroy is called.
func (e *Engine) DestroyEntity(entity Entity) {
	e.renderables.destroy(entity)
	e.lights.destroy(entity)
	e.transforms.destroy(entity)
}

// DestroyMaterial destroys m and its default instance. It fails with ErrInUse
// while other instances of m are alive.
func (e *Engine) DestroyMaterial(m *Material) error {
	if m == nil {
		return nil
	}
	if _, ok := e.materials[m]; !ok {
		return fmt.Errorf("material %q: %w", m.desc.Name, ErrDestroyed)
	}
	if m.live > 0 {
		return fmt.Errorf("material %q has %d instances: %w", m.desc.Name, m.live, ErrInUse)
	}
	m.defaultInstance.destroyed = true
	m.destroyed = true
	delete(e.materials, m)
	e.release(m)
	return nil
}

// DestroyMaterialInstance destroys mi. Default instances are owned by their
// material and cannot be destroyed directly.
func (e *Engine) DestroyMaterialInstance(mi *MaterialInstance) error {
	if mi == nil {
		return nil
	}
	if _, ok := e.instances[mi]; !ok {
		return fmt.Errorf("material instance %q: %w", mi.name, ErrDestroyed)
	}
	mi.destroyed = true
	mi.material.live--
	delete(e.instances, mi)
	return nil
}

// DestroyVertexBuffer destroys vb.
func (e *Engine) DestroyVertexBuffer(vb *VertexBuffer) error {
	if _, ok := e.vertexBuffers[vb]; !ok {
		return ErrDestroyed
	}
	vb.destroyed = true
	delete(e.vertexBuffers, vb)
	e.release(vb)
	return nil
}

// DestroyIndexBuffer destroys ib.
func (e *Engine) DestroyIndexBuffer(ib *IndexBuffer) error {
	if _, ok := e.indexBuffers[ib]; !ok {
		return ErrDestroyed
	}
	ib.destroyed = true
	delete(e.indexBuffers, ib)
	e.release(ib)
	return nil
}

// DestroyIndirectLight destroys il.
func (e *Engine) DestroyIndirectLight(il *IndirectLight) {
	delete(e.indirect, il)
}

func (e *Engine) DestroyScene(s *Scene)   { delete(e.scenes, s) }
func (e *Engine) DestroyView(v *View)     { delete(e.views, v) }
func (e *Engine) DestroyCamera(c *Camera) { delete(e.cameras, c) }

func (e *Engine) release(obj any) {
	if e.driver != nil {
		e.driver.Release(obj)
	}
}

// ── Accounting ───────────────────────────────────────────────────────────────

// MaterialCount is the number of live materials.
func (e *Engine) MaterialCount() int { return len(e.materials) }

// InstanceCount is the number of live non-default material instances.
func (e *Engine) InstanceCount() int { return len(e.instances) }

// BufferCount is the number of live vertex and index buffers.
func (e *Engine) BufferCount() int { return len(e.vertexBuffers) + len(e.indexBuffers) }

// Shutdown logs every object still alive. The engine must not be used
// afterwards.
func (e *Engine) Shutdown() {
	leaks := []zap.Field{}
	add := func(key string, n int) {
		if n > 0 {
			leaks = append(leaks, zap.Int(key, n))
		}
	}
	add("materials", len(e.materials))
	add("instances", len(e.instances))
	add("buffers", e.BufferCount())
	add("indirectLights", len(e.indirect))
	add("renderables", e.renderables.Count())
	add("lights", e.lights.Count())
	add("entities", e.entities.Count())
	if len(leaks) > 0 {
		e.log.Warn("engine shut down with live objects", leaks...)
	}
	e.driver = nil
}
