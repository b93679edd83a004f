package engineapi

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

type entity struct {
	components map[string]struct{}
	name       string
	position   Vector3
	rotation   Vector3
	scale      Vector3
}

// Scene is an in-memory Services implementation. It stands in for the
// engine in tests and in the console.
type Scene struct {
	entities map[EntityID]*entity
	byName   map[string]EntityID
	down     map[Key]bool
	pressed  map[Key]bool
	logger   *zap.Logger
	next     EntityID
	mu       sync.RWMutex
}

var _ Services = (*Scene)(nil)

// NewScene creates an empty scene. Script log calls go to logger, or are
// dropped when logger is nil.
func NewScene(logger *zap.Logger) *Scene {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scene{
		entities: make(map[EntityID]*entity),
		byName:   make(map[string]EntityID),
		down:     make(map[Key]bool),
		pressed:  make(map[Key]bool),
		logger:   logger.Named("script"),
		next:     1,
	}
}

// CreateEntity adds an entity with a Tag and a Transform. Names are not
// required to be unique; FindEntityByName returns the first one created.
func (s *Scene) CreateEntity(name string) EntityID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++
	s.entities[id] = &entity{
		name:  name,
		scale: Vector3{X: 1, Y: 1, Z: 1},
		components: map[string]struct{}{
			ComponentTag:       {},
			ComponentTransform: {},
		},
	}
	if _, taken := s.byName[name]; !taken && name != "" {
		s.byName[name] = id
	}
	return id
}

// DestroyEntity removes an entity.
func (s *Scene) DestroyEntity(id EntityID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entities[id]
	if !ok {
		return false
	}
	delete(s.entities, id)
	if s.byName[e.name] == id {
		delete(s.byName, e.name)
	}
	return true
}

// Entities returns the live entity IDs in creation order.
func (s *Scene) Entities() []EntityID {
	s.mu.RLock()
	ids := make([]EntityID, 0, len(s.entities))
	for id := range s.entities {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Name returns the entity's name.
func (s *Scene) Name(id EntityID) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.entities[id]; ok {
		return e.name
	}
	return ""
}

// SetKey records the key state. A key going down also counts as pressed
// until the next EndFrame.
func (s *Scene) SetKey(k Key, down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if down && !s.down[k] {
		s.pressed[k] = true
	}
	s.down[k] = down
}

// EndFrame clears the pressed state of every key.
func (s *Scene) EndFrame() {
	s.mu.Lock()
	clear(s.pressed)
	s.mu.Unlock()
}

func (s *Scene) Log(msg string)        { s.logger.Info(msg) }
func (s *Scene) LogWarning(msg string) { s.logger.Warn(msg) }
func (s *Scene) LogError(msg string)   { s.logger.Error(msg) }

func (s *Scene) IsKeyDown(k Key) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.down[k]
}

func (s *Scene) IsKeyPressed(k Key) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pressed[k]
}

func (s *Scene) Position(id EntityID) Vector3 {
	return s.read(id, func(e *entity) Vector3 { return e.position })
}

func (s *Scene) SetPosition(id EntityID, v Vector3) {
	s.write(id, func(e *entity) { e.position = v })
}

func (s *Scene) Rotation(id EntityID) Vector3 {
	return s.read(id, func(e *entity) Vector3 { return e.rotation })
}

func (s *Scene) SetRotation(id EntityID, v Vector3) {
	s.write(id, func(e *entity) { e.rotation = v })
}

func (s *Scene) Scale(id EntityID) Vector3 {
	return s.read(id, func(e *entity) Vector3 { return e.scale })
}

func (s *Scene) SetScale(id EntityID, v Vector3) {
	s.write(id, func(e *entity) { e.scale = v })
}

func (s *Scene) HasComponent(id EntityID, component string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[id]
	if !ok {
		return false
	}
	_, has := e.components[component]
	return has
}

func (s *Scene) AddComponent(id EntityID, component string) {
	s.write(id, func(e *entity) { e.components[component] = struct{}{} })
}

// RemoveComponent removes a component. Transform cannot be removed.
func (s *Scene) RemoveComponent(id EntityID, component string) {
	if component == ComponentTransform {
		return
	}
	s.write(id, func(e *entity) { delete(e.components, component) })
}

func (s *Scene) FindEntityByName(name string) EntityID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byName[name]
}

func (s *Scene) read(id EntityID, get func(*entity) Vector3) Vector3 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.entities[id]; ok {
		return get(e)
	}
	return Vector3{}
}

func (s *Scene) write(id EntityID, set func(*entity)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entities[id]; ok {
		set(e)
	}
}
