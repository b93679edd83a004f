package scripts

import "github.com/DarkerMinecraft/Gravix/engineapi"

// Entity is the managed view of a scene entity. Script types embed it to
// reach their own entity.
type Entity struct {
	svc engineapi.Services
	id  engineapi.EntityID
}

func NewEntity(svc engineapi.Services) *Entity {
	return &Entity{svc: svc}
}

// SetEntity binds the object to a scene entity. The lifecycle driver calls
// it before OnCreate.
func (e *Entity) SetEntity(id uint64) { e.id = engineapi.EntityID(id) }

func (e *Entity) ID() uint64 { return uint64(e.id) }

func (e *Entity) IsValid() bool { return e.id != engineapi.NoEntity }

func (e *Entity) HasComponent(name string) bool {
	return e.svc.HasComponent(e.id, name)
}

func (e *Entity) AddComponent(name string) {
	e.svc.AddComponent(e.id, name)
}

func (e *Entity) RemoveComponent(name string) {
	e.svc.RemoveComponent(e.id, name)
}

func (e *Entity) X() float32 { return e.svc.Position(e.id).X }

func (e *Entity) Y() float32 { return e.svc.Position(e.id).Y }

func (e *Entity) Z() float32 { return e.svc.Position(e.id).Z }

func (e *Entity) SetPosition(x, y, z float32) {
	e.svc.SetPosition(e.id, engineapi.Vector3{X: x, Y: y, Z: z})
}

func (e *Entity) Translate(x, y, z float32) {
	e.svc.SetPosition(e.id, e.svc.Position(e.id).Add(engineapi.Vector3{X: x, Y: y, Z: z}))
}

// FindEntityByName returns a new Entity bound to the named entity, or nil.
func (e *Entity) FindEntityByName(name string) *Entity {
	id := e.svc.FindEntityByName(name)
	if id == engineapi.NoEntity {
		return nil
	}
	return &Entity{svc: e.svc, id: id}
}
