package engineapi

// Services is what the engine exposes to managed objects. Calls that target
// a missing entity are ignored and getters return zero values.
type Services interface {
	Log(msg string)
	LogWarning(msg string)
	LogError(msg string)

	IsKeyDown(k Key) bool
	IsKeyPressed(k Key) bool

	Position(id EntityID) Vector3
	SetPosition(id EntityID, v Vector3)
	Rotation(id EntityID) Vector3
	SetRotation(id EntityID, v Vector3)
	Scale(id EntityID) Vector3
	SetScale(id EntityID, v Vector3)

	HasComponent(id EntityID, component string) bool
	AddComponent(id EntityID, component string)
	RemoveComponent(id EntityID, component string)

	FindEntityByName(name string) EntityID
}
