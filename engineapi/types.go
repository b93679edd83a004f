package engineapi

import "fmt"

// EntityID identifies an entity in a scene. Zero is never a valid entity.
type EntityID uint64

// NoEntity is returned by lookups that find nothing.
const NoEntity EntityID = 0

type Vector3 struct {
	X, Y, Z float32
}

func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v Vector3) Scale(f float32) Vector3 {
	return Vector3{X: v.X * f, Y: v.Y * f, Z: v.Z * f}
}

func (v Vector3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

// Key is a keyboard key code. Values follow the engine's key table, which
// matches printable ASCII for letters, digits and space.
type Key int32

const (
	KeySpace Key = 32
	Key0     Key = 48
	Key1     Key = 49
	Key2     Key = 50
	Key3     Key = 51
	KeyA     Key = 65
	KeyD     Key = 68
	KeyE     Key = 69
	KeyQ     Key = 81
	KeyS     Key = 83
	KeyW     Key = 87
	KeyEsc   Key = 256
	KeyEnter Key = 257
	KeyRight Key = 262
	KeyLeft  Key = 263
	KeyDown  Key = 264
	KeyUp    Key = 265
)

// Component names understood by HasComponent and friends.
const (
	ComponentTag            = "Tag"
	ComponentTransform      = "Transform"
	ComponentSpriteRenderer = "SpriteRenderer"
	ComponentCamera         = "Camera"
	ComponentScript         = "Script"
	ComponentRigidbody2D    = "Rigidbody2D"
	ComponentBoxCollider2D  = "BoxCollider2D"
)
