package scripts

import "github.com/DarkerMinecraft/Gravix/engineapi"

const (
	defaultSpeed     = 0.1
	defaultJumpForce = 5.0
)

// Player moves its entity with WASD and jumps on space.
type Player struct {
	Entity
	speed     float32
	jumpForce float32
	created   bool
}

func NewPlayer(svc engineapi.Services) *Player {
	return &Player{
		Entity:    Entity{svc: svc},
		speed:     defaultSpeed,
		jumpForce: defaultJumpForce,
	}
}

func (p *Player) OnCreate() {
	if !p.HasComponent(engineapi.ComponentRigidbody2D) {
		p.svc.LogWarning("Player has no Rigidbody2D; moving the transform directly")
	}
	p.created = true
}

func (p *Player) OnUpdate(deltaTime float32) {
	var velocity engineapi.Vector3
	if p.svc.IsKeyDown(engineapi.KeyW) {
		velocity.Y = 1
	}
	if p.svc.IsKeyDown(engineapi.KeyS) {
		velocity.Y = -1
	}
	if p.svc.IsKeyDown(engineapi.KeyA) {
		velocity.X = -1
	}
	if p.svc.IsKeyDown(engineapi.KeyD) {
		velocity.X = 1
	}

	velocity = velocity.Scale(p.speed * deltaTime)
	if p.svc.IsKeyPressed(engineapi.KeySpace) {
		velocity.Y += p.jumpForce * deltaTime
	}
	p.Translate(velocity.X, velocity.Y, velocity.Z)
}

func (p *Player) Created() bool { return p.created }

func (p *Player) Speed() float32 { return p.speed }

func (p *Player) SetSpeed(v float32) { p.speed = v }

func (p *Player) JumpForce() float32 { return p.jumpForce }

func (p *Player) SetJumpForce(v float32) { p.jumpForce = v }
