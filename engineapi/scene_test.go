package engineapi

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestScene_Entities(t *testing.T) {
	s := NewScene(nil)
	a := s.CreateEntity("Player")
	b := s.CreateEntity("Camera")
	dup := s.CreateEntity("Player")

	if a == NoEntity || a == b || b == dup {
		t.Fatalf("ids = %d, %d, %d", a, b, dup)
	}
	if got := s.FindEntityByName("Player"); got != a {
		t.Errorf("FindEntityByName(Player) = %d, want %d", got, a)
	}
	if got := s.FindEntityByName("Nobody"); got != NoEntity {
		t.Errorf("FindEntityByName(Nobody) = %d", got)
	}
	if s.Name(b) != "Camera" {
		t.Errorf("Name = %q", s.Name(b))
	}

	if !s.DestroyEntity(a) || s.DestroyEntity(a) {
		t.Error("DestroyEntity not idempotent")
	}
	if got := s.Entities(); len(got) != 2 || got[0] != b || got[1] != dup {
		t.Errorf("Entities = %v", got)
	}
}

func TestScene_Transform(t *testing.T) {
	s := NewScene(nil)
	id := s.CreateEntity("Box")

	if got := s.Scale(id); got != (Vector3{1, 1, 1}) {
		t.Errorf("default scale = %v", got)
	}

	s.SetPosition(id, Vector3{X: 1, Y: 2})
	s.SetRotation(id, Vector3{Z: 90})
	s.SetScale(id, Vector3{X: 2, Y: 2, Z: 2})

	if got := s.Position(id); got != (Vector3{1, 2, 0}) {
		t.Errorf("Position = %v", got)
	}
	if got := s.Rotation(id); got.Z != 90 {
		t.Errorf("Rotation = %v", got)
	}

	// Missing entities are ignored.
	s.SetPosition(999, Vector3{X: 5})
	if got := s.Position(999); got != (Vector3{}) {
		t.Errorf("Position(missing) = %v", got)
	}
}

func TestScene_Components(t *testing.T) {
	s := NewScene(nil)
	id := s.CreateEntity("Body")

	if !s.HasComponent(id, ComponentTransform) || s.HasComponent(id, ComponentRigidbody2D) {
		t.Fatal("default components wrong")
	}

	s.AddComponent(id, ComponentRigidbody2D)
	if !s.HasComponent(id, ComponentRigidbody2D) {
		t.Error("AddComponent had no effect")
	}
	s.RemoveComponent(id, ComponentRigidbody2D)
	s.RemoveComponent(id, ComponentTransform)
	if s.HasComponent(id, ComponentRigidbody2D) || !s.HasComponent(id, ComponentTransform) {
		t.Error("RemoveComponent wrong")
	}
}

func TestScene_Input(t *testing.T) {
	s := NewScene(nil)

	s.SetKey(KeyW, true)
	if !s.IsKeyDown(KeyW) || !s.IsKeyPressed(KeyW) {
		t.Fatal("W not down and pressed")
	}

	s.EndFrame()
	if !s.IsKeyDown(KeyW) || s.IsKeyPressed(KeyW) {
		t.Error("pressed survived EndFrame")
	}

	s.SetKey(KeyW, true)
	if s.IsKeyPressed(KeyW) {
		t.Error("held key pressed again")
	}
	s.SetKey(KeyW, false)
	if s.IsKeyDown(KeyW) {
		t.Error("released key still down")
	}
}

func TestScene_Log(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := NewScene(zap.New(core))

	s.Log("info line")
	s.LogWarning("warn line")
	s.LogError("error line")

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("entries = %d", len(entries))
	}
	want := []zapcore.Level{zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, e := range entries {
		if e.Level != want[i] || e.LoggerName != "script" {
			t.Errorf("entry %d = %s %s %q", i, e.LoggerName, e.Level, e.Message)
		}
	}
}
