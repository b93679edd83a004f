package scripts

import (
	"go.uber.org/multierr"

	"github.com/DarkerMinecraft/Gravix/engineapi"
	"github.com/DarkerMinecraft/Gravix/registry"
)

// Type names under which Register installs the built-in scripts.
const (
	TypeSample = "Sample"
	TypeMain   = "Main"
	TypeEntity = "Entity"
	TypePlayer = "Player"
)

// Register adds the built-in script types to reg. Every object they create
// calls back into svc; a nil svc gets an empty Scene.
func Register(reg *registry.Registry, svc engineapi.Services) error {
	if svc == nil {
		svc = engineapi.NewScene(nil)
	}

	var err error

	_, e := reg.Define(TypeSample, func() (any, error) { return NewSample(svc), nil }).
		Method("SetValue", (*Sample).SetValue).
		Method("GetValue", (*Sample).GetValue).
		Method("Add", (*Sample).Add).
		Method("SetLabel", (*Sample).SetLabel).
		Method("Label", (*Sample).Label).
		Method("IsPositive", (*Sample).IsPositive).
		Method("Half", (*Sample).Half).
		Method("Ratio", (*Sample).Ratio).
		Method("Describe", (*Sample).Describe).
		Method("Clone", (*Sample).Clone).
		Method("Self", (*Sample).Self).
		Method("Scale", (*Sample).Scale).
		Method("Fail", (*Sample).Fail).
		Method("Panic", (*Sample).Panic).
		Method("Dispose", (*Sample).Dispose).
		Commit()
	err = multierr.Append(err, e)

	_, e = reg.Define(TypeMain, func() (any, error) { return NewMain(svc), nil }).
		Method("PrintMessage", (*Main).PrintMessage).
		Method("PrintCustomMessage", (*Main).PrintCustomMessage).
		Method("FloatVar", (*Main).FloatVar).
		Method("SetFloatVar", (*Main).SetFloatVar).
		Commit()
	err = multierr.Append(err, e)

	_, e = reg.Define(TypeEntity, func() (any, error) { return NewEntity(svc), nil }).
		Method("SetEntity", (*Entity).SetEntity).
		Method("ID", (*Entity).ID).
		Method("IsValid", (*Entity).IsValid).
		Method("HasComponent", (*Entity).HasComponent).
		Method("AddComponent", (*Entity).AddComponent).
		Method("RemoveComponent", (*Entity).RemoveComponent).
		Method("X", (*Entity).X).
		Method("Y", (*Entity).Y).
		Method("Z", (*Entity).Z).
		Method("SetPosition", (*Entity).SetPosition).
		Method("Translate", (*Entity).Translate).
		Method("FindEntityByName", (*Entity).FindEntityByName).
		Commit()
	err = multierr.Append(err, e)

	_, e = reg.Define(TypePlayer, func() (any, error) { return NewPlayer(svc), nil }).
		Method("SetEntity", (*Player).SetEntity).
		Method("OnCreate", (*Player).OnCreate).
		Method("OnUpdate", (*Player).OnUpdate).
		Method("ID", (*Player).ID).
		Method("X", (*Player).X).
		Method("Y", (*Player).Y).
		Method("Z", (*Player).Z).
		Method("Speed", (*Player).Speed).
		Method("SetSpeed", (*Player).SetSpeed).
		Method("JumpForce", (*Player).JumpForce).
		Method("SetJumpForce", (*Player).SetJumpForce).
		Commit()
	err = multierr.Append(err, e)

	return err
}
