package scripts

import "github.com/DarkerMinecraft/Gravix/engineapi"

// Main is the entry script the engine creates at startup.
type Main struct {
	svc      engineapi.Services
	floatVar float32
}

func NewMain(svc engineapi.Services) *Main {
	svc.Log("Main Constructor")
	return &Main{svc: svc}
}

func (m *Main) PrintMessage() {
	m.svc.Log("Hello from Main class!")
}

func (m *Main) PrintCustomMessage(message string) {
	m.svc.Log("Go says: " + message)
}

func (m *Main) FloatVar() float32 { return m.floatVar }

func (m *Main) SetFloatVar(v float32) { m.floatVar = v }
