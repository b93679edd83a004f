package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/DarkerMinecraft/Gravix"
	"github.com/DarkerMinecraft/Gravix/engineapi"
	"github.com/DarkerMinecraft/Gravix/errors"
	"github.com/DarkerMinecraft/Gravix/handle"
	"github.com/DarkerMinecraft/Gravix/marshal"
	"github.com/DarkerMinecraft/Gravix/runtime"
)

const defaultDelta = float32(1.0 / 60)

var keyNames = map[string]engineapi.Key{
	"space": engineapi.KeySpace,
	"0":     engineapi.Key0,
	"1":     engineapi.Key1,
	"2":     engineapi.Key2,
	"3":     engineapi.Key3,
	"a":     engineapi.KeyA,
	"d":     engineapi.KeyD,
	"e":     engineapi.KeyE,
	"q":     engineapi.KeyQ,
	"s":     engineapi.KeyS,
	"w":     engineapi.KeyW,
	"esc":   engineapi.KeyEsc,
	"enter": engineapi.KeyEnter,
	"right": engineapi.KeyRight,
	"left":  engineapi.KeyLeft,
	"down":  engineapi.KeyDown,
	"up":    engineapi.KeyUp,
}

type token struct {
	text   string
	quoted bool
}

type command struct {
	run   func(c *console, args []token) (string, error)
	usage string
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"help":    {(*console).help, "help"},
		"types":   {(*console).types, "types"},
		"methods": {(*console).methods, "methods <Type>"},
		"create":  {(*console).create, "create <Type>"},
		"call":    {(*console).call, "call <handle> <Method> [args...]"},
		"destroy": {(*console).destroy, "destroy <handle>"},
		"live":    {(*console).live, "live"},
		"stats":   {(*console).stats, "stats"},
		"attach":  {(*console).attach, "attach <entity> <Type>"},
		"detach":  {(*console).detach, "detach <entity>"},
		"tick":    {(*console).tick, "tick [dt]"},
		"key":     {(*console).key, "key <name> down|up"},
		"pos":     {(*console).pos, "pos <entity>"},
	}
}

// console executes the command language against a runtime. Calls go
// through the raw boundary: arguments are encoded into slots and strings
// are staged in a scratch memory.
type console struct {
	rt  *runtime.Runtime
	mem *gravix.ByteMemory
}

func newConsole(rt *runtime.Runtime) *console {
	return &console{rt: rt, mem: gravix.NewByteMemory(4096)}
}

// Exec runs one command line. Blank lines and lines starting with # are
// ignored.
func (c *console) Exec(line string) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", nil
	}
	toks, err := tokenize(line)
	if err != nil {
		return "", err
	}
	cmd, ok := commands[toks[0].text]
	if !ok {
		return "", fmt.Errorf("unknown command %q (try help)", toks[0].text)
	}
	return cmd.run(c, toks[1:])
}

func (c *console) help(_ []token) (string, error) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(commands[name].usage)
	}
	return b.String(), nil
}

func (c *console) types(_ []token) (string, error) {
	return strings.Join(c.rt.Bridge().Registry().Names(), "\n"), nil
}

func (c *console) methods(args []token) (string, error) {
	if err := want(args, 1, "methods"); err != nil {
		return "", err
	}
	desc, err := c.rt.Bridge().Registry().Lookup(args[0].text)
	if err != nil {
		return "", err
	}
	sigs := make([]string, len(desc.Methods))
	for i, m := range desc.Methods {
		sigs[i] = m.Signature()
	}
	return strings.Join(sigs, "\n"), nil
}

func (c *console) create(args []token) (string, error) {
	if err := want(args, 1, "create"); err != nil {
		return "", err
	}
	h, err := c.rt.Bridge().CreateObject(args[0].text)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("#%d", h), nil
}

func (c *console) call(args []token) (string, error) {
	if len(args) < 2 {
		return "", usage("call")
	}
	h, err := parseHandle(args[0].text)
	if err != nil {
		return "", err
	}
	name, rest := args[1].text, args[2:]

	b := c.rt.Bridge()
	m, err := b.Method(h, name, len(rest))
	if err != nil {
		return "", err
	}

	c.mem.Reset()
	raw := make(marshal.RawArgs, len(rest))
	if marshal.FirstUnsupported(m.Params) == 0 {
		vals := make([]any, len(rest))
		for i, tok := range rest {
			if vals[i], err = parseArg(tok, m.Params[i]); err != nil {
				return "", err
			}
		}
		if raw, err = marshal.EncodeRaw(m.Params, vals, c.mem); err != nil {
			return "", err
		}
	}

	res := b.InvokeMethod(h, name, raw, c.mem)
	if res.IsError() {
		return "", res.Err
	}
	return res.String(), nil
}

func (c *console) destroy(args []token) (string, error) {
	if err := want(args, 1, "destroy"); err != nil {
		return "", err
	}
	h, err := parseHandle(args[0].text)
	if err != nil {
		return "", err
	}
	if err := c.rt.Bridge().DestroyObject(h); err != nil {
		return "", err
	}
	return "destroyed", nil
}

func (c *console) live(_ []token) (string, error) {
	b := c.rt.Bridge()
	lines := make([]string, 0)
	for _, h := range b.Live() {
		name, ok := b.Lookup(h)
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("#%d %s", h, name))
	}
	return strings.Join(lines, "\n"), nil
}

func (c *console) stats(_ []token) (string, error) {
	s := c.rt.Bridge().Stats()
	return fmt.Sprintf("created=%d destroyed=%d invocations=%d failures=%d live=%d",
		s.Created, s.Destroyed, s.Invocations, s.Failures, s.Live), nil
}

func (c *console) attach(args []token) (string, error) {
	if err := want(args, 2, "attach"); err != nil {
		return "", err
	}
	scene := c.rt.Scene()
	id := scene.FindEntityByName(args[0].text)
	if id == engineapi.NoEntity {
		id = scene.CreateEntity(args[0].text)
	}
	inst, err := c.rt.Scripts().Attach(id, args[1].text)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("#%d", inst.Handle), nil
}

func (c *console) detach(args []token) (string, error) {
	if err := want(args, 1, "detach"); err != nil {
		return "", err
	}
	id, err := c.entity(args[0].text)
	if err != nil {
		return "", err
	}
	if err := c.rt.Scripts().Detach(id); err != nil {
		return "", err
	}
	return "detached", nil
}

func (c *console) tick(args []token) (string, error) {
	dt := defaultDelta
	if len(args) > 0 {
		v, err := strconv.ParseFloat(args[0].text, 32)
		if err != nil {
			return "", fmt.Errorf("tick: %w", err)
		}
		dt = float32(v)
	}
	if err := c.rt.Tick(dt); err != nil {
		return "", err
	}
	return fmt.Sprintf("%d scripts updated", len(c.rt.Scripts().Instances())), nil
}

func (c *console) key(args []token) (string, error) {
	if err := want(args, 2, "key"); err != nil {
		return "", err
	}
	k, ok := keyNames[strings.ToLower(args[0].text)]
	if !ok {
		return "", fmt.Errorf("unknown key %q", args[0].text)
	}
	var down bool
	switch args[1].text {
	case "down":
		down = true
	case "up":
	default:
		return "", usage("key")
	}
	c.rt.Scene().SetKey(k, down)
	return "", nil
}

func (c *console) pos(args []token) (string, error) {
	if err := want(args, 1, "pos"); err != nil {
		return "", err
	}
	id, err := c.entity(args[0].text)
	if err != nil {
		return "", err
	}
	return c.rt.Scene().Position(id).String(), nil
}

func (c *console) entity(name string) (engineapi.EntityID, error) {
	id := c.rt.Scene().FindEntityByName(name)
	if id == engineapi.NoEntity {
		return id, fmt.Errorf("no entity named %q", name)
	}
	return id, nil
}

// parseArg converts a token to the Go value EncodeRaw expects for p.
func parseArg(tok token, p marshal.ParamType) (any, error) {
	if tok.quoted && p != marshal.String {
		return nil, fmt.Errorf("%q: want %s, got string", tok.text, p)
	}
	s := tok.text
	switch p {
	case marshal.Int32:
		v, err := strconv.ParseInt(s, 0, 32)
		return int32(v), err
	case marshal.Int64:
		v, err := strconv.ParseInt(s, 0, 64)
		return v, err
	case marshal.Uint32:
		v, err := strconv.ParseUint(s, 0, 32)
		return uint32(v), err
	case marshal.Uint64:
		v, err := strconv.ParseUint(s, 0, 64)
		return v, err
	case marshal.Float32:
		v, err := strconv.ParseFloat(s, 32)
		return float32(v), err
	case marshal.Float64:
		v, err := strconv.ParseFloat(s, 64)
		return v, err
	case marshal.Bool:
		v, err := strconv.ParseBool(s)
		return v, err
	case marshal.String:
		return s, nil
	default:
		return nil, errors.New(errors.PhaseMarshal, errors.KindUnsupportedParam).
			Detail("cannot parse %s", p).
			Build()
	}
}

// parseHandle accepts 7 or #7.
func parseHandle(s string) (handle.Handle, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || v == 0 {
		return handle.Invalid, fmt.Errorf("bad handle %q", s)
	}
	return handle.Handle(v), nil
}

// tokenize splits on whitespace. Double-quoted tokens use Go string
// syntax.
func tokenize(line string) ([]token, error) {
	var toks []token
	for {
		line = strings.TrimLeft(line, " \t")
		if line == "" {
			return toks, nil
		}
		if line[0] == '"' {
			q, err := strconv.QuotedPrefix(line)
			if err != nil {
				return nil, fmt.Errorf("unterminated string: %s", line)
			}
			s, _ := strconv.Unquote(q)
			toks = append(toks, token{text: s, quoted: true})
			line = line[len(q):]
			continue
		}
		end := strings.IndexAny(line, " \t")
		if end < 0 {
			end = len(line)
		}
		toks = append(toks, token{text: line[:end]})
		line = line[end:]
	}
}

func want(args []token, n int, name string) error {
	if len(args) != n {
		return usage(name)
	}
	return nil
}

func usage(name string) error {
	return fmt.Errorf("usage: %s", commands[name].usage)
}
