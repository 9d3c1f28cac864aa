// Package script exposes an engine's control surface to Lua.
//
// Scripts see a global table "synth":
//
//	synth.note_on(note)          -> true | nil, err
//	synth.set_q(q)               -> true | nil, err
//	synth.set_sample_rate(rate)  -> true | nil, err
//	synth.set_gain(gain)         -> true | nil, err
//	synth.set_type(name)         -> true | nil, err
//	synth.produce(n)             -> dropped
//	synth.pop()                  -> sample | nil
//	synth.pop_block(n)           -> { samples... }
//	synth.buffered()             -> count
//	synth.params()               -> { cutoff, q, sample_rate, type }
//	synth.log(msg)
package script

import (
	"context"
	"fmt"
	"log/slog"

	lua "github.com/yuin/gopher-lua"

	"github.com/cwbudde/algo-synth/dsp/filter/design"
	"github.com/cwbudde/algo-synth/synth"
)

const maxPopBlock = 1 << 16

// Controller is the engine surface a script can drive.
type Controller interface {
	NoteOn(note int) error
	SetQ(q float64) error
	SetSampleRate(rate int) error
	SetGain(g float64) error
	SetFilterType(t design.Type) error
	Produce(n int) int
	Pop() (float32, bool)
	PopBlock(dst []float32) int
	Buffered() int
	Params() synth.Params
}

// Host runs Lua scripts against one Controller. A Host is not safe for
// concurrent use.
type Host struct {
	L      *lua.LState
	ctl    Controller
	logger *slog.Logger
	block  []float32
}

// New creates a Lua state with the synth table installed. A nil logger
// discards synth.log output.
func New(ctl Controller, logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	h := &Host{
		L:      lua.NewState(),
		ctl:    ctl,
		logger: logger,
	}
	h.install()

	return h
}

// Close releases the Lua state.
func (h *Host) Close() {
	h.L.Close()
}

// Run executes src. Cancelling ctx aborts the script.
func (h *Host) Run(ctx context.Context, src string) error {
	h.L.SetContext(ctx)
	defer h.L.RemoveContext()

	if err := h.L.DoString(src); err != nil {
		return fmt.Errorf("script: %w", err)
	}

	return nil
}

// RunFile executes the script at path. Cancelling ctx aborts the script.
func (h *Host) RunFile(ctx context.Context, path string) error {
	h.L.SetContext(ctx)
	defer h.L.RemoveContext()

	if err := h.L.DoFile(path); err != nil {
		return fmt.Errorf("script %s: %w", path, err)
	}

	return nil
}

func (h *Host) install() {
	mod := h.L.NewTable()
	h.L.SetFuncs(mod, map[string]lua.LGFunction{
		"note_on": h.result(func(L *lua.LState) error {
			return h.ctl.NoteOn(L.CheckInt(1))
		}),
		"set_q": h.result(func(L *lua.LState) error {
			return h.ctl.SetQ(float64(L.CheckNumber(1)))
		}),
		"set_sample_rate": h.result(func(L *lua.LState) error {
			return h.ctl.SetSampleRate(L.CheckInt(1))
		}),
		"set_gain": h.result(func(L *lua.LState) error {
			return h.ctl.SetGain(float64(L.CheckNumber(1)))
		}),
		"set_type": h.result(func(L *lua.LState) error {
			t, err := design.ParseType(L.CheckString(1))
			if err != nil {
				return err
			}
			return h.ctl.SetFilterType(t)
		}),
		"produce":   h.produce,
		"pop":       h.pop,
		"pop_block": h.popBlock,
		"buffered":  h.buffered,
		"params":    h.params,
		"log":       h.log,
	})
	h.L.SetGlobal("synth", mod)
}

// result wraps a setter in the Lua convention: true on success, nil and
// a message on failure.
func (h *Host) result(fn func(L *lua.LState) error) lua.LGFunction {
	return func(L *lua.LState) int {
		if err := fn(L); err != nil {
			L.Push(lua.LNil)
			L.Push(lua.LString(err.Error()))
			return 2
		}
		L.Push(lua.LTrue)
		return 1
	}
}

func (h *Host) produce(L *lua.LState) int {
	L.Push(lua.LNumber(h.ctl.Produce(L.CheckInt(1))))
	return 1
}

func (h *Host) pop(L *lua.LState) int {
	v, ok := h.ctl.Pop()
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(v))
	return 1
}

func (h *Host) popBlock(L *lua.LState) int {
	n := L.CheckInt(1)
	if n < 0 || n > maxPopBlock {
		L.ArgError(1, fmt.Sprintf("block size must be in [0, %d]", maxPopBlock))
		return 0
	}

	if cap(h.block) < n {
		h.block = make([]float32, n)
	}
	got := h.ctl.PopBlock(h.block[:n])

	tbl := L.CreateTable(got, 0)
	for _, v := range h.block[:got] {
		tbl.Append(lua.LNumber(v))
	}
	L.Push(tbl)
	return 1
}

func (h *Host) buffered(L *lua.LState) int {
	L.Push(lua.LNumber(h.ctl.Buffered()))
	return 1
}

func (h *Host) params(L *lua.LState) int {
	p := h.ctl.Params()

	tbl := L.NewTable()
	tbl.RawSetString("cutoff", lua.LNumber(p.Cutoff))
	tbl.RawSetString("q", lua.LNumber(p.Q))
	tbl.RawSetString("sample_rate", lua.LNumber(p.SampleRate))
	tbl.RawSetString("type", lua.LString(p.Type.String()))
	L.Push(tbl)
	return 1
}

func (h *Host) log(L *lua.LState) int {
	h.logger.Info(L.CheckString(1), "source", "lua")
	return 0
}
