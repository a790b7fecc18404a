package ws

import (
	"github.com/samuelfneumann/craft2d/environment/craft"
	ts "github.com/samuelfneumann/craft2d/timestep"
)

// Message types
const (
	TypeWelcome  = "welcome"
	TypeReset    = "reset"
	TypeStep     = "step"
	TypeTimeStep = "timestep"
	TypeError    = "error"
)

// Base is the part common to every message
type Base struct {
	Type string `json:"type"`
}

// WelcomeMsg is sent once when a connection is opened
type WelcomeMsg struct {
	Type    string   `json:"type"`
	Session string   `json:"session"`
	World   string   `json:"world"`
	Tasks   []string `json:"tasks"`
	Kinds   []string `json:"kinds"`
	Items   []string `json:"items"`
	Actions int      `json:"actions"`
	Limit   int      `json:"limit,omitempty"`
}

// ResetMsg starts a new episode. If Task is empty, the current task is
// kept.
type ResetMsg struct {
	Type string `json:"type"`
	Task string `json:"task,omitempty"`
}

// StepMsg takes one action in the current episode
type StepMsg struct {
	Type   string `json:"type"`
	Action int    `json:"action"`
}

// ObservationMsg is the wire form of a craft.Observation. Empty cells
// hold -1.
type ObservationMsg struct {
	Rows      int    `json:"rows"`
	Cols      int    `json:"cols"`
	Cells     []int  `json:"cells"`
	Inventory []int  `json:"inventory"`
	Row       int    `json:"row"`
	Col       int    `json:"col"`
	Facing    string `json:"facing"`
}

// TimeStepMsg is the reply to a reset or step
type TimeStepMsg struct {
	Type        string         `json:"type"`
	Task        string         `json:"task"`
	StepType    string         `json:"step_type"`
	Reward      float64        `json:"reward"`
	Discount    float64        `json:"discount"`
	Number      int            `json:"number"`
	Done        bool           `json:"done"`
	End         string         `json:"end,omitempty"`
	Observation ObservationMsg `json:"observation"`
}

// ErrorMsg reports a request that could not be served. The connection
// stays open.
type ErrorMsg struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func newObservationMsg(o craft.Observation) ObservationMsg {
	cells := make([]int, len(o.Cells))
	for i, k := range o.Cells {
		cells[i] = int(k)
	}
	return ObservationMsg{
		Rows:      o.Rows,
		Cols:      o.Cols,
		Cells:     cells,
		Inventory: append([]int(nil), o.Inventory...),
		Row:       o.Position.Row,
		Col:       o.Position.Col,
		Facing:    o.Facing.String(),
	}
}

func newTimeStepMsg(task string, step ts.TimeStep,
	o craft.Observation) TimeStepMsg {
	msg := TimeStepMsg{
		Type:        TypeTimeStep,
		Task:        task,
		StepType:    step.StepType.String(),
		Reward:      step.Reward,
		Discount:    step.Discount,
		Number:      step.Number,
		Done:        step.Last(),
		Observation: newObservationMsg(o),
	}
	if step.Last() {
		msg.End = step.EndType().String()
	}
	return msg
}
