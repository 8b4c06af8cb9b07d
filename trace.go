package dtnsim

// trace.go gathers a run's trace records: JSON/YAML dual-format
// write-out and an id->name dictionary for readability, tracking DTN
// message events (created, forwarded, delivered, dropped).

import (
	"encoding/json"
	"os"
	"path"
	"strconv"

	"github.com/iti/evt/vrtime"
	"gopkg.in/yaml.v3"
)

// TraceRecordType distinguishes the kind of event recorded.
type TraceRecordType int

const (
	MessageType TraceRecordType = iota
)

var traceTypeToStr = map[TraceRecordType]string{MessageType: "message"}

// TraceInst is one serialized trace record, timestamped and typed for
// reassembly after the run.
type TraceInst struct {
	TraceTime string
	TraceType string
	TraceStr  string
}

// NameType maps an object id to a human name and kind, for readability
// in trace output.
type NameType struct {
	Name string
	Type string
}

// TraceManager gathers trace records for a run; embedding an InUse flag
// (rather than nil-checking a *TraceManager everywhere) lets every call
// site unconditionally call AddTrace/AddName.
type TraceManager struct {
	InUse bool `json:"inuse" yaml:"inuse"`

	ExpName string `json:"expname" yaml:"expname"`

	NameByID map[int]NameType       `json:"namebyid" yaml:"namebyid"`
	Traces   map[string][]TraceInst `json:"traces" yaml:"traces"` // keyed by message ID
}

// CreateTraceManager is a constructor; tracing starts disabled and is
// switched on with Enable once the scenario's trace configuration is
// known.
func CreateTraceManager() *TraceManager {
	return &TraceManager{
		NameByID: make(map[int]NameType),
		Traces:   make(map[string][]TraceInst),
	}
}

// Enable turns tracing on for the named experiment.
func (tm *TraceManager) Enable(expName string) {
	tm.InUse = true
	tm.ExpName = expName
}

func (tm *TraceManager) Active() bool { return tm.InUse }

// AddTrace records a trace instance under a message ID.
func (tm *TraceManager) AddTrace(msgID string, trace TraceInst) {
	if !tm.InUse {
		return
	}
	tm.Traces[msgID] = append(tm.Traces[msgID], trace)
}

// AddName registers a (name, kind) pair for an object id, panicking on
// a duplicate id since that indicates a bug in the caller, not a
// recoverable runtime condition (§7 invariant violation).
func (tm *TraceManager) AddName(id int, name string, kind string) {
	if !tm.InUse {
		return
	}
	if _, present := tm.NameByID[id]; present {
		panic("duplicated id in TraceManager.AddName")
	}
	tm.NameByID[id] = NameType{Name: name, Type: kind}
}

// WriteToFile serializes the trace to json or yaml based on filename's
// extension.
func (tm *TraceManager) WriteToFile(filename string) bool {
	if !tm.InUse {
		return false
	}
	var bytes []byte
	var merr error
	switch path.Ext(filename) {
	case ".yaml", ".YAML", ".yml":
		bytes, merr = yaml.Marshal(*tm)
	case ".json", ".JSON":
		bytes, merr = json.MarshalIndent(*tm, "", "\t")
	default:
		panic("TraceManager.WriteToFile: unsupported extension " + path.Ext(filename))
	}
	if merr != nil {
		panic(merr)
	}
	f, cerr := os.Create(filename)
	if cerr != nil {
		panic(cerr)
	}
	defer f.Close()
	if _, werr := f.WriteString(string(bytes)); werr != nil {
		panic(werr)
	}
	return true
}

// MessageTrace records one message event: creation, a hop to a new
// holder, delivery, or a drop.
type MessageTrace struct {
	Time     float64
	Ticks    int64
	Priority int64

	MsgID string
	From  int
	To    int
	Host  int    // host at which this event occurred
	Op    string // "created", "forwarded", "delivered", "dropped", "expired"
}

func (mt *MessageTrace) TraceType() TraceRecordType { return MessageType }

func (mt *MessageTrace) Serialize() string {
	bytes, merr := yaml.Marshal(*mt)
	if merr != nil {
		panic(merr)
	}
	return string(bytes)
}

// AddMessageTrace builds and records a MessageTrace.
func AddMessageTrace(tm *TraceManager, vrt vrtime.Time, m *Message, host int, op string) {
	if !tm.InUse {
		return
	}
	mt := &MessageTrace{
		Time:     vrt.Seconds(),
		Ticks:    vrt.Ticks(),
		Priority: vrt.Pri(),
		MsgID:    m.ID,
		From:     m.From,
		To:       m.To,
		Host:     host,
		Op:       op,
	}
	traceTime := strconv.FormatFloat(vrt.Seconds(), 'f', -1, 64)
	tm.AddTrace(m.ID, TraceInst{TraceTime: traceTime, TraceType: traceTypeToStr[MessageType], TraceStr: mt.Serialize()})
}
