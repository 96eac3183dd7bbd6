// Package packet names the packet tags and wrapper heads of the kernel link protocol.
package packet

import "strconv"

// Tag identifies the kind of a packet read from a link.
type Tag int

// Packet tags as numbered by the link protocol.
const (
	// Illegal is returned when no further packet is available, either because
	// the stream ended or because the link failed.
	Illegal     Tag = 0
	Input       Tag = 1
	Text        Tag = 2
	Return      Tag = 3
	ReturnText  Tag = 4
	Message     Tag = 5
	Menu        Tag = 6
	Call        Tag = 7
	InputName   Tag = 8
	OutputName  Tag = 9
	Syntax      Tag = 10
	Display     Tag = 11
	DisplayEnd  Tag = 12
	Evaluate    Tag = 13
	EnterText   Tag = 14
	EnterExpr   Tag = 15
	ReturnExpr  Tag = 16
	Suspend     Tag = 17
	Resume      Tag = 18
	BeginDialog Tag = 19
	EndDialog   Tag = 20
	InputString Tag = 21
)

// Heads used to frame an evaluation request.
const (
	// EvaluateHead wraps the expression the kernel should evaluate.
	EvaluateHead = "EvaluatePacket"

	// ToExpressionHead asks the kernel to parse its string argument as input.
	ToExpressionHead = "ToExpression"
)

// StatementTerminator is appended to a command when its echoed result is not wanted.
const StatementTerminator = ";"

var tagNames = map[Tag]string{
	Illegal:     "IllegalPacket",
	Input:       "InputPacket",
	Text:        "TextPacket",
	Return:      "ReturnPacket",
	ReturnText:  "ReturnTextPacket",
	Message:     "MessagePacket",
	Menu:        "MenuPacket",
	Call:        "CallPacket",
	InputName:   "InputNamePacket",
	OutputName:  "OutputNamePacket",
	Syntax:      "SyntaxPacket",
	Display:     "DisplayPacket",
	DisplayEnd:  "DisplayEndPacket",
	Evaluate:    "EvaluatePacket",
	EnterText:   "EnterTextPacket",
	EnterExpr:   "EnterExpressionPacket",
	ReturnExpr:  "ReturnExpressionPacket",
	Suspend:     "SuspendPacket",
	Resume:      "ResumePacket",
	BeginDialog: "BeginDialogPacket",
	EndDialog:   "EndDialogPacket",
	InputString: "InputStringPacket",
}

// String returns the protocol name of the tag.
func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}

	return "Packet(" + strconv.Itoa(int(t)) + ")"
}

// IsTerminal reports whether the tag carries the evaluation result.
func (t Tag) IsTerminal() bool {
	return t == Return
}

// IsEndOfStream reports whether the tag signals that no more packets follow.
func (t Tag) IsEndOfStream() bool {
	return t == Illegal
}
