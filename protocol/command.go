package protocol

// Command is the leading field of a line in an update response.
type Command string

const (
	CmdNextPoll Command = "n"
	CmdListName Command = "i"
	CmdAddDel   Command = "ad"
	CmdSubDel   Command = "sd"
	CmdRedirect Command = "u"
	CmdMAC      Command = "m"
	CmdReset    Command = "r"
	CmdRekey    Command = "e"
	CmdAddChunk Command = "a"
	CmdSubChunk Command = "s"
)

const (
	SignalRekey = "pleaserekey"
	SignalReset = "pleasereset"

	// RekeyLine may stand in for a chunk header or a MAC line.
	RekeyLine = "e:pleaserekey"
)

const (
	FieldClientKey  = "clientkey"
	FieldWrappedKey = "wrappedkey"
)
