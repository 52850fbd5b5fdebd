package stream

// State is the driver's position in the read/split/render cycle
type State uint8

const (
	StateWaitingForData    State = iota // blocked in Read
	StateHavePartialBuffer              // chunk appended, open frame buffered
	StateFrameReady                     // processing a completed blob
	StateTerminated                     // input exhausted or fatal error
)

var stateNames = [...]string{
	StateWaitingForData:    "WAITING_FOR_DATA",
	StateHavePartialBuffer: "HAVE_PARTIAL_BUFFER",
	StateFrameReady:        "FRAME_READY",
	StateTerminated:        "TERMINATED",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "UNKNOWN"
}
