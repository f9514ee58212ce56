package ws

import "encoding/json"

// Inbound frame handling. Malformed JSON is dropped without reply; valid
// JSON that is not a {action, args} object gets an error reply; turn args
// are validated here so nothing out of range ever reaches a session.

type turnRequest struct {
	X int
	Y int
}

type parseOutcome int

const (
	parseDrop parseOutcome = iota
	parseError
	parseTurn
	parseIgnore
)

// parseRequest classifies one inbound text frame. errMsg is set only for
// parseError outcomes.
func parseRequest(data []byte) (outcome parseOutcome, req turnRequest, errMsg string) {
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return parseDrop, turnRequest{}, ""
	}
	obj, ok := payload.(map[string]any)
	if !ok {
		return parseError, turnRequest{}, "Action and args required"
	}
	action, hasAction := obj["action"]
	args, hasArgs := obj["args"]
	if !hasAction || !hasArgs {
		return parseError, turnRequest{}, "Action and args required"
	}
	if action != "turn" {
		return parseIgnore, turnRequest{}, ""
	}
	x, y, ok := parseTurnArgs(args)
	if !ok {
		return parseError, turnRequest{}, "Invalid turn args"
	}
	return parseTurn, turnRequest{X: x, Y: y}, ""
}

// parseTurnArgs accepts exactly two integer coordinates in 0..2.
func parseTurnArgs(args any) (x, y int, ok bool) {
	list, isList := args.([]any)
	if !isList || len(list) != 2 {
		return 0, 0, false
	}
	x, ok = asBoardIndex(list[0])
	if !ok {
		return 0, 0, false
	}
	y, ok = asBoardIndex(list[1])
	if !ok {
		return 0, 0, false
	}
	return x, y, true
}

func asBoardIndex(v any) (int, bool) {
	f, isNum := v.(float64)
	if !isNum || f != float64(int(f)) {
		return 0, false
	}
	n := int(f)
	if n < 0 || n > 2 {
		return 0, false
	}
	return n, true
}
