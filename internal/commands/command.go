package commands

import (
	"fmt"
	"strconv"
	"strings"
)

type Type string

const (
	TypeAdd    Type = "add"
	TypePlan   Type = "plan"
	TypeDay    Type = "day"
	TypeMove   Type = "move"
	TypeRemove Type = "remove"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type AddArgs struct {
	Title   string
	Minutes int
	Subject string
}

type PlanArgs struct {
	AvailableMinutes int
}

type DayArgs struct {
	When string
}

type MoveArgs struct {
	From int
	To   int
}

type RemoveArgs struct {
	Position int
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Plan   *PlanArgs
	Day    *DayArgs
	Move   *MoveArgs
	Remove *RemoveArgs
}

// Parse turns palette input like "/add essay min:40 subject:English" into
// a typed command.
func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypePlan:
		return parsePlan(input, args)
	case TypeDay:
		return parseDay(input, args)
	case TypeMove:
		return parseMove(input, args)
	case TypeRemove:
		return parseRemove(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	out := AddArgs{Minutes: 0}
	titleParts := make([]string, 0, len(args))
	for _, arg := range args {
		lower := strings.ToLower(arg)
		switch {
		case strings.HasPrefix(lower, "min:"):
			v, err := strconv.Atoi(strings.TrimPrefix(lower, "min:"))
			if err != nil || v <= 0 {
				return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid minutes: %s", arg)}
			}
			out.Minutes = v
		case strings.HasPrefix(lower, "subject:"):
			subject := strings.TrimSpace(arg[len("subject:"):])
			if subject == "" {
				return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "subject must not be empty"}
			}
			out.Subject = subject
		default:
			titleParts = append(titleParts, arg)
		}
	}
	out.Title = strings.TrimSpace(strings.Join(titleParts, " "))
	if out.Title == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &out}, nil
}

func parsePlan(raw string, args []string) (Command, error) {
	out := PlanArgs{}
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v <= 0 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid available minutes: %s", args[0])}
		}
		out.AvailableMinutes = v
	}
	return Command{Type: TypePlan, Raw: raw, Plan: &out}, nil
}

func parseDay(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "day requires a date or today/tomorrow/yesterday"}
	}
	return Command{Type: TypeDay, Raw: raw, Day: &DayArgs{When: strings.ToLower(args[0])}}, nil
}

func parseMove(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "move requires from and to positions"}
	}
	from, err := strconv.Atoi(args[0])
	if err != nil || from <= 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid from position: %s", args[0])}
	}
	to, err := strconv.Atoi(args[1])
	if err != nil || to <= 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid to position: %s", args[1])}
	}
	return Command{Type: TypeMove, Raw: raw, Move: &MoveArgs{From: from, To: to}}, nil
}

func parseRemove(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "remove requires a position"}
	}
	pos, err := strconv.Atoi(args[0])
	if err != nil || pos <= 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid position: %s", args[0])}
	}
	return Command{Type: TypeRemove, Raw: raw, Remove: &RemoveArgs{Position: pos}}, nil
}
