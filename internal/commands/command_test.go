package commands

import (
	"errors"
	"testing"
)

func TestParseSupportedCommands(t *testing.T) {
	cases := []struct {
		in       string
		typeWant Type
	}{
		{"/add math worksheet min:30 subject:Math", TypeAdd},
		{"plan 90", TypePlan},
		{"day 2026-08-25", TypeDay},
		{"/move 3 1", TypeMove},
		{"remove 2", TypeRemove},
	}

	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Type != tc.typeWant {
			t.Fatalf("parse %q type = %s, want %s", tc.in, cmd.Type, tc.typeWant)
		}
	}
}

func TestParseAddArguments(t *testing.T) {
	cmd, err := Parse("/add finish science project min:45 subject:Science")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Add.Title != "finish science project" {
		t.Fatalf("title = %q", cmd.Add.Title)
	}
	if cmd.Add.Minutes != 45 || cmd.Add.Subject != "Science" {
		t.Fatalf("unexpected args: %+v", cmd.Add)
	}
}

func TestParseAddRejectsBadMinutes(t *testing.T) {
	for _, in := range []string{"/add essay min:zero", "/add essay min:-5", "/add min:30"} {
		_, err := Parse(in)
		var ce *CommandError
		if err == nil || !errors.As(err, &ce) || ce.Code != ErrCodeInvalidArgument {
			t.Fatalf("parse %q expected invalid argument, got %v", in, err)
		}
	}
}

func TestParseMovePositions(t *testing.T) {
	cmd, err := Parse("move 2 4")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Move.From != 2 || cmd.Move.To != 4 {
		t.Fatalf("unexpected move args: %+v", cmd.Move)
	}

	_, err = Parse("move 0 4")
	var ce *CommandError
	if err == nil || !errors.As(err, &ce) || ce.Code != ErrCodeInvalidArgument {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestParseUnknownCommand(t *testing.T) {
	_, err := Parse("/unknown do x")
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeUnknownCommand {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("/add reading log min:20")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	called := false
	res, err := Execute(cmd, Handlers{
		Add: func(a AddArgs) (Result, error) {
			called = true
			if a.Title != "reading log" || a.Minutes != 20 {
				t.Fatalf("unexpected args: %+v", a)
			}
			return Result{Message: "ok"}, nil
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called || res.Message != "ok" {
		t.Fatalf("dispatch failed, called=%v res=%+v", called, res)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	cmd, err := Parse("plan")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	_, err = Execute(cmd, Handlers{})
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeHandlerMissing {
		t.Fatalf("expected missing handler error, got %v", err)
	}
}
