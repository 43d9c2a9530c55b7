// Package terminal presents a quiz session on a text console.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"timed-quiz/internal/domain"
)

// Quiz is the subset of the quiz service a terminal presenter drives.
type Quiz interface {
	Start(ctx context.Context) string
	End(ctx context.Context, sessionID string)
	Subscribe(ctx context.Context, sessionID string) (<-chan domain.View, func(), error)
	Select(ctx context.Context, sessionID string, option int) (domain.View, error)
	Next(ctx context.Context, sessionID string) (domain.View, error)
	GoTo(ctx context.Context, sessionID string, index int) (domain.View, error)
	Restart(ctx context.Context, sessionID string) (domain.View, error)
}

type Kind int

const (
	KindSelect Kind = iota + 1
	KindNext
	KindGoTo
	KindRestart
	KindQuit
)

// Command is a parsed line of user input. Arg is the option position for
// KindSelect and the zero-based question index for KindGoTo.
type Command struct {
	Kind Kind
	Arg  int
}

var labels = []string{"A", "B", "C", "D"}

var errUnknownCommand = errors.New("unknown command: use a-d, n, g <number>, r or q")

// ParseCommand reads one line: a-d selects, n skips, "g 3" jumps to question 3, r restarts, q quits.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return Command{}, errUnknownCommand
	}
	switch fields[0] {
	case "a", "b", "c", "d":
		return Command{Kind: KindSelect, Arg: int(fields[0][0] - 'a')}, nil
	case "n", "next":
		return Command{Kind: KindNext}, nil
	case "r", "restart":
		return Command{Kind: KindRestart}, nil
	case "q", "quit":
		return Command{Kind: KindQuit}, nil
	case "g", "goto":
		if len(fields) != 2 {
			return Command{}, errUnknownCommand
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return Command{}, errUnknownCommand
		}
		return Command{Kind: KindGoTo, Arg: n - 1}, nil
	}
	return Command{}, errUnknownCommand
}

// Render writes the full view.
func Render(w io.Writer, v domain.View) {
	switch v.Phase {
	case domain.PhaseLoading:
		fmt.Fprintln(w, "Loading questions...")
	case domain.PhaseEnded:
		s := v.Summary
		fmt.Fprintf(w, "Your Score: %d/%d\n", s.Score, s.Total)
		fmt.Fprintf(w, "Correct Answers: %d\n", s.Score)
		fmt.Fprintf(w, "Attempted Questions: %d\n", s.Attempted)
		fmt.Fprintf(w, "Not Attempted Questions: %d\n", s.NotAttempted)
		fmt.Fprintf(w, "Wrong Answers: %d\n", s.Wrong)
		fmt.Fprintln(w, "Type r to restart or q to quit.")
	case domain.PhaseActive:
		fmt.Fprintln(w, progressLine(v))
		fmt.Fprintf(w, "Question %d: %s\n", v.Index+1, v.Prompt)
		for i, opt := range v.Options {
			mark := ""
			if v.Selected != nil && *v.Selected == opt {
				mark = " [wrong]"
				if v.Correct != nil && *v.Correct {
					mark = " [correct]"
				}
			}
			fmt.Fprintf(w, "  %s) %d%s\n", labels[i], opt, mark)
		}
		fmt.Fprintf(w, "Time left: %d seconds\n", v.TimeLeft)
	}
}

func progressLine(v domain.View) string {
	var b strings.Builder
	for i, status := range v.Progress {
		if i > 0 {
			b.WriteByte(' ')
		}
		marker := ""
		switch status {
		case domain.StatusAttempted:
			marker = "+"
		case domain.StatusSkipped:
			marker = "-"
		}
		if i == v.Index {
			marker += "*"
		}
		fmt.Fprintf(&b, "Q%d%s", i+1, marker)
	}
	return b.String()
}

// Run starts a session and drives it from in until quit, EOF or ctx is done.
func Run(ctx context.Context, quiz Quiz, in io.Reader, out io.Writer) error {
	sessionID := quiz.Start(ctx)
	defer quiz.End(ctx, sessionID)

	updates, cancel, err := quiz.Subscribe(ctx, sessionID)
	if err != nil {
		return err
	}
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	var last domain.View
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case v, ok := <-updates:
			if !ok {
				return nil
			}
			if onlyTimerChanged(last, v) {
				if v.TimeLeft <= 3 || v.TimeLeft%5 == 0 {
					fmt.Fprintf(out, "Time left: %d seconds\n", v.TimeLeft)
				}
			} else {
				Render(out, v)
			}
			last = v
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			cmd, err := ParseCommand(line)
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			if cmd.Kind == KindQuit {
				return nil
			}
			if err := dispatch(ctx, quiz, sessionID, cmd, last); err != nil {
				fmt.Fprintf(out, "! %v\n", err)
			}
		}
	}
}

func dispatch(ctx context.Context, quiz Quiz, sessionID string, cmd Command, current domain.View) error {
	var err error
	switch cmd.Kind {
	case KindSelect:
		if cmd.Arg >= len(current.Options) {
			return domain.ErrInvalidSelection
		}
		_, err = quiz.Select(ctx, sessionID, current.Options[cmd.Arg])
	case KindNext:
		_, err = quiz.Next(ctx, sessionID)
	case KindGoTo:
		_, err = quiz.GoTo(ctx, sessionID, cmd.Arg)
	case KindRestart:
		_, err = quiz.Restart(ctx, sessionID)
	}
	return err
}

func onlyTimerChanged(prev, next domain.View) bool {
	return prev.Phase == domain.PhaseActive && next.Phase == domain.PhaseActive &&
		prev.Index == next.Index &&
		prev.TimeLeft != next.TimeLeft &&
		(prev.Selected == nil) == (next.Selected == nil) &&
		slices.Equal(prev.Progress, next.Progress)
}
