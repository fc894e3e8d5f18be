package matrix

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"go.uber.org/zap"
)

var (
	ruleComment    = lexer.SimpleRule{Name: "Comment", Pattern: `#[^\n]*`}
	ruleWhitespace = lexer.SimpleRule{Name: "Whitespace", Pattern: `[ \t\r]+`}
	stepLexer      = lexer.MustSimple([]lexer.SimpleRule{
		ruleComment,
		{Name: "Action", Pattern: `[a-z]+`},
		{Name: "Int", Pattern: `\d+`},
		ruleWhitespace,
	})
)

// Step is one line of a script:
//
//	press <row> <col> [delay ms]
//	release <row> <col> [delay ms]
//	tap <row> <col> [hold ms]
//	wait <ms>
type Step struct {
	Action string `parser:"@Action"`
	Args   []int  `parser:"@Int*"`
}

var stepParser = participle.MustBuild[Step](
	participle.Lexer(stepLexer),
	participle.Elide(ruleWhitespace.Name, ruleComment.Name),
)

// ParseStep parses one script line. Blank and comment lines give a nil step.
func ParseStep(line string) (*Step, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil, nil
	}
	step, err := stepParser.ParseString("", strings.ToLower(line))
	if err != nil {
		return nil, err
	}
	switch step.Action {
	case "press", "release", "tap":
		if len(step.Args) < 2 || len(step.Args) > 3 {
			return nil, fmt.Errorf("%s expects <row> <col> [ms]", step.Action)
		}
	case "wait":
		if len(step.Args) != 1 {
			return nil, fmt.Errorf("wait expects <ms>")
		}
	default:
		return nil, fmt.Errorf("unknown action %q", step.Action)
	}
	return step, nil
}

func (s *Step) delay() time.Duration {
	switch s.Action {
	case "wait":
		return time.Duration(s.Args[0]) * time.Millisecond
	default:
		if len(s.Args) == 3 {
			return time.Duration(s.Args[2]) * time.Millisecond
		}
	}
	return 0
}

type scriptConfig struct {
	Path string `json:"path"`
}

// Script replays a line protocol from a reader.
type Script struct {
	log    *zap.Logger
	r      io.Reader
	closer io.Closer
}

func newScriptSource(config json.RawMessage, p Provider) (Source, error) {
	var cfg scriptConfig
	if config != nil {
		if err := json.Unmarshal(config, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse script config: %w", err)
		}
	}
	log := p.Log.Named("matrix.script")
	if cfg.Path == "" {
		if p.In == nil {
			return nil, fmt.Errorf("script source needs a path or an input stream")
		}
		return NewScript(log, p.In), nil
	}
	f, err := os.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open script: %w", err)
	}
	s := NewScript(log, f)
	s.closer = f
	return s, nil
}

func NewScript(log *zap.Logger, r io.Reader) *Script {
	return &Script{log: log, r: r}
}

func (s *Script) Run(ctx context.Context, events chan<- Event) error {
	scanner := bufio.NewScanner(s.r)
	line := 0
	for scanner.Scan() {
		line++
		step, err := ParseStep(scanner.Text())
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if step == nil {
			continue
		}
		if err := s.run(ctx, step, events); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	s.log.Debug("Script finished", zap.Int("lines", line))
	return nil
}

func (s *Script) run(ctx context.Context, step *Step, events chan<- Event) error {
	if step.Action == "wait" {
		return sleep(ctx, step.delay())
	}
	e := Event{Row: step.Args[0], Col: step.Args[1]}
	switch step.Action {
	case "press", "release":
		if err := sleep(ctx, step.delay()); err != nil {
			return err
		}
		e.Pressed = step.Action == "press"
		return send(ctx, events, e)
	}
	e.Pressed = true
	if err := send(ctx, events, e); err != nil {
		return err
	}
	if err := sleep(ctx, step.delay()); err != nil {
		return err
	}
	e.Pressed = false
	return send(ctx, events, e)
}

func (s *Script) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
