// Package pipeline runs the staged job search flow. Stages execute strictly
// in order; each one validates its artifact and persists it before the next
// stage starts, so a failed run leaves every finished artifact on disk and
// nothing half-written.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"jobscout-engine/internal/artifacts"
	"jobscout-engine/internal/llm"
	"jobscout-engine/internal/schema"
	"jobscout-engine/internal/tools"
)

// Capability is the model surface a stage talks to.
type Capability interface {
	Complete(ctx context.Context, req llm.Request) (llm.Result, error)
}

// Recorder receives run lifecycle events. session.Recorder satisfies it.
type Recorder interface {
	StageStarted(stage string)
	StageFinished(stage, detail string, err error)
}

// Stage is one step of the flow. Stages with a Contract produce JSON
// artifacts; a stage without one produces a document persisted verbatim.
type Stage struct {
	Name        string
	Role        string // system message template
	Instruction string // user message template, may carry {placeholders}
	Artifact    string // file name under the artifact store
	Handoff     string // how the artifact is introduced to later prompts
	Tools       []string
	Contract    *schema.Contract
}

// Config wires one run.
type Config struct {
	Capability Capability
	Store      *artifacts.Store
	Recorder   Recorder // optional; nil skips the ledger
	Tools      []tools.Tool
	Stages     []Stage
	Vars       map[string]string // placeholder values shared by every stage
}

type Pipeline struct {
	cfg Config
}

// New checks the wiring before anything runs. A template naming an unknown
// placeholder or a stage asking for an unwired tool should fail here, not
// minutes into a run.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Capability == nil {
		return nil, &Error{Kind: KindConfig, Err: errors.New("no capability wired")}
	}
	if cfg.Store == nil {
		return nil, &Error{Kind: KindConfig, Err: errors.New("no artifact store wired")}
	}
	if len(cfg.Stages) == 0 {
		return nil, &Error{Kind: KindConfig, Err: errors.New("no stages defined")}
	}
	known := make(map[string]bool, len(cfg.Tools))
	for _, t := range cfg.Tools {
		known[t.Name] = true
	}
	seen := make(map[string]bool, len(cfg.Stages))
	for _, st := range cfg.Stages {
		if st.Name == "" || st.Artifact == "" {
			return nil, &Error{Stage: st.Name, Kind: KindConfig, Err: errors.New("stage needs a name and an artifact file")}
		}
		if seen[st.Name] {
			return nil, &Error{Stage: st.Name, Kind: KindConfig, Err: errors.New("duplicate stage name")}
		}
		seen[st.Name] = true
		if _, err := renderTemplate(st.Role, cfg.Vars); err != nil {
			return nil, &Error{Stage: st.Name, Kind: KindConfig, Err: err}
		}
		if _, err := renderTemplate(st.Instruction, cfg.Vars); err != nil {
			return nil, &Error{Stage: st.Name, Kind: KindConfig, Err: err}
		}
		for _, name := range st.Tools {
			if !known[name] {
				return nil, &Error{Stage: st.Name, Kind: KindConfig, Err: fmt.Errorf("stage asks for unwired tool %q", name)}
			}
		}
		if st.Contract != nil {
			if _, err := st.Contract.Definition(); err != nil {
				return nil, &Error{Stage: st.Name, Kind: KindConfig, Err: err}
			}
		}
	}
	return &Pipeline{cfg: cfg}, nil
}

// Outcome is what a finished run leaves behind.
type Outcome struct {
	Artifacts []string // persisted paths, in stage order
	Report    string   // path of the final document, when a stage produced one
}

// handoff is one persisted artifact carried into later stage prompts.
type handoff struct {
	label string
	body  []byte
}

// Run executes the stages in order. The first failure aborts the run; every
// artifact persisted before that point stays on disk.
func (p *Pipeline) Run(ctx context.Context) (Outcome, error) {
	var out Outcome
	var carried []handoff

	for i, st := range p.cfg.Stages {
		if err := ctx.Err(); err != nil {
			return out, &Error{Stage: st.Name, Kind: KindCollaborator, Err: err}
		}
		started := time.Now()
		p.stageStarted(st.Name)
		log.Printf("[pipeline] stage %d/%d %s", i+1, len(p.cfg.Stages), st.Name)

		req, err := p.buildRequest(st, carried)
		if err != nil {
			ferr := &Error{Stage: st.Name, Kind: KindConfig, Err: err}
			p.stageFinished(st.Name, "", ferr)
			return out, ferr
		}

		res, err := p.cfg.Capability.Complete(ctx, req)
		if err != nil {
			ferr := &Error{Stage: st.Name, Kind: KindCollaborator, Err: err}
			p.stageFinished(st.Name, "", ferr)
			return out, ferr
		}

		body, path, ferr := p.persist(st, res.Content)
		if ferr != nil {
			p.stageFinished(st.Name, "", ferr)
			return out, ferr
		}

		out.Artifacts = append(out.Artifacts, path)
		if st.Contract == nil {
			out.Report = path
		}
		if st.Handoff != "" && body != nil {
			carried = append(carried, handoff{label: st.Handoff, body: body})
		}
		p.stageFinished(st.Name, fmt.Sprintf("artifact=%s rounds=%d", st.Artifact, res.ToolRounds), nil)
		log.Printf("[pipeline] %s ok artifact=%s rounds=%d elapsed=%s",
			st.Name, st.Artifact, res.ToolRounds, time.Since(started).Round(time.Millisecond))
	}
	return out, nil
}

// buildRequest renders the stage prompt: instruction, then every prior
// artifact as a fenced section, then the response schema last so the format
// instruction is the freshest thing the model reads.
func (p *Pipeline) buildRequest(st Stage, carried []handoff) (llm.Request, error) {
	role, err := renderTemplate(st.Role, p.cfg.Vars)
	if err != nil {
		return llm.Request{}, err
	}
	instr, err := renderTemplate(st.Instruction, p.cfg.Vars)
	if err != nil {
		return llm.Request{}, err
	}

	var b strings.Builder
	b.WriteString(instr)
	for _, h := range carried {
		fmt.Fprintf(&b, "\n\n%s from an earlier step:\n```json\n%s\n```", h.label, h.body)
	}
	if st.Contract != nil {
		def, err := st.Contract.Definition()
		if err != nil {
			return llm.Request{}, err
		}
		fmt.Fprintf(&b, "\n\nRespond with a single JSON object matching this schema:\n```json\n%s\n```", def)
	}

	return llm.Request{
		System:      role,
		Instruction: b.String(),
		Tools:       p.selectTools(st.Tools),
		WantJSON:    st.Contract != nil,
	}, nil
}

// persist validates and writes one stage artifact. For contract stages it
// returns the canonical bytes carried into later prompts.
func (p *Pipeline) persist(st Stage, content string) ([]byte, string, *Error) {
	if st.Contract == nil {
		doc := strings.TrimSpace(content)
		if doc == "" {
			return nil, "", &Error{Stage: st.Name, Kind: KindValidation, Err: errors.New("model returned an empty document")}
		}
		path, err := p.cfg.Store.WriteDoc(st.Artifact, []byte(doc+"\n"))
		if err != nil {
			return nil, "", &Error{Stage: st.Name, Kind: KindPersistence, Err: err}
		}
		return nil, path, nil
	}

	artifact, err := st.Contract.Validate([]byte(content))
	if err != nil {
		return nil, "", &Error{Stage: st.Name, Kind: KindValidation, Err: err}
	}
	path, err := p.cfg.Store.WriteJSON(st.Artifact, artifact)
	if err != nil {
		return nil, "", &Error{Stage: st.Name, Kind: KindPersistence, Err: err}
	}
	body, err := json.Marshal(artifact)
	if err != nil {
		return nil, "", &Error{Stage: st.Name, Kind: KindPersistence, Err: err}
	}
	return body, path, nil
}

func (p *Pipeline) selectTools(names []string) []tools.Tool {
	if len(names) == 0 {
		return nil
	}
	out := make([]tools.Tool, 0, len(names))
	for _, name := range names {
		for _, t := range p.cfg.Tools {
			if t.Name == name {
				out = append(out, t)
			}
		}
	}
	return out
}

func (p *Pipeline) stageStarted(stage string) {
	if p.cfg.Recorder != nil {
		p.cfg.Recorder.StageStarted(stage)
	}
}

func (p *Pipeline) stageFinished(stage, detail string, err error) {
	if p.cfg.Recorder != nil {
		p.cfg.Recorder.StageFinished(stage, detail, err)
	}
}
