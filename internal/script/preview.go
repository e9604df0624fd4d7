package script

import (
	"github.com/dustin/go-humanize"

	"github.com/me/jobscript/internal/resolve"
	"github.com/me/jobscript/internal/transform"
)

// ResourceSummary condenses the resource request for display.
type ResourceSummary struct {
	Cores       int    `json:"cores"`
	Memory      string `json:"memory"`
	MemoryHuman string `json:"memory_human,omitempty"`
	Time        string `json:"time"`
	Nodes       int    `json:"nodes"`
	GPUs        int    `json:"gpus,omitempty"`
}

// ScriptPreview is the non-failing counterpart of GenerateSlurmScript.
// Valid is true iff Errors is empty; Script is empty when it is not.
type ScriptPreview struct {
	Valid           bool            `json:"valid"`
	Errors          []string        `json:"errors"`
	Warnings        []string        `json:"warnings"`
	Script          string          `json:"script"`
	ResourceSummary ResourceSummary `json:"resource_summary"`
}

// GeneratePreview checks required files, then generates the script. Every
// failure is reported in Errors instead of being returned.
func (g *Generator) GeneratePreview(opts Options) *ScriptPreview {
	p := &ScriptPreview{
		Errors:          []string{},
		Warnings:        []string{},
		ResourceSummary: summarize(opts),
	}

	if opts.Template == nil {
		p.Errors = append(p.Errors, ErrNoTemplate.Error())
		return p
	}

	for _, missing := range resolve.MissingFiles(opts.Template, opts.Files) {
		p.Errors = append(p.Errors, missing.Error())
	}

	if opts.Config.Nodes > 1 && !opts.Template.Command.RequiresMPI {
		p.Warnings = append(p.Warnings,
			"multiple nodes requested but the command does not use MPI; resources may be underused")
	}

	if len(p.Errors) > 0 {
		return p
	}

	script, err := g.GenerateSlurmScript(opts)
	if err != nil {
		g.logger.Debug("preview generation failed", "template", opts.Template.TemplateID, "error", err)
		p.Errors = append(p.Errors, err.Error())
		return p
	}
	p.Script = script.FullScript
	p.Valid = true
	return p
}

func summarize(opts Options) ResourceSummary {
	cfg := opts.Config
	s := ResourceSummary{
		Cores:  cfg.Nodes * cfg.NTasks,
		Memory: cfg.Mem,
		Time:   cfg.Time,
		Nodes:  cfg.Nodes,
		GPUs:   cfg.GPUCount(),
	}
	if kb, err := transform.ParseMemoryKB(cfg.Mem); err == nil && kb > 0 {
		s.MemoryHuman = humanize.IBytes(uint64(kb) * 1024)
	}
	return s
}
