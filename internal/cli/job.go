package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/me/jobscript/internal/jobconfig"
	"github.com/me/jobscript/internal/script"
	"github.com/me/jobscript/pkg/jobtmpl"
)

// jobFlags are the flags shared by every command that resolves a template.
type jobFlags struct {
	jobFile   string
	filesFile string
	files     []string
	jobName   string

	partition string
	nodes     int
	ntasks    int
	cpus      int
	mem       string
	time      string
	gpu       int
}

func (f *jobFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.jobFile, "job", "j", "", "Job resource config file (YAML or JSON)")
	fl.StringVar(&f.filesFile, "files", "", "Uploaded files document mapping file keys to paths")
	fl.StringArrayVarP(&f.files, "file", "f", nil, "Uploaded file as key=path (repeat a key for multiple files)")
	fl.StringVar(&f.jobName, "job-name", "", "Slurm job name (default: template ID)")
	fl.StringVar(&f.partition, "partition", "", "Slurm partition")
	fl.IntVar(&f.nodes, "nodes", 0, "Number of nodes")
	fl.IntVar(&f.ntasks, "ntasks", 0, "Number of tasks")
	fl.IntVar(&f.cpus, "cpus-per-task", 0, "CPUs per task")
	fl.StringVar(&f.mem, "mem", "", "Memory per node, e.g. 16G")
	fl.StringVar(&f.time, "time", "", "Time limit as HH:MM:SS, MM:SS or SS")
	fl.IntVar(&f.gpu, "gpu", 0, "Number of GPUs")
}

// resourceConfig builds the job configuration from the job file and any
// explicitly set flags.
func (f *jobFlags) resourceConfig(cmd *cobra.Command) (jobtmpl.JobResourceConfig, error) {
	cfg := jobconfig.Defaults()
	if f.jobFile != "" {
		data, err := os.ReadFile(f.jobFile)
		if err != nil {
			return cfg, fmt.Errorf("read job file: %w", err)
		}
		if cfg, err = jobconfig.ParseConfig(data); err != nil {
			return cfg, fmt.Errorf("%s: %w", f.jobFile, err)
		}
	}

	changed := cmd.Flags().Changed
	if changed("partition") {
		cfg.Partition = f.partition
	}
	if changed("nodes") {
		cfg.Nodes = f.nodes
	}
	if changed("ntasks") {
		cfg.NTasks = f.ntasks
	}
	if changed("cpus-per-task") {
		cfg.CPUsPerTask = f.cpus
	}
	if changed("mem") {
		cfg.Mem = f.mem
	}
	if changed("time") {
		cfg.Time = f.time
	}
	if changed("gpu") {
		gpu := f.gpu
		cfg.GPU = &gpu
	}
	return cfg, jobconfig.Validate(cfg)
}

// uploadedFiles merges the files document with --file flags; flags win.
func (f *jobFlags) uploadedFiles() (jobtmpl.UploadedFiles, error) {
	base := jobtmpl.UploadedFiles{}
	if f.filesFile != "" {
		data, err := os.ReadFile(f.filesFile)
		if err != nil {
			return nil, fmt.Errorf("read files document: %w", err)
		}
		if base, err = jobconfig.ParseFiles(data); err != nil {
			return nil, fmt.Errorf("%s: %w", f.filesFile, err)
		}
	}
	overlay, err := jobconfig.ParseFileFlags(f.files)
	if err != nil {
		return nil, err
	}
	return jobconfig.Merge(base, overlay), nil
}

// options assembles generation options for tmpl.
func (f *jobFlags) options(cmd *cobra.Command, tmpl *jobtmpl.CommandTemplate) (script.Options, error) {
	cfg, err := f.resourceConfig(cmd)
	if err != nil {
		return script.Options{}, err
	}
	files, err := f.uploadedFiles()
	if err != nil {
		return script.Options{}, err
	}
	return script.Options{
		Template:   tmpl,
		Config:     cfg,
		Files:      files,
		ImagePath:  settings.Image,
		JobName:    f.jobName,
		OutputFile: settings.OutputPattern,
		ErrorFile:  settings.ErrorPattern,
	}, nil
}
