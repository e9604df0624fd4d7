package jobtmpl

// JobResourceConfig holds the Slurm resource request for a job.
type JobResourceConfig struct {
	Partition   string `yaml:"partition" json:"partition"`
	Nodes       int    `yaml:"nodes" json:"nodes"`
	NTasks      int    `yaml:"ntasks" json:"ntasks"`
	CPUsPerTask int    `yaml:"cpus_per_task" json:"cpus_per_task"`
	Mem         string `yaml:"mem" json:"mem"`
	Time        string `yaml:"time" json:"time"`
	GPU         *int   `yaml:"gpu,omitempty" json:"gpu,omitempty"`
}

// GPUCount returns the requested GPU count, or 0 when none was requested.
func (c JobResourceConfig) GPUCount() int {
	if c.GPU == nil {
		return 0
	}
	return *c.GPU
}

// ConfigField names one field of JobResourceConfig addressable from a
// dynamic variable source path.
type ConfigField string

const (
	FieldPartition   ConfigField = "partition"
	FieldNodes       ConfigField = "nodes"
	FieldNTasks      ConfigField = "ntasks"
	FieldCPUsPerTask ConfigField = "cpus_per_task"
	FieldMem         ConfigField = "mem"
	FieldTime        ConfigField = "time"
	FieldGPU         ConfigField = "gpu"
)

// ConfigFields lists every addressable field.
var ConfigFields = []ConfigField{
	FieldPartition, FieldNodes, FieldNTasks, FieldCPUsPerTask, FieldMem, FieldTime, FieldGPU,
}

// ParseConfigField returns the ConfigField for name, or false if the name is
// not a known field.
func ParseConfigField(name string) (ConfigField, bool) {
	for _, f := range ConfigFields {
		if string(f) == name {
			return f, true
		}
	}
	return "", false
}

// Lookup returns the value of field. The second result is false when the
// field is unset, which only happens for gpu.
func (c JobResourceConfig) Lookup(field ConfigField) (Value, bool) {
	switch field {
	case FieldPartition:
		return StringValue(c.Partition), true
	case FieldNodes:
		return IntValue(int64(c.Nodes)), true
	case FieldNTasks:
		return IntValue(int64(c.NTasks)), true
	case FieldCPUsPerTask:
		return IntValue(int64(c.CPUsPerTask)), true
	case FieldMem:
		return StringValue(c.Mem), true
	case FieldTime:
		return StringValue(c.Time), true
	case FieldGPU:
		if c.GPU == nil {
			return Value{}, false
		}
		return IntValue(int64(*c.GPU)), true
	default:
		return Value{}, false
	}
}
